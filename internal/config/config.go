package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"pdf-study-aid/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort  string
	MaxFileSize int64
	LogLevel    string
	LogFormat   string

	AIProvider      string
	AIModel         string
	AITimeout       time.Duration
	GCPProjectID    string
	GCPLocation     string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string

	SessionStore  string
	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SupabaseURL string
	SupabaseKey string
	RequireAuth bool

	RateLimitRPS       float64
	RateLimitBurst     int
	TrustProxy         bool
	CORSAllowedOrigins []string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:  getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		MaxFileSize: getEnvInt64OrDefault("MAX_FILE_SIZE", 5*1024*1024), // 5MB default
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "console"),

		AIProvider:      getEnvOrDefault("AI_PROVIDER", "vertex"),
		AIModel:         getEnvOrDefault("AI_MODEL", ""),
		AITimeout:       getEnvDurationOrDefault("AI_TIMEOUT", 120*time.Second),
		GCPProjectID:    getEnvOrDefault("GCP_PROJECT_ID", getEnvOrDefault("GOOGLE_CLOUD_PROJECT", "")),
		GCPLocation:     getEnvOrDefault("GCP_LOCATION", "us-central1"),
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnvOrDefault("OPENAI_BASE_URL", ""),

		SessionStore:  strings.ToLower(getEnvOrDefault("SESSION_STORE", "memory")),
		SessionTTL:    getEnvDurationOrDefault("SESSION_TTL", 2*time.Hour),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		SupabaseURL: getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey: getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		RequireAuth: getEnvBoolOrDefault("REQUIRE_AUTH", false),

		RateLimitRPS:       getEnvFloatOrDefault("RATE_LIMIT_RPS", 0),
		RateLimitBurst:     getEnvIntOrDefault("RATE_LIMIT_BURST", 5),
		TrustProxy:         getEnvBoolOrDefault("TRUST_PROXY", false),
		CORSAllowedOrigins: getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetMaxFileSize returns the maximum allowed upload size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetLogFormat returns "json" or "console"
func (c *AppConfig) GetLogFormat() string {
	return c.LogFormat
}

func (c *AppConfig) GetAIProvider() string {
	return c.AIProvider
}

func (c *AppConfig) GetAIModel() string {
	return c.AIModel
}

// GetAITimeout bounds a single provider call
func (c *AppConfig) GetAITimeout() time.Duration {
	return c.AITimeout
}

func (c *AppConfig) GetGCPProjectID() string {
	return c.GCPProjectID
}

func (c *AppConfig) GetGCPLocation() string {
	return c.GCPLocation
}

func (c *AppConfig) GetAnthropicAPIKey() string {
	return c.AnthropicAPIKey
}

func (c *AppConfig) GetOpenAIAPIKey() string {
	return c.OpenAIAPIKey
}

func (c *AppConfig) GetOpenAIBaseURL() string {
	return c.OpenAIBaseURL
}

// GetSessionStore returns "memory" or "redis"
func (c *AppConfig) GetSessionStore() string {
	return c.SessionStore
}

func (c *AppConfig) GetSessionTTL() time.Duration {
	return c.SessionTTL
}

func (c *AppConfig) GetRedisAddr() string {
	return c.RedisAddr
}

func (c *AppConfig) GetRedisPassword() string {
	return c.RedisPassword
}

func (c *AppConfig) GetRedisDB() int {
	return c.RedisDB
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetRequireAuth reports whether guest access is disabled
func (c *AppConfig) GetRequireAuth() bool {
	return c.RequireAuth
}

// GetRateLimitRPS returns the per-client request rate; 0 disables limiting
func (c *AppConfig) GetRateLimitRPS() float64 {
	return c.RateLimitRPS
}

func (c *AppConfig) GetRateLimitBurst() int {
	return c.RateLimitBurst
}

// GetTrustProxy reports whether X-Forwarded-For comes from a trusted reverse proxy
func (c *AppConfig) GetTrustProxy() bool {
	return c.TrustProxy
}

func (c *AppConfig) GetCORSAllowedOrigins() []string {
	return c.CORSAllowedOrigins
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("90s", "2h") or plain seconds.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
