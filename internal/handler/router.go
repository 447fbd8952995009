package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"pdf-study-aid/internal/config"
	"pdf-study-aid/internal/domain"
	"pdf-study-aid/web"
)

// RouterDeps are the handlers and middleware the router is assembled from.
type RouterDeps struct {
	Logger         domain.Logger
	AuthHandler    *AuthHandler
	FlowHandler    *FlowHandler
	SessionHandler *SessionHandler
	AuthMiddleware func(http.Handler) http.Handler
	RateLimiter    *RateLimiter
	AllowedOrigins []string
	UI             http.Handler
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	cfg := container.Config
	maxFileSize := cfg.GetMaxFileSize()

	return newRouter(RouterDeps{
		Logger:         container.Logger,
		AuthHandler:    NewAuthHandler(cfg.GetRequireAuth()),
		FlowHandler:    NewFlowHandler(container.StudyService, container.Logger, maxFileSize),
		SessionHandler: NewSessionHandler(container.StudyService, container.Logger, maxFileSize),
		AuthMiddleware: NewAuthMiddleware(container.AuthService, container.Logger, cfg.GetRequireAuth()).Middleware,
		RateLimiter:    NewRateLimiter(cfg.GetRateLimitRPS(), cfg.GetRateLimitBurst(), cfg.GetTrustProxy()),
		AllowedOrigins: cfg.GetCORSAllowedOrigins(),
		UI:             web.Handler(),
	})
}

func newRouter(deps RouterDeps) http.Handler {
	router := mux.NewRouter()
	router.Use(RequestLogger(deps.Logger))

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "pdf-study-aid"})
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(deps.RateLimiter.Middleware)
	if deps.AuthMiddleware != nil {
		api.Use(deps.AuthMiddleware)
	}

	api.HandleFunc("/auth/me", deps.AuthHandler.GetProfile).Methods("GET")

	// Stateless flows
	api.HandleFunc("/flows/summarize", deps.FlowHandler.Summarize).Methods("POST")
	api.HandleFunc("/flows/suggested-questions", deps.FlowHandler.SuggestedQuestions).Methods("POST")
	api.HandleFunc("/flows/answer", deps.FlowHandler.Answer).Methods("POST")

	// Study sessions
	api.HandleFunc("/sessions", deps.SessionHandler.CreateSession).Methods("POST")
	api.HandleFunc("/sessions/{id}", deps.SessionHandler.GetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", deps.SessionHandler.DeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/state", deps.SessionHandler.Navigate).Methods("POST")
	api.HandleFunc("/sessions/{id}/summary", deps.SessionHandler.Summarize).Methods("POST")
	api.HandleFunc("/sessions/{id}/summary/level", deps.SessionHandler.ChangeLevel).Methods("POST")
	api.HandleFunc("/sessions/{id}/chat", deps.SessionHandler.StartChat).Methods("POST")
	api.HandleFunc("/sessions/{id}/messages", deps.SessionHandler.SendMessage).Methods("POST")

	if deps.UI != nil {
		router.PathPrefix("/").Handler(deps.UI).Methods("GET").MatcherFunc(func(r *http.Request, _ *mux.RouteMatch) bool {
			return !strings.HasPrefix(r.URL.Path, "/api/")
		})
	}

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Retry-After",
		},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
