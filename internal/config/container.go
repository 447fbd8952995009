package config

import (
	"context"
	"fmt"
	"io"
	"time"

	"pdf-study-aid/internal/domain"
	"pdf-study-aid/internal/flow"
	"pdf-study-aid/internal/infra/supabase"
	"pdf-study-aid/internal/repository"
	"pdf-study-aid/internal/service"
	"pdf-study-aid/pkg/logger"
)

const memorySweepInterval = 5 * time.Minute

// Container holds all application dependencies
type Container struct {
	Config            domain.Config
	Logger            domain.Logger
	SupabaseClient    domain.SupabaseClient
	AuthService       domain.AuthService
	SessionRepository domain.SessionRepository
	Generator         flow.Generator
	FlowRunner        domain.FlowRunner
	StudyService      domain.StudyService
	UploadValidator   *service.UploadValidator

	closers []io.Closer
	cancel  context.CancelFunc
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := NewConfig()
	appLogger := logger.NewLogger(cfg.GetLogLevel(), cfg.GetLogFormat())

	generator, err := flow.NewGenerator(ctx, cfg, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}
	return NewContainerWith(cfg, appLogger, generator)
}

// NewContainerWith wires the container around an existing config, logger and generator.
func NewContainerWith(cfg domain.Config, appLogger domain.Logger, generator flow.Generator) (*Container, error) {
	bgCtx, cancel := context.WithCancel(context.Background())
	c := &Container{
		Config:    cfg,
		Logger:    appLogger,
		Generator: generator,
		cancel:    cancel,
	}
	if closer, ok := generator.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}

	sessions, err := c.newSessionRepository(bgCtx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.SessionRepository = sessions

	// Supabase is optional; without it every request runs as a guest.
	if cfg.GetSupabaseURL() != "" && cfg.GetSupabaseKey() != "" {
		supabaseClient := supabase.NewClient(cfg, appLogger)
		if err := supabaseClient.Initialize(); err != nil {
			_ = c.Close()
			return nil, err
		}
		c.SupabaseClient = supabaseClient
		c.AuthService = service.NewAuthService(supabaseClient, appLogger)
	} else if cfg.GetRequireAuth() {
		_ = c.Close()
		return nil, fmt.Errorf("REQUIRE_AUTH is set but SUPABASE_URL or SUPABASE_ANON_KEY is missing")
	}

	c.FlowRunner = flow.NewRunner(generator, appLogger, cfg.GetAITimeout())
	c.UploadValidator = service.NewUploadValidator(cfg.GetMaxFileSize(), service.NewPDFInspector())
	c.StudyService = service.NewStudyService(c.FlowRunner, sessions, c.UploadValidator, appLogger)

	appLogger.Info("Container initialized",
		"provider", generator.Name(),
		"session_store", cfg.GetSessionStore(),
		"auth", c.AuthService != nil,
	)
	return c, nil
}

func (c *Container) newSessionRepository(ctx context.Context) (domain.SessionRepository, error) {
	switch c.Config.GetSessionStore() {
	case "redis":
		client := repository.NewRedisClient(c.Config.GetRedisAddr(), c.Config.GetRedisPassword(), c.Config.GetRedisDB())
		repo := repository.NewRedisSessionRepository(client, c.Config.GetSessionTTL(), c.Logger)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := repo.Ping(pingCtx); err != nil {
			_ = repo.Close()
			return nil, err
		}
		c.closers = append(c.closers, repo)
		return repo, nil
	case "", "memory":
		repo := repository.NewMemorySessionRepository(c.Config.GetSessionTTL())
		repo.StartSweeper(ctx, memorySweepInterval, c.Logger)
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", c.Config.GetSessionStore())
	}
}

// Close releases provider and store connections.
func (c *Container) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	var firstErr error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if l, ok := c.Logger.(interface{ Sync() error }); ok {
		_ = l.Sync()
	}
	return firstErr
}
