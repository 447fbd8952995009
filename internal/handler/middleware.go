package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"pdf-study-aid/internal/domain"
	apperrors "pdf-study-aid/pkg/errors"
)

// AuthMiddleware resolves the caller from a Supabase bearer token.
// Without a token the caller is a guest unless auth is required.
type AuthMiddleware struct {
	authService domain.AuthService
	logger      domain.Logger
	requireAuth bool
}

// NewAuthMiddleware creates the middleware; authService may be nil when Supabase is not configured.
func NewAuthMiddleware(authService domain.AuthService, logger domain.Logger, requireAuth bool) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		logger:      logger,
		requireAuth: requireAuth,
	}
}

// Middleware validates the Authorization header and stores the user in the request context.
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if m.requireAuth {
				m.unauthorized(w, "Authorization header required")
				return
			}
			next.ServeHTTP(w, withUser(r, guestUser(), ""))
			return
		}

		// Extract token from "Bearer <token>" format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.unauthorized(w, "Invalid authorization header format")
			return
		}

		token := parts[1]
		if token == "" {
			m.unauthorized(w, "Token required")
			return
		}

		if m.authService == nil {
			m.unauthorized(w, "Authentication is not configured")
			return
		}

		user, err := m.authService.ValidateToken(token)
		if err != nil {
			m.logger.Error("Token validation failed", err, "request_id", GetRequestID(r.Context()))
			m.unauthorized(w, "Invalid token")
			return
		}

		next.ServeHTTP(w, withUser(r, user, token))
	})
}

func (m *AuthMiddleware) unauthorized(w http.ResponseWriter, message string) {
	writeAppError(w, m.logger, apperrors.NewUnauthorizedError(message), message)
}

func guestUser() *domain.SupabaseUser {
	return &domain.SupabaseUser{ID: domain.GuestUserID, UserMetadata: map[string]interface{}{}}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// RequestLogger tags each request with an ID and logs its outcome.
func RequestLogger(logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set("X-Request-ID", requestID)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			fields := []interface{}{
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"duration", time.Since(start).String(),
			}
			if rec.status >= http.StatusInternalServerError {
				logger.Warn("Request failed", fields...)
				return
			}
			logger.Debug("Request handled", fields...)
		})
	}
}
