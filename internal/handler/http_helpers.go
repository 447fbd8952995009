package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"pdf-study-aid/internal/domain"
	apperrors "pdf-study-aid/pkg/errors"
)

type contextKey string

const (
	userContextKey      contextKey = "user"
	tokenContextKey     contextKey = "token"
	requestIDContextKey contextKey = "request_id"
)

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.SupabaseUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.SupabaseUser)
	return user, ok
}

// GetTokenFromContext extracts the authentication token from request context
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

// GetRequestID returns the request ID assigned by the logging middleware.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

func withUser(r *http.Request, user *domain.SupabaseUser, token string) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	if token != "" {
		ctx = context.WithValue(ctx, tokenContextKey, token)
	}
	return r.WithContext(ctx)
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeAppError maps err to its status code. Provider and internal failures
// get the fallback message so upstream details are not leaked to the browser.
func writeAppError(w http.ResponseWriter, logger domain.Logger, err error, fallback string) {
	appErr, ok := apperrors.As(err)
	if !ok {
		if logger != nil {
			logger.Error("Unhandled error", err)
		}
		writeError(w, http.StatusInternalServerError, fallback)
		return
	}

	if !appErr.Exposed() {
		writeError(w, appErr.StatusCode, fallback)
		return
	}
	if appErr.Details != "" {
		writeJSON(w, appErr.StatusCode, map[string]string{"error": appErr.Message, "details": appErr.Details})
		return
	}
	writeError(w, appErr.StatusCode, appErr.Message)
}
