package handler

import (
	"net/http"

	"pdf-study-aid/internal/domain"
	apperrors "pdf-study-aid/pkg/errors"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	requireAuth bool
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(requireAuth bool) *AuthHandler {
	return &AuthHandler{requireAuth: requireAuth}
}

type profileResponse struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email,omitempty"`
	Guest        bool                   `json:"guest"`
	RequireAuth  bool                   `json:"require_auth"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// GetProfile returns the caller, which is a guest when no token was sent.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeAppError(w, nil, apperrors.NewUnauthorizedError("User not found in context"), "User not found in context")
		return
	}

	writeJSON(w, http.StatusOK, newProfileResponse(user, h.requireAuth))
}

func newProfileResponse(user *domain.SupabaseUser, requireAuth bool) profileResponse {
	return profileResponse{
		ID:           user.ID,
		Email:        user.Email,
		Guest:        user.IsGuest(),
		RequireAuth:  requireAuth,
		UserMetadata: user.UserMetadata,
	}
}
