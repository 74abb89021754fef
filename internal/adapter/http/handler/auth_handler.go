package handler

import (
	"net/http"

	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/infrastructure/auth"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	jwtManager *auth.JWTManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		jwtManager: jwtManager,
	}
}

// TokenRequest asks for a token for a back-office identity.
type TokenRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Name     string `json:"name"`
	Role     string `json:"role" validate:"required"`
	AgencyID string `json:"agency_id"`
}

// TokenResponse carries an issued token.
type TokenResponse struct {
	Token string    `json:"token"`
	Actor ActorInfo `json:"actor"`
}

// ActorInfo represents the caller's identity.
type ActorInfo struct {
	ID       string      `json:"id"`
	Name     string      `json:"name,omitempty"`
	Role     domain.Role `json:"role"`
	AgencyID string      `json:"agency_id,omitempty"`
}

func actorInfo(a *domain.Actor) ActorInfo {
	return ActorInfo{ID: a.ID, Name: a.Name, Role: a.Role, AgencyID: a.AgencyID}
}

// IssueToken signs a token for the requested identity. It trusts the request
// body and is only mounted when the server runs with token issuing enabled.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeDomainError(w, "invalid role", err)
		return
	}

	actor := &domain.Actor{ID: req.UserID, Name: req.Name, Role: role, AgencyID: req.AgencyID}
	token, err := h.jwtManager.Generate(actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token, Actor: actorInfo(actor)})
}

// Me returns the authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := domain.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	writeJSON(w, http.StatusOK, actorInfo(actor))
}
