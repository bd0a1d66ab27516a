package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/storyhub-app/storyhub-be/internal/auth"
	"github.com/storyhub-app/storyhub-be/internal/schemas"
	"github.com/storyhub-app/storyhub-be/internal/services"
)

// LoginHandler handles credential checks and token issuance.
type LoginHandler struct {
	service services.UserServiceProvider
	tokens  *auth.Manager
}

// NewLoginHandler creates a new LoginHandler.
func NewLoginHandler(service services.UserServiceProvider, tokens *auth.Manager) *LoginHandler {
	return &LoginHandler{service: service, tokens: tokens}
}

// Login verifies a username/password pair and responds with the populated
// user plus a signed token.
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		RespondError(w, apiErr)
		return
	}
	if apiErr := schemas.Validate(payload, schemas.Login); apiErr != nil {
		RespondError(w, apiErr)
		return
	}

	username, _ := payload["username"].(string)
	password, _ := payload["password"].(string)

	user, err := h.service.Authenticate(r.Context(), username, password)
	if err != nil {
		log.Warn().Str("username", username).Msg("Failed authentication attempt")
		RespondError(w, err)
		return
	}

	token, err := h.tokens.Generate(user.Username)
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("Failed to sign token")
		RespondError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, signedUser{Token: token, User: user})
}
