package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/storyhub-app/storyhub-be/internal/apierror"
	"github.com/storyhub-app/storyhub-be/internal/auth"
	"github.com/storyhub-app/storyhub-be/internal/models"
	"github.com/storyhub-app/storyhub-be/internal/schemas"
	"github.com/storyhub-app/storyhub-be/internal/services"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
	tokens  *auth.Manager
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, tokens *auth.Manager) *UserHandler {
	return &UserHandler{service: service, tokens: tokens}
}

// signedUser is a user response carrying a freshly issued token.
type signedUser struct {
	Token string `json:"token"`
	models.User
}

// Create handles signup: validate, persist with a hashed password, and
// respond 201 with the new user plus a token. The password never appears in
// the response.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		RespondError(w, apiErr)
		return
	}
	if apiErr := schemas.Validate(payload, schemas.UserCreate); apiErr != nil {
		RespondError(w, apiErr)
		return
	}

	username, _ := payload["username"].(string)
	password, _ := payload["password"].(string)
	name := ""
	if n := stringField(payload, "name"); n != nil {
		name = *n
	}

	user, err := h.service.CreateUser(r.Context(), username, name, password)
	if err != nil {
		RespondError(w, err)
		return
	}

	token, err := h.tokens.Generate(user.Username)
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("Failed to sign token")
		RespondError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, signedUser{Token: token, User: user})
}

// Get handles retrieving a user by username, with stories and favorites
// resolved into embedded records.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	user, err := h.service.ReadUser(r.Context(), username)
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// List handles the paginated user listing.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, apiErr := pagination(r)
	if apiErr != nil {
		RespondError(w, apiErr)
		return
	}
	users, err := h.service.ReadUsers(r.Context(), skip, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

// Update handles a self-only user patch.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := requireSelf(r, username); err != nil {
		RespondError(w, err)
		return
	}

	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		RespondError(w, apiErr)
		return
	}
	if apiErr := schemas.Validate(payload, schemas.UserUpdate); apiErr != nil {
		RespondError(w, apiErr)
		return
	}

	patch := services.UserPatch{
		Name:     stringField(payload, "name"),
		Password: stringField(payload, "password"),
	}
	user, err := h.service.UpdateUser(r.Context(), username, patch)
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// Delete handles a self-only user deletion. The user's posted stories are
// not removed.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := requireSelf(r, username); err != nil {
		RespondError(w, err)
		return
	}

	deleted, err := h.service.DeleteUser(r.Context(), username)
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, deleted)
}

// requireSelf compares the token identity against the addressed username.
func requireSelf(r *http.Request, username string) error {
	caller, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		return apierror.Unauthorized("Missing or invalid auth token.")
	}
	if caller != username {
		return apierror.Forbidden("You are not allowed to update other users.")
	}
	return nil
}
