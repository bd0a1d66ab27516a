package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storyhub-app/storyhub-be/internal/models"
	"github.com/storyhub-app/storyhub-be/internal/services"
)

// FavoriteHandler handles adding and removing story favorites.
type FavoriteHandler struct {
	users   services.UserServiceProvider
	stories services.StoryServiceProvider
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(users services.UserServiceProvider, stories services.StoryServiceProvider) *FavoriteHandler {
	return &FavoriteHandler{users: users, stories: stories}
}

type favoriteResponse struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

// Add favorites a story for the addressed user. Adding twice is a no-op.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, services.FavoriteAdd, "Favorite Added!")
}

// Delete removes a story from the addressed user's favorites. Removing a
// story that was never favorited is a no-op.
func (h *FavoriteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, services.FavoriteDelete, "Favorite Removed!")
}

func (h *FavoriteHandler) mutate(w http.ResponseWriter, r *http.Request, action services.FavoriteAction, message string) {
	username := chi.URLParam(r, "username")
	if err := requireSelf(r, username); err != nil {
		RespondError(w, err)
		return
	}
	if _, err := h.users.ReadUser(r.Context(), username); err != nil {
		RespondError(w, err)
		return
	}

	// The public id must resolve to the internal reference; this is also
	// where a favorite against a nonexistent story turns into a 404.
	ref, err := h.stories.ResolveInternalRef(r.Context(), chi.URLParam(r, "storyId"))
	if err != nil {
		RespondError(w, err)
		return
	}

	user, err := h.users.AddOrDeleteFavorite(r.Context(), username, ref, action)
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, favoriteResponse{Message: message, User: user})
}
