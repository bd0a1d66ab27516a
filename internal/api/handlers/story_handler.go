package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storyhub-app/storyhub-be/internal/apierror"
	"github.com/storyhub-app/storyhub-be/internal/auth"
	"github.com/storyhub-app/storyhub-be/internal/schemas"
	"github.com/storyhub-app/storyhub-be/internal/services"
)

// StoryHandler handles HTTP requests for story management.
type StoryHandler struct {
	stories services.StoryServiceProvider
	users   services.UserServiceProvider
}

// NewStoryHandler creates a new StoryHandler.
func NewStoryHandler(stories services.StoryServiceProvider, users services.UserServiceProvider) *StoryHandler {
	return &StoryHandler{stories: stories, users: users}
}

// List handles the paginated story listing, most recent first.
func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, apiErr := pagination(r)
	if apiErr != nil {
		RespondError(w, apiErr)
		return
	}
	stories, err := h.stories.ReadStories(r.Context(), skip, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stories)
}

// Create handles posting a new story. The owner is always the token
// identity and must still exist.
func (h *StoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		RespondError(w, apiErr)
		return
	}
	if apiErr := schemas.Validate(payload, schemas.StoryCreate); apiErr != nil {
		RespondError(w, apiErr)
		return
	}

	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		RespondError(w, apierror.Unauthorized("Missing or invalid auth token."))
		return
	}
	if _, err := h.users.ReadUser(r.Context(), username); err != nil {
		RespondError(w, err)
		return
	}

	author, _ := payload["author"].(string)
	title, _ := payload["title"].(string)
	url, _ := payload["url"].(string)

	story, err := h.stories.CreateStory(r.Context(), author, title, url, username)
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, story)
}

// Get handles retrieving a single story by its public id.
func (h *StoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	story, err := h.stories.ReadStory(r.Context(), chi.URLParam(r, "storyId"))
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, story)
}

// Update handles an owner-only story patch.
func (h *StoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, apiErr := decodeBody(r)
	if apiErr != nil {
		RespondError(w, apiErr)
		return
	}
	if apiErr := schemas.Validate(payload, schemas.StoryUpdate); apiErr != nil {
		RespondError(w, apiErr)
		return
	}

	storyID := chi.URLParam(r, "storyId")
	story, err := h.stories.ReadStory(r.Context(), storyID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if caller, _ := auth.UsernameFromContext(r.Context()); caller != story.Username {
		RespondError(w, apierror.Forbidden(
			"You are not the user who posted this story so you cannot update it."))
		return
	}

	patch := services.StoryPatch{
		Author: stringField(payload, "author"),
		Title:  stringField(payload, "title"),
		URL:    stringField(payload, "url"),
	}
	updated, err := h.stories.UpdateStory(r.Context(), storyID, patch)
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// Delete handles an owner-only story deletion with its consistency cascade.
func (h *StoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "storyId")
	story, err := h.stories.ReadStory(r.Context(), storyID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if caller, _ := auth.UsernameFromContext(r.Context()); caller != story.Username {
		RespondError(w, apierror.Forbidden(
			"You did not post that story so you are not allowed to delete it."))
		return
	}

	deleted, err := h.stories.DeleteStory(r.Context(), storyID)
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, deleted)
}
