package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storyhub-app/storyhub-be/internal/apierror"
	"github.com/storyhub-app/storyhub-be/internal/models"
)

// StoryPatch carries the updatable story fields. Nil means "leave unchanged".
type StoryPatch struct {
	Author *string
	Title  *string
	URL    *string
}

// DeletedStory is the confirmation returned by DeleteStory.
type DeletedStory struct {
	Status  int    `json:"status"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// StoryServiceProvider defines the interface for story services.
type StoryServiceProvider interface {
	CreateStory(ctx context.Context, author, title, url, username string) (models.Story, error)
	ReadStory(ctx context.Context, storyID string) (models.Story, error)
	ReadStories(ctx context.Context, skip, limit int) ([]models.Story, error)
	UpdateStory(ctx context.Context, storyID string, patch StoryPatch) (models.Story, error)
	DeleteStory(ctx context.Context, storyID string) (DeletedStory, error)
	ResolveInternalRef(ctx context.Context, storyID string) (string, error)
}

// StoryService provides business logic for story management. It is the
// source of truth for story existence and drives the deletion cascade that
// keeps user reference lists consistent.
type StoryService struct {
	db    *sql.DB
	users UserServiceProvider
}

// NewStoryService creates a new StoryService.
func NewStoryService(db *sql.DB, users UserServiceProvider) *StoryService {
	return &StoryService{db: db, users: users}
}

func storyNotFound(storyID string) *apierror.Error {
	return apierror.NotFound("Story Not Found", fmt.Sprintf("No story with ID '%s' found.", storyID))
}

// CreateStory persists a new story under a fresh public storyId and links it
// into the owner's stories list before returning. Public ids are never
// reused across deletions.
func (s *StoryService) CreateStory(ctx context.Context, author, title, url, username string) (models.Story, error) {
	now := time.Now().UTC()
	story := models.Story{
		ID:        uuid.New().String(),
		StoryID:   uuid.New().String(),
		Author:    author,
		Title:     title,
		URL:       url,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO stories(id, story_id, author, title, url, username, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?)",
		story.ID, story.StoryID, story.Author, story.Title, story.URL, story.Username,
		story.CreatedAt, story.UpdatedAt)
	if err != nil {
		return models.Story{}, err
	}

	// Link before returning so a story is never visible without the owner's
	// stories list catching up.
	if err := s.users.AddStoryRef(ctx, username, story.ID, now); err != nil {
		return models.Story{}, err
	}
	return story, nil
}

// ReadStory retrieves a single story by its public id.
func (s *StoryService) ReadStory(ctx context.Context, storyID string) (models.Story, error) {
	var st models.Story
	row := s.db.QueryRowContext(ctx,
		"SELECT id, story_id, author, title, url, username, created_at, updated_at FROM stories WHERE story_id = ?",
		storyID)
	err := row.Scan(&st.ID, &st.StoryID, &st.Author, &st.Title, &st.URL,
		&st.Username, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Story{}, storyNotFound(storyID)
		}
		return models.Story{}, err
	}
	return st, nil
}

// ReadStories lists stories most recent first. An empty page is an empty
// slice, not an error.
func (s *StoryService) ReadStories(ctx context.Context, skip, limit int) ([]models.Story, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, story_id, author, title, url, username, created_at, updated_at
		FROM stories
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stories := []models.Story{}
	for rows.Next() {
		var st models.Story
		if err := rows.Scan(&st.ID, &st.StoryID, &st.Author, &st.Title, &st.URL,
			&st.Username, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		stories = append(stories, st)
	}
	return stories, rows.Err()
}

// UpdateStory merges the patch into an existing story.
func (s *StoryService) UpdateStory(ctx context.Context, storyID string, patch StoryPatch) (models.Story, error) {
	sets := "updated_at = ?"
	args := []any{time.Now().UTC()}

	if patch.Author != nil {
		sets += ", author = ?"
		args = append(args, *patch.Author)
	}
	if patch.Title != nil {
		sets += ", title = ?"
		args = append(args, *patch.Title)
	}
	if patch.URL != nil {
		sets += ", url = ?"
		args = append(args, *patch.URL)
	}
	args = append(args, storyID)

	res, err := s.db.ExecContext(ctx, "UPDATE stories SET "+sets+" WHERE story_id = ?", args...)
	if err != nil {
		return models.Story{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Story{}, err
	}
	if affected == 0 {
		return models.Story{}, storyNotFound(storyID)
	}
	return s.ReadStory(ctx, storyID)
}

// DeleteStory removes a story and runs the consistency cascade: the owner's
// stories list drops the reference, then every user's favorites drop it. No
// user may hold a favorite reference to a deleted story.
func (s *StoryService) DeleteStory(ctx context.Context, storyID string) (DeletedStory, error) {
	story, err := s.ReadStory(ctx, storyID)
	if err != nil {
		return DeletedStory{}, err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM stories WHERE story_id = ?", storyID); err != nil {
		return DeletedStory{}, err
	}
	if err := s.users.RemoveStoryRef(ctx, story.Username, story.ID); err != nil {
		return DeletedStory{}, err
	}
	if err := s.users.RemoveFavoriteFromAll(ctx, story.ID); err != nil {
		return DeletedStory{}, err
	}

	return DeletedStory{
		Status:  200,
		Title:   "Story Deleted",
		Message: fmt.Sprintf("Story with ID '%s' successfully deleted.", storyID),
	}, nil
}

// ResolveInternalRef maps a public story id to the storage-internal
// reference used by the favorite set operations.
func (s *StoryService) ResolveInternalRef(ctx context.Context, storyID string) (string, error) {
	var ref string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM stories WHERE story_id = ?", storyID).Scan(&ref)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", storyNotFound(storyID)
		}
		return "", err
	}
	return ref, nil
}
