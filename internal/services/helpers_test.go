package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/storyhub-app/storyhub-be/internal/database"
	"github.com/storyhub-app/storyhub-be/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func mustCreateUser(t *testing.T, s *UserService, username string) models.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), username, "Test "+username, "hunter2")
	require.NoError(t, err)
	return user
}

func mustCreateStory(t *testing.T, s *StoryService, username, title string) models.Story {
	t.Helper()
	story, err := s.CreateStory(context.Background(), username, title, "https://example.com/"+title, username)
	require.NoError(t, err)
	return story
}
