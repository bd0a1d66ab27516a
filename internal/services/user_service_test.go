package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyhub-app/storyhub-be/internal/apierror"
)

func TestCreateUser_StripsPassword(t *testing.T) {
	users := NewUserService(newTestDB(t))

	user, err := users.CreateUser(context.Background(), "ann", "Ann", "p1")
	require.NoError(t, err)

	assert.Equal(t, "ann", user.Username)
	assert.Empty(t, user.PasswordHash)
	assert.NotEmpty(t, user.ID)
	assert.Empty(t, user.Stories)
	assert.Empty(t, user.Favorites)
}

func TestCreateUser_DuplicateUsernameConflicts(t *testing.T) {
	users := NewUserService(newTestDB(t))
	mustCreateUser(t, users, "ann")

	// Other fields differing does not matter; the username is taken.
	_, err := users.CreateUser(context.Background(), "ann", "Another Ann", "differentpw")
	require.Error(t, err)

	apiErr := apierror.From(err)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "User Already Exists", apiErr.Title)
	assert.Equal(t, "There is already a user with username 'ann'.", apiErr.Detail)
}

func TestReadUser_NotFound(t *testing.T) {
	users := NewUserService(newTestDB(t))

	_, err := users.ReadUser(context.Background(), "ghost")
	require.Error(t, err)
	apiErr := apierror.From(err)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "No user 'ghost' found.", apiErr.Detail)
}

func TestReadUser_PopulatesStoriesAndFavorites(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	stories := NewStoryService(db, users)
	mustCreateUser(t, users, "ann")
	mustCreateUser(t, users, "bob")

	posted := mustCreateStory(t, stories, "ann", "first")
	other := mustCreateStory(t, stories, "bob", "second")

	ref, err := stories.ResolveInternalRef(context.Background(), other.StoryID)
	require.NoError(t, err)
	_, err = users.AddOrDeleteFavorite(context.Background(), "ann", ref, FavoriteAdd)
	require.NoError(t, err)

	user, err := users.ReadUser(context.Background(), "ann")
	require.NoError(t, err)

	require.Len(t, user.Stories, 1)
	assert.Equal(t, posted.StoryID, user.Stories[0].StoryID)
	require.Len(t, user.Favorites, 1)
	assert.Equal(t, other.StoryID, user.Favorites[0].StoryID)
}

func TestReadUsers_SortedAndStripped(t *testing.T) {
	users := NewUserService(newTestDB(t))
	for _, name := range []string{"zoe", "ann", "bob"} {
		mustCreateUser(t, users, name)
	}

	list, err := users.ReadUsers(context.Background(), 0, 25)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "ann", list[0].Username)
	assert.Equal(t, "bob", list[1].Username)
	assert.Equal(t, "zoe", list[2].Username)
}

func TestUpdateUser_RehashesPassword(t *testing.T) {
	users := NewUserService(newTestDB(t))
	mustCreateUser(t, users, "ann")

	newName := "Annabel"
	newPassword := "newsecret"
	updated, err := users.UpdateUser(context.Background(), "ann", UserPatch{Name: &newName, Password: &newPassword})
	require.NoError(t, err)
	assert.Equal(t, "Annabel", updated.Name)
	assert.Empty(t, updated.PasswordHash)

	// The old password stops working, the new one authenticates.
	_, err = users.Authenticate(context.Background(), "ann", "hunter2")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apierror.From(err).Status)

	_, err = users.Authenticate(context.Background(), "ann", "newsecret")
	assert.NoError(t, err)
}

func TestUpdateUser_NotFound(t *testing.T) {
	users := NewUserService(newTestDB(t))

	name := "x"
	_, err := users.UpdateUser(context.Background(), "ghost", UserPatch{Name: &name})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apierror.From(err).Status)
}

func TestDeleteUser_ReturnsConfirmationAndRecord(t *testing.T) {
	users := NewUserService(newTestDB(t))
	mustCreateUser(t, users, "ann")

	deleted, err := users.DeleteUser(context.Background(), "ann")
	require.NoError(t, err)
	assert.Equal(t, "User 'ann' successfully deleted.", deleted.Message)
	assert.Equal(t, "ann", deleted.User.Username)
	assert.Empty(t, deleted.User.PasswordHash)

	_, err = users.ReadUser(context.Background(), "ann")
	assert.Error(t, err)
}

func TestDeleteUser_DoesNotDeleteTheirStories(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	stories := NewStoryService(db, users)
	mustCreateUser(t, users, "ann")
	story := mustCreateStory(t, stories, "ann", "orphaned")

	_, err := users.DeleteUser(context.Background(), "ann")
	require.NoError(t, err)

	// The story survives with a dangling owner reference.
	got, err := stories.ReadStory(context.Background(), story.StoryID)
	require.NoError(t, err)
	assert.Equal(t, "ann", got.Username)
}

func TestAddFavorite_Idempotent(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	stories := NewStoryService(db, users)
	mustCreateUser(t, users, "ann")
	mustCreateUser(t, users, "bob")
	story := mustCreateStory(t, stories, "bob", "fav")

	ref, err := stories.ResolveInternalRef(context.Background(), story.StoryID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		user, err := users.AddOrDeleteFavorite(context.Background(), "ann", ref, FavoriteAdd)
		require.NoError(t, err)
		assert.Len(t, user.Favorites, 1)
	}
}

func TestDeleteFavorite_IdempotentOnAbsentReference(t *testing.T) {
	users := NewUserService(newTestDB(t))
	mustCreateUser(t, users, "ann")

	user, err := users.AddOrDeleteFavorite(context.Background(), "ann", "never-favorited", FavoriteDelete)
	require.NoError(t, err)
	assert.Empty(t, user.Favorites)
}

func TestAddFavorite_NoExistenceCheckOnReference(t *testing.T) {
	// The store accepts an opaque reference without verifying it resolves;
	// existence is the caller's concern via ResolveInternalRef.
	users := NewUserService(newTestDB(t))
	mustCreateUser(t, users, "ann")

	_, err := users.AddOrDeleteFavorite(context.Background(), "ann", "dangling-ref", FavoriteAdd)
	assert.NoError(t, err)
}

func TestAddFavorite_UserNotFound(t *testing.T) {
	users := NewUserService(newTestDB(t))

	_, err := users.AddOrDeleteFavorite(context.Background(), "ghost", "ref", FavoriteAdd)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apierror.From(err).Status)
}

func TestRemoveFavoriteFromAll(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	stories := NewStoryService(db, users)
	mustCreateUser(t, users, "poster")
	story := mustCreateStory(t, stories, "poster", "shared")
	ref, err := stories.ResolveInternalRef(context.Background(), story.StoryID)
	require.NoError(t, err)

	fans := []string{"ann", "bob", "cleo"}
	for _, fan := range fans {
		mustCreateUser(t, users, fan)
		_, err := users.AddOrDeleteFavorite(context.Background(), fan, ref, FavoriteAdd)
		require.NoError(t, err)
	}

	require.NoError(t, users.RemoveFavoriteFromAll(context.Background(), ref))

	for _, fan := range fans {
		user, err := users.ReadUser(context.Background(), fan)
		require.NoError(t, err)
		assert.Empty(t, user.Favorites, "favorites of %s", fan)
	}
}

func TestAuthenticate(t *testing.T) {
	users := NewUserService(newTestDB(t))
	mustCreateUser(t, users, "ann")

	user, err := users.Authenticate(context.Background(), "ann", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Username)
	assert.Empty(t, user.PasswordHash)

	_, err = users.Authenticate(context.Background(), "ann", "wrong")
	require.Error(t, err)
	apiErr := apierror.From(err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid password.", apiErr.Detail)

	_, err = users.Authenticate(context.Background(), "ghost", "hunter2")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apierror.From(err).Status)
}
