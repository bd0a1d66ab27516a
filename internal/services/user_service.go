package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/storyhub-app/storyhub-be/internal/apierror"
	"github.com/storyhub-app/storyhub-be/internal/models"
)

// FavoriteAction selects between adding and removing a favorite reference.
type FavoriteAction string

const (
	FavoriteAdd    FavoriteAction = "add"
	FavoriteDelete FavoriteAction = "delete"
)

// UserPatch carries the updatable user fields. Nil means "leave unchanged".
type UserPatch struct {
	Name     *string
	Password *string
}

// DeletedUser is the confirmation returned by DeleteUser.
type DeletedUser struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(ctx context.Context, username, name, password string) (models.User, error)
	ReadUser(ctx context.Context, username string) (models.User, error)
	ReadUsers(ctx context.Context, skip, limit int) ([]models.UserSummary, error)
	UpdateUser(ctx context.Context, username string, patch UserPatch) (models.User, error)
	DeleteUser(ctx context.Context, username string) (DeletedUser, error)
	AddOrDeleteFavorite(ctx context.Context, username, storyRef string, action FavoriteAction) (models.User, error)
	RemoveFavoriteFromAll(ctx context.Context, storyRef string) error
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	AddStoryRef(ctx context.Context, username, storyRef string, at time.Time) error
	RemoveStoryRef(ctx context.Context, username, storyRef string) error
}

// UserService provides business logic for user management. It owns the
// users table and the stories/favorites reference lists.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

func userNotFound(username string) *apierror.Error {
	return apierror.NotFound("User Not Found", fmt.Sprintf("No user '%s' found.", username))
}

// CreateUser creates a new user, hashing their password. The username must
// be unused; the match is case-sensitive and exact.
func (s *UserService) CreateUser(ctx context.Context, username, name, password string) (models.User, error) {
	var existing string
	err := s.db.QueryRowContext(ctx, "SELECT username FROM users WHERE username = ?", username).Scan(&existing)
	if err == nil {
		return models.User{}, apierror.Conflict("User Already Exists",
			fmt.Sprintf("There is already a user with username '%s'.", existing))
	}
	if err != sql.ErrNoRows {
		return models.User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.New().String(),
		Username:  username,
		Name:      name,
		Stories:   []models.Story{},
		Favorites: []models.Story{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users(id, username, name, password_hash, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Name, string(hashed), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ReadUser retrieves a single user with their stories and favorites resolved
// into full embedded story records. The password hash is never carried out.
func (s *UserService) ReadUser(ctx context.Context, username string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, name, created_at, updated_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, userNotFound(username)
		}
		return models.User{}, err
	}
	if err := s.populate(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ReadUsers lists users sorted by username ascending. The password and the
// stories/favorites reference lists are always excluded.
func (s *UserService) ReadUsers(ctx context.Context, skip, limit int) ([]models.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT username, name, created_at, updated_at FROM users ORDER BY username ASC LIMIT ? OFFSET ?",
		limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.Username, &u.Name, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser applies a patch to a user. A new password is re-hashed before
// it is persisted. Patches touching username, stories or favorites are
// rejected upstream by the schema validator.
func (s *UserService) UpdateUser(ctx context.Context, username string, patch UserPatch) (models.User, error) {
	sets := "updated_at = ?"
	args := []any{time.Now().UTC()}

	if patch.Name != nil {
		sets += ", name = ?"
		args = append(args, *patch.Name)
	}
	if patch.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		sets += ", password_hash = ?"
		args = append(args, string(hashed))
	}
	args = append(args, username)

	res, err := s.db.ExecContext(ctx, "UPDATE users SET "+sets+" WHERE username = ?", args...)
	if err != nil {
		return models.User{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.User{}, err
	}
	if affected == 0 {
		return models.User{}, apierror.NotFound("User Not Found",
			fmt.Sprintf("No user with username '%s' found.", username))
	}
	return s.ReadUser(ctx, username)
}

// DeleteUser removes a user and their own reference rows. The user's posted
// stories are intentionally left in place.
func (s *UserService) DeleteUser(ctx context.Context, username string) (DeletedUser, error) {
	user, err := s.ReadUser(ctx, username)
	if err != nil {
		return DeletedUser{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DeletedUser{}, err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM users WHERE username = ?",
		"DELETE FROM user_stories WHERE username = ?",
		"DELETE FROM favorites WHERE username = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, username); err != nil {
			return DeletedUser{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return DeletedUser{}, err
	}

	return DeletedUser{
		Message: fmt.Sprintf("User '%s' successfully deleted.", username),
		User:    user,
	}, nil
}

// AddOrDeleteFavorite inserts or removes a story reference in the user's
// favorite set. Both directions are idempotent set operations. The reference
// itself is not checked for existence here; callers resolve public story ids
// first.
func (s *UserService) AddOrDeleteFavorite(ctx context.Context, username, storyRef string, action FavoriteAction) (models.User, error) {
	var exists string
	err := s.db.QueryRowContext(ctx, "SELECT username FROM users WHERE username = ?", username).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apierror.NotFound("User Not Found",
				fmt.Sprintf("No user with username '%s' found.", username))
		}
		return models.User{}, err
	}

	switch action {
	case FavoriteAdd:
		_, err = s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO favorites(username, story_ref) VALUES(?, ?)", username, storyRef)
	case FavoriteDelete:
		_, err = s.db.ExecContext(ctx,
			"DELETE FROM favorites WHERE username = ? AND story_ref = ?", username, storyRef)
	default:
		err = fmt.Errorf("unknown favorite action %q", action)
	}
	if err != nil {
		return models.User{}, err
	}

	return s.ReadUser(ctx, username)
}

// RemoveFavoriteFromAll removes a story reference from every user's favorite
// set. It is only reachable from the story deletion cascade.
func (s *UserService) RemoveFavoriteFromAll(ctx context.Context, storyRef string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM favorites WHERE story_ref = ?", storyRef)
	return err
}

// Authenticate verifies a user's credentials and returns the populated user.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT password_hash FROM users WHERE username = ?", username).Scan(&hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, userNotFound(username)
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.User{}, apierror.Unauthorized("Invalid password.")
	}
	return s.ReadUser(ctx, username)
}

// AddStoryRef appends a story reference to the owner's stories list. Used by
// the story service when a story is created.
func (s *UserService) AddStoryRef(ctx context.Context, username, storyRef string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO user_stories(username, story_ref, created_at) VALUES(?, ?, ?)",
		username, storyRef, at)
	return err
}

// RemoveStoryRef drops a story reference from the owner's stories list. Used
// by the story service's deletion cascade.
func (s *UserService) RemoveStoryRef(ctx context.Context, username, storyRef string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM user_stories WHERE username = ? AND story_ref = ?", username, storyRef)
	return err
}

// populate resolves the stories and favorites reference lists into full
// story records, preserving insertion order.
func (s *UserService) populate(ctx context.Context, user *models.User) error {
	stories, err := s.storiesByRefTable(ctx, "user_stories", user.Username)
	if err != nil {
		return err
	}
	favorites, err := s.storiesByRefTable(ctx, "favorites", user.Username)
	if err != nil {
		return err
	}
	user.Stories = stories
	user.Favorites = favorites
	return nil
}

func (s *UserService) storiesByRefTable(ctx context.Context, table, username string) ([]models.Story, error) {
	// table is one of the two fixed reference tables, never client input.
	query := fmt.Sprintf(`
		SELECT s.id, s.story_id, s.author, s.title, s.url, s.username, s.created_at, s.updated_at
		FROM %s r JOIN stories s ON s.id = r.story_ref
		WHERE r.username = ?
		ORDER BY r.rowid ASC`, table)

	rows, err := s.db.QueryContext(ctx, query, username)
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
