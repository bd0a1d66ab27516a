package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	// WAL mode for better concurrent read performance
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err = db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
//
// user_stories is the owner's ordered reference list and favorites is a set
// (composite primary key). Neither carries a foreign key to stories: the
// favorite set operations accept an opaque reference and do not check that
// it still resolves, which keeps the store-level semantics lax on purpose.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stories (
		id TEXT NOT NULL PRIMARY KEY,
		story_id TEXT NOT NULL UNIQUE,
		author TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		username TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_stories_username ON stories(username);
	CREATE INDEX IF NOT EXISTS idx_stories_created_at ON stories(created_at);

	CREATE TABLE IF NOT EXISTS user_stories (
		username TEXT NOT NULL,
		story_ref TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (username, story_ref)
	);

	CREATE TABLE IF NOT EXISTS favorites (
		username TEXT NOT NULL,
		story_ref TEXT NOT NULL,
		PRIMARY KEY (username, story_ref)
	);

	CREATE INDEX IF NOT EXISTS idx_favorites_story_ref ON favorites(story_ref);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
