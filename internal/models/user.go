package models

import "time"

// User represents a user account in the system. Stories holds the stories
// this user posted, Favorites the stories they favorited; both are embedded
// full records when the user is read individually ("populated").
type User struct {
	ID           string    `json:"-"` // storage-internal identifier
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // never expose this to the client
	Stories      []Story   `json:"stories"`
	Favorites    []Story   `json:"favorites"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the listing shape: no password, no reference lists.
type UserSummary struct {
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
