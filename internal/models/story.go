package models

import "time"

// Story represents a posted story. ID is the storage-internal identifier
// used for reference lists; StoryID is the public, server-generated token.
type Story struct {
	ID        string    `json:"-"`
	StoryID   string    `json:"storyId"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
