package models

import "time"

type Photo struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	FolderID    *int64    `json:"folder_id,omitempty"` // null when the photo is not in a folder
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"` // could be empty
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
