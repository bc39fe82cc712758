package domain

import "time"

// FileRecord is the persistent representation of a committed file.
// Path points into the permanent store and never changes after creation.
type FileRecord struct {
	ID           string    `json:"id"`
	PostID       string    `json:"post_id"`
	Path         string    `json:"path"`
	FieldName    string    `json:"field_name"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}
