package domain

import "time"

// Post is the owning entity for committed files. Files holds the ordered
// sequence of FileRecord IDs; every entry must reference an existing record.
type Post struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creator_id"`
	Content   string    `json:"content"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileIndex returns the position of fileID in the Files sequence, or -1.
func (p *Post) FileIndex(fileID string) int {
	for i, id := range p.Files {
		if id == fileID {
			return i
		}
	}
	return -1
}
