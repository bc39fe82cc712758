package domain

import "time"

// StagedFile describes one upload written to the staging area but not yet
// committed. It is owned exclusively by the staging area: the only exits are
// a commit (rename into the permanent store) or deletion by the temp reaper.
type StagedFile struct {
	FieldName    string `json:"field_name"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
}

// StagedEntry is one immediate entry of the staging area as seen by the
// reaper. ModTime is the expiry clock; staged entries are write-once, so
// their modification time equals their creation time.
type StagedEntry struct {
	Name    string
	ModTime time.Time
}

// PurgeFailure records one file that could not be removed during a purge.
type PurgeFailure struct {
	FileID string `json:"file_id"`
	Reason string `json:"reason"`
}

// PurgeReport lists per-file outcomes of a purge so callers can retry
// exactly the failures. Successes are never rolled back.
type PurgeReport struct {
	Removed []string       `json:"removed"`
	Failed  []PurgeFailure `json:"failed"`
}
