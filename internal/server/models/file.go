package models

import "time"

// Upload states for a file object.
const (
	UploadStatusPending   = "pending"
	UploadStatusCompleted = "completed"
)

// File is server-side metadata for one sealed envelope kept in object
// storage. The envelope is sealed client-side; the server never holds a key
// that could open it.
type File struct {
	ID           string
	UserID       string
	Name         string
	Size         int64
	StorageKey   string
	UploadStatus string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
