package models

import "time"

// RefreshToken is a server-stored, single-use token. Each refresh rotates
// it: the presented token is deleted and a new one issued.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
