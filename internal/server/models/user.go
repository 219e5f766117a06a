// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a credential record: the salt and KDF parameters the client needs
// to re-derive its keys, and the verifier proving password knowledge. The
// server never sees the password or the vault encryption key.
type User struct {
	ID         string
	UserName   string
	Salt       []byte
	Verifier   []byte
	Iterations int
	CreatedAt  time.Time
}
