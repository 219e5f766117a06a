package models

import "time"

// VaultRecord is a user's encrypted vault blob as stored: opaque nonce and
// ciphertext plus a server-assigned version. Replacements must present the
// version they read; a stale version is a conflict, not a silent overwrite.
type VaultRecord struct {
	UserID     string
	Nonce      []byte
	Ciphertext []byte
	Version    int64
	UpdatedAt  time.Time
}
