// Package keyring remembers the refresh token between CLI runs using the
// OS keyring. Only the session survives; the vault key is re-derived from
// the password every time and is never stored anywhere.
package keyring

import (
	"github.com/zalando/go-keyring"
)

const serviceName = "sealbox"

// SaveSession stores the refresh token for a username.
func SaveSession(username, refreshToken string) error {
	return keyring.Set(serviceName, username, refreshToken)
}

// GetSession retrieves the stored refresh token for a username.
func GetSession(username string) (string, error) {
	return keyring.Get(serviceName, username)
}

// DeleteSession removes the stored refresh token for a username.
func DeleteSession(username string) error {
	return keyring.Delete(serviceName, username)
}

// HasSession checks whether a refresh token is stored for a username.
func HasSession(username string) bool {
	_, err := keyring.Get(serviceName, username)
	return err == nil
}
