// Package services contains application services for the sealbox CLI:
// authentication, vault manipulation, sealed file transfer and detached
// signatures. Services own no UI; the CLI layer prompts and prints.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sealbox/internal/client/api"
	"github.com/dmitrijs2005/sealbox/internal/client/cache"
	"github.com/dmitrijs2005/sealbox/internal/client/keyring"
	"github.com/dmitrijs2005/sealbox/internal/client/models"
	"github.com/dmitrijs2005/sealbox/internal/common"
	"github.com/dmitrijs2005/sealbox/internal/cryptox"
)

// Keyring access is indirected so tests never touch the OS keyring.
// A missing keyring (headless host) must never fail a login.
var (
	saveSession   = keyring.SaveSession
	deleteSession = keyring.DeleteSession
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - OnlineLogin: authenticate against the server and cache offline auth data.
//   - OfflineLogin: derive and verify credentials against locally cached data.
//   - Register: create a new user on the server with a sealed empty vault.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
//   - ClearOfflineData: wipe the local cache and the remembered session.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	OfflineLogin(ctx context.Context, username string, password []byte) ([]byte, error)
	OnlineLogin(ctx context.Context, username string, password []byte) ([]byte, error)
	Register(ctx context.Context, username string, password []byte) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	ClearOfflineData(ctx context.Context) error
}

// authService is the concrete AuthService backed by the remote API client
// and the local bbolt cache.
type authService struct {
	client api.Client
	cache  *cache.Cache
}

// NewAuthService constructs an AuthService bound to the given API client and cache.
func NewAuthService(client api.Client, cache *cache.Cache) AuthService {
	return &authService{client: client, cache: cache}
}

// OfflineLogin derives an encryption key from the password and the locally
// cached salt, then verifies it against the cached verifier. Returns the key
// on success. If no login was ever cached, returns
// api.ErrLocalDataNotAvailable; if verification fails, api.ErrUnauthorized.
func (a *authService) OfflineLogin(ctx context.Context, username string, password []byte) ([]byte, error) {
	saved, err := a.cache.GetAuth()
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, api.ErrLocalDataNotAvailable
		}
		return nil, fmt.Errorf("read offline auth: %w", err)
	}

	if saved.Username != username {
		return nil, api.ErrUnauthorized
	}

	encKeyCandidate, verifierCandidate, err := cryptox.DeriveCredential(password, saved.Salt, saved.Iterations)
	if err != nil {
		return nil, fmt.Errorf("derive credential: %w", err)
	}

	if subtle.ConstantTimeCompare(saved.Verifier, verifierCandidate) == 0 {
		common.WipeByteArray(encKeyCandidate)
		return nil, api.ErrUnauthorized
	}
	return encKeyCandidate, nil
}

// OnlineLogin authenticates against the server, caches the offline auth
// material, remembers the session in the OS keyring, and returns the derived
// encryption key.
func (a *authService) OnlineLogin(ctx context.Context, username string, password []byte) ([]byte, error) {
	salt, iterations, err := a.client.GetSalt(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get salt error: %w", err)
	}

	encKey, verifier, err := cryptox.DeriveCredential(password, salt, iterations)
	if err != nil {
		return nil, fmt.Errorf("derive credential: %w", err)
	}

	if err := a.client.Login(ctx, username, verifier); err != nil {
		common.WipeByteArray(encKey)
		return nil, fmt.Errorf("login error: %w", err)
	}

	auth := &cache.OfflineAuth{Username: username, Salt: salt, Iterations: iterations, Verifier: verifier}
	if err := a.cache.SaveAuth(auth); err != nil {
		common.WipeByteArray(encKey)
		return nil, fmt.Errorf("offline data saving error: %w", err)
	}

	if _, refreshToken := a.client.Session(); refreshToken != "" {
		// Best effort: a headless host may have no keyring at all.
		_ = saveSession(username, refreshToken)
	}

	return encKey, nil
}

// Register creates a new account on the server. It generates a random salt,
// derives the credential pair from the password, seals an empty vault under
// the encryption key, and sends salt, verifier and vault to the server. The
// password never leaves the machine.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	salt := common.GenerateRandByteArray(cryptox.SaltSize)

	encKey, verifier, err := cryptox.DeriveCredential(password, salt, cryptox.DefaultIterations)
	if err != nil {
		return fmt.Errorf("derive credential: %w", err)
	}
	defer common.WipeByteArray(encKey)

	initialVault, err := cryptox.EncryptVault([]models.Envelope{}, encKey)
	if err != nil {
		return fmt.Errorf("seal initial vault: %w", err)
	}

	if err := a.client.Register(ctx, username, salt, verifier, cryptox.DefaultIterations, initialVault); err != nil {
		return err
	}
	return nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

// ClearOfflineData wipes the local cache and forgets the keyring session
// (e.g. on logout).
func (a *authService) ClearOfflineData(ctx context.Context) error {
	if saved, err := a.cache.GetAuth(); err == nil {
		_ = deleteSession(saved.Username)
	}
	return a.cache.Clear()
}
