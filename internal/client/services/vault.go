package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/sealbox/internal/client/api"
	"github.com/dmitrijs2005/sealbox/internal/client/cache"
	"github.com/dmitrijs2005/sealbox/internal/client/models"
	"github.com/dmitrijs2005/sealbox/internal/common"
	"github.com/dmitrijs2005/sealbox/internal/cryptox"
)

// VaultService manipulates the user's entry collection. Every mutation is a
// whole-vault cycle: fetch the encrypted vault, decrypt, change the entry
// list, re-encrypt, replace on the server guarded by the version that was
// read. A concurrent writer surfaces as common.ErrVersionConflict; the
// service never merges.
//
// Reads fall back to the local cache when the server is unreachable;
// mutations require the server.
type VaultService interface {
	List(ctx context.Context, encKey []byte) ([]models.Overview, error)
	Get(ctx context.Context, id string, encKey []byte) (*models.Envelope, error)
	Add(ctx context.Context, envelope models.Envelope, encKey []byte) error
	DeleteByID(ctx context.Context, id string, encKey []byte) error
	Sync(ctx context.Context) error
}

type vaultService struct {
	client api.Client
	cache  *cache.Cache
}

// NewVaultService constructs a VaultService bound to the given API client and cache.
func NewVaultService(client api.Client, cache *cache.Cache) VaultService {
	return &vaultService{client: client, cache: cache}
}

// fetchSnapshot loads the current vault from the server and refreshes the
// local cache. An account without a vault yet reads as an empty snapshot at
// version 0, so the first replace creates it.
func (s *vaultService) fetchSnapshot(ctx context.Context) (*api.VaultSnapshot, error) {
	snap, err := s.client.GetVault(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &api.VaultSnapshot{Version: 0}, nil
		}
		return nil, err
	}

	cached := &cache.CachedVault{Nonce: snap.Nonce, Ciphertext: snap.Ciphertext, Version: snap.Version}
	if err := s.cache.SaveVault(cached); err != nil {
		return nil, fmt.Errorf("cache vault: %w", err)
	}
	return snap, nil
}

// loadSnapshot is fetchSnapshot with an offline fallback: when the server is
// unreachable the last cached snapshot is served instead. No cached copy
// means api.ErrLocalDataNotAvailable.
func (s *vaultService) loadSnapshot(ctx context.Context) (*api.VaultSnapshot, error) {
	snap, err := s.fetchSnapshot(ctx)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, api.ErrUnavailable) {
		return nil, err
	}

	cached, cerr := s.cache.GetVault()
	if cerr != nil {
		if errors.Is(cerr, common.ErrorNotFound) {
			return nil, api.ErrLocalDataNotAvailable
		}
		return nil, fmt.Errorf("read cached vault: %w", cerr)
	}
	return &api.VaultSnapshot{Nonce: cached.Nonce, Ciphertext: cached.Ciphertext, Version: cached.Version}, nil
}

// decryptEntries opens a snapshot into the entry list. A version-0 snapshot
// has no payload and decodes to an empty list.
func decryptEntries(snap *api.VaultSnapshot, encKey []byte) ([]models.Envelope, error) {
	if len(snap.Ciphertext) == 0 {
		return []models.Envelope{}, nil
	}
	var entries []models.Envelope
	v := &cryptox.Vault{Nonce: snap.Nonce, Ciphertext: snap.Ciphertext}
	if err := cryptox.DecryptVault(v, encKey, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// replaceEntries seals the entry list and swaps it onto the server, guarded
// by the version the caller read. On success the cache is updated to match.
func (s *vaultService) replaceEntries(ctx context.Context, entries []models.Envelope, encKey []byte, readVersion int64) error {
	sealed, err := cryptox.EncryptVault(entries, encKey)
	if err != nil {
		return fmt.Errorf("seal vault: %w", err)
	}

	newVersion, err := s.client.ReplaceVault(ctx, sealed, readVersion)
	if err != nil {
		return err
	}

	cached := &cache.CachedVault{Nonce: sealed.Nonce, Ciphertext: sealed.Ciphertext, Version: newVersion}
	if err := s.cache.SaveVault(cached); err != nil {
		return fmt.Errorf("cache vault: %w", err)
	}
	return nil
}

// List returns the overview of every entry, oldest first.
func (s *vaultService) List(ctx context.Context, encKey []byte) ([]models.Overview, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := decryptEntries(snap, encKey)
	if err != nil {
		return nil, err
	}

	result := make([]models.Overview, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.Overview())
	}
	return result, nil
}

// Get returns a single entry by id.
func (s *vaultService) Get(ctx context.Context, id string, encKey []byte) (*models.Envelope, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := decryptEntries(snap, encKey)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("%w: entry %s", common.ErrorNotFound, id)
}

// Add appends an entry and replaces the vault. An envelope without an ID is
// assigned a fresh one.
func (s *vaultService) Add(ctx context.Context, envelope models.Envelope, encKey []byte) error {
	snap, err := s.fetchSnapshot(ctx)
	if err != nil {
		return err
	}
	entries, err := decryptEntries(snap, encKey)
	if err != nil {
		return err
	}

	if envelope.ID == "" {
		envelope.ID = uuid.NewString()
	}
	entries = append(entries, envelope)

	return s.replaceEntries(ctx, entries, encKey, snap.Version)
}

// DeleteByID removes an entry and replaces the vault. A missing id is
// common.ErrorNotFound and leaves the vault untouched.
func (s *vaultService) DeleteByID(ctx context.Context, id string, encKey []byte) error {
	snap, err := s.fetchSnapshot(ctx)
	if err != nil {
		return err
	}
	entries, err := decryptEntries(snap, encKey)
	if err != nil {
		return err
	}

	kept := make([]models.Envelope, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return fmt.Errorf("%w: entry %s", common.ErrorNotFound, id)
	}

	return s.replaceEntries(ctx, kept, encKey, snap.Version)
}

// Sync refreshes the local cache from the server so offline reads serve the
// latest snapshot.
func (s *vaultService) Sync(ctx context.Context) error {
	_, err := s.fetchSnapshot(ctx)
	return err
}
