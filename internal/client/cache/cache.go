// Package cache is the client's local bbolt store. It keeps the minimum
// needed to work without the server: the offline-login credential material
// and the last encrypted vault the client saw. Nothing in the file is
// usable without the user's password; the verifier cannot decrypt anything.
package cache

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/dmitrijs2005/sealbox/internal/common"
)

var (
	authBucket  = []byte("auth")
	vaultBucket = []byte("vault")
)

var (
	keyUsername   = []byte("username")
	keySalt       = []byte("salt")
	keyIterations = []byte("iterations")
	keyVerifier   = []byte("verifier")

	keyNonce      = []byte("nonce")
	keyCiphertext = []byte("ciphertext")
	keyVersion    = []byte("version")
)

// OfflineAuth is the credential material cached after a successful online
// login. Salt and iterations re-derive the key from a password; the
// verifier checks the result without contacting the server.
type OfflineAuth struct {
	Username   string
	Salt       []byte
	Iterations int
	Verifier   []byte
}

// CachedVault is the last encrypted vault snapshot fetched from the server,
// stored as received. Version feeds the next optimistic replace.
type CachedVault struct {
	Nonce      []byte
	Ciphertext []byte
	Version    int64
}

// Cache wraps the bbolt database file.
type Cache struct {
	db *bolt.DB
}

// Open opens or creates the cache file and makes sure both buckets exist.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{authBucket, vaultBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveAuth stores the offline-login material in one transaction.
func (c *Cache) SaveAuth(a *OfflineAuth) error {
	if a == nil || a.Username == "" {
		return fmt.Errorf("%w: empty offline auth", common.ErrInvalidInput)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(authBucket)
		if err := b.Put(keyUsername, []byte(a.Username)); err != nil {
			return err
		}
		if err := b.Put(keySalt, a.Salt); err != nil {
			return err
		}
		var iters [4]byte
		binary.BigEndian.PutUint32(iters[:], uint32(a.Iterations))
		if err := b.Put(keyIterations, iters[:]); err != nil {
			return err
		}
		return b.Put(keyVerifier, a.Verifier)
	})
}

// GetAuth loads the cached offline-login material. Returns
// common.ErrorNotFound when no login was cached yet.
func (c *Cache) GetAuth() (*OfflineAuth, error) {
	var a OfflineAuth
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(authBucket)
		username := b.Get(keyUsername)
		if username == nil {
			return common.ErrorNotFound
		}
		a.Username = string(username)
		// Copies: bucket slices are only valid inside the transaction.
		a.Salt = append([]byte(nil), b.Get(keySalt)...)
		a.Verifier = append([]byte(nil), b.Get(keyVerifier)...)
		if iters := b.Get(keyIterations); len(iters) == 4 {
			a.Iterations = int(binary.BigEndian.Uint32(iters))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SaveVault stores the encrypted vault snapshot in one transaction.
func (c *Cache) SaveVault(v *CachedVault) error {
	if v == nil {
		return fmt.Errorf("%w: nil vault", common.ErrInvalidInput)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(vaultBucket)
		if err := b.Put(keyNonce, v.Nonce); err != nil {
			return err
		}
		if err := b.Put(keyCiphertext, v.Ciphertext); err != nil {
			return err
		}
		var version [8]byte
		binary.BigEndian.PutUint64(version[:], uint64(v.Version))
		return b.Put(keyVersion, version[:])
	})
}

// GetVault loads the cached encrypted vault. Returns common.ErrorNotFound
// when nothing was cached yet.
func (c *Cache) GetVault() (*CachedVault, error) {
	var v CachedVault
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(vaultBucket)
		ciphertext := b.Get(keyCiphertext)
		if ciphertext == nil {
			return common.ErrorNotFound
		}
		v.Ciphertext = append([]byte(nil), ciphertext...)
		v.Nonce = append([]byte(nil), b.Get(keyNonce)...)
		if version := b.Get(keyVersion); len(version) == 8 {
			v.Version = int64(binary.BigEndian.Uint64(version))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Clear wipes both buckets. Used on logout so the next user of the machine
// cannot even see that a vault existed.
func (c *Cache) Clear() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{authBucket, vaultBucket} {
			if err := tx.DeleteBucket(bucket); err != nil {
				return fmt.Errorf("delete bucket %s: %w", bucket, err)
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return fmt.Errorf("recreate bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}
