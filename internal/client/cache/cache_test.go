package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sealbox/internal/common"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "sealbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestAuth_RoundTrip(t *testing.T) {
	c := newTestCache(t)

	in := &OfflineAuth{
		Username:   "mary",
		Salt:       []byte("0123456789abcdef"),
		Iterations: 210000,
		Verifier:   []byte("verifier-bytes"),
	}
	require.NoError(t, c.SaveAuth(in))

	out, err := c.GetAuth()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestGetAuth_EmptyCache(t *testing.T) {
	c := newTestCache(t)

	_, err := c.GetAuth()
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSaveAuth_Validation(t *testing.T) {
	c := newTestCache(t)

	require.ErrorIs(t, c.SaveAuth(nil), common.ErrInvalidInput)
	require.ErrorIs(t, c.SaveAuth(&OfflineAuth{}), common.ErrInvalidInput)
}

func TestVault_RoundTrip(t *testing.T) {
	c := newTestCache(t)

	in := &CachedVault{Nonce: []byte("twelve-b-non"), Ciphertext: []byte("sealed blob"), Version: 5}
	require.NoError(t, c.SaveVault(in))

	out, err := c.GetVault()
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// A later snapshot overwrites the previous one.
	in.Version = 6
	in.Ciphertext = []byte("newer sealed blob")
	require.NoError(t, c.SaveVault(in))

	out, err = c.GetVault()
	require.NoError(t, err)
	assert.Equal(t, int64(6), out.Version)
	assert.Equal(t, []byte("newer sealed blob"), out.Ciphertext)
}

func TestGetVault_EmptyCache(t *testing.T) {
	c := newTestCache(t)

	_, err := c.GetVault()
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestClear(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.SaveAuth(&OfflineAuth{Username: "mary", Salt: []byte("s"), Iterations: 1, Verifier: []byte("v")}))
	require.NoError(t, c.SaveVault(&CachedVault{Nonce: []byte("n"), Ciphertext: []byte("c"), Version: 1}))

	require.NoError(t, c.Clear())

	_, err := c.GetAuth()
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = c.GetVault()
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sealbox.db")

	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.SaveAuth(&OfflineAuth{Username: "mary", Salt: []byte("salt"), Iterations: 42, Verifier: []byte("v")}))
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	out, err := c.GetAuth()
	require.NoError(t, err)
	assert.Equal(t, "mary", out.Username)
	assert.Equal(t, 42, out.Iterations)
}
