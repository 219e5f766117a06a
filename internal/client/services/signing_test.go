package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeygen_WritesPEMFiles(t *testing.T) {
	svc := NewSigningService()
	dir := t.TempDir()

	privPath, pubPath, err := svc.Keygen(dir)
	require.NoError(t, err)

	priv, err := os.ReadFile(privPath)
	require.NoError(t, err)
	assert.Contains(t, string(priv), "BEGIN PRIVATE KEY")

	pub, err := os.ReadFile(pubPath)
	require.NoError(t, err)
	assert.Contains(t, string(pub), "BEGIN PUBLIC KEY")

	st, err := os.Stat(privPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm(), "private key must be owner-only")
}

func TestSignVerify_RoundTrip(t *testing.T) {
	svc := NewSigningService()
	dir := t.TempDir()

	privPath, pubPath, err := svc.Keygen(dir)
	require.NoError(t, err)

	msgPath := filepath.Join(dir, "release.tar.gz")
	require.NoError(t, os.WriteFile(msgPath, []byte("artifact bytes"), 0o600))

	sigPath, err := svc.Sign(msgPath, privPath)
	require.NoError(t, err)
	assert.Equal(t, msgPath+".sig", sigPath)

	ok, err := svc.Verify(msgPath, sigPath, pubPath)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_TamperedMessage(t *testing.T) {
	svc := NewSigningService()
	dir := t.TempDir()

	privPath, pubPath, err := svc.Keygen(dir)
	require.NoError(t, err)

	msgPath := filepath.Join(dir, "msg.txt")
	require.NoError(t, os.WriteFile(msgPath, []byte("original"), 0o600))

	sigPath, err := svc.Sign(msgPath, privPath)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(msgPath, []byte("orig1nal"), 0o600))

	ok, err := svc.Verify(msgPath, sigPath, pubPath)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_WrongKey(t *testing.T) {
	svc := NewSigningService()
	dir := t.TempDir()

	privPath, _, err := svc.Keygen(dir)
	require.NoError(t, err)

	otherDir := t.TempDir()
	_, otherPub, err := svc.Keygen(otherDir)
	require.NoError(t, err)

	msgPath := filepath.Join(dir, "msg.txt")
	require.NoError(t, os.WriteFile(msgPath, []byte("message"), 0o600))

	sigPath, err := svc.Sign(msgPath, privPath)
	require.NoError(t, err)

	ok, err := svc.Verify(msgPath, sigPath, otherPub)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSign_MissingKeyFile(t *testing.T) {
	svc := NewSigningService()
	dir := t.TempDir()

	msgPath := filepath.Join(dir, "msg.txt")
	require.NoError(t, os.WriteFile(msgPath, []byte("message"), 0o600))

	_, err := svc.Sign(msgPath, filepath.Join(dir, "nope.pem"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read private key")
}
