// Package cryptox implements the sealbox cryptographic core: password-based
// key derivation, the encrypted vault codec, the sealed file envelope, and
// detached ECDSA signatures.
//
// Every operation here is a pure transform from explicit inputs to explicit
// outputs or a tagged failure; no state is kept between calls. All random
// material comes from crypto/rand.
package cryptox

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/dmitrijs2005/sealbox/internal/common"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of freshly generated KDF salts.
	SaltSize = 16
	// MinSaltSize is the shortest salt accepted when re-deriving keys.
	MinSaltSize = 8
	// KeySize is the AES-256 key length.
	KeySize = 32
	// NonceSize is the AES-GCM nonce length.
	NonceSize = 12
	// MACSize is the HMAC-SHA256 output length.
	MACSize = 32
	// DefaultIterations is the PBKDF2 round count for new derivations
	// (OWASP floor for PBKDF2-HMAC-SHA256).
	DefaultIterations = 210000
)

// Derivation labels. Each derived key comes from its own labeled HKDF
// expansion of the PBKDF2 root, so no derived value can be computed from
// another: in particular a stored verifier is useless for reconstructing
// the vault encryption key.
const (
	labelVaultKey = "sealbox:vault-key:v1"
	labelVerifier = "sealbox:verifier:v1"
	labelFileKey  = "sealbox:file-key:v1"
	labelFileMAC  = "sealbox:file-mac:v1"
)

// DeriveRootKey stretches (password, salt) into a 32-byte root key using
// PBKDF2-HMAC-SHA256 with the given iteration count.
func DeriveRootKey(password, salt []byte, iterations int) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: empty password", common.ErrInvalidInput)
	}
	if len(salt) < MinSaltSize {
		return nil, fmt.Errorf("%w: salt must be at least %d bytes", common.ErrInvalidInput, MinSaltSize)
	}
	if iterations < 1 {
		return nil, fmt.Errorf("%w: iteration count must be positive", common.ErrInvalidInput)
	}
	return pbkdf2.Key(password, salt, iterations, KeySize, sha256.New), nil
}

// expandKey derives a 32-byte subkey from root via HKDF-Expand with the
// given label as info.
func expandKey(root []byte, label string) ([]byte, error) {
	r := hkdf.Expand(sha256.New, root, []byte(label))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("key expansion: %w", err)
	}
	return key, nil
}

// DeriveCredential produces the vault encryption key and the login verifier
// for (password, salt). Both come from one PBKDF2 root but through
// independently labeled expansions; the server stores only the verifier and
// can never recover the encryption key from it.
//
// The same inputs always produce the same outputs, so a client can re-derive
// its credential from the password and the salt stored by the identity
// store, with no other side channel.
func DeriveCredential(password, salt []byte, iterations int) (encKey, verifier []byte, err error) {
	root, err := DeriveRootKey(password, salt, iterations)
	if err != nil {
		return nil, nil, err
	}
	defer common.WipeByteArray(root)

	encKey, err = expandKey(root, labelVaultKey)
	if err != nil {
		return nil, nil, err
	}
	verifier, err = expandKey(root, labelVerifier)
	if err != nil {
		common.WipeByteArray(encKey)
		return nil, nil, err
	}
	return encKey, verifier, nil
}

// deriveFileKeys produces the confidentiality and integrity keys for a file
// envelope. One salt, one PBKDF2 root, two labeled expansions: the MAC key
// is independent of the encryption key.
func deriveFileKeys(password, salt []byte, iterations int) (encKey, macKey []byte, err error) {
	root, err := DeriveRootKey(password, salt, iterations)
	if err != nil {
		return nil, nil, err
	}
	defer common.WipeByteArray(root)

	encKey, err = expandKey(root, labelFileKey)
	if err != nil {
		return nil, nil, err
	}
	macKey, err = expandKey(root, labelFileMAC)
	if err != nil {
		common.WipeByteArray(encKey)
		return nil, nil, err
	}
	return encKey, macKey, nil
}
