package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/sealbox/internal/common"
)

// Vault is the encrypted form of a user's entry collection: a fresh GCM
// nonce and the ciphertext (tag included). Byte fields marshal to base64 in
// JSON, so a Vault is safe to embed in API payloads and store as text.
type Vault struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", common.ErrInvalidInput, KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm init: %w", err)
	}
	return gcm, nil
}

// EncryptVault serializes v as JSON and seals it with AES-256-GCM under key.
// Every call draws a fresh random nonce, so encrypting identical plaintext
// twice yields different ciphertexts.
func EncryptVault(v any, key []byte) (*Vault, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plain, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidInput, err)
	}
	nonce := common.GenerateRandByteArray(NonceSize)
	return &Vault{
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, plain, nil),
	}, nil
}

// DecryptVault opens v under key and unmarshals the plaintext into out.
// A wrong key, a truncated payload, or any modified bit yields
// common.ErrAuthenticationFailed; nothing is ever returned from a payload
// that failed authentication.
func DecryptVault(v *Vault, key []byte, out any) error {
	if v == nil {
		return fmt.Errorf("%w: nil vault", common.ErrInvalidInput)
	}
	gcm, err := newGCM(key)
	if err != nil {
		return err
	}
	if len(v.Nonce) != gcm.NonceSize() {
		return fmt.Errorf("%w: bad nonce length", common.ErrInvalidInput)
	}
	if len(v.Ciphertext) < gcm.Overhead() {
		return fmt.Errorf("%w: ciphertext too short", common.ErrInvalidInput)
	}
	plain, err := gcm.Open(nil, v.Nonce, v.Ciphertext, nil)
	if err != nil {
		return common.ErrAuthenticationFailed
	}
	defer common.WipeByteArray(plain)
	if err := json.Unmarshal(plain, out); err != nil {
		return fmt.Errorf("vault payload: %w", err)
	}
	return nil
}
