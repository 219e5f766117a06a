package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/dmitrijs2005/sealbox/internal/common"
)

// FileEnvelopeVersion is the current envelope format version.
const FileEnvelopeVersion = 1

// FileEnvelope is a self-contained sealed file: everything needed to decrypt
// it again, except the password, travels with it. The MAC covers the version,
// the KDF parameters, the salt, the nonce and the ciphertext, so tampering
// with any of them is detected before decryption is attempted.
type FileEnvelope struct {
	Version    int    `json:"version"`
	Iterations int    `json:"iterations"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
	MAC        []byte `json:"mac"`
}

func envelopeMAC(macKey []byte, version, iterations int, salt, nonce, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, macKey)
	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], uint32(version))
	mac.Write(u32[:])
	binary.BigEndian.PutUint32(u32[:], uint32(iterations))
	mac.Write(u32[:])
	mac.Write(salt)
	mac.Write(nonce)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}

// SealFile encrypts plain under password. A fresh random salt is drawn per
// call; the confidentiality key and the MAC key are separate labeled
// derivations from it, and the MAC binds the ciphertext to the envelope
// metadata.
func SealFile(plain, password []byte) (*FileEnvelope, error) {
	salt := common.GenerateRandByteArray(SaltSize)
	encKey, macKey, err := deriveFileKeys(password, salt, DefaultIterations)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(encKey)
	defer common.WipeByteArray(macKey)

	gcm, err := newGCM(encKey)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(NonceSize)
	ciphertext := gcm.Seal(nil, nonce, plain, nil)

	return &FileEnvelope{
		Version:    FileEnvelopeVersion,
		Iterations: DefaultIterations,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
		MAC:        envelopeMAC(macKey, FileEnvelopeVersion, DefaultIterations, salt, nonce, ciphertext),
	}, nil
}

// OpenFile verifies and decrypts an envelope sealed by SealFile. The MAC is
// checked before any decryption. A wrong password and a tampered envelope
// are indistinguishable to the caller: both return
// common.ErrAuthenticationFailed.
func OpenFile(env *FileEnvelope, password []byte) ([]byte, error) {
	if env == nil {
		return nil, fmt.Errorf("%w: nil envelope", common.ErrInvalidInput)
	}
	if env.Version != FileEnvelopeVersion {
		return nil, fmt.Errorf("%w: unsupported envelope version %d", common.ErrInvalidInput, env.Version)
	}
	if env.Iterations < 1 {
		return nil, fmt.Errorf("%w: bad iteration count", common.ErrInvalidInput)
	}
	if len(env.Salt) < MinSaltSize || len(env.Nonce) != NonceSize || len(env.MAC) != MACSize {
		return nil, fmt.Errorf("%w: malformed envelope", common.ErrInvalidInput)
	}

	encKey, macKey, err := deriveFileKeys(password, env.Salt, env.Iterations)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(encKey)
	defer common.WipeByteArray(macKey)

	want := envelopeMAC(macKey, env.Version, env.Iterations, env.Salt, env.Nonce, env.Ciphertext)
	if !hmac.Equal(env.MAC, want) {
		return nil, common.ErrAuthenticationFailed
	}

	gcm, err := newGCM(encKey)
	if err != nil {
		return nil, err
	}
	plain, err := gcm.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, common.ErrAuthenticationFailed
	}
	return plain, nil
}
