package cryptox

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/dmitrijs2005/sealbox/internal/common"
)

// SigningKeyPair holds DER-encoded ECDSA P-256 keys: the public key as
// SubjectPublicKeyInfo, the private key as PKCS#8.
type SigningKeyPair struct {
	PublicKey  []byte `json:"public_key"`
	PrivateKey []byte `json:"private_key"`
}

// GenerateSigningKeys creates a fresh P-256 keypair.
func GenerateSigningKeys() (*SigningKeyPair, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("keygen: %w", err)
	}
	pub, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("encode public key: %w", err)
	}
	pk, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("encode private key: %w", err)
	}
	return &SigningKeyPair{PublicKey: pub, PrivateKey: pk}, nil
}

// Sign produces an ASN.1 DER ECDSA signature over SHA-256(msg) using a
// PKCS#8 private key.
func Sign(privateKey, msg []byte) ([]byte, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: not a PKCS#8 private key", common.ErrInvalidInput)
	}
	priv, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an ECDSA private key", common.ErrInvalidInput)
	}
	digest := sha256.Sum256(msg)
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return sig, nil
}

// Verify reports whether sig is a valid signature over msg for the given
// SubjectPublicKeyInfo public key. It is a pure predicate: malformed keys,
// malformed signatures and honest mismatches all just return false.
func Verify(publicKey, msg, sig []byte) bool {
	parsed, err := x509.ParsePKIXPublicKey(publicKey)
	if err != nil {
		return false
	}
	pub, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return false
	}
	digest := sha256.Sum256(msg)
	return ecdsa.VerifyASN1(pub, digest[:], sig)
}

// PublicKeyPEM renders a SubjectPublicKeyInfo key as a PEM block.
func PublicKeyPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

// PrivateKeyPEM renders a PKCS#8 key as a PEM block.
func PrivateKeyPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

// ParsePublicKeyPEM extracts the DER bytes from a PUBLIC KEY PEM block.
func ParsePublicKeyPEM(data []byte) ([]byte, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("%w: not a PUBLIC KEY PEM block", common.ErrInvalidInput)
	}
	return block.Bytes, nil
}

// ParsePrivateKeyPEM extracts the DER bytes from a PRIVATE KEY PEM block.
func ParsePrivateKeyPEM(data []byte) ([]byte, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("%w: not a PRIVATE KEY PEM block", common.ErrInvalidInput)
	}
	return block.Bytes, nil
}
