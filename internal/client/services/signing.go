package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/sealbox/internal/cryptox"
	"github.com/dmitrijs2005/sealbox/internal/filex"
)

const (
	privateKeyFile = "sealbox_signing.pem"
	publicKeyFile  = "sealbox_signing.pub.pem"
)

// SigningService produces and checks detached signatures over local files.
// Keys live in PEM files owned by the user; nothing is sent to the server.
type SigningService interface {
	Keygen(dir string) (privateKeyPath, publicKeyPath string, err error)
	Sign(messagePath, privateKeyPath string) (signaturePath string, err error)
	Verify(messagePath, signaturePath, publicKeyPath string) (bool, error)
}

type signingService struct{}

// NewSigningService constructs a SigningService.
func NewSigningService() SigningService {
	return &signingService{}
}

// Keygen writes a fresh P-256 keypair into dir. The private key file is
// readable by the owner only.
func (s *signingService) Keygen(dir string) (string, string, error) {
	kp, err := cryptox.GenerateSigningKeys()
	if err != nil {
		return "", "", err
	}

	privateKeyPath := filepath.Join(dir, privateKeyFile)
	if err := filex.WriteSecret(privateKeyPath, cryptox.PrivateKeyPEM(kp.PrivateKey)); err != nil {
		return "", "", err
	}

	publicKeyPath := filepath.Join(dir, publicKeyFile)
	if err := os.WriteFile(publicKeyPath, cryptox.PublicKeyPEM(kp.PublicKey), 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", publicKeyPath, err)
	}

	return privateKeyPath, publicKeyPath, nil
}

// Sign writes a detached signature over messagePath to messagePath + ".sig".
func (s *signingService) Sign(messagePath, privateKeyPath string) (string, error) {
	keyPEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return "", fmt.Errorf("read private key: %w", err)
	}
	privateKey, err := cryptox.ParsePrivateKeyPEM(keyPEM)
	if err != nil {
		return "", err
	}

	msg, err := os.ReadFile(messagePath)
	if err != nil {
		return "", fmt.Errorf("read message: %w", err)
	}

	sig, err := cryptox.Sign(privateKey, msg)
	if err != nil {
		return "", err
	}

	signaturePath := messagePath + ".sig"
	if err := os.WriteFile(signaturePath, sig, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", signaturePath, err)
	}
	return signaturePath, nil
}

// Verify checks a detached signature. Malformed keys or signatures verify
// as false, not as errors; errors are reserved for unreadable files.
func (s *signingService) Verify(messagePath, signaturePath, publicKeyPath string) (bool, error) {
	keyPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return false, fmt.Errorf("read public key: %w", err)
	}
	publicKey, err := cryptox.ParsePublicKeyPEM(keyPEM)
	if err != nil {
		return false, err
	}

	msg, err := os.ReadFile(messagePath)
	if err != nil {
		return false, fmt.Errorf("read message: %w", err)
	}
	sig, err := os.ReadFile(signaturePath)
	if err != nil {
		return false, fmt.Errorf("read signature: %w", err)
	}

	return cryptox.Verify(publicKey, msg, sig), nil
}
