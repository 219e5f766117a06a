package cli

import (
	"context"
	"log"
	"os"
)

// Keygen generates a fresh signing keypair, prompting for the target
// directory (the working directory when left empty). Key files keep fixed
// names, so a second keygen in the same directory overwrites the pair.
func (a *App) Keygen(ctx context.Context) error {
	dir, err := getSimpleText(a.reader, "Enter key directory (empty for current)", os.Stdout)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = "."
	}

	privPath, pubPath, err := a.signingService.Keygen(dir)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	log.Printf("Private key saved to: %s", privPath)
	log.Printf("Public key saved to: %s", pubPath)
	return nil
}

// SignFile creates a detached signature for a file, prompting for the file
// and the private key path.
func (a *App) SignFile(ctx context.Context) error {
	msgPath, err := getSimpleText(a.reader, "Enter file to sign", os.Stdout)
	if err != nil {
		return err
	}
	keyPath, err := getSimpleText(a.reader, "Enter private key path", os.Stdout)
	if err != nil {
		return err
	}

	sigPath, err := a.signingService.Sign(msgPath, keyPath)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	log.Printf("Signature saved to: %s", sigPath)
	return nil
}

// VerifyFile checks a detached signature, prompting for the file, the
// signature path (file path + ".sig" when left empty), and the public key.
func (a *App) VerifyFile(ctx context.Context) error {
	msgPath, err := getSimpleText(a.reader, "Enter file to verify", os.Stdout)
	if err != nil {
		return err
	}
	sigPath, err := getSimpleText(a.reader, "Enter signature path (empty for <file>.sig)", os.Stdout)
	if err != nil {
		return err
	}
	if sigPath == "" {
		sigPath = msgPath + ".sig"
	}
	keyPath, err := getSimpleText(a.reader, "Enter public key path", os.Stdout)
	if err != nil {
		return err
	}

	ok, err := a.signingService.Verify(msgPath, sigPath, keyPath)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if ok {
		log.Printf("Signature OK")
	} else {
		log.Printf("Signature INVALID")
	}
	return nil
}
