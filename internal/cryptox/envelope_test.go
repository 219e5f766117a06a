package cryptox

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dmitrijs2005/sealbox/internal/common"
)

// sealWithIterations mirrors SealFile with a caller-chosen iteration count so
// tamper sweeps do not pay the full production KDF cost per probe.
func sealWithIterations(t *testing.T, plain, password []byte, iterations int) *FileEnvelope {
	t.Helper()
	salt := common.GenerateRandByteArray(SaltSize)
	encKey, macKey, err := deriveFileKeys(password, salt, iterations)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gcm, err := newGCM(encKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nonce := common.GenerateRandByteArray(NonceSize)
	ciphertext := gcm.Seal(nil, nonce, plain, nil)
	return &FileEnvelope{
		Version:    FileEnvelopeVersion,
		Iterations: iterations,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
		MAC:        envelopeMAC(macKey, FileEnvelopeVersion, iterations, salt, nonce, ciphertext),
	}
}

func TestSealOpenFile_RoundTrip(t *testing.T) {
	plain := []byte("file contents worth protecting")
	password := []byte("correct horse battery staple")

	env, err := SealFile(plain, password)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Version != FileEnvelopeVersion || env.Iterations != DefaultIterations {
		t.Errorf("unexpected envelope parameters: %+v", env)
	}
	if len(env.Salt) != SaltSize || len(env.Nonce) != NonceSize || len(env.MAC) != MACSize {
		t.Errorf("unexpected envelope field lengths: %+v", env)
	}

	got, err := OpenFile(env, password)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(plain, got) {
		t.Errorf("expected %q after round trip, got %q", plain, got)
	}
}

func TestSealFile_FreshSaltPerCall(t *testing.T) {
	plain := []byte("same bytes")
	password := []byte("correct horse battery staple")

	env1, err := SealFile(plain, password)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env2, err := SealFile(plain, password)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bytes.Equal(env1.Salt, env2.Salt) {
		t.Errorf("expected a fresh salt per seal")
	}
	if bytes.Equal(env1.Ciphertext, env2.Ciphertext) {
		t.Errorf("expected different ciphertexts per seal")
	}
}

func TestOpenFile_WrongPassword(t *testing.T) {
	env := sealWithIterations(t, []byte("secret"), []byte("right password"), 1000)

	got, err := OpenFile(env, []byte("wrong password"))
	if !errors.Is(err, common.ErrAuthenticationFailed) {
		t.Errorf("expected ErrAuthenticationFailed, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no plaintext on failure, got %q", got)
	}
}

func TestOpenFile_TamperedBits(t *testing.T) {
	password := []byte("correct horse battery staple")
	env := sealWithIterations(t, []byte("secret"), password, 500)

	fields := []struct {
		name string
		data func(*FileEnvelope) []byte
	}{
		{"salt", func(e *FileEnvelope) []byte { return e.Salt }},
		{"nonce", func(e *FileEnvelope) []byte { return e.Nonce }},
		{"ciphertext", func(e *FileEnvelope) []byte { return e.Ciphertext }},
		{"mac", func(e *FileEnvelope) []byte { return e.MAC }},
	}

	for _, f := range fields {
		orig := f.data(env)
		for i := range orig {
			for bit := uint(0); bit < 8; bit++ {
				clone := *env
				mutated := make([]byte, len(orig))
				copy(mutated, orig)
				mutated[i] ^= 1 << bit
				switch f.name {
				case "salt":
					clone.Salt = mutated
				case "nonce":
					clone.Nonce = mutated
				case "ciphertext":
					clone.Ciphertext = mutated
				case "mac":
					clone.MAC = mutated
				}
				got, err := OpenFile(&clone, password)
				if !errors.Is(err, common.ErrAuthenticationFailed) {
					t.Fatalf("%s byte %d bit %d: expected ErrAuthenticationFailed, got %v", f.name, i, bit, err)
				}
				if got != nil {
					t.Fatalf("%s byte %d bit %d: expected no plaintext", f.name, i, bit)
				}
			}
		}
	}
}

func TestOpenFile_TamperedParameters(t *testing.T) {
	password := []byte("correct horse battery staple")
	env := sealWithIterations(t, []byte("secret"), password, 1000)

	t.Run("iterations", func(t *testing.T) {
		clone := *env
		clone.Iterations = env.Iterations + 1
		if _, err := OpenFile(&clone, password); !errors.Is(err, common.ErrAuthenticationFailed) {
			t.Errorf("expected ErrAuthenticationFailed, got %v", err)
		}
	})

	t.Run("version", func(t *testing.T) {
		clone := *env
		clone.Version = FileEnvelopeVersion + 1
		if _, err := OpenFile(&clone, password); !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestOpenFile_Validation(t *testing.T) {
	password := []byte("pw")

	tests := []struct {
		name string
		env  *FileEnvelope
	}{
		{"nil envelope", nil},
		{"short salt", &FileEnvelope{Version: 1, Iterations: 1000, Salt: []byte{1}, Nonce: make([]byte, NonceSize), MAC: make([]byte, MACSize)}},
		{"bad nonce length", &FileEnvelope{Version: 1, Iterations: 1000, Salt: make([]byte, SaltSize), Nonce: []byte{1}, MAC: make([]byte, MACSize)}},
		{"missing mac", &FileEnvelope{Version: 1, Iterations: 1000, Salt: make([]byte, SaltSize), Nonce: make([]byte, NonceSize)}},
		{"zero iterations", &FileEnvelope{Version: 1, Salt: make([]byte, SaltSize), Nonce: make([]byte, NonceSize), MAC: make([]byte, MACSize)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := OpenFile(tt.env, password); !errors.Is(err, common.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	t.Run("empty password", func(t *testing.T) {
		if _, err := SealFile([]byte("data"), nil); !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
