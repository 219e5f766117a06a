package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/sealbox/internal/client/api"
	"github.com/dmitrijs2005/sealbox/internal/common"
	"github.com/dmitrijs2005/sealbox/internal/cryptox"
	"github.com/dmitrijs2005/sealbox/internal/filex"
	"github.com/dmitrijs2005/sealbox/internal/netx"
)

// SealedExt is appended to locally sealed files.
const SealedExt = ".sealed"

// FileService seals local files into password-protected envelopes and moves
// them to and from the server's object storage. The server only ever sees
// envelope bytes; sealing and opening happen on this machine.
type FileService interface {
	Seal(path string, password []byte) (string, error)
	Open(path string, password []byte) (string, error)
	Upload(ctx context.Context, path string, password []byte) (string, error)
	Download(ctx context.Context, id string, password []byte, destDir string) (string, error)
	List(ctx context.Context) ([]api.FileInfo, error)
	Delete(ctx context.Context, id string) error
}

type fileService struct {
	client api.Client
}

// NewFileService constructs a FileService bound to the given API client.
func NewFileService(client api.Client) FileService {
	return &fileService{client: client}
}

// sealToEnvelope reads a local file and seals it into serialized envelope bytes.
func sealToEnvelope(path string, password []byte) ([]byte, error) {
	plain, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	env, err := cryptox.SealFile(plain, password)
	if err != nil {
		return nil, err
	}

	blob, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return blob, nil
}

// openEnvelope parses serialized envelope bytes and opens them.
func openEnvelope(blob, password []byte) ([]byte, error) {
	var env cryptox.FileEnvelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, fmt.Errorf("%w: not a sealed envelope: %s", common.ErrInvalidInput, err)
	}
	return cryptox.OpenFile(&env, password)
}

// Seal encrypts path into a self-describing envelope next to the original,
// named path + ".sealed". The original is left in place.
func (s *fileService) Seal(path string, password []byte) (string, error) {
	blob, err := sealToEnvelope(path, password)
	if err != nil {
		return "", err
	}

	out := path + SealedExt
	if err := filex.WriteSecret(out, blob); err != nil {
		return "", err
	}
	return out, nil
}

// Open decrypts a sealed envelope file. The output drops the ".sealed"
// suffix, or gains ".opened" when the input was named differently.
func (s *fileService) Open(path string, password []byte) (string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	plain, err := openEnvelope(blob, password)
	if err != nil {
		return "", err
	}

	out := strings.TrimSuffix(path, SealedExt)
	if out == path {
		out = path + ".opened"
	}
	if err := filex.WriteSecret(out, plain); err != nil {
		return "", err
	}
	return out, nil
}

// Upload seals path and stores the envelope on the server: create the file
// record, PUT the envelope to the presigned URL, then mark it uploaded.
// Returns the new file id.
func (s *fileService) Upload(ctx context.Context, path string, password []byte) (string, error) {
	blob, err := sealToEnvelope(path, password)
	if err != nil {
		return "", err
	}

	id, uploadURL, err := s.client.CreateFile(ctx, filepath.Base(path))
	if err != nil {
		return "", err
	}

	if err := netx.UploadToPresignedURL(ctx, uploadURL, blob); err != nil {
		return "", fmt.Errorf("upload envelope: %w", err)
	}

	if err := s.client.MarkUploaded(ctx, id, int64(len(blob))); err != nil {
		return "", err
	}
	return id, nil
}

// Download fetches a stored envelope, opens it with the password, and writes
// the plaintext under the file's original name in destDir. Returns the
// output path.
func (s *fileService) Download(ctx context.Context, id string, password []byte, destDir string) (string, error) {
	files, err := s.client.ListFiles(ctx)
	if err != nil {
		return "", err
	}
	var name string
	for _, f := range files {
		if f.ID == id {
			name = f.Name
			break
		}
	}
	if name == "" {
		return "", fmt.Errorf("%w: file %s", common.ErrorNotFound, id)
	}

	downloadURL, err := s.client.GetDownloadURL(ctx, id)
	if err != nil {
		return "", err
	}

	blob, err := netx.DownloadFromPresignedURL(ctx, downloadURL)
	if err != nil {
		return "", fmt.Errorf("download envelope: %w", err)
	}

	plain, err := openEnvelope(blob, password)
	if err != nil {
		return "", err
	}

	out := filepath.Join(destDir, filepath.Base(name))
	if err := filex.WriteSecret(out, plain); err != nil {
		return "", err
	}
	return out, nil
}

// List returns the stored file records.
func (s *fileService) List(ctx context.Context) ([]api.FileInfo, error) {
	return s.client.ListFiles(ctx)
}

// Delete removes a stored file and its record.
func (s *fileService) Delete(ctx context.Context, id string) error {
	return s.client.DeleteFile(ctx, id)
}
