package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/sealbox/internal/common"
	"github.com/dmitrijs2005/sealbox/internal/filex"
)

// SealFile encrypts a local file into a sealed envelope next to the
// original, prompting for the path and a file password. The password is
// independent of the account password and is wiped before returning.
func (a *App) SealFile(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Enter file path", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter file password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	out, err := a.fileService.Seal(path, password)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	log.Printf("Sealed file saved to: %s", out)
	return nil
}

// OpenFile decrypts a sealed envelope back into a plain file, prompting for
// the path and the file password.
func (a *App) OpenFile(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Enter sealed file path", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter file password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	out, err := a.fileService.Open(path, password)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	log.Printf("File saved to: %s", out)
	return nil
}

// UploadFile seals a local file and stores the envelope on the server.
// The file never leaves the machine unencrypted.
func (a *App) UploadFile(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Enter file path", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter file password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.fileService.Upload(ctx, path, password)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	log.Printf("Uploaded, file id: %s", id)
	return nil
}

// DownloadFile fetches a stored envelope by ID and opens it into a local
// directory ("download" under the working directory unless another one is
// given).
func (a *App) DownloadFile(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter file id", os.Stdout)
	if err != nil {
		return err
	}
	dest, err := getSimpleText(a.reader, "Enter destination dir (empty for ./download)", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter file password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if dest == "" {
		dest, err = filex.EnsureSubDir("download")
		if err != nil {
			return err
		}
	}

	out, err := a.fileService.Download(ctx, id, password, dest)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	log.Printf("File saved to: %s", out)
	return nil
}

// ListFiles prints one line per uploaded file: id, name, size and status.
func (a *App) ListFiles(ctx context.Context) error {
	files, err := a.fileService.List(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	for _, f := range files {
		fmt.Printf("%s  %s  %d bytes  [%s]\n", f.ID, f.Name, f.Size, f.UploadStatus)
	}
	return nil
}

// DeleteFile removes a stored file by ID, prompting the user for it.
func (a *App) DeleteFile(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter file id to delete", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.fileService.Delete(ctx, id); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	return nil
}
