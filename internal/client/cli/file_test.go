package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/dmitrijs2005/sealbox/internal/client/api"
)

// stubTextQueue replaces getSimpleText with a stub returning the given
// answers in order. Commands that prompt more than once consume one answer
// per prompt.
func stubTextQueue(t *testing.T, answers ...string) {
	t.Helper()
	orig := getSimpleText
	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		a := answers[i]
		i++
		return a, nil
	}
	t.Cleanup(func() { getSimpleText = orig })
}

func stubFilePassword(t *testing.T, pw []byte) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ string, _ io.Writer) ([]byte, error) { return append([]byte(nil), pw...), nil }
	t.Cleanup(func() { getPassword = orig })
}

type fakeFS struct {
	sealPath string
	sealPw   []byte
	sealRet  string
	sealErr  error

	openPath string
	openPw   []byte
	openRet  string
	openErr  error

	upPath string
	upPw   []byte
	upID   string
	upErr  error

	dlID   string
	dlPw   []byte
	dlDest string
	dlRet  string
	dlErr  error

	listCalled bool
	listOut    []api.FileInfo
	listErr    error

	delID  string
	delErr error
}

func (f *fakeFS) Seal(path string, password []byte) (string, error) {
	f.sealPath, f.sealPw = path, append([]byte(nil), password...)
	return f.sealRet, f.sealErr
}
func (f *fakeFS) Open(path string, password []byte) (string, error) {
	f.openPath, f.openPw = path, append([]byte(nil), password...)
	return f.openRet, f.openErr
}
func (f *fakeFS) Upload(ctx context.Context, path string, password []byte) (string, error) {
	f.upPath, f.upPw = path, append([]byte(nil), password...)
	return f.upID, f.upErr
}
func (f *fakeFS) Download(ctx context.Context, id string, password []byte, destDir string) (string, error) {
	f.dlID, f.dlPw, f.dlDest = id, append([]byte(nil), password...), destDir
	return f.dlRet, f.dlErr
}
func (f *fakeFS) List(ctx context.Context) ([]api.FileInfo, error) {
	f.listCalled = true
	return f.listOut, f.listErr
}
func (f *fakeFS) Delete(ctx context.Context, id string) error {
	f.delID = id
	return f.delErr
}

func TestSealFile_PassesPathAndPassword(t *testing.T) {
	fs := &fakeFS{sealRet: "/tmp/x.sealed"}
	a := &App{fileService: fs}

	stubTextQueue(t, "/tmp/x")
	stubFilePassword(t, []byte("file-pw"))

	if err := a.SealFile(context.Background()); err != nil {
		t.Fatalf("SealFile err: %v", err)
	}
	if fs.sealPath != "/tmp/x" {
		t.Fatalf("path mismatch: %q", fs.sealPath)
	}
	if string(fs.sealPw) != "file-pw" {
		t.Fatalf("password mismatch: %q", string(fs.sealPw))
	}
}

func TestOpenFile_PassesPathAndPassword(t *testing.T) {
	fs := &fakeFS{openRet: "/tmp/x"}
	a := &App{fileService: fs}

	stubTextQueue(t, "/tmp/x.sealed")
	stubFilePassword(t, []byte("file-pw"))

	if err := a.OpenFile(context.Background()); err != nil {
		t.Fatalf("OpenFile err: %v", err)
	}
	if fs.openPath != "/tmp/x.sealed" {
		t.Fatalf("path mismatch: %q", fs.openPath)
	}
	if string(fs.openPw) != "file-pw" {
		t.Fatalf("password mismatch: %q", string(fs.openPw))
	}
}

func TestUploadFile_CallsService(t *testing.T) {
	fs := &fakeFS{upID: "file-123"}
	a := &App{fileService: fs}

	stubTextQueue(t, "/tmp/report.pdf")
	stubFilePassword(t, []byte("file-pw"))

	if err := a.UploadFile(context.Background()); err != nil {
		t.Fatalf("UploadFile err: %v", err)
	}
	if fs.upPath != "/tmp/report.pdf" {
		t.Fatalf("path mismatch: %q", fs.upPath)
	}
	if string(fs.upPw) != "file-pw" {
		t.Fatalf("password mismatch: %q", string(fs.upPw))
	}
}

func TestDownloadFile_UsesGivenDest(t *testing.T) {
	dest := t.TempDir()
	fs := &fakeFS{dlRet: dest + "/report.pdf"}
	a := &App{fileService: fs}

	stubTextQueue(t, "file-123", dest)
	stubFilePassword(t, []byte("file-pw"))

	if err := a.DownloadFile(context.Background()); err != nil {
		t.Fatalf("DownloadFile err: %v", err)
	}
	if fs.dlID != "file-123" {
		t.Fatalf("id mismatch: %q", fs.dlID)
	}
	if fs.dlDest != dest {
		t.Fatalf("dest mismatch: %q", fs.dlDest)
	}
	if string(fs.dlPw) != "file-pw" {
		t.Fatalf("password mismatch: %q", string(fs.dlPw))
	}
}

func TestListFiles_OK(t *testing.T) {
	fs := &fakeFS{listOut: []api.FileInfo{
		{ID: "1", Name: "a.sealed", Size: 10, UploadStatus: "uploaded"},
		{ID: "2", Name: "b.sealed", Size: 20, UploadStatus: "pending"},
	}}
	a := &App{fileService: fs}

	if err := a.ListFiles(context.Background()); err != nil {
		t.Fatalf("ListFiles err: %v", err)
	}
	if !fs.listCalled {
		t.Fatalf("List not called")
	}
}

func TestDeleteFile_PassesID(t *testing.T) {
	fs := &fakeFS{}
	a := &App{fileService: fs}

	stubTextQueue(t, "file-9")

	if err := a.DeleteFile(context.Background()); err != nil {
		t.Fatalf("DeleteFile err: %v", err)
	}
	if fs.delID != "file-9" {
		t.Fatalf("id mismatch: %q", fs.delID)
	}
}

func TestSealFile_ErrorPropagates(t *testing.T) {
	fs := &fakeFS{sealErr: errors.New("boom")}
	a := &App{fileService: fs}

	stubTextQueue(t, "/tmp/x")
	stubFilePassword(t, []byte("file-pw"))

	if err := a.SealFile(context.Background()); err == nil {
		t.Fatalf("want error from Seal to propagate")
	}
}
