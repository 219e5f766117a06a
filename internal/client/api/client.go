// Package api is the HTTP client for the sealbox server. It carries the
// access/refresh token pair, retries transient transport failures with
// exponential backoff, and transparently refreshes an expired access token
// once before giving up on a call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/sealbox/internal/common"
	"github.com/dmitrijs2005/sealbox/internal/cryptox"
)

// Client defines the server operations the CLI services depend on.
type Client interface {
	Close() error
	Session() (accessToken, refreshToken string)
	SetSession(accessToken, refreshToken string)
	Register(ctx context.Context, username string, salt, verifier []byte, iterations int, initialVault *cryptox.Vault) error
	GetSalt(ctx context.Context, username string) ([]byte, int, error)
	Login(ctx context.Context, username string, verifier []byte) error
	Ping(ctx context.Context) error
	GetVault(ctx context.Context) (*VaultSnapshot, error)
	ReplaceVault(ctx context.Context, v *cryptox.Vault, version int64) (int64, error)
	CreateFile(ctx context.Context, name string) (id, uploadURL string, err error)
	ListFiles(ctx context.Context) ([]FileInfo, error)
	GetDownloadURL(ctx context.Context, id string) (string, error)
	MarkUploaded(ctx context.Context, id string, size int64) error
	DeleteFile(ctx context.Context, id string) error
}

// VaultSnapshot is the server's current encrypted vault plus the version the
// client must echo back on the next replace.
type VaultSnapshot struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
	Version    int64  `json:"version"`
}

// FileInfo describes one stored file record.
type FileInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	UploadStatus string    `json:"upload_status"`
	CreatedAt    time.Time `json:"created_at"`
}

type vaultPayload struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

type registerRequest struct {
	Username   string        `json:"username"`
	Salt       []byte        `json:"salt"`
	Verifier   []byte        `json:"verifier"`
	Iterations int           `json:"iterations"`
	Vault      *vaultPayload `json:"vault,omitempty"`
}

type saltRequest struct {
	Username string `json:"username"`
}

type saltResponse struct {
	Salt       []byte `json:"salt"`
	Iterations int    `json:"iterations"`
}

type loginRequest struct {
	Username string `json:"username"`
	Verifier []byte `json:"verifier"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type replaceVaultRequest struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
	Version    int64  `json:"version"`
}

type replaceVaultResponse struct {
	Version int64 `json:"version"`
}

type createFileRequest struct {
	Name string `json:"name"`
}

type createFileResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UploadURL string `json:"upload_url"`
}

type listFilesResponse struct {
	Files []FileInfo `json:"files"`
}

type markUploadedRequest struct {
	Size int64 `json:"size"`
}

type downloadResponse struct {
	DownloadURL string `json:"download_url"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// HTTPClient implements Client over the server's JSON API.
type HTTPClient struct {
	baseURL      string
	httpClient   *http.Client
	retry        *RetryConfig
	accessToken  string
	refreshToken string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the given endpoint address. A bare
// host:port is treated as plain http.
func NewHTTPClient(endpointAddr string) (*HTTPClient, error) {
	if endpointAddr == "" {
		return nil, fmt.Errorf("%w: empty endpoint address", common.ErrInvalidInput)
	}
	baseURL := endpointAddr
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry:      DefaultRetryConfig(),
	}, nil
}

// SetHTTPClient sets a custom HTTP client.
func (c *HTTPClient) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Session returns the current token pair so callers can persist it.
func (c *HTTPClient) Session() (accessToken, refreshToken string) {
	return c.accessToken, c.refreshToken
}

// SetSession restores a previously saved token pair.
func (c *HTTPClient) SetSession(accessToken, refreshToken string) {
	c.accessToken = accessToken
	c.refreshToken = refreshToken
}

// Close releases idle connections. Token state stays intact.
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// do performs one API call. The body is marshalled once; a fresh request is
// built per attempt so retries never reuse a consumed reader. Transient
// failures (connect errors and retryable statuses) back off and retry,
// everything else is terminal for the call. Exhausted retries and network
// errors come back wrapped in ErrUnavailable.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, result any, authed bool) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	for attempt := 0; ; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if authed {
			req.Header.Set(common.AccessTokenHeaderName, "Bearer "+c.accessToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if attempt < c.retry.MaxRetries {
				if werr := c.retry.Wait(ctx, attempt); werr != nil {
					return werr
				}
				continue
			}
			return fmt.Errorf("%w: %s", ErrUnavailable, err)
		}

		if resp.StatusCode >= 400 {
			apiErr := parseErrorResponse(resp)
			resp.Body.Close()
			if c.retry.ShouldRetry(attempt, resp.StatusCode) {
				if werr := c.retry.Wait(ctx, attempt); werr != nil {
					return werr
				}
				continue
			}
			if c.retry.RetryableOn(resp.StatusCode) {
				return fmt.Errorf("%w: %s", ErrUnavailable, apiErr)
			}
			return apiErr
		}

		if result != nil {
			err = json.NewDecoder(resp.Body).Decode(result)
		}
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

// doAuthed calls do with the access token attached. On a 401 caused by an
// expired access token it refreshes the pair once and repeats the call;
// any other failure is returned as is.
func (c *HTTPClient) doAuthed(ctx context.Context, method, path string, body, result any) error {
	err := c.do(ctx, method, path, body, result, true)
	if err == nil {
		return nil
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		return err
	}
	if !strings.Contains(apiErr.Message, common.ErrTokenExpired.Error()) {
		return err
	}
	if c.refreshToken == "" {
		return err
	}

	if err := c.refreshSession(ctx); err != nil {
		return err
	}
	return c.do(ctx, method, path, body, result, true)
}

func (c *HTTPClient) refreshSession(ctx context.Context) error {
	var resp tokenResponse
	req := refreshRequest{RefreshToken: c.refreshToken}
	if err := c.do(ctx, http.MethodPost, "/api/token/refresh", req, &resp, false); err != nil {
		return c.mapError(err)
	}
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	return nil
}

func parseErrorResponse(resp *http.Response) *Error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &Error{StatusCode: resp.StatusCode, Message: errResp.Error}
	}
	return &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

// mapError classifies API errors into the sentinels callers match on.
// Status codes with an operation-specific meaning (409) are mapped at the
// call sites that know the operation.
func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	default:
		return apiErr
	}
}

// Register creates an account. A duplicate username maps to
// common.ErrorAlreadyExists.
func (c *HTTPClient) Register(ctx context.Context, username string, salt, verifier []byte, iterations int, initialVault *cryptox.Vault) error {
	req := registerRequest{Username: username, Salt: salt, Verifier: verifier, Iterations: iterations}
	if initialVault != nil {
		req.Vault = &vaultPayload{Nonce: initialVault.Nonce, Ciphertext: initialVault.Ciphertext}
	}
	if err := c.do(ctx, http.MethodPost, "/api/register", req, nil, false); err != nil {
		if isStatus(err, http.StatusConflict) {
			return common.ErrorAlreadyExists
		}
		return c.mapError(err)
	}
	return nil
}

// GetSalt returns the salt and KDF iteration count for a username. The
// server answers for unknown names too, so absence is not observable here.
func (c *HTTPClient) GetSalt(ctx context.Context, username string) ([]byte, int, error) {
	var resp saltResponse
	if err := c.do(ctx, http.MethodPost, "/api/salt", saltRequest{Username: username}, &resp, false); err != nil {
		return nil, 0, c.mapError(err)
	}
	return resp.Salt, resp.Iterations, nil
}

// Login exchanges a verifier for a token pair and stores it on the client.
func (c *HTTPClient) Login(ctx context.Context, username string, verifier []byte) error {
	var resp tokenResponse
	req := loginRequest{Username: username, Verifier: verifier}
	if err := c.do(ctx, http.MethodPost, "/api/login", req, &resp, false); err != nil {
		return c.mapError(err)
	}
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	return nil
}

// Ping reports whether the server is reachable and healthy.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp statusResponse
	if err := c.do(ctx, http.MethodGet, "/api/ping", nil, &resp, false); err != nil {
		return fmt.Errorf("%w: ping failed", ErrUnavailable)
	}
	if resp.Status != "OK" {
		return fmt.Errorf("%w: unexpected ping status %q", ErrUnavailable, resp.Status)
	}
	return nil
}

// GetVault fetches the caller's encrypted vault. No vault stored yet maps
// to common.ErrorNotFound.
func (c *HTTPClient) GetVault(ctx context.Context) (*VaultSnapshot, error) {
	var resp VaultSnapshot
	if err := c.doAuthed(ctx, http.MethodGet, "/api/vault", nil, &resp); err != nil {
		return nil, c.mapError(err)
	}
	return &resp, nil
}

// ReplaceVault swaps the stored vault for v, guarded by the version the
// client last saw. A stale version maps to common.ErrVersionConflict.
func (c *HTTPClient) ReplaceVault(ctx context.Context, v *cryptox.Vault, version int64) (int64, error) {
	req := replaceVaultRequest{Nonce: v.Nonce, Ciphertext: v.Ciphertext, Version: version}
	var resp replaceVaultResponse
	if err := c.doAuthed(ctx, http.MethodPut, "/api/vault", req, &resp); err != nil {
		if isStatus(err, http.StatusConflict) {
			return 0, common.ErrVersionConflict
		}
		return 0, c.mapError(err)
	}
	return resp.Version, nil
}

// CreateFile registers a file record and returns its id plus a presigned
// upload URL.
func (c *HTTPClient) CreateFile(ctx context.Context, name string) (string, string, error) {
	var resp createFileResponse
	if err := c.doAuthed(ctx, http.MethodPost, "/api/files", createFileRequest{Name: name}, &resp); err != nil {
		return "", "", c.mapError(err)
	}
	return resp.ID, resp.UploadURL, nil
}

// ListFiles returns the caller's file records.
func (c *HTTPClient) ListFiles(ctx context.Context) ([]FileInfo, error) {
	var resp listFilesResponse
	if err := c.doAuthed(ctx, http.MethodGet, "/api/files", nil, &resp); err != nil {
		return nil, c.mapError(err)
	}
	return resp.Files, nil
}

// GetDownloadURL returns a presigned GET URL for a stored file.
func (c *HTTPClient) GetDownloadURL(ctx context.Context, id string) (string, error) {
	var resp downloadResponse
	if err := c.doAuthed(ctx, http.MethodGet, "/api/files/"+id, nil, &resp); err != nil {
		return "", c.mapError(err)
	}
	return resp.DownloadURL, nil
}

// MarkUploaded records that the object behind a file record was stored.
func (c *HTTPClient) MarkUploaded(ctx context.Context, id string, size int64) error {
	req := markUploadedRequest{Size: size}
	if err := c.doAuthed(ctx, http.MethodPost, "/api/files/"+id+"/uploaded", req, nil); err != nil {
		return c.mapError(err)
	}
	return nil
}

// DeleteFile removes a file record and its stored object.
func (c *HTTPClient) DeleteFile(ctx context.Context, id string) error {
	if err := c.doAuthed(ctx, http.MethodDelete, "/api/files/"+id, nil, nil); err != nil {
		return c.mapError(err)
	}
	return nil
}
