package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/sealbox/internal/server/models"
)

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

type registerResponse struct {
	UserID string `json:"user_id"`
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

type vaultResponse struct {
	Nonce      []byte    `json:"nonce"`
	Ciphertext []byte    `json:"ciphertext"`
	Version    int64     `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type replaceVaultRequest struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
	Version    int64  `json:"version"`
}

type replaceVaultResponse struct {
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

type createFileRequest struct {
	Name string `json:"name"`
}

type createFileResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UploadURL string `json:"upload_url"`
}

type fileInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	UploadStatus string    `json:"upload_status"`
	CreatedAt    time.Time `json:"created_at"`
}

type listFilesResponse struct {
	Files []fileInfo `json:"files"`
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

func (s *HTTPServer) handlePing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "OK"})
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	var initialVault *models.VaultRecord
	if req.Vault != nil {
		initialVault = &models.VaultRecord{Nonce: req.Vault.Nonce, Ciphertext: req.Vault.Ciphertext}
	}

	s.logger.Info(r.Context(), "Registration request")

	u, err := s.users.Register(r.Context(), req.Username, req.Salt, req.Verifier, req.Iterations, initialVault)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", u.UserName)
	s.writeJSON(r.Context(), w, http.StatusOK, registerResponse{UserID: u.ID})
}

func (s *HTTPServer) handleGetSalt(w http.ResponseWriter, r *http.Request) {
	var req saltRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	salt, iterations, err := s.users.GetSalt(r.Context(), req.Username)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, saltResponse{Salt: salt, Iterations: iterations})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	tokens, err := s.users.Login(r.Context(), req.Username, req.Verifier)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "Logged in", "username", req.Username)
	s.writeJSON(r.Context(), w, http.StatusOK, tokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

func (s *HTTPServer) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	tokens, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, tokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

func (s *HTTPServer) handleGetVault(w http.ResponseWriter, r *http.Request) {
	rec, err := s.vaults.Get(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, vaultResponse{
		Nonce:      rec.Nonce,
		Ciphertext: rec.Ciphertext,
		Version:    rec.Version,
		UpdatedAt:  rec.UpdatedAt,
	})
}

func (s *HTTPServer) handleReplaceVault(w http.ResponseWriter, r *http.Request) {
	var req replaceVaultRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	rec, err := s.vaults.Replace(r.Context(), userIDFromContext(r.Context()), req.Nonce, req.Ciphertext, req.Version)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, replaceVaultResponse{Version: rec.Version, UpdatedAt: rec.UpdatedAt})
}

func (s *HTTPServer) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	var req createFileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	f, uploadURL, err := s.files.Create(r.Context(), userIDFromContext(r.Context()), req.Name)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, createFileResponse{ID: f.ID, Name: f.Name, UploadURL: uploadURL})
}

func (s *HTTPServer) handleListFiles(w http.ResponseWriter, r *http.Request) {
	list, err := s.files.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	resp := listFilesResponse{Files: make([]fileInfo, 0, len(list))}
	for _, f := range list {
		resp.Files = append(resp.Files, fileInfo{
			ID:           f.ID,
			Name:         f.Name,
			Size:         f.Size,
			UploadStatus: f.UploadStatus,
			CreatedAt:    f.CreatedAt,
		})
	}
	s.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *HTTPServer) handleGetFileURL(w http.ResponseWriter, r *http.Request) {
	url, err := s.files.GetDownloadURL(r.Context(), r.PathValue("id"), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, downloadResponse{DownloadURL: url})
}

func (s *HTTPServer) handleMarkUploaded(w http.ResponseWriter, r *http.Request) {
	var req markUploadedRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	if err := s.files.MarkUploaded(r.Context(), r.PathValue("id"), userIDFromContext(r.Context()), req.Size); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "OK"})
}

func (s *HTTPServer) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.files.Delete(r.Context(), r.PathValue("id"), userIDFromContext(r.Context())); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "OK"})
}
