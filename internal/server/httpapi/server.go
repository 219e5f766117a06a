// Package httpapi exposes the server's JSON HTTP API: registration, login,
// token refresh, vault storage, and sealed-file bookkeeping. Byte fields
// travel base64-encoded, courtesy of encoding/json.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sealbox/internal/logging"
	"github.com/dmitrijs2005/sealbox/internal/server/models"
	"github.com/dmitrijs2005/sealbox/internal/server/services"
)

type userService interface {
	Register(ctx context.Context, username string, salt, verifier []byte, iterations int, initialVault *models.VaultRecord) (*models.User, error)
	GetSalt(ctx context.Context, userName string) ([]byte, int, error)
	Login(ctx context.Context, userName string, verifierCandidate []byte) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type vaultService interface {
	Get(ctx context.Context, userID string) (*models.VaultRecord, error)
	Replace(ctx context.Context, userID string, nonce, ciphertext []byte, expectedVersion int64) (*models.VaultRecord, error)
}

type fileService interface {
	Create(ctx context.Context, userID, name string) (*models.File, string, error)
	List(ctx context.Context, userID string) ([]models.File, error)
	MarkUploaded(ctx context.Context, id, userID string, size int64) error
	GetDownloadURL(ctx context.Context, id, userID string) (string, error)
	Delete(ctx context.Context, id, userID string) error
}

// HTTPServer serves the JSON API and owns nothing but transport concerns:
// decoding, auth, status mapping. Business rules live in the services.
type HTTPServer struct {
	address   string
	logger    logging.Logger
	users     userService
	vaults    vaultService
	files     fileService
	jwtSecret []byte
}

// NewHTTPServer wires the API around the given services.
func NewHTTPServer(a string, l logging.Logger, us userService, vs vaultService, fs fileService, secretKey string) (*HTTPServer, error) {
	return &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		vaults:    vs,
		files:     fs,
		jwtSecret: []byte(secretKey),
	}, nil
}

func (s *HTTPServer) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", s.handlePing)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/salt", s.handleGetSalt)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/token/refresh", s.handleRefreshToken)

	mux.HandleFunc("GET /api/vault", s.withAuth(s.handleGetVault))
	mux.HandleFunc("PUT /api/vault", s.withAuth(s.handleReplaceVault))

	mux.HandleFunc("POST /api/files", s.withAuth(s.handleCreateFile))
	mux.HandleFunc("GET /api/files", s.withAuth(s.handleListFiles))
	mux.HandleFunc("GET /api/files/{id}", s.withAuth(s.handleGetFileURL))
	mux.HandleFunc("POST /api/files/{id}/uploaded", s.withAuth(s.handleMarkUploaded))
	mux.HandleFunc("DELETE /api/files/{id}", s.withAuth(s.handleDeleteFile))

	return mux
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
