package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/sealbox/internal/client/api"
	"github.com/dmitrijs2005/sealbox/internal/client/cache"
	"github.com/dmitrijs2005/sealbox/internal/client/config"
	"github.com/dmitrijs2005/sealbox/internal/client/services"
	"github.com/dmitrijs2005/sealbox/internal/common"
)

// Mode reflects the client's view of server reachability.
type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

// App holds the CLI state: wired services, the in-memory vault key of the
// logged-in user, and the current connectivity mode. The vault key lives
// only here and is wiped on logout.
type App struct {
	config         *config.Config
	cache          *cache.Cache
	authService    services.AuthService
	vaultService   services.VaultService
	fileService    services.FileService
	signingService services.SigningService
	masterKey      []byte
	userName       string
	Mode           Mode
	reader         *bufio.Reader
}

// NewApp wires the local cache, the API client, and all services into a
// ready-to-run App.
func NewApp(c *config.Config) (*App, error) {

	db, err := cache.Open(c.CachePath)
	if err != nil {
		log.Printf("error opening local cache: %s", err.Error())
		return nil, err
	}

	apiClient, err := api.NewHTTPClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	as := services.NewAuthService(apiClient, db)
	vs := services.NewVaultService(apiClient, db)
	fs := services.NewFileService(apiClient)
	ss := services.NewSigningService()

	return &App{
		config:         c,
		cache:          db,
		authService:    as,
		vaultService:   vs,
		fileService:    fs,
		signingService: ss,
		reader:         bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

// Run starts the background connectivity watcher and the REPL, blocking
// until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer func() {
		common.WipeByteArray(a.masterKey)
		_ = a.authService.Close(ctx)
		if a.cache != nil {
			_ = a.cache.Close()
		}
	}()

	log.Println("Welcome to sealbox (type 'help' for commands)")

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.masterKey != nil
}

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// Mode between online and offline accordingly. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			if err != nil {
				if a.Mode == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.Mode != ModeOnline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
