package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reviewforge/reviewforge/internal/api"
	"github.com/reviewforge/reviewforge/internal/app/auth"
	"github.com/reviewforge/reviewforge/internal/app/catalog"
	"github.com/reviewforge/reviewforge/internal/app/notify"
	"github.com/reviewforge/reviewforge/internal/app/playengine"
	"github.com/reviewforge/reviewforge/internal/app/reset"
	"github.com/reviewforge/reviewforge/internal/app/special"
	"github.com/reviewforge/reviewforge/internal/app/wallet"
	"github.com/reviewforge/reviewforge/internal/health"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
	"github.com/reviewforge/reviewforge/internal/security"
)

// Daemon is the reviewforge runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Server *api.Server
	cancel context.CancelFunc

	SigningKey []byte
	Auth       *auth.Service
	Wallets    *wallet.Service
	Catalog    *catalog.Service
	PlayEngine *playengine.Service
	Special    *special.Service
	Reset      *reset.Service
	Notify     *notify.Service
	Health     *health.Checker
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	db, err := sqlite.Open(reviewforgeHome())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	signingKey, err := security.LoadOrCreateSigningKey(reviewforgeHome())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load signing key: %w", err)
	}

	d := &Daemon{
		Config:     cfg,
		DB:         db,
		SigningKey: signingKey,
	}

	d.Auth = auth.NewService(db, signingKey)
	d.Wallets = wallet.NewService(db)
	d.Catalog = catalog.NewService(db)
	d.PlayEngine = playengine.NewService(db, d.Wallets, d.Catalog)
	d.Special = special.NewService(db, d.Catalog)
	d.Reset = reset.NewService(db)
	d.Notify = notify.NewService(db)
	d.Health = health.NewChecker(db)

	srv := api.NewServer(db, d.Auth, d.Wallets, d.PlayEngine, d.Special, d.Reset, d.Notify, d.Health)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)
	go d.Reset.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	log.Printf("reviewforge serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		log.Printf("  metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
