package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/mdwidget/internal/backup"
	"github.com/debemdeboas/mdwidget/internal/cache"
	"github.com/debemdeboas/mdwidget/internal/config"
	"github.com/debemdeboas/mdwidget/internal/db"
	"github.com/debemdeboas/mdwidget/internal/editor"
	"github.com/debemdeboas/mdwidget/internal/logger"
	"github.com/debemdeboas/mdwidget/internal/loop"
	"github.com/debemdeboas/mdwidget/internal/render"
	"github.com/debemdeboas/mdwidget/internal/routes"
	"github.com/debemdeboas/mdwidget/internal/session"
	"github.com/debemdeboas/mdwidget/internal/sse"
	"github.com/debemdeboas/mdwidget/internal/ui"
	"github.com/debemdeboas/mdwidget/internal/upload"
	"github.com/debemdeboas/mdwidget/internal/util/compression"
)

const defaultConfigPath = "config.yaml"

var mainLogger zerolog.Logger

func main() {
	envErr := godotenv.Load()

	configPath := os.Getenv(config.EnvConfigPath)
	if configPath == "" {
		configPath = defaultConfigPath
	}
	if err := config.LoadConfig(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	setLoggers(logger.New(config.AppConfig.Logging))
	if envErr != nil {
		mainLogger.Debug().Err(envErr).Msg("No .env file loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.AppConfig); err != nil {
		mainLogger.Fatal().Err(err).Msg("Server stopped")
	}
}

func setLoggers(l zerolog.Logger) {
	mainLogger = l
	config.SetLogger(logger.Component(l, "config"))
	db.SetLogger(logger.Component(l, "db"))
	backup.SetLogger(logger.Component(l, "backup"))
	loop.SetLogger(logger.Component(l, "loop"))
	ui.SetLogger(logger.Component(l, "ui"))
	editor.SetLogger(logger.Component(l, "editor"))
	render.SetLogger(logger.Component(l, "render"))
	upload.SetLogger(logger.Component(l, "upload"))
	session.SetLogger(logger.Component(l, "session"))
}

func run(ctx context.Context, cfg *config.Config) error {
	storage, closeStorage, err := openStorage(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStorage()

	uploader, err := upload.FromConfig(ctx, cfg.Upload)
	if err != nil {
		return err
	}

	manager := session.NewManager(ctx, session.Deps{
		Storage: storage,
		NewRenderer: func(syntaxTheme string) editor.Renderer {
			return render.New(cfg.Render.Engine, syntaxTheme, render.Overrides{})
		},
		Uploader:    uploader,
		Editor:      cfg.Editor,
		IdleTimeout: time.Duration(cfg.Server.SessionIdleMinutes) * time.Minute,
	}, sse.NewSSEClients())
	go manager.RunReaper(ctx, time.Minute)

	handler, err := newServer(manager, cfg.Upload)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		mainLogger.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Driver).Str("upload", cfg.Upload.Backend).Msg("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	manager.Close(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func openStorage(cfg config.StorageConfig) (backup.KV, func(), error) {
	if cfg.Driver == config.StorageDriverMemory {
		return backup.NewMemoryKV(), func() {}, nil
	}

	compressor, err := compression.ForName(cfg.Compression)
	if err != nil {
		return nil, nil, err
	}
	database := db.NewSQLite(cfg.Path)
	if err := database.InitDB(); err != nil {
		return nil, nil, fmt.Errorf("opening backup database: %w", err)
	}
	closeFn := func() {
		if err := database.Close(); err != nil {
			mainLogger.Warn().Err(err).Msg("Failed to close backup database")
		}
	}
	return backup.NewSQLiteKV(database, compressor), closeFn, nil
}

// newServer mounts the session handlers, and the upload directory when the
// local backend is used.
func newServer(manager *session.Manager, uploadCfg config.UploadConfig) (http.Handler, error) {
	h, err := session.NewHandler(manager)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	h.Register(mux)

	if uploadCfg.Backend == config.UploadBackendLocal && strings.HasPrefix(uploadCfg.PublicURL, "/") {
		prefix := strings.TrimSuffix(uploadCfg.PublicURL, "/") + "/"
		mux.Handle(prefix, uploadHeaders(http.StripPrefix(prefix, http.FileServer(http.Dir(uploadCfg.Dir)))))
	}

	securedMux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == routes.RobotsPath {
			mux.ServeHTTP(w, r)
		} else {
			secureHeaders(mux.ServeHTTP)(w, r)
		}
	})
	return cacheIt(securedMux), nil
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Cookie")

		// Add etag header to response if it's a static file
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)
		}

		h(w, r)
	}
}

// uploadHeaders keeps uploaded files inert when opened directly.
func uploadHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCSP, config.CSPInert)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		h.ServeHTTP(w, r)
	})
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		h(w, r)
	}
}
