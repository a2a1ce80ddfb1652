package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/mdwidget/internal/backup"
	"github.com/debemdeboas/mdwidget/internal/config"
	"github.com/debemdeboas/mdwidget/internal/editor"
	"github.com/debemdeboas/mdwidget/internal/render"
	"github.com/debemdeboas/mdwidget/internal/session"
	"github.com/debemdeboas/mdwidget/internal/sse"
)

func TestMain(m *testing.M) {
	setLoggers(zerolog.New(io.Discard))
	os.Exit(m.Run())
}

func newTestHandler(t *testing.T, uploadCfg config.UploadConfig) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	manager := session.NewManager(ctx, session.Deps{
		Storage: backup.NewMemoryKV(),
		NewRenderer: func(syntaxTheme string) editor.Renderer {
			return render.New(config.MarkdownEngineClassic, syntaxTheme, render.Overrides{})
		},
	}, sse.NewSSEClients())

	h, err := newServer(manager, uploadCfg)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestSecurityAndCacheHeaders(t *testing.T) {
	h := newTestHandler(t, config.UploadConfig{Backend: config.UploadBackendNone})

	tests := []struct {
		path         string
		cacheControl string
		secure       bool
		etag         bool
	}{
		{"/", "no-cache", true, false},
		{"/static/mdwidget.js", "public, max-age=3600", true, true},
		{"/robots.txt", "no-cache", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", rec.Code)
			}
			if got := rec.Header().Get(config.HCacheControl); got != tt.cacheControl {
				t.Errorf("Expected Cache-Control %q, got %q", tt.cacheControl, got)
			}
			if got := rec.Header().Get("X-Frame-Options") == "deny"; got != tt.secure {
				t.Errorf("Expected secure headers=%v", tt.secure)
			}
			if got := rec.Header().Get(config.HETag) != ""; got != tt.etag {
				t.Errorf("Expected ETag=%v, got %q", tt.etag, rec.Header().Get(config.HETag))
			}
		})
	}
}

func TestServesLocalUploads(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := newTestHandler(t, config.UploadConfig{Backend: config.UploadBackendLocal, Dir: dir, PublicURL: "/files"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/a.png", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "png" {
		t.Errorf("Expected uploaded file, got %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(config.HCSP); got != config.CSPInert {
		t.Errorf("Expected uploads to be sandboxed, got %q", got)
	}
}

func TestOpenStorage(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		kv, closeFn, err := openStorage(config.StorageConfig{Driver: config.StorageDriverMemory})
		if err != nil {
			t.Fatal(err)
		}
		defer closeFn()
		if _, ok := kv.(*backup.MemoryKV); !ok {
			t.Errorf("Expected *backup.MemoryKV, got %T", kv)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "backups.db")
		kv, closeFn, err := openStorage(config.StorageConfig{Driver: config.StorageDriverSQLite, Path: path, Compression: config.CompressionZstd})
		if err != nil {
			t.Fatal(err)
		}
		defer closeFn()

		if err := kv.Set("k", "v"); err != nil {
			t.Fatal(err)
		}
		if got, err := kv.Get("k"); err != nil || got != "v" {
			t.Errorf("Expected round trip, got %q (%v)", got, err)
		}
	})

	t.Run("bad compression", func(t *testing.T) {
		if _, _, err := openStorage(config.StorageConfig{Driver: config.StorageDriverSQLite, Compression: "lz4"}); err == nil {
			t.Error("Expected an error")
		}
	})
}
