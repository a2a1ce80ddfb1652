// Package upload stores images pasted or dropped into an editor and reports
// the public URLs they can be referenced by.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/debemdeboas/mdwidget/internal/config"
	"github.com/debemdeboas/mdwidget/internal/dom"
	"github.com/debemdeboas/mdwidget/internal/editor"
)

var uploadLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	uploadLogger = l
}

var (
	ErrTooLarge = errors.New("image is too large")
	ErrNotImage = errors.New("file is not an image")
	ErrDisabled = errors.New("uploads are disabled")
)

// Backend persists one object and returns its public URL.
type Backend interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

type Uploader struct {
	backend     Backend
	maxBytes    int64
	concurrency int
}

func New(backend Backend, cfg config.UploadConfig) *Uploader {
	return &Uploader{
		backend:     backend,
		maxBytes:    int64(cfg.MaxBytes),
		concurrency: max(cfg.Concurrency, 1),
	}
}

// FromConfig selects the backend named by cfg.Backend. It returns nil and no
// error when uploads are disabled.
func FromConfig(ctx context.Context, cfg config.UploadConfig) (*Uploader, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Backend {
	case config.UploadBackendNone:
		return nil, nil
	case config.UploadBackendLocal:
		backend, err = NewLocal(cfg.Dir, cfg.PublicURL)
	case config.UploadBackendS3:
		backend, err = NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s upload backend: %w", cfg.Backend, err)
	}
	return New(backend, cfg), nil
}

// Upload stores every file of the batch concurrently. Results keep the order
// of files. progress receives completion percentages such as "50%".
func (u *Uploader) Upload(ctx context.Context, files []*dom.File, progress func(string)) ([]editor.UploadResult, error) {
	if u == nil {
		return nil, ErrDisabled
	}
	images := make([]imageInfo, len(files))
	for i, f := range files {
		info, err := u.check(f)
		if err != nil {
			return nil, err
		}
		images[i] = info
	}

	results := make([]editor.UploadResult, len(files))
	var finished atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for i, f := range files {
		info := images[i]
		g.Go(func() error {
			url, err := u.backend.Put(ctx, uuid.NewString()+info.format.ext, info.format.contentType, f.Data)
			if err != nil {
				return fmt.Errorf("uploading %s: %w", f.Name, err)
			}
			results[i] = editor.UploadResult{URL: url, Width: info.width, Height: info.height}

			n := finished.Add(1)
			if progress != nil {
				progress(fmt.Sprintf("%d%%", n*100/int64(len(files))))
			}
			uploadLogger.Debug().Str("file", f.Name).Str("url", url).Int64("size", f.Size()).Msg("Image uploaded")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Func adapts the uploader to the editor upload callback. Each batch runs in
// its own goroutine bound to ctx.
func (u *Uploader) Func(ctx context.Context) editor.UploadFunc {
	return func(batch []editor.UploadItem, progress func(string), done func(error, []editor.UploadResult)) {
		files := make([]*dom.File, len(batch))
		for i, it := range batch {
			files[i] = it.File
		}
		go func() {
			results, err := u.Upload(ctx, files, progress)
			if err != nil {
				uploadLogger.Warn().Err(err).Int("files", len(files)).Msg("Upload batch failed")
			}
			done(err, results)
		}()
	}
}

type imageFormat struct {
	contentType string
	ext         string
}

// formats lists the raster formats image.DecodeConfig understands, by the
// name it reports. Anything else, svg included, is refused.
var formats = map[string]imageFormat{
	"png":  {"image/png", ".png"},
	"jpeg": {"image/jpeg", ".jpg"},
	"gif":  {"image/gif", ".gif"},
	"webp": {"image/webp", ".webp"},
}

type imageInfo struct {
	format        imageFormat
	width, height int
}

// check accepts a file only when its bytes decode as a known raster format.
// The stored type and extension come from the decoded format, never from the
// name or type the client sent.
func (u *Uploader) check(f *dom.File) (imageInfo, error) {
	if !strings.HasPrefix(f.Type, "image/") {
		return imageInfo{}, fmt.Errorf("%w: %s", ErrNotImage, f.Name)
	}
	if u.maxBytes > 0 && f.Size() > u.maxBytes {
		return imageInfo{}, fmt.Errorf("%w: %s is %s, the limit is %s", ErrTooLarge,
			f.Name, humanize.Bytes(uint64(f.Size())), humanize.Bytes(uint64(u.maxBytes)))
	}
	cfg, name, err := image.DecodeConfig(bytes.NewReader(f.Data))
	if err != nil {
		return imageInfo{}, fmt.Errorf("%w: %s", ErrNotImage, f.Name)
	}
	format, ok := formats[name]
	if !ok {
		return imageInfo{}, fmt.Errorf("%w: %s is %s", ErrNotImage, f.Name, name)
	}
	return imageInfo{format: format, width: cfg.Width, height: cfg.Height}, nil
}
