package editor

import (
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/mdwidget/internal/config"
	"github.com/debemdeboas/mdwidget/internal/dom"
)

var (
	ErrNoUploadCallback = errors.New("upload callback is not configured")
	ErrNotImage         = errors.New("transfer carries no image file")
)

// User visible messages.
const (
	MsgNoUploadCallback = "Upload callback is not configured"
	MsgNotImage         = "Please drag or paste an image file"
)

// UploadItem is one image picked from a paste or drop.
type UploadItem struct {
	TemporaryURL string
	File         *dom.File
}

// UploadResult describes an uploaded image. Width and Height are optional;
// zero means unknown.
type UploadResult struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// UploadFunc transfers a batch. It may call progress any number of times and
// must call done once, from any goroutine.
type UploadFunc func(batch []UploadItem, progress func(percent string), done func(err error, results []UploadResult))

type Options struct {
	// ID overrides the derived backup storage key.
	ID       string
	AddClass string
	TabSize  int

	CanBackup bool
	// CheckLength is the length difference between live content and the
	// backup from which a restore is offered.
	CheckLength int

	// MinHeight of the edit area in pixels.
	MinHeight int

	PreviewDelay time.Duration

	UploadCallback UploadFunc
}

func DefaultOptions() Options {
	return Options{
		TabSize:      config.DefaultEditorTabSize,
		CanBackup:    config.DefaultEditorCanBackup,
		CheckLength:  config.DefaultEditorCheckLength,
		MinHeight:    config.DefaultEditorMinHeight,
		PreviewDelay: config.DefaultEditorPreviewDelayMs * time.Millisecond,
	}
}

// OptionsFromConfig builds options from the editor section of the config.
func OptionsFromConfig(cfg config.EditorConfig) Options {
	return Options{
		AddClass:     cfg.AddClass,
		TabSize:      cfg.TabSize,
		CanBackup:    cfg.CanBackup,
		CheckLength:  cfg.CheckLength,
		MinHeight:    cfg.MinHeight,
		PreviewDelay: time.Duration(cfg.PreviewDelayMs) * time.Millisecond,
	}
}

type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("editor: invalid %s: %s", e.Field, e.Reason)
}

func (o Options) Validate() error {
	if o.TabSize < 1 {
		return &ConfigError{Field: "TabSize", Reason: fmt.Sprintf("must be at least 1, got %d", o.TabSize)}
	}
	if o.MinHeight < 0 {
		return &ConfigError{Field: "MinHeight", Reason: fmt.Sprintf("must not be negative, got %d", o.MinHeight)}
	}
	if o.CheckLength < 0 {
		return &ConfigError{Field: "CheckLength", Reason: fmt.Sprintf("must not be negative, got %d", o.CheckLength)}
	}
	if o.PreviewDelay < 0 {
		return &ConfigError{Field: "PreviewDelay", Reason: "must not be negative"}
	}
	return nil
}
