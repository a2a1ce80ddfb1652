package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/debemdeboas/mdwidget/internal/backup"
	"github.com/debemdeboas/mdwidget/internal/cache"
	"github.com/debemdeboas/mdwidget/internal/config"
	"github.com/debemdeboas/mdwidget/internal/dom"
	"github.com/debemdeboas/mdwidget/internal/editor"
	"github.com/debemdeboas/mdwidget/internal/loop"
	"github.com/debemdeboas/mdwidget/internal/sse"
	"github.com/debemdeboas/mdwidget/internal/surface"
	"github.com/debemdeboas/mdwidget/internal/ui"
	"github.com/debemdeboas/mdwidget/internal/upload"
)

var ErrNotFound = errors.New("session not found")

// Deps are shared by every session of a Manager.
type Deps struct {
	Storage backup.KV
	// NewRenderer returns the preview renderer for a syntax theme.
	NewRenderer func(syntaxTheme string) editor.Renderer
	// Uploader may be nil, in which case editors have no upload callback.
	Uploader *upload.Uploader
	Editor   config.EditorConfig
	// IdleTimeout is how long a session without SSE subscribers survives
	// without requests. Zero keeps sessions until they are destroyed.
	IdleTimeout time.Duration
}

type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// OptionOverrides replace the configured editor options field by field.
type OptionOverrides struct {
	ID             string  `json:"id"`
	AddClass       *string `json:"add_class"`
	TabSize        *int    `json:"tab_size"`
	CanBackup      *bool   `json:"can_backup"`
	CheckLength    *int    `json:"check_length"`
	MinHeight      *int    `json:"min_height"`
	PreviewDelayMs *int    `json:"preview_delay_ms"`
}

// CreateRequest describes the textarea a page wants an editor for.
type CreateRequest struct {
	Path    string          `json:"path"`
	Value   string          `json:"value"`
	Attrs   []Attr          `json:"attrs"`
	Options OptionOverrides `json:"options"`
	Mac     bool            `json:"mac"`
}

type Manager struct {
	ctx      context.Context
	deps     Deps
	clients  *sse.SSEClients
	registry *editor.Registry
	sessions *cache.Cache[string, *Session]
}

// NewManager returns a manager whose sessions live until ctx is done or they
// are destroyed.
func NewManager(ctx context.Context, deps Deps, clients *sse.SSEClients) *Manager {
	if deps.Storage == nil {
		deps.Storage = backup.NewMemoryKV()
	}
	return &Manager{
		ctx:      ctx,
		deps:     deps,
		clients:  clients,
		registry: editor.NewRegistry(),
		sessions: cache.NewCache[string, *Session](),
	}
}

func (m *Manager) Clients() *sse.SSEClients { return m.clients }

func (m *Manager) options(o OptionOverrides) editor.Options {
	opts := editor.OptionsFromConfig(m.deps.Editor)
	opts.ID = o.ID
	if o.AddClass != nil {
		opts.AddClass = *o.AddClass
	}
	if o.TabSize != nil {
		opts.TabSize = *o.TabSize
	}
	if o.CanBackup != nil {
		opts.CanBackup = *o.CanBackup
	}
	if o.CheckLength != nil {
		opts.CheckLength = *o.CheckLength
	}
	if o.MinHeight != nil {
		opts.MinHeight = *o.MinHeight
	}
	if o.PreviewDelayMs != nil {
		opts.PreviewDelay = time.Duration(*o.PreviewDelayMs) * time.Millisecond
	}
	if m.deps.Uploader != nil {
		opts.UploadCallback = m.deps.Uploader.Func(m.ctx)
	}
	return opts
}

// Create starts a session and attaches an editor to a textarea built from req.
func (m *Manager) Create(ctx context.Context, req CreateRequest, syntaxTheme string) (*Session, error) {
	loopCtx, stop := context.WithCancel(m.ctx)
	s := &Session{
		ID:      uuid.NewString(),
		Created: time.Now(),
		loop:    loop.New(),
		stop:    stop,
		blobs:   cache.NewCache[string, *dom.File](),
		publish: m.clients.Broadcast,
	}
	s.touch()
	go s.loop.Run(loopCtx)

	err := s.Do(ctx, func() error {
		s.doc = dom.NewDocument()
		s.layer = ui.NewLayer(s.doc)

		anchor := dom.NewElement("textarea")
		for _, a := range req.Attrs {
			anchor.SetAttribute(a.Name, a.Value)
		}
		anchor.Value = req.Value
		s.doc.Body.AppendChild(anchor)

		ed, err := editor.New(anchor, m.options(req.Options), editor.Host{
			Document:  s.doc,
			Path:      req.Path,
			Storage:   m.deps.Storage,
			Dialogs:   s.layer,
			Renderer:  m.deps.NewRenderer(syntaxTheme),
			Scheduler: s.loop,
			NewSurface: func(anchor *dom.Element, opts surface.Options) editor.Surface {
				s.buf = surface.FromTextArea(anchor, opts)
				return s.buf
			},
			ObjectURL:       s.objectURL,
			RevokeObjectURL: s.revokeObjectURL,
			Mac:             req.Mac,
			Registry:        m.registry,
		})
		if err != nil {
			return err
		}
		s.ed = ed

		ed.OnChange(func(string) { s.markDirty() })
		ed.OnFullscreen(func(bool) { s.markDirty() })
		ed.OnRender(func(string) { s.markDirty() })
		s.layer.OnChange(s.markDirty)
		return nil
	})
	if err != nil {
		stop()
		return nil, fmt.Errorf("creating editor: %w", err)
	}

	m.sessions.Set(s.ID, s)
	sessionLogger.Info().Str("session", s.ID).Int("editor", s.ed.ID()).Str("key", s.ed.StorageKey()).Msg("Session created")
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) Len() int {
	return m.sessions.Len()
}

// Destroy detaches the editor, publishes a final snapshot and stops the loop.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	m.sessions.Delete(id)

	err = s.Do(ctx, func() error {
		s.ed.Destroy()
		s.destroyed = true
		s.flush()
		return nil
	})
	s.stop()
	if err != nil {
		return fmt.Errorf("destroying session %s: %w", id, err)
	}

	sessionLogger.Info().Str("session", id).Msg("Session destroyed")
	return nil
}

// Reap destroys the sessions that have no SSE subscriber and have not been
// addressed since now minus the idle timeout. It returns how many it destroyed.
func (m *Manager) Reap(ctx context.Context, now time.Time) int {
	if m.deps.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-m.deps.IdleTimeout)
	reaped := 0
	for _, id := range m.sessions.Keys() {
		s, ok := m.sessions.Get(id)
		if !ok || m.clients.Count(id) > 0 || s.LastActive().After(cutoff) {
			continue
		}
		if err := m.Destroy(ctx, id); err != nil {
			sessionLogger.Warn().Err(err).Str("session", id).Msg("Failed to reap idle session")
			continue
		}
		sessionLogger.Info().Str("session", id).Time("last_active", s.LastActive()).Msg("Reaped idle session")
		reaped++
	}
	return reaped
}

// RunReaper calls Reap every interval until ctx is done.
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Reap(ctx, now)
		}
	}
}

// Close destroys every session.
func (m *Manager) Close(ctx context.Context) {
	for _, id := range m.sessions.Keys() {
		if err := m.Destroy(ctx, id); err != nil {
			sessionLogger.Warn().Err(err).Str("session", id).Msg("Failed to destroy session")
		}
	}
}
