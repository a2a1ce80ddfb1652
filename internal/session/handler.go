package session

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/debemdeboas/mdwidget/internal/cache"
	"github.com/debemdeboas/mdwidget/internal/config"
	"github.com/debemdeboas/mdwidget/internal/dom"
	"github.com/debemdeboas/mdwidget/internal/editor"
	"github.com/debemdeboas/mdwidget/internal/routes"
	"github.com/debemdeboas/mdwidget/internal/sse"
	"github.com/debemdeboas/mdwidget/internal/theme"
	"github.com/debemdeboas/mdwidget/internal/ui"
	"github.com/debemdeboas/mdwidget/internal/util"
)

//go:embed static/* templates/*
var content embed.FS

const maxJSONBody = 4 << 20

type Handler struct {
	manager *Manager
	clients *sse.SSEClients
	index   *template.Template
	static  fs.FS
}

// NewHandler parses the page templates and records the ETag of every static
// asset.
func NewHandler(m *Manager) (*Handler, error) {
	index, err := template.ParseFS(content,
		config.TemplatesLocalDir+"/"+config.TemplateLayout,
		config.TemplatesLocalDir+"/"+config.TemplateIndex)
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	static, err := fs.Sub(content, config.StaticLocalDir)
	if err != nil {
		return nil, err
	}
	err = fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(static, path)
		if err != nil {
			return err
		}
		cache.SetStaticHash(config.StaticUrlPath+path, util.ContentHash(data))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hashing static files: %w", err)
	}

	return &Handler{
		manager: m,
		clients: m.Clients(),
		index:   index,
		static:  static,
	}, nil
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle(config.StaticUrlPath, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(h.static))))
	mux.HandleFunc(routes.RobotsPath, serveRobots)
	mux.HandleFunc("GET "+routes.SyntaxThemeGet, serveSyntaxTheme)
	mux.HandleFunc("GET "+routes.RootPath+"{$}", h.serveIndex)

	mux.HandleFunc("POST "+routes.APISessions, h.createSession)
	mux.HandleFunc("GET "+routes.APISession, h.withSession(h.getSession))
	mux.HandleFunc("DELETE "+routes.APISession, h.destroySession)
	mux.HandleFunc("GET "+routes.APISessionEvents, h.withSession(h.events))
	mux.HandleFunc("POST "+routes.APISessionInput, h.withSession(h.input))
	mux.HandleFunc("POST "+routes.APISessionKeys, h.withSession(h.keys))
	mux.HandleFunc("POST "+routes.APISessionPaste, h.withSession(h.transfer("paste")))
	mux.HandleFunc("POST "+routes.APISessionDrop, h.withSession(h.transfer("drop")))
	mux.HandleFunc("POST "+routes.APISessionScroll, h.withSession(h.scroll))
	mux.HandleFunc("POST "+routes.APISessionPrompt, h.withSession(h.answer))
	mux.HandleFunc("GET "+routes.APISessionBlob, h.withSession(h.blob))
}

func serveRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("User-agent: *\nDisallow: /api/"))
}

func serveSyntaxTheme(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("theme")
	if !theme.IsSyntaxTheme(name) {
		http.NotFound(w, r)
		return
	}

	themeStyle := []byte(theme.GenerateSyntaxCSS(name))
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(themeStyle))
	w.WriteHeader(http.StatusOK)
	w.Write(themeStyle)
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	syntaxTheme := theme.GetSyntaxThemeFromRequest(r)
	data := struct {
		SyntaxTheme  string
		SyntaxThemes []string
		SyntaxCSS    template.CSS
		Editor       config.EditorConfig
	}{
		SyntaxTheme:  syntaxTheme,
		SyntaxThemes: theme.GetSyntaxThemes(),
		SyntaxCSS:    theme.GenerateSyntaxCSS(syntaxTheme),
		Editor:       config.AppConfig.Editor,
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.Header().Set(config.HETag, util.ContentHashString(syntaxTheme))
	if err := h.index.ExecuteTemplate(w, config.TemplateLayout, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, s *Session)

func (h *Handler) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.manager.Get(r.PathValue("id"))
		if err != nil {
			http.Error(w, config.HTTPErrSessionNotFound, http.StatusNotFound)
			return
		}
		s.touch()
		next(w, r, s)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		sessionLogger.Warn().Err(err).Msg("Failed to write response")
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// respond runs fn on the session loop and answers with fn's result, or with
// the current snapshot when fn returns nil.
func respond(w http.ResponseWriter, r *http.Request, s *Session, fn func() (any, error)) {
	var out any
	err := s.Do(r.Context(), func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		if v == nil {
			v = s.Snapshot()
		}
		out = v
		return nil
	})
	if err != nil {
		status := http.StatusInternalServerError
		var cfgErr *editor.ConfigError
		switch {
		case errors.Is(err, ui.ErrNoPrompt):
			status = http.StatusNotFound
		case errors.As(err, &cfgErr):
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type createResponse struct {
	ID       string   `json:"id"`
	Snapshot Snapshot `json:"snapshot"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !readJSON(w, r, &req) {
		return
	}

	s, err := h.manager.Create(r.Context(), req, theme.GetSyntaxThemeFromRequest(r))
	if err != nil {
		var cfgErr *editor.ConfigError
		if errors.As(err, &cfgErr) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var snap Snapshot
	if err := s.Do(r.Context(), func() error { snap = s.Snapshot(); return nil }); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{ID: s.ID, Snapshot: snap})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request, s *Session) {
	respond(w, r, s, func() (any, error) { return nil, nil })
}

func (h *Handler) destroySession(w http.ResponseWriter, r *http.Request) {
	err := h.manager.Destroy(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		http.Error(w, config.HTTPErrSessionNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) events(w http.ResponseWriter, r *http.Request, s *Session) {
	w.Header().Set(config.HCType, config.CTypeSSE)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The idle clock starts when the stream ends, not when it opened.
	defer s.touch()

	client := sse.NewClient(s.ID)
	h.clients.Add(client)
	defer func() {
		h.clients.Delete(client)
		sessionLogger.Debug().Str("session", s.ID).Msg("SSE client disconnected")
	}()

	var snap Snapshot
	if err := s.Do(r.Context(), func() error { snap = s.Snapshot(); return nil }); err != nil {
		return
	}
	initial, _ := json.Marshal(snap)

	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", initial)
	flusher.Flush()
	sessionLogger.Debug().Str("session", s.ID).Msg("SSE client connected")

	notify := r.Context().Done()
	for {
		select {
		case msg, ok := <-client.Msg:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-notify:
			return
		}
	}
}

type inputRequest struct {
	Value  string `json:"value"`
	Anchor int    `json:"anchor"`
	Head   int    `json:"head"`
}

func (h *Handler) input(w http.ResponseWriter, r *http.Request, s *Session) {
	var req inputRequest
	if !readJSON(w, r, &req) {
		return
	}
	respond(w, r, s, func() (any, error) {
		s.buf.Sync(req.Value, req.Anchor, req.Head)
		return nil, nil
	})
}

type keyRequest struct {
	Key string `json:"key"`
}

type keyResponse struct {
	Handled  bool     `json:"handled"`
	Snapshot Snapshot `json:"snapshot"`
}

func (h *Handler) keys(w http.ResponseWriter, r *http.Request, s *Session) {
	var req keyRequest
	if !readJSON(w, r, &req) {
		return
	}
	respond(w, r, s, func() (any, error) {
		handled := s.ed.HandleKey(req.Key)
		return keyResponse{Handled: handled, Snapshot: s.Snapshot()}, nil
	})
}

type transferResponse struct {
	Prevented bool     `json:"prevented"`
	Error     string   `json:"error,omitempty"`
	Snapshot  Snapshot `json:"snapshot"`
}

// transfer turns a multipart form into a paste or drop event. Files come in
// the "files" field, plain clipboard entries in "types".
func (h *Handler) transfer(kind string) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, s *Session) {
		if err := r.ParseMultipartForm(config.MaxMultipartMemory); err != nil {
			http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
			return
		}

		dt := &dom.DataTransfer{}
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := readFile(fh)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			dt.AddFile(f)
		}
		for _, mime := range r.MultipartForm.Value["types"] {
			dt.AddString(mime)
		}

		respond(w, r, s, func() (any, error) {
			ev := dom.NewEvent(kind)
			ev.DataTransfer = dt

			var err error
			if kind == "drop" {
				err = s.ed.HandleDrop(ev)
			} else {
				err = s.ed.HandlePaste(ev)
			}
			resp := transferResponse{Prevented: ev.DefaultPrevented()}
			switch {
			case err == nil:
			case errors.Is(err, editor.ErrNotImage), errors.Is(err, editor.ErrNoUploadCallback):
				resp.Error = err.Error()
			default:
				return nil, err
			}
			resp.Snapshot = s.Snapshot()
			return resp, nil
		})
	}
}

func readFile(fh *multipart.FileHeader) (*dom.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}
	return &dom.File{Name: fh.Filename, Type: fh.Header.Get(config.HCType), Data: data}, nil
}

type scrollRequest struct {
	ScrollTop           float64 `json:"scroll_top"`
	ScrollHeight        float64 `json:"scroll_height"`
	ClientHeight        float64 `json:"client_height"`
	PreviewScrollHeight float64 `json:"preview_scroll_height"`
	PreviewClientHeight float64 `json:"preview_client_height"`
}

type scrollResponse struct {
	PreviewScrollTop float64 `json:"preview_scroll_top"`
}

func (h *Handler) scroll(w http.ResponseWriter, r *http.Request, s *Session) {
	var req scrollRequest
	if !readJSON(w, r, &req) {
		return
	}
	respond(w, r, s, func() (any, error) {
		src, dst := s.buf.Scroller(), s.ed.Preview()
		src.ScrollTop, src.ScrollHeight, src.ClientHeight = req.ScrollTop, req.ScrollHeight, req.ClientHeight
		dst.ScrollHeight, dst.ClientHeight = req.PreviewScrollHeight, req.PreviewClientHeight
		src.Dispatch(dom.NewEvent("scroll"))
		return scrollResponse{PreviewScrollTop: dst.ScrollTop}, nil
	})
}

type answerRequest struct {
	OK bool `json:"ok"`
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request, s *Session) {
	id, err := strconv.Atoi(r.PathValue("prompt"))
	if err != nil {
		http.Error(w, "invalid prompt id", http.StatusBadRequest)
		return
	}
	var req answerRequest
	if !readJSON(w, r, &req) {
		return
	}
	respond(w, r, s, func() (any, error) {
		return nil, s.layer.Answer(id, req.OK)
	})
}

func (h *Handler) blob(w http.ResponseWriter, r *http.Request, s *Session) {
	f, ok := s.Blob(r.PathValue("blob"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set(config.HCType, f.Type)
	w.Header().Set(config.HCacheControl, "private, max-age=3600")
	w.Header().Set(config.HCSP, config.CSPInert)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	w.Write(f.Data)
}
