package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"boardview/internal/board"
	"boardview/internal/linkmeta"
	"boardview/internal/store"

	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/starfederation/datastar-go/datastar"
)

//go:embed templates/*.html static/*.js static/*.css
var assetsFS embed.FS

const (
	defaultSessionTTL = 30 * time.Minute
	keepAliveInterval = 25 * time.Second
)

type ServerConfig struct {
	Addr  string
	Store store.Store

	// Meta resolves link previews for /api/link-meta. Nil disables the endpoint.
	Meta linkmeta.Lookup

	MaxUploadBytes int64
	// SessionTTL is how long an idle board session survives.
	SessionTTL time.Duration

	Log log.FieldLogger
}

type Server struct {
	mu   sync.RWMutex
	cfg  ServerConfig
	tmpl *template.Template
	log  log.FieldLogger

	bc       *resourceBroadcaster
	sessions *sessionManager
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Store.Dir = strings.TrimSpace(cfg.Store.Dir)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.Store.Dir == "" {
		return nil, errors.New("web: data dir is empty")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = store.DefaultMaxUploadBytes
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.Log == nil {
		cfg.Log = log.StandardLogger()
	}
	if cfg.Store.Log == nil {
		cfg.Store.Log = cfg.Log
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim":     strings.TrimSpace,
		"markdown": renderMarkdownHTML,
		"bytes":    func(n int64) string { return humanize.Bytes(uint64(max(n, 0))) },
		"ago":      func(t time.Time) string { return humanize.Time(t) },
		"css":      func(s string) template.CSS { return template.CSS(s) },
		"date":     func(t time.Time) string { return t.Local().Format("Jan 2, 2006") },
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:      cfg,
		tmpl:     tmpl,
		log:      cfg.Log,
		bc:       newResourceBroadcaster(),
		sessions: newSessionManager(cfg.SessionTTL),
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) st() store.Store {
	s.mu.RLock()
	st := s.cfg.Store
	s.mu.RUnlock()
	return st
}

func (s *Server) broadcaster() *resourceBroadcaster {
	s.mu.RLock()
	b := s.bc
	s.mu.RUnlock()
	return b
}

// NotifyUploadsChanged refreshes every open home page.
func (s *Server) NotifyUploadsChanged() {
	s.broadcaster().notify(resourceKey{kind: "uploads"})
}

// RunReaper drops idle board sessions until ctx is done.
func (s *Server) RunReaper(ctx context.Context) error {
	interval := s.cfg.SessionTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			for _, id := range s.sessions.reap(time.Now()) {
				s.log.WithField("session", id).Debug("board session expired")
				s.broadcaster().drop(resourceKey{kind: "session", id: id})
			}
		}
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /static/app.js", s.handleAppJS)

	mux.HandleFunc("POST /api/upload", s.handleAPIUpload)
	mux.HandleFunc("GET /api/files", s.handleAPIFiles)
	mux.HandleFunc("GET /api/files/{filename}", s.handleAPIFile)
	mux.HandleFunc("GET /api/link-meta", s.handleAPILinkMeta)

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /events", s.handleHomeEvents)
	mux.HandleFunc("POST /upload", s.handleUploadForm)
	mux.HandleFunc("GET /board/{filename}", s.handleBoard)

	mux.HandleFunc("GET /sessions/{sid}/board", s.handleSessionBoard)
	mux.HandleFunc("GET /sessions/{sid}/events", s.handleSessionEvents)
	mux.HandleFunc("POST /sessions/{sid}/lists/move", s.handleMoveList)
	mux.HandleFunc("POST /sessions/{sid}/cards/move", s.handleMoveCard)
	mux.HandleFunc("GET /sessions/{sid}/cards/{cardId}", s.handleCardDetail)
	mux.HandleFunc("DELETE /sessions/{sid}", s.handleSessionClose)
	return requestLogger(s.log, mux)
}

func (s *Server) handleAppJS(w http.ResponseWriter, r *http.Request) {
	s.serveAsset(w, r, "static/app.js", "application/javascript; charset=utf-8")
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	s.serveAsset(w, r, "static/app.css", "text/css; charset=utf-8")
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request, name, contentType string) {
	b, err := assetsFS.ReadFile(name)
	if err != nil || len(b) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, status int, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		s.log.WithError(err).WithField("template", name).Error("render failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, html)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// serveElementsStream pushes render() into selector now and whenever key is
// notified, until the client disconnects. tick, when set, runs on every
// keep-alive.
func (s *Server) serveElementsStream(w http.ResponseWriter, r *http.Request, key resourceKey, selector string, render func() (string, error), tick func()) {
	sse := datastar.NewSSE(w, r)

	h := s.broadcaster().hubFor(key)
	ch, cancel := h.subscribe()
	defer cancel()

	push := func() bool {
		html, err := render()
		if err != nil {
			_ = sse.ExecuteScript(fmt.Sprintf("console.error(%q)", err.Error()))
			return !errors.Is(err, errSessionGone)
		}
		if strings.TrimSpace(html) == "" {
			return true
		}
		_ = sse.PatchElements(html, datastar.WithSelector(selector), datastar.WithMode(datastar.ElementPatchModeOuter))
		return true
	}
	if !push() {
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			if tick != nil {
				tick()
			}
			_ = sse.PatchSignals([]byte(`{}`))
		case _, ok := <-ch:
			if !ok || !push() {
				return
			}
		}
	}
}

// loadState fetches and normalizes one stored upload.
func (s *Server) loadState(ctx context.Context, name string) (*board.State, error) {
	doc, err := s.st().FetchExport(ctx, name)
	if err != nil {
		return nil, err
	}
	return board.Normalize(doc)
}

// statusFor maps load and move errors to HTTP status codes.
func statusFor(err error) int {
	var pe *store.ParseError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, errSessionGone):
		return http.StatusNotFound
	case errors.As(err, &pe), board.IsNormalizationError(err):
		return http.StatusUnprocessableEntity
	case board.IsOperationError(err):
		return http.StatusConflict
	case errors.Is(err, store.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
