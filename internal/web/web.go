package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"carelog/internal/care"
	"carelog/internal/config"
	"carelog/internal/i18n"
	appLog "carelog/internal/log"
)

// Server provides the form UI, the JSON API, exports and the print view.
type Server struct {
	cfg *config.Config
	svc *care.Service
	tr  *i18n.Translator
	loc *time.Location
	mux *http.ServeMux

	printTmpl *template.Template
	now       func() time.Time
}

// embeddedAssets holds the single-page form UI and the print template.
//
//go:embed static templates
var embeddedAssets embed.FS

// NewServer constructs a new Server around an opened service.
func NewServer(cfg *config.Config, svc *care.Service, tr *i18n.Translator) *Server {
	loc, err := cfg.Location()
	if err != nil {
		appLog.Error("failed to load timezone; falling back to UTC", err, "name", cfg.Timezone)
	}
	s := &Server{
		cfg:       cfg,
		svc:       svc,
		tr:        tr,
		loc:       loc,
		mux:       http.NewServeMux(),
		printTmpl: template.Must(template.ParseFS(embeddedAssets, "templates/print.html")),
		now:       time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		h = s.basicAuthMiddleware(h)
	}
	return requestIDMiddleware(h)
}

// ListenAndServe serves on cfg.Listen until ctx is canceled, then shuts the
// server down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)

	s.mux.HandleFunc("GET /api/records", s.handleSearch)
	s.mux.HandleFunc("POST /api/records", s.handleAdd)
	s.mux.HandleFunc("GET /api/records/recent", s.handleRecent)
	s.mux.HandleFunc("GET /api/records/{id}", s.handleGet)
	s.mux.HandleFunc("PUT /api/records/{id}", s.handleEdit)
	s.mux.HandleFunc("DELETE /api/records/{id}", s.handleDelete)
	s.mux.HandleFunc("GET /api/records/{id}/schedule", s.handleSchedule)

	s.mux.HandleFunc("GET /export.csv", s.handleExportCSV)
	s.mux.HandleFunc("GET /export.ics", s.handleExportICS)
	s.mux.HandleFunc("GET /print", s.handlePrint)

	s.mux.Handle("/", s.staticFileServer())
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="carelog", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// requestIDMiddleware tags every request with an X-Request-ID (reusing the
// caller's when present) and logs the request once it completes.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		appLog.Debug("http request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"took", time.Since(start).String(),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// staticFileServer serves the embedded form UI. /api/* never falls through
// to it.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedAssets, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// langs returns the caller's preferred languages: ?lang= first, then
// Accept-Language.
func langs(r *http.Request) []string {
	var out []string
	if l := r.URL.Query().Get("lang"); l != "" {
		out = append(out, l)
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		out = append(out, al)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
