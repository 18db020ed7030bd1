// Package server exposes a dashboard session over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/tipscope/internal/dashboard"
	"github.com/KaramelBytes/tipscope/internal/render"
	"github.com/KaramelBytes/tipscope/internal/selection"
)

// Server serializes HTTP access to a single session.
type Server struct {
	mu      sync.Mutex
	session *dashboard.Session
	log     *slog.Logger
	router  *chi.Mux
}

// New wires the routes for session.
func New(session *dashboard.Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{session: session, log: logger, router: chi.NewRouter()}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/heatmap", s.handleHeatmap)
		r.Get("/bars", s.handleBars)
		r.Get("/bars.png", s.handleBarsPNG)
		r.Get("/scatter", s.handleScatter)
		r.Get("/scatter.png", s.handleScatterPNG)

		r.Put("/selection/category", s.handleCategory)
		r.Put("/selection/field", s.handleField)
		r.Put("/selection/cell", s.handleCell)
	})
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"dur", time.Since(start),
				"req_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON encodes v before writing any header, so an unencodable value
// becomes a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorBody{Error: "encode response: " + err.Error()})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// outputs returns the current outputs, or writes 503 and returns nil.
func (s *Server) outputs(w http.ResponseWriter) *dashboard.Outputs {
	out := s.session.Outputs()
	if out == nil {
		writeError(w, http.StatusServiceUnavailable, dashboard.ErrNoTable)
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"ready":   s.session.Ready(),
		"session": s.session.ID(),
	})
}

type stateResponse struct {
	Session string           `json:"session"`
	Ready   bool             `json:"ready"`
	State   selection.State  `json:"state"`
	Counts  dashboard.Counts `json:"counts"`
	Change  string           `json:"change,omitempty"`
	Options map[string]any   `json:"options,omitempty"`
}

func (s *Server) stateLocked(change string) stateResponse {
	return stateResponse{
		Session: s.session.ID(),
		Ready:   s.session.Ready(),
		State:   s.session.State(),
		Counts:  s.session.Counts(),
		Change:  change,
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp := s.stateLocked("")
	resp.Options = map[string]any{
		"categories": selection.Categories(),
		"fields":     selection.Fields(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outputs(w)
	if out == nil {
		return
	}
	etag := `"` + out.Heatmap.Fingerprint + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, out.Heatmap)
}

func etagMatches(header, etag string) bool {
	for _, part := range strings.Split(header, ",") {
		p := strings.TrimSpace(part)
		if p == "*" || strings.TrimPrefix(p, "W/") == etag {
			return true
		}
	}
	return false
}

func (s *Server) handleBars(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if out := s.outputs(w); out != nil {
		writeJSON(w, http.StatusOK, out.Bars)
	}
}

func (s *Server) handleScatter(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outputs(w)
	if out == nil {
		return
	}
	if out.Scatter == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, out.Scatter)
}

func (s *Server) handleBarsPNG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outputs(w)
	if out == nil {
		return
	}
	var buf bytes.Buffer
	if err := render.BarsPNG(&buf, out.Bars, s.session.Layout()); err != nil {
		s.writePNGError(w, err)
		return
	}
	writePNG(w, buf.Bytes())
}

func (s *Server) handleScatterPNG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outputs(w)
	if out == nil {
		return
	}
	if out.Scatter == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	var buf bytes.Buffer
	if err := render.ScatterPNG(&buf, out.Scatter, s.session.Layout()); err != nil {
		s.writePNGError(w, err)
		return
	}
	writePNG(w, buf.Bytes())
}

func (s *Server) writePNGError(w http.ResponseWriter, err error) {
	if errors.Is(err, render.ErrNothingToDraw) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.log.Error("render png", "err", err)
	writeError(w, http.StatusInternalServerError, err)
}

func writePNG(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
	}
	if !decode(w, r, &body) {
		return
	}
	c, err := selection.ParseCategory(body.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.dispatch(w, selection.CategoryChanged{Category: c})
}

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field string `json:"field"`
	}
	if !decode(w, r, &body) {
		return
	}
	f, err := selection.ParseField(body.Field)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.dispatch(w, selection.FieldChanged{Field: f})
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Row *int `json:"row"`
		Col *int `json:"col"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Row == nil || body.Col == nil {
		writeError(w, http.StatusBadRequest, errors.New("row and col are required"))
		return
	}
	s.dispatch(w, selection.CellClicked{Row: *body.Row, Col: *body.Col})
}

func (s *Server) dispatch(w http.ResponseWriter, e selection.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change, err := s.session.Dispatch(e)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, s.stateLocked(change.String()))
	case errors.Is(err, selection.ErrCellOutOfRange),
		errors.Is(err, selection.ErrUnknownCategory),
		errors.Is(err, selection.ErrUnknownField):
		writeError(w, http.StatusBadRequest, err)
	default:
		s.log.Error("dispatch", "err", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}
