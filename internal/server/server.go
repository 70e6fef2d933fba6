// Package server exposes rendering, previews and Agent-SDD project data over
// HTTP for a browser front end.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"pkt.systems/mdhtml"
	"pkt.systems/mdhtml/internal/preview"
	"pkt.systems/mdhtml/internal/registry"
	"pkt.systems/mdhtml/internal/sdd"
	"pkt.systems/mdhtml/internal/specview"
	"pkt.systems/mdhtml/internal/watch"
)

// Options configures a Server.
type Options struct {
	// Previewer renders /api/preview; nil uses the basic engine.
	Previewer *preview.Previewer
	// Registry enables the /api/projects endpoints when set.
	Registry *registry.Store
	// Render holds the default options for /api/render.
	Render []mdhtml.RenderOption
	// Debounce is the live-reload debounce for /api/events.
	Debounce time.Duration
	Logger   *slog.Logger
}

// Server serves the HTTP API.
type Server struct {
	previewer *preview.Previewer
	scanner   *sdd.Scanner
	registry  *registry.Store
	render    []mdhtml.RenderOption
	debounce  time.Duration
	logger    *slog.Logger
}

// New builds a Server.
func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	previewer := opts.Previewer
	if previewer == nil {
		var err error
		previewer, err = preview.New(preview.Options{})
		if err != nil {
			return nil, err
		}
	}
	return &Server{
		previewer: previewer,
		scanner:   sdd.NewScanner(logger),
		registry:  opts.Registry,
		render:    opts.Render,
		debounce:  opts.Debounce,
		logger:    logger,
	}, nil
}

// Handler returns the routed handler with request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /api/preview", s.handlePreview)
	mux.HandleFunc("GET /api/specs", s.handleSpecs)
	mux.HandleFunc("GET /api/project", s.handleProject)
	mux.HandleFunc("GET /api/dirs", s.handleDirs)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	if s.registry != nil {
		mux.HandleFunc("GET /api/projects", s.handleListProjects)
		mux.HandleFunc("POST /api/projects", s.handleAddProject)
		mux.HandleFunc("DELETE /api/projects/{id}", s.handleRemoveProject)
		mux.HandleFunc("POST /api/projects/{id}/select", s.handleSelectProject)
	}
	return s.withRequestLog(withSecurityHeaders(mux))
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())
	select {
	case err := <-errc:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := renderOptions(r, s.render)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var out strings.Builder
	err = mdhtml.Convert(mdhtml.ConvertRequest{Reader: r.Body, Writer: &out, Options: opts})
	switch {
	case errors.Is(err, mdhtml.ErrInputTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	case errors.Is(err, mdhtml.ErrInvalidUTF8), errors.Is(err, mdhtml.ErrBinaryInput):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out.String()))
}

// renderOptions appends per-request overrides to the defaults.
func renderOptions(r *http.Request, defaults []mdhtml.RenderOption) ([]mdhtml.RenderOption, error) {
	opts := append([]mdhtml.RenderOption(nil), defaults...)
	q := r.URL.Query()
	if v := q.Get("front_matter"); v != "" {
		strip, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("front_matter: %w", err)
		}
		opts = append(opts, mdhtml.WithFrontMatter(strip))
	}
	if v := q.Get("sanitize"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("sanitize: %w", err)
		}
		if on {
			opts = append(opts, mdhtml.WithSanitizer(mdhtml.SanitizePolicy()))
		} else {
			opts = append(opts, mdhtml.WithSanitizer(nil))
		}
	}
	if q.Has("title") {
		opts = append(opts, mdhtml.WithDocument(q.Get("title")))
	}
	return opts, nil
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, errors.New("path is required"))
		return
	}
	writeJSON(w, http.StatusOK, s.previewer.File(path))
}

type specsResponse struct {
	Project string         `json:"project"`
	Total   int            `json:"total"`
	Specs   []sdd.Spec     `json:"specs"`
	Rows    []specview.Row `json:"rows"`
	// Selected is the spec named by ?selected=, even when the filter hides it.
	Selected *sdd.Spec `json:"selected,omitempty"`
}

func (s *Server) handleSpecs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	project, err := s.projectPath(r.Context(), q.Get("project"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	specs, err := s.scanner.ScanSpecs(project)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	state := specview.State{}.
		WithSpecs(specs).
		WithFilter(specview.Filter{Search: q.Get("q"), Phase: q.Get("phase"), Status: q.Get("status")})
	if col := q.Get("sort"); col != "" {
		column, err := specview.ParseColumn(col)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		ascending := true
		if v := q.Get("asc"); v != "" {
			if ascending, err = strconv.ParseBool(v); err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("asc: %w", err))
				return
			}
		}
		// The first click on a column sorts ascending, the second flips it.
		state = state.SortBy(column)
		if !ascending {
			state = state.SortBy(column)
		}
	}
	if id := q.Get("selected"); id != "" {
		state = state.Select(id)
	}
	view := state.View()
	resp := specsResponse{
		Project: project,
		Total:   len(specs),
		Specs:   view,
		Rows:    specview.Rows(view),
	}
	if spec, ok := state.Selection(); ok {
		resp.Selected = &spec
	}
	writeJSON(w, http.StatusOK, resp)
}

// projectPath falls back to the registry selection when no project is given.
func (s *Server) projectPath(ctx context.Context, project string) (string, error) {
	if project != "" {
		return project, nil
	}
	if s.registry != nil {
		p, ok, err := s.registry.Selected(ctx)
		if err != nil {
			return "", err
		}
		if ok {
			return p.Path, nil
		}
	}
	return "", errMissingProject
}

var errMissingProject = errors.New("project is required")

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.projectPath(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	report, err := s.scanner.ScanProject(project)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDirs(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	if base == "" {
		writeError(w, http.StatusBadRequest, errors.New("base is required"))
		return
	}
	dirs, err := sdd.ListChildDirectories(base)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, dirs)
}

// handleEvents streams server-sent "change" events for a file or directory.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, errors.New("path is required"))
		return
	}
	if _, err := os.Stat(path); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": watching\n\n")
	flusher.Flush()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	changes := make(chan []string, 1)
	errc := make(chan error, 1)
	go func() {
		watcher := watch.Watcher{Debounce: s.debounce, Logger: s.logger}
		errc <- watcher.Run(ctx, []string{path}, func(changed []string) {
			select {
			case changes <- changed:
			case <-ctx.Done():
			}
		})
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errc:
			if err != nil {
				s.logger.Warn("live reload stopped", "path", path, "err", err)
			}
			return
		case changed := <-changes:
			data, err := json.Marshal(map[string][]string{"paths": changed})
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

type projectsResponse struct {
	Projects []registry.Project `json:"projects"`
	Selected string             `json:"selected,omitempty"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.registry.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	resp := projectsResponse{Projects: projects}
	if p, ok, err := s.registry.Selected(r.Context()); err == nil && ok {
		resp.Selected = p.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

type addProjectRequest struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

func (s *Server) handleAddProject(w http.ResponseWriter, r *http.Request) {
	var req addProjectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	info, err := os.Stat(req.Path)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if !info.IsDir() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%s: %w", req.Path, sdd.ErrNotDirectory))
		return
	}
	p, err := s.registry.Add(r.Context(), req.Path, req.Label)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleRemoveProject(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Remove(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.registry.Select(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, sdd.ErrNotDirectory), errors.Is(err, errMissingProject):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
