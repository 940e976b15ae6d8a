// Package server exposes survey results over HTTP.
//
// Routes:
//
//	GET  /healthz                  liveness
//	GET  /api/survey               latest rows and summary (?sort=name|platform&order=asc|desc)
//	POST /api/survey/refresh       run a new pass (?force=true bypasses the cached catalog)
//	POST /api/survey/sort/{field}  toggle sort on a field
//	GET  /api/resolve?url=         resolve one landing page
//	GET  /api/probe?url=           probe one repository
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/saltiyazan/charmhub-scrape/pkg/charm"
	errs "github.com/saltiyazan/charmhub-scrape/pkg/errors"
	"github.com/saltiyazan/charmhub-scrape/pkg/survey"
)

// Prober probes a single repository URL.
type Prober interface {
	ProbeURL(ctx context.Context, repoURL string) charm.Detection
}

// Server serves a [survey.View].
type Server struct {
	view     *survey.View
	resolver survey.Resolver
	prober   Prober
	logger   *log.Logger
	router   chi.Router
}

// New builds the router. A nil logger uses the default logger.
func New(view *survey.View, resolver survey.Resolver, prober Prober, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{view: view, resolver: resolver, prober: prober, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/survey", s.handleSurvey)
		r.Post("/survey/refresh", s.handleRefresh)
		r.Post("/survey/sort/{field}", s.handleSort)
		r.Get("/resolve", s.handleResolve)
		r.Get("/probe", s.handleProbe)
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleSurvey(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if field := q.Get("sort"); field != "" {
		f, err := survey.ParseSortField(field)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		dir, err := survey.ParseDirection(q.Get("order"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.view.SortBy(f, dir)
	}
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	// Passes run to completion even if the client goes away.
	if err := s.view.Refresh(context.WithoutCancel(r.Context()), force); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	field, err := survey.ParseSortField(chi.URLParam(r, "field"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.view.Sort(field)
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

type resolveResponse struct {
	URL        string `json:"url"`
	Repository string `json:"repository"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if err := errs.ValidateURL(target); err != nil {
		s.writeError(w, r, err)
		return
	}
	repo, err := s.resolver.Resolve(r.Context(), target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{URL: target, Repository: repo})
}

type probeResponse struct {
	Repository string `json:"repository"`
	Found      bool   `json:"found"`
	Version    string `json:"version"`
	Candidate  string `json:"candidate,omitempty"`
	Attempts   int    `json:"attempts"`
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if err := errs.ValidateURL(target); err != nil {
		s.writeError(w, r, err)
		return
	}
	d := s.prober.ProbeURL(r.Context(), target)
	writeJSON(w, http.StatusOK, probeResponse{
		Repository: target,
		Found:      d.Found(),
		Version:    d.String(),
		Candidate:  d.Candidate,
		Attempts:   d.Attempts,
	})
}
