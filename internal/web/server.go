// Package web serves the single-page question form and a small JSON API
// on top of the query facade.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/hetulpatel/sqlchat/internal/logging"
	"github.com/hetulpatel/sqlchat/internal/metrics"
	"github.com/hetulpatel/sqlchat/internal/qa"
)

const (
	Title = "Quick Commerce Price Comparison"

	maxQuestionBytes = 4 << 10
)

// SampleQuestions are offered in the sidebar.
var SampleQuestions = []string{
	"Which app has cheapest onions right now?",
	"Compare fruit prices between Zepto and Instamart",
	"Show products with 30%+ discount on Blinkit",
	"Find best deals for ₹1000 grocery list",
	"What are the most expensive vegetables?",
	"Which platform has the lowest delivery charges?",
}

//go:embed templates/*.html
var templateFS embed.FS

// Facade is the part of qa.Service the handlers call.
type Facade interface {
	Ask(ctx context.Context, question string) string
	Status(ctx context.Context) qa.Status
}

type Config struct {
	Addr   string
	Facade Facade
}

type Server struct {
	addr   string
	facade Facade
	tmpl   *template.Template
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Facade == nil {
		return nil, fmt.Errorf("web: facade is required")
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	addr := cfg.Addr
	if addr == "" {
		addr = ":8501"
	}
	return &Server{addr: addr, facade: cfg.Facade, tmpl: tmpl}, nil
}

// Handler returns the router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/", s.handleIndex)
	r.Post("/ask", s.handleAsk)
	r.Get("/clear", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", s.handleAPIAsk)
		r.Get("/status", s.handleAPIStatus)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

// Serve starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		logging.Infof("[frontend] listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.Debugf("[frontend] shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

type pageData struct {
	Title    string
	Samples  []string
	Status   qa.Status
	Question string
	Answered bool
	Answer   string
	Failed   bool
}

func (s *Server) newPage(r *http.Request, question string) pageData {
	return pageData{
		Title:    Title,
		Samples:  SampleQuestions,
		Status:   s.facade.Status(r.Context()),
		Question: question,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, s.newPage(r, strings.TrimSpace(r.URL.Query().Get("q"))))
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQuestionBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	question := strings.TrimSpace(r.PostForm.Get("question"))
	page := s.newPage(r, question)
	if question != "" {
		page.Answer = s.facade.Ask(r.Context(), question)
		page.Answered = true
		page.Failed = qa.IsFailure(page.Answer)
	}
	s.render(w, page)
}

func (s *Server) render(w http.ResponseWriter, page pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", page); err != nil {
		logging.Errorf("[frontend] render: %v", err)
	}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	OK       bool   `json:"ok"`
}

func (s *Server) handleAPIAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuestionBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}
	answer := s.facade.Ask(r.Context(), question)
	writeJSON(w, http.StatusOK, askResponse{Question: question, Answer: answer, OK: !qa.IsFailure(answer)})
}

func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.facade.Status(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Errorf("[frontend] encode response: %v", err)
	}
}
