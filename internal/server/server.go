package server

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/kartoza/symptom-checker/internal/api"
	"github.com/kartoza/symptom-checker/internal/catalog"
	"github.com/kartoza/symptom-checker/internal/config"
	"github.com/kartoza/symptom-checker/internal/logging"
	"github.com/kartoza/symptom-checker/internal/metrics"
	"github.com/kartoza/symptom-checker/internal/sessions"
)

//go:embed static/*
var staticFS embed.FS

//go:embed templates/index.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"pct": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
}

// Deps are the components the server routes to
type Deps struct {
	Sessions *sessions.Store
	Catalog  *catalog.Store
	Proxy    http.Handler
	Metrics  *metrics.Metrics
	Logger   logging.Logger
}

// Server holds all the components for the web application
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	router     *mux.Router
	sessions   *sessions.Store
	catalog    *catalog.Store
	proxy      http.Handler
	metrics    *metrics.Metrics
	logger     logging.Logger
	page       *template.Template
}

// New creates a new Server with all components initialized
func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Sessions == nil {
		return nil, fmt.Errorf("server: session store is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}

	page, err := template.New("index.html").Funcs(funcs).ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		router:   mux.NewRouter(),
		sessions: deps.Sessions,
		catalog:  deps.Catalog,
		proxy:    deps.Proxy,
		metrics:  deps.Metrics,
		logger:   deps.Logger.Named("server"),
		page:     page,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() error {
	s.router.Use(s.logRequests)

	// Backend API, forwarded untouched
	if s.proxy != nil {
		s.router.PathPrefix("/api/").Handler(s.proxy)
	}

	// Session, health and info endpoints
	apiHandler := api.NewHandler(s.sessions, s.catalog, s.cfg, s.logger)
	apiHandler.RegisterRoutes(s.router)

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	// Static assets (embedded)
	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("failed to load embedded static files: %w", err)
	}
	s.router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	return nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleIndex renders the picker page for the caller's session
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.GetOrCreate(w, r)
	view := sess.Picker.View()

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, view); err != nil {
		s.logger.Error("failed to render page", logging.Err(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	// The alert is shown once per failure
	if view.Alert != "" {
		sess.Picker.DismissAlert()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// Start begins listening for HTTP connections
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("server listening", logging.String("url", fmt.Sprintf("http://localhost:%d", s.cfg.Port)))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	// Close stores
	s.sessions.Close()
	if s.catalog != nil {
		if cerr := s.catalog.Close(); cerr != nil {
			s.logger.Warn("failed to close symptom catalog", logging.Err(cerr))
		}
	}
	return err
}
