package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/kartoza/symptom-checker/internal/catalog"
	"github.com/kartoza/symptom-checker/internal/config"
	"github.com/kartoza/symptom-checker/internal/httputil"
	"github.com/kartoza/symptom-checker/internal/logging"
	"github.com/kartoza/symptom-checker/internal/models"
	"github.com/kartoza/symptom-checker/internal/picker"
	"github.com/kartoza/symptom-checker/internal/sessions"
)

// Handler provides the session endpoints driving the picker page
type Handler struct {
	sessions *sessions.Store
	catalog  *catalog.Store
	cfg      config.Config
	logger   logging.Logger
	validate *validator.Validate
}

// NewHandler creates a new API handler
func NewHandler(
	store *sessions.Store,
	cat *catalog.Store,
	cfg config.Config,
	logger logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		sessions: store,
		catalog:  cat,
		cfg:      cfg,
		logger:   logger.Named("api"),
		validate: validator.New(),
	}
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Health and info
	r.HandleFunc("/healthz", h.handleHealth).Methods("GET")
	r.HandleFunc("/info", h.handleInfo).Methods("GET")

	// Picker session
	s := r.PathPrefix("/session").Subrouter()
	s.HandleFunc("/state", h.handleState).Methods("GET")
	s.HandleFunc("/toggle", h.handleToggle).Methods("POST")
	s.HandleFunc("/search", h.handleSearch).Methods("POST")
	s.HandleFunc("/predict", h.handlePredict).Methods("POST")
	s.HandleFunc("/reset", h.handleReset).Methods("POST")
}

func (h *Handler) respond(w http.ResponseWriter, status int, data any) {
	if err := httputil.RespondJSON(w, status, data); err != nil {
		h.logger.Warn("failed to write response", logging.Err(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respond(w, status, httputil.ErrorResponse{Error: message})
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}

// handleInfo returns server information
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := models.InfoResponse{
		Version:       h.cfg.Version,
		Backend:       h.cfg.BackendURL,
		CatalogSource: catalog.SourceMemory,
	}
	if h.catalog != nil {
		info.CatalogSource = h.catalog.Source()
	}
	if h.sessions != nil {
		info.Sessions = h.sessions.Len()
	}
	h.respond(w, http.StatusOK, info)
}

// handleState returns the caller's picker view
func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.GetOrCreate(w, r)
	h.respond(w, http.StatusOK, sess.Picker.View())
}

// handleToggle adds or removes one symptom
func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req models.ToggleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "symptom is required")
		return
	}

	sess := h.sessions.GetOrCreate(w, r)
	sess.Picker.Toggle(req.Symptom)
	h.respond(w, http.StatusOK, sess.Picker.View())
}

// handleSearch updates the free-text search
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := h.sessions.GetOrCreate(w, r)
	sess.Picker.SetSearch(req.Query)
	h.respond(w, http.StatusOK, sess.Picker.View())
}

// handlePredict runs a prediction for the caller's selection
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.GetOrCreate(w, r)

	err := sess.Picker.Predict(r.Context())
	switch {
	case errors.Is(err, picker.ErrPredictionInFlight):
		h.respondError(w, http.StatusConflict, "prediction already in progress")
	case err != nil:
		h.logger.Warn("prediction request failed",
			logging.String("session_id", sess.ID),
			logging.Err(err),
		)
		h.respondError(w, http.StatusBadGateway, picker.AlertPredictionFailed)
	default:
		h.respond(w, http.StatusOK, sess.Picker.View())
	}
}

// handleReset clears the caller's picker
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.GetOrCreate(w, r)
	sess.Picker.Reset()
	h.respond(w, http.StatusOK, sess.Picker.View())
}
