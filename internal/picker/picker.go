// Package picker holds the per-visitor symptom picker state: the selection,
// the debounced related-symptom lookup, and the gated prediction call.
package picker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kartoza/symptom-checker/internal/backend"
	"github.com/kartoza/symptom-checker/internal/debounce"
	"github.com/kartoza/symptom-checker/internal/logging"
	"github.com/kartoza/symptom-checker/internal/metrics"
	"github.com/kartoza/symptom-checker/internal/symptoms"
)

// MinSymptoms is the selection size required before predicting
const MinSymptoms = 3

// AlertPredictionFailed is shown to the user when the predict call fails
const AlertPredictionFailed = "Error generating prediction."

// ErrPredictionInFlight is returned when Predict is called while loading
var ErrPredictionInFlight = errors.New("picker: prediction already in progress")

// Backend is the inference service the picker consults
type Backend interface {
	RelatedSymptoms(ctx context.Context, selected []string) ([]string, error)
	Predict(ctx context.Context, selected []string) ([]backend.Prediction, error)
}

// Searcher resolves free-text search against the symptom catalog
type Searcher interface {
	Search(query string, limit int) ([]string, error)
}

// Config wires a Picker to its collaborators
type Config struct {
	Backend      Backend
	Catalog      Searcher
	Logger       logging.Logger
	Metrics      *metrics.Metrics
	Debounce     time.Duration
	FetchTimeout time.Duration
	SearchLimit  int
}

// Picker is the state of one picker page view. Safe for concurrent use.
type Picker struct {
	backend      Backend
	catalog      Searcher
	logger       logging.Logger
	metrics      *metrics.Metrics
	debouncer    *debounce.Debouncer
	fetchTimeout time.Duration
	searchLimit  int

	mu            sync.Mutex
	selection     *symptoms.Selection
	related       []string
	searchQuery   string
	searchResults []string
	predictions   []backend.Prediction
	loading       bool
	alert         string
	// generation advances on every selection change; settled is the
	// generation whose related lookup has finished
	generation uint64
	settled    uint64
	// scheduled is the newest generation handed to the debouncer
	scheduled uint64
	closed    bool
}

// New creates an empty picker
func New(cfg Config) *Picker {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 8
	}
	return &Picker{
		backend:      cfg.Backend,
		catalog:      cfg.Catalog,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		debouncer:    debounce.New(cfg.Debounce),
		fetchTimeout: cfg.FetchTimeout,
		searchLimit:  cfg.SearchLimit,
		selection:    symptoms.NewSelection(),
	}
}

// Toggle adds or removes a symptom, invalidates predictions, and schedules
// a related-symptom refresh for the new selection.
func (p *Picker) Toggle(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.selection.Toggle(id)
	p.predictions = nil
	p.generation++
	gen := p.generation
	selected := p.selection.Items()
	if len(selected) == 0 {
		p.related = nil
		p.settled = gen
	}

	p.scheduleRelatedLocked(gen, selected)
}

// scheduleRelatedLocked hands the fetch for gen to the debouncer. Callers
// hold p.mu, so schedules reach the debouncer in generation order; an older
// generation never replaces a newer one.
func (p *Picker) scheduleRelatedLocked(gen uint64, selected []string) {
	if gen < p.scheduled {
		return
	}
	p.scheduled = gen
	if len(selected) == 0 {
		if p.debouncer.Cancel() {
			p.metrics.RelatedCollapsed()
		}
		return
	}
	if p.debouncer.Schedule(func() { p.fetchRelated(gen, selected) }) {
		p.metrics.RelatedCollapsed()
	}
}

// fetchRelated runs on the debounce timer goroutine
func (p *Picker) fetchRelated(gen uint64, selected []string) {
	var (
		related []string
		err     error
	)
	if p.backend == nil {
		err = errors.New("no backend configured")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), p.fetchTimeout)
		related, err = p.backend.RelatedSymptoms(ctx, selected)
		cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen == p.generation {
		p.settled = gen
	}

	if err != nil {
		p.logger.Warn("failed to fetch related symptoms",
			logging.Err(err),
			logging.Strings("selected", selected),
		)
		return
	}
	if gen != p.generation {
		p.metrics.RelatedStale()
		p.logger.Debug("discarding related symptoms for outdated selection",
			logging.Strings("selected", selected),
		)
		return
	}
	p.related = symptoms.Exclude(related, p.selection.Items())
}

// Predict requests predictions for the current selection.
// It does nothing when fewer than MinSymptoms are selected.
func (p *Picker) Predict(ctx context.Context) error {
	p.mu.Lock()
	if p.selection.Len() < MinSymptoms {
		p.mu.Unlock()
		return nil
	}
	if p.loading {
		p.mu.Unlock()
		return ErrPredictionInFlight
	}
	p.loading = true
	p.alert = ""
	gen := p.generation
	selected := p.selection.Items()
	p.mu.Unlock()

	var (
		preds []backend.Prediction
		err   error
	)
	defer func() {
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
	}()

	if p.backend == nil {
		err = errors.New("no backend configured")
	} else {
		ctx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
		preds, err = p.backend.Predict(ctx, selected)
		cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		// The selection changed while waiting; the outcome no longer applies
		p.logger.Debug("discarding prediction outcome for outdated selection",
			logging.Strings("selected", selected),
			logging.Bool("failed", err != nil),
		)
		return nil
	}
	if err != nil {
		p.alert = AlertPredictionFailed
		p.logger.Error("prediction failed", logging.Err(err), logging.Strings("selected", selected))
		return fmt.Errorf("prediction failed: %w", err)
	}
	if preds == nil {
		preds = []backend.Prediction{}
	}
	p.predictions = preds
	return nil
}

// SetSearch stores the search text and looks it up in the catalog
func (p *Picker) SetSearch(query string) {
	var results []string
	trimmed := strings.TrimSpace(query)
	if trimmed != "" && p.catalog != nil {
		found, err := p.catalog.Search(trimmed, p.searchLimit)
		if err != nil {
			p.logger.Warn("symptom search failed", logging.Err(err), logging.String("query", trimmed))
		} else {
			results = found
		}
	}

	p.mu.Lock()
	p.searchQuery = query
	p.searchResults = results
	p.mu.Unlock()
}

// DismissAlert clears the pending user-facing alert
func (p *Picker) DismissAlert() {
	p.mu.Lock()
	p.alert = ""
	p.mu.Unlock()
}

// Reset clears every piece of state and cancels a pending related fetch
func (p *Picker) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.debouncer.Cancel()
	p.selection.Clear()
	p.related = nil
	p.searchQuery = ""
	p.searchResults = nil
	p.predictions = nil
	p.alert = ""
	p.generation++
	p.settled = p.generation
	p.scheduled = p.generation
}

// Close cancels the pending related fetch and stops further scheduling.
// It reports false when the picker was already closed.
func (p *Picker) Close() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.closed = true
	p.debouncer.Stop()
	return true
}

// Closed reports whether Close has been called
func (p *Picker) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Selected returns the current selection in insertion order
func (p *Picker) Selected() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection.Items()
}

// Related returns the current related set
func (p *Picker) Related() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.related...)
}

// Predictions returns the stored predictions, nil when there are none
func (p *Picker) Predictions() []backend.Prediction {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.predictions == nil {
		return nil
	}
	return append([]backend.Prediction{}, p.predictions...)
}

// Loading reports whether a prediction is in progress
func (p *Picker) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// RelatedPending reports whether a related fetch is scheduled or in flight
func (p *Picker) RelatedPending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled != p.generation
}
