package picker

import (
	"github.com/kartoza/symptom-checker/internal/backend"
)

// HighConfidenceThreshold is the top confidence at which a single result is shown
const HighConfidenceThreshold = 90.0

// ResultKind selects how predictions are rendered
type ResultKind string

const (
	ResultNone           ResultKind = "none"
	ResultHighConfidence ResultKind = "high_confidence"
	ResultAmbiguous      ResultKind = "ambiguous"
)

// RankedPrediction is a prediction with its 1-based position
type RankedPrediction struct {
	Rank       int     `json:"rank"`
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
}

// BarWidth is the confidence clamped to a 0-100 percentage
func (p RankedPrediction) BarWidth() float64 {
	switch {
	case p.Confidence < 0:
		return 0
	case p.Confidence > 100:
		return 100
	default:
		return p.Confidence
	}
}

// Result is the render model for the assessment panel
type Result struct {
	Kind   ResultKind         `json:"kind"`
	Top    *RankedPrediction  `json:"top,omitempty"`
	Ranked []RankedPrediction `json:"ranked,omitempty"`
}

// Classify picks the rendering for a prediction list in backend order.
// A nil list means nothing has been predicted; an empty one is ambiguous.
func Classify(preds []backend.Prediction) Result {
	if preds == nil {
		return Result{Kind: ResultNone}
	}

	ranked := make([]RankedPrediction, len(preds))
	for i, p := range preds {
		ranked[i] = RankedPrediction{Rank: i + 1, Disease: p.Disease, Confidence: p.Confidence}
	}

	if len(ranked) > 0 && ranked[0].Confidence >= HighConfidenceThreshold {
		top := ranked[0]
		return Result{Kind: ResultHighConfidence, Top: &top}
	}
	return Result{Kind: ResultAmbiguous, Ranked: ranked}
}
