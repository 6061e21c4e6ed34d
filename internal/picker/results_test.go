package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartoza/symptom-checker/internal/backend"
)

func TestClassifyNone(t *testing.T) {
	assert.Equal(t, Result{Kind: ResultNone}, Classify(nil))
}

func TestClassifyHighConfidence(t *testing.T) {
	r := Classify([]backend.Prediction{{Disease: "Flu", Confidence: 95}})

	assert.Equal(t, ResultHighConfidence, r.Kind)
	require.NotNil(t, r.Top)
	assert.Equal(t, "Flu", r.Top.Disease)
	assert.Equal(t, 95.0, r.Top.BarWidth())
	assert.Empty(t, r.Ranked)
}

func TestClassifyThresholdIsInclusive(t *testing.T) {
	r := Classify([]backend.Prediction{{Disease: "Malaria", Confidence: 90}})
	assert.Equal(t, ResultHighConfidence, r.Kind)

	r = Classify([]backend.Prediction{{Disease: "Malaria", Confidence: 89.99}})
	assert.Equal(t, ResultAmbiguous, r.Kind)
}

func TestClassifyAmbiguousKeepsOrder(t *testing.T) {
	r := Classify([]backend.Prediction{
		{Disease: "A", Confidence: 60},
		{Disease: "B", Confidence: 55},
	})

	assert.Equal(t, ResultAmbiguous, r.Kind)
	assert.Nil(t, r.Top)
	assert.Equal(t, []RankedPrediction{
		{Rank: 1, Disease: "A", Confidence: 60},
		{Rank: 2, Disease: "B", Confidence: 55},
	}, r.Ranked)
}

func TestClassifyEmptyListIsAmbiguous(t *testing.T) {
	r := Classify([]backend.Prediction{})
	assert.Equal(t, ResultAmbiguous, r.Kind)
	assert.Empty(t, r.Ranked)
}

func TestBarWidthClamps(t *testing.T) {
	assert.Equal(t, 0.0, RankedPrediction{Confidence: -5}.BarWidth())
	assert.Equal(t, 100.0, RankedPrediction{Confidence: 130}.BarWidth())
	assert.Equal(t, 42.5, RankedPrediction{Confidence: 42.5}.BarWidth())
}
