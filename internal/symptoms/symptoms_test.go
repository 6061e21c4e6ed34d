package symptoms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatName(t *testing.T) {
	cases := map[string]string{
		"skin_rash":            "Skin Rash",
		"high_fever":           "High Fever",
		"cough":                "Cough",
		"abdominal_pain":       "Abdominal Pain",
		"":                     "",
		"pain_behind_the_eyes": "Pain Behind The Eyes",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatName(in), in)
	}
}

func TestToggleTwiceRestoresSelection(t *testing.T) {
	s := NewSelection("fatigue", "cough")
	before := s.Items()

	assert.True(t, s.Toggle("headache"))
	assert.Equal(t, []string{"fatigue", "cough", "headache"}, s.Items())
	assert.False(t, s.Toggle("headache"))
	assert.Equal(t, before, s.Items())

	// Removing and re-adding an existing member changes order but not membership
	assert.False(t, s.Toggle("fatigue"))
	assert.True(t, s.Toggle("fatigue"))
	assert.ElementsMatch(t, before, s.Items())
}

func TestNewSelectionDropsDuplicates(t *testing.T) {
	s := NewSelection("cough", "", "cough", "chills")
	assert.Equal(t, []string{"cough", "chills"}, s.Items())
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("chills"))
	assert.False(t, s.Contains("nausea"))
}

func TestItemsReturnsCopy(t *testing.T) {
	s := NewSelection("cough")
	items := s.Items()
	items[0] = "mutated"
	assert.Equal(t, []string{"cough"}, s.Items())
}

func TestClear(t *testing.T) {
	s := NewSelection("cough", "chills")
	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Items())
}

func TestExclude(t *testing.T) {
	got := Exclude(Common, []string{"fatigue", "cough"}, []string{"chills"})
	assert.NotContains(t, got, "fatigue")
	assert.NotContains(t, got, "cough")
	assert.NotContains(t, got, "chills")
	assert.Len(t, got, len(Common)-3)
	assert.Equal(t, "high_fever", got[0])
}
