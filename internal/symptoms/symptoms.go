package symptoms

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Common is the starting shortlist shown before the backend suggests anything
var Common = []string{
	"fatigue", "high_fever", "headache", "nausea",
	"vomiting", "cough", "joint_pain", "skin_rash",
	"itching", "chills",
}

// FormatName turns a symptom key into a display name, e.g. "skin_rash" -> "Skin Rash"
func FormatName(id string) string {
	// Casers keep state and are not shared across goroutines
	return cases.Title(language.English, cases.NoLower).String(strings.ReplaceAll(id, "_", " "))
}

// Selection is an ordered set of symptom ids
type Selection struct {
	items []string
}

// NewSelection builds a selection, dropping duplicates and blanks
func NewSelection(ids ...string) *Selection {
	s := &Selection{}
	for _, id := range lo.Uniq(ids) {
		if id != "" {
			s.items = append(s.items, id)
		}
	}
	return s
}

// Toggle removes id if present, otherwise appends it.
// It reports whether id is selected afterwards.
func (s *Selection) Toggle(id string) bool {
	if lo.Contains(s.items, id) {
		s.items = lo.Without(s.items, id)
		return false
	}
	s.items = append(s.items, id)
	return true
}

// Contains reports whether id is selected
func (s *Selection) Contains(id string) bool {
	return lo.Contains(s.items, id)
}

// Len returns the number of selected symptoms
func (s *Selection) Len() int {
	return len(s.items)
}

// Items returns a copy of the selection in insertion order
func (s *Selection) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.items = nil
}

// Exclude returns ids with every member of the given sets removed, keeping order
func Exclude(ids []string, sets ...[]string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		skip := false
		for _, set := range sets {
			if lo.Contains(set, id) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, id)
		}
	}
	return out
}
