package picker

import (
	"github.com/samber/lo"

	"github.com/kartoza/symptom-checker/internal/symptoms"
)

// Chip is a symptom ready for display
type Chip struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// View is a consistent snapshot of everything the page renders
type View struct {
	Selected       []Chip `json:"selected"`
	Related        []Chip `json:"related"`
	Common         []Chip `json:"common"`
	SearchQuery    string `json:"search_query"`
	SearchResults  []Chip `json:"search_results"`
	RelatedPending bool   `json:"related_pending"`
	Loading        bool   `json:"loading"`
	CanPredict     bool   `json:"can_predict"`
	Remaining      int    `json:"remaining"`
	Alert          string `json:"alert,omitempty"`
	Result         Result `json:"result"`
}

func toChips(ids []string) []Chip {
	return lo.Map(ids, func(id string, _ int) Chip {
		return Chip{ID: id, Name: symptoms.FormatName(id)}
	})
}

// View snapshots the picker for rendering
func (p *Picker) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	selected := p.selection.Items()
	remaining := MinSymptoms - len(selected)
	if remaining < 0 {
		remaining = 0
	}

	return View{
		Selected:       toChips(selected),
		Related:        toChips(p.related),
		Common:         toChips(symptoms.Exclude(symptoms.Common, selected, p.related)),
		SearchQuery:    p.searchQuery,
		SearchResults:  toChips(symptoms.Exclude(p.searchResults, selected)),
		RelatedPending: p.settled != p.generation,
		Loading:        p.loading,
		CanPredict:     len(selected) >= MinSymptoms,
		Remaining:      remaining,
		Alert:          p.alert,
		Result:         Classify(p.predictions),
	}
}
