// Package resolver selects the one alert that should occupy the shared
// display slot. It is pure: no I/O, no clock, identical input gives
// identical output.
package resolver

import (
	"sort"

	"github.com/lightstack-home/lightstack/internal/domain"
)

// Less reports whether a should be displayed ahead of b. Lower effective
// priority wins; ties go to the more recently triggered alert; the final
// tie-break is ascending alert_key so the result is stable across runs.
func Less(a, b *domain.AlertView) bool {
	if a.EffectivePriority != b.EffectivePriority {
		return a.EffectivePriority < b.EffectivePriority
	}

	at, bt := a.LastTriggeredAt, b.LastTriggeredAt
	switch {
	case at != nil && bt != nil && !at.Equal(*bt):
		return at.After(*bt)
	case at != nil && bt == nil:
		return true
	case at == nil && bt != nil:
		return false
	}

	return a.AlertKey < b.AlertKey
}

// Resolve picks the displayed alert from the set of active states. Returns
// nil when the set is empty, i.e. all clear.
func Resolve(active []domain.AlertView) *domain.AlertView {
	var best *domain.AlertView
	for i := range active {
		if best == nil || Less(&active[i], best) {
			best = &active[i]
		}
	}
	return best
}

// Sort orders a copy of the active set by display precedence, best first.
// The input slice is left untouched.
func Sort(active []domain.AlertView) []domain.AlertView {
	ordered := make([]domain.AlertView, len(active))
	copy(ordered, active)
	sort.SliceStable(ordered, func(i, j int) bool {
		return Less(&ordered[i], &ordered[j])
	})
	return ordered
}

// Changed reports whether the displayed alert moved between two resolver
// outputs, compared by alert key.
func Changed(previous, current *domain.AlertView) bool {
	prevKey, curKey := "", ""
	if previous != nil {
		prevKey = previous.AlertKey
	}
	if current != nil {
		curKey = current.AlertKey
	}
	return prevKey != curKey
}
