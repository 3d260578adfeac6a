package domain

import (
	"sort"
	"strings"
)

// Filter is the list-view predicate: free-text search plus exact phase and segment.
type Filter struct {
	Search  string
	Phase   string
	Segment string
}

func (f Filter) Match(p Project) bool {
	if f.Phase != "" && p.Phase != f.Phase {
		return false
	}
	if f.Segment != "" && p.Segment != f.Segment {
		return false
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	if search == "" {
		return true
	}
	text := strings.ToLower(strings.Join([]string{
		p.Name, p.City, p.Province, p.Promoter, p.Architecture, p.Engineering,
	}, " "))
	return strings.Contains(text, search)
}

// Apply returns the matching projects, leaving the input untouched.
func (f Filter) Apply(items []Project) []Project {
	out := make([]Project, 0, len(items))
	for _, p := range items {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// SortByPhaseAndName orders projects the way the list view shows them.
func SortByPhaseAndName(items []Project) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Phase != items[j].Phase {
			return items[i].Phase < items[j].Phase
		}
		return items[i].Name < items[j].Name
	})
}
