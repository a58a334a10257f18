package library

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Criteria narrows the records shown in the grid.
type Criteria struct {
	// Name is matched fuzzily against game names, case-insensitively.
	Name string
	// MaxPlaytime keeps games played fewer than this many minutes. Zero disables it.
	MaxPlaytime int
	// Unplayed keeps only games that were never started.
	Unplayed bool
}

// Empty reports whether the criteria filter nothing.
func (c Criteria) Empty() bool {
	return strings.TrimSpace(c.Name) == "" && c.MaxPlaytime <= 0 && !c.Unplayed
}

// nameIndex implements fuzzy.Source over pre-lowered game names.
type nameIndex []string

func (n nameIndex) String(i int) string { return n[i] }
func (n nameIndex) Len() int            { return len(n) }

// Filter returns the records matching c, in their original order.
func Filter(records []GameRecord, c Criteria) []GameRecord {
	if c.Empty() {
		return records
	}

	candidates := records
	if query := strings.ToLower(strings.TrimSpace(c.Name)); query != "" {
		names := make(nameIndex, len(records))
		for i, r := range records {
			names[i] = strings.ToLower(r.Name)
		}

		matches := fuzzy.FindFrom(query, names)
		indexes := make([]int, len(matches))
		for i, m := range matches {
			indexes[i] = m.Index
		}
		sort.Ints(indexes)

		candidates = make([]GameRecord, len(indexes))
		for i, idx := range indexes {
			candidates[i] = records[idx]
		}
	}

	filtered := make([]GameRecord, 0, len(candidates))
	for _, r := range candidates {
		if c.MaxPlaytime > 0 && r.PlaytimeForever >= c.MaxPlaytime {
			continue
		}
		if c.Unplayed && r.PlaytimeForever > 0 {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}
