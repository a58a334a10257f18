package library

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
)

// SortKey selects the column records are ordered by.
type SortKey int

const (
	// SortArrival keeps the order records arrived in.
	SortArrival SortKey = iota
	SortName
	SortScore
	SortPlaytime
)

var sortKeyNames = map[SortKey]string{
	SortArrival:  "arrival",
	SortName:     "name",
	SortScore:    "score",
	SortPlaytime: "playtime",
}

func (k SortKey) String() string {
	if name, ok := sortKeyNames[k]; ok {
		return name
	}
	return "unknown"
}

// Next cycles through the sort keys.
func (k SortKey) Next() SortKey {
	return (k + 1) % SortKey(len(sortKeyNames))
}

// SortRecords returns a stably sorted copy of records. Records without a
// score rank as negative infinity: first when ascending, last when descending.
func SortRecords(records []GameRecord, key SortKey, descending bool) []GameRecord {
	sorted := slices.Clone(records)
	if key == SortArrival {
		if descending {
			slices.Reverse(sorted)
		}
		return sorted
	}

	compare := comparator(key)
	slices.SortStableFunc(sorted, func(a, b GameRecord) int {
		if descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return sorted
}

func comparator(key SortKey) func(a, b GameRecord) int {
	switch key {
	case SortName:
		return func(a, b GameRecord) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case SortScore:
		return func(a, b GameRecord) int {
			return cmp.Compare(ScoreValue(a.Metacritic), ScoreValue(b.Metacritic))
		}
	case SortPlaytime:
		return func(a, b GameRecord) int {
			return cmp.Compare(a.PlaytimeForever, b.PlaytimeForever)
		}
	default:
		return func(GameRecord, GameRecord) int { return 0 }
	}
}

// ScoreValue maps a missing score to negative infinity.
func ScoreValue(score *int) float64 {
	if score == nil {
		return math.Inf(-1)
	}
	return float64(*score)
}

// ScoreBand is the colour band a quality score is shown in.
type ScoreBand int

const (
	BandUnknown ScoreBand = iota
	BandPoor
	BandMixed
	BandGood
)

// BandOf returns the band for score: good from 80, mixed from 69.
func BandOf(score *int) ScoreBand {
	switch {
	case score == nil:
		return BandUnknown
	case *score >= 80:
		return BandGood
	case *score >= 69:
		return BandMixed
	default:
		return BandPoor
	}
}

// FormatScore renders a score for display, "--" when absent.
func FormatScore(score *int) string {
	if score == nil {
		return "--"
	}
	return strconv.Itoa(*score)
}
