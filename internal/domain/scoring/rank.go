package scoring

import (
	"cmp"
	"slices"
)

// Entry is one score inside an (event, division) partition. Ref is an opaque
// caller index carried through ranking untouched.
type Entry struct {
	Ref     int
	Value   float64
	SortKey string
	Status  string
}

// Ranked is an entry annotated with its rank and weighted points.
type Ranked struct {
	Entry
	Rank   int
	Points int
}

// Assign ranks one partition and returns ranked active entries (best first)
// followed by DNF entries. Excluded entries are dropped.
//
// Active entries are compared by sort key when every one of them carries a
// non-empty key, and by numeric value otherwise; lower is better. Equal keys
// share a rank and the next distinct key takes its 1-based position.
func Assign(entries []Entry, weight float64) []Ranked {
	var active, dnf []Entry
	for _, e := range entries {
		switch Classify(e.Status) {
		case Active:
			active = append(active, e)
		case DidNotFinish:
			dnf = append(dnf, e)
		}
	}

	bySortKey := len(active) > 0
	for _, e := range active {
		if e.SortKey == "" {
			bySortKey = false
			break
		}
	}
	compare := func(a, b Entry) int { return cmp.Compare(a.Value, b.Value) }
	if bySortKey {
		compare = func(a, b Entry) int { return cmp.Compare(a.SortKey, b.SortKey) }
	}
	slices.SortStableFunc(active, compare)

	out := make([]Ranked, 0, len(active)+len(dnf))
	lastRank := 0
	for i, e := range active {
		rank := i + 1
		if i > 0 && compare(active[i-1], e) == 0 {
			rank = lastRank
		}
		lastRank = rank
		out = append(out, Ranked{Entry: e, Rank: rank, Points: Points(rank, weight)})
	}

	dnfRank := lastRank + 1
	for _, e := range dnf {
		out = append(out, Ranked{Entry: e, Rank: dnfRank, Points: Points(dnfRank, weight)})
	}
	return out
}
