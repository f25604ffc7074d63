package attendance

import (
	"sort"
	"time"
)

// Interval is a half-open presence span within the session.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Minutes() float64 {
	if !iv.End.After(iv.Start) {
		return 0
	}
	return iv.End.Sub(iv.Start).Minutes()
}

// mergeIntervals unions a set of spans, coalescing overlapping and
// touching neighbors. Input order does not matter; output is sorted by
// start.
func mergeIntervals(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].End.Before(sorted[j].End)
	})

	out := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// unionMinutes is the total span of the merged union.
func unionMinutes(ivs []Interval) float64 {
	var total float64
	for _, iv := range mergeIntervals(ivs) {
		total += iv.Minutes()
	}
	return total
}

// hasRawOverlap reports whether any two raw spans overlap by a positive
// amount. Touching endpoints do not count.
func hasRawOverlap(ivs []Interval) bool {
	if len(ivs) < 2 {
		return false
	}
	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })
	maxEnd := sorted[0].End
	for _, iv := range sorted[1:] {
		if iv.Start.Before(maxEnd) {
			return true
		}
		if iv.End.After(maxEnd) {
			maxEnd = iv.End
		}
	}
	return false
}

// minutesAMinusB measures how much of A's union is not covered by B's
// union. Both sides are merged first, then a single forward pass walks
// B under each A interval. A B interval reaching past the current A
// interval is kept for the next one rather than consumed.
func minutesAMinusB(a, b []Interval) float64 {
	am := mergeIntervals(a)
	bm := mergeIntervals(b)

	var total float64
	j := 0
	for _, iv := range am {
		cur := iv.Start
		for j < len(bm) && bm[j].End.Before(cur) {
			j++
		}
		k := j
		for k < len(bm) && bm[k].Start.Before(iv.End) {
			bs, be := bm[k].Start, bm[k].End
			if bs.After(cur) {
				total += bs.Sub(cur).Minutes()
			}
			if be.After(cur) {
				cur = be
			}
			if be.After(iv.End) {
				break
			}
			k++
		}
		if cur.Before(iv.End) {
			total += iv.End.Sub(cur).Minutes()
		}
		j = k
	}
	return total
}

// overlapOrClose reports whether the two merged unions either share a
// positive overlap or come within gap of each other at any point.
func overlapOrClose(a, b []Interval, gap time.Duration) bool {
	am := mergeIntervals(a)
	bm := mergeIntervals(b)
	i, j := 0, 0
	for i < len(am) && j < len(bm) {
		x, y := am[i], bm[j]
		// distance between the spans; negative means overlap
		var dist time.Duration
		if x.End.Before(y.Start) {
			dist = y.Start.Sub(x.End)
		} else if y.End.Before(x.Start) {
			dist = x.Start.Sub(y.End)
		} else {
			return true
		}
		if dist <= gap {
			return true
		}
		if x.End.Before(y.End) {
			i++
		} else {
			j++
		}
	}
	return false
}
