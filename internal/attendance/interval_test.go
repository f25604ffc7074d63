package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func at(min float64) time.Time {
	return t0.Add(time.Duration(min * float64(time.Minute)))
}

func iv(start, end float64) Interval {
	return Interval{Start: at(start), End: at(end)}
}

func TestMergeIntervals(t *testing.T) {
	t.Run("overlapping coalesce", func(t *testing.T) {
		got := mergeIntervals([]Interval{iv(0, 30), iv(20, 50)})
		assert.Equal(t, []Interval{iv(0, 50)}, got)
	})

	t.Run("touching coalesce", func(t *testing.T) {
		got := mergeIntervals([]Interval{iv(0, 30), iv(30, 40)})
		assert.Equal(t, []Interval{iv(0, 40)}, got)
	})

	t.Run("disjoint stay split", func(t *testing.T) {
		got := mergeIntervals([]Interval{iv(40, 50), iv(0, 30)})
		assert.Equal(t, []Interval{iv(0, 30), iv(40, 50)}, got)
	})

	t.Run("contained absorbed", func(t *testing.T) {
		got := mergeIntervals([]Interval{iv(0, 60), iv(10, 20)})
		assert.Equal(t, []Interval{iv(0, 60)}, got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, mergeIntervals(nil))
	})
}

func TestUnionMinutesIdempotent(t *testing.T) {
	set := []Interval{iv(0, 30), iv(10, 45), iv(50, 60)}
	once := unionMinutes(set)
	doubled := unionMinutes(append(append([]Interval{}, set...), set...))
	assert.Equal(t, once, doubled)
	assert.InDelta(t, 55.0, once, 1e-9)
}

func TestHasRawOverlap(t *testing.T) {
	assert.True(t, hasRawOverlap([]Interval{iv(0, 30), iv(20, 50)}))
	assert.False(t, hasRawOverlap([]Interval{iv(0, 30), iv(30, 50)})) // touching is not overlap
	assert.False(t, hasRawOverlap([]Interval{iv(0, 30), iv(40, 50)}))
	assert.False(t, hasRawOverlap([]Interval{iv(0, 30)}))
	assert.True(t, hasRawOverlap([]Interval{iv(0, 60), iv(40, 50), iv(55, 70)}))
}

func TestMinutesAMinusB(t *testing.T) {
	t.Run("no overlap keeps everything", func(t *testing.T) {
		got := minutesAMinusB([]Interval{iv(0, 10)}, []Interval{iv(20, 30)})
		assert.InDelta(t, 10.0, got, 1e-9)
	})

	t.Run("full cover leaves nothing", func(t *testing.T) {
		got := minutesAMinusB([]Interval{iv(10, 20)}, []Interval{iv(0, 30)})
		assert.InDelta(t, 0.0, got, 1e-9)
	})

	t.Run("partial cover", func(t *testing.T) {
		got := minutesAMinusB([]Interval{iv(0, 10)}, []Interval{iv(2, 4), iv(6, 8)})
		assert.InDelta(t, 6.0, got, 1e-9)
	})

	t.Run("b interval spans two a intervals", func(t *testing.T) {
		got := minutesAMinusB([]Interval{iv(0, 10), iv(20, 30)}, []Interval{iv(5, 25)})
		assert.InDelta(t, 10.0, got, 1e-9)
	})

	t.Run("empty b", func(t *testing.T) {
		got := minutesAMinusB([]Interval{iv(0, 10)}, nil)
		assert.InDelta(t, 10.0, got, 1e-9)
	})

	t.Run("empty a", func(t *testing.T) {
		got := minutesAMinusB(nil, []Interval{iv(0, 10)})
		assert.InDelta(t, 0.0, got, 1e-9)
	})
}

func TestOverlapOrClose(t *testing.T) {
	gap := 7 * time.Minute

	assert.True(t, overlapOrClose([]Interval{iv(0, 30)}, []Interval{iv(20, 50)}, gap))
	assert.True(t, overlapOrClose([]Interval{iv(0, 30)}, []Interval{iv(35, 50)}, gap), "5 minute gap is within tolerance")
	assert.True(t, overlapOrClose([]Interval{iv(0, 30)}, []Interval{iv(37, 50)}, gap), "exactly 7 minutes counts")
	assert.False(t, overlapOrClose([]Interval{iv(0, 30)}, []Interval{iv(38, 50)}, gap))
	assert.True(t, overlapOrClose([]Interval{iv(40, 50)}, []Interval{iv(0, 35)}, gap), "order does not matter")
	assert.False(t, overlapOrClose(nil, []Interval{iv(0, 10)}, gap))
}
