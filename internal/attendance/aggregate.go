package attendance

import (
	"regexp"
	"sort"
	"time"

	"github.com/SAK-124/attendance-backend-go/internal/models"
)

// sessionSegment is one join/leave pair as logged, kept in row order so
// reconnect events can point back at the raw rows that border a gap.
type sessionSegment struct {
	Join     time.Time
	Leave    time.Time
	JoinRaw  string
	LeaveRaw string
	RawName  string
}

// identityAgg accumulates everything observed for one identity key.
type identityAgg struct {
	Key         string
	ERP         string
	Name        string
	MatchSource string
	MatchFlag   int

	RawNames map[string]struct{}

	Intervals []Interval       // matchFlag 0 rows
	BadIvs    []Interval       // matchFlag -1 rows
	Durations []float64        // duration-mode minutes, matchFlag 0
	BadDurs   []float64        // duration-mode minutes, matchFlag -1
	Segments  []sessionSegment // every join/leave pair in arrival order

	Merged bool // folded into another key by alias resolution
}

func (a *identityAgg) noteRawName(name string) {
	if a.RawNames == nil {
		a.RawNames = make(map[string]struct{})
	}
	a.RawNames[name] = struct{}{}
}

func (a *identityAgg) sortedRawNames() []string {
	out := make([]string, 0, len(a.RawNames))
	for n := range a.RawNames {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// aggregateSet holds identities in first-appearance order. Merges
// tombstone the source entry; iteration walks the order slice and skips
// the dead.
type aggregateSet struct {
	order []string
	byKey map[string]*identityAgg
}

func newAggregateSet() *aggregateSet {
	return &aggregateSet{byKey: make(map[string]*identityAgg)}
}

func (s *aggregateSet) get(key string) (*identityAgg, bool) {
	a, ok := s.byKey[key]
	return a, ok
}

func (s *aggregateSet) getOrCreate(key string) *identityAgg {
	if a, ok := s.byKey[key]; ok {
		return a
	}
	a := &identityAgg{Key: key, RawNames: make(map[string]struct{})}
	s.byKey[key] = a
	s.order = append(s.order, key)
	return a
}

func (s *aggregateSet) remove(key string) {
	delete(s.byKey, key)
}

// each visits live identities in first-appearance order.
func (s *aggregateSet) each(fn func(*identityAgg)) {
	for _, k := range s.order {
		if a, ok := s.byKey[k]; ok {
			fn(a)
		}
	}
}

func (s *aggregateSet) len() int {
	return len(s.byKey)
}

// aggregateRows folds log rows into per-identity accumulators. In
// timestamp mode rows land as intervals; otherwise the reported
// duration minutes are taken as-is. Rows whose name hits an exclusion
// pattern are dropped before keying.
func aggregateRows(rows []models.ParticipantRow, hasTimes bool) *aggregateSet {
	set := newAggregateSet()

	for _, row := range rows {
		erp, clean, flag := ExtractERP(row.Name)

		var key string
		if flag == 0 {
			key = KeyPrefixID + erp
		} else {
			key = KeyPrefixName + NormalizeName(clean)
		}

		agg := set.getOrCreate(key)
		agg.noteRawName(row.Name)

		if flag == 0 {
			agg.ERP = erp
			if agg.Name == "" {
				agg.Name = clean
			}
			agg.MatchSource = models.MatchSourceERPInName
		} else {
			if agg.Name == "" {
				agg.Name = clean
			}
			if agg.MatchSource == "" {
				agg.MatchSource = models.MatchSourceNameOnly
			}
			agg.MatchFlag = -1
		}

		if hasTimes {
			agg.Segments = append(agg.Segments, sessionSegment{
				Join:     row.Join,
				Leave:    row.Leave,
				JoinRaw:  row.JoinRaw,
				LeaveRaw: row.LeaveRaw,
				RawName:  row.Name,
			})
			if !row.Join.IsZero() && !row.Leave.IsZero() && row.Leave.After(row.Join) {
				iv := Interval{Start: row.Join, End: row.Leave}
				if flag == 0 {
					agg.Intervals = append(agg.Intervals, iv)
				} else {
					agg.BadIvs = append(agg.BadIvs, iv)
				}
			}
		} else {
			d := row.Duration
			if d < 0 {
				d = 0
			}
			if flag == 0 {
				agg.Durations = append(agg.Durations, d)
			} else {
				agg.BadDurs = append(agg.BadDurs, d)
			}
		}
	}

	return set
}

// detectTimestamps reports whether the log carries usable join and
// leave times. One side alone is not enough to build intervals.
func detectTimestamps(rows []models.ParticipantRow) bool {
	anyJoin, anyLeave := false, false
	for _, r := range rows {
		if !r.Join.IsZero() {
			anyJoin = true
		}
		if !r.Leave.IsZero() {
			anyLeave = true
		}
		if anyJoin && anyLeave {
			return true
		}
	}
	return false
}

// filterExcluded drops rows whose display name matches any exclusion
// pattern.
func filterExcluded(rows []models.ParticipantRow, res []*regexp.Regexp) []models.ParticipantRow {
	out := make([]models.ParticipantRow, 0, len(rows))
	for _, r := range rows {
		excluded := false
		for _, re := range res {
			if re.MatchString(r.Name) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, r)
		}
	}
	return out
}
