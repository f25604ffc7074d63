package attendance

import (
	"fmt"
	"sort"
	"time"

	"github.com/SAK-124/attendance-backend-go/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// repairSegments normalizes raw join/leave pairs for the sweep: a
// missing side is filled from the other, reversed pairs are swapped,
// and pairs missing both sides are dropped. Output is sorted by start,
// ties by end.
func repairSegments(segs []sessionSegment) []sessionSegment {
	out := make([]sessionSegment, 0, len(segs))
	for _, s := range segs {
		j, l := s.Join, s.Leave
		switch {
		case j.IsZero() && l.IsZero():
			continue
		case j.IsZero():
			j = l
		case l.IsZero():
			l = j
		}
		if l.Before(j) {
			j, l = l, j
			s.JoinRaw, s.LeaveRaw = s.LeaveRaw, s.JoinRaw
		}
		s.Join, s.Leave = j, l
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, k int) bool {
		if !out[i].Join.Equal(out[k].Join) {
			return out[i].Join.Before(out[k].Join)
		}
		return out[i].Leave.Before(out[k].Leave)
	})
	return out
}

// sweepReconnects walks repaired segments in time order, growing a
// coverage run. A segment starting before coverageEnd + tolerance
// extends the run; any later start closes it and yields one reconnect
// event at the boundary.
func sweepReconnects(agg *identityAgg, segs []sessionSegment, tolerance time.Duration) []models.ReconnectEvent {
	if len(segs) < 2 {
		return nil
	}

	var events []models.ReconnectEvent
	cov := segs[0]
	for _, s := range segs[1:] {
		if s.Join.Before(cov.Leave.Add(tolerance)) {
			if s.Leave.After(cov.Leave) {
				cov.Leave = s.Leave
				cov.LeaveRaw = s.LeaveRaw
			}
			continue
		}
		gap := s.Join.Sub(cov.Leave)
		if gap < 0 {
			gap = 0
		}
		events = append(events, models.ReconnectEvent{
			Key:                agg.Key,
			ERP:                agg.ERP,
			Name:               agg.Name,
			Index:              len(events) + 1,
			DisconnectTime:     cov.Leave.Format(timestampLayout),
			ReconnectTime:      s.Join.Format(timestampLayout),
			GapMinutes:         round2(gap.Minutes()),
			GapSeconds:         int(gap.Seconds()),
			GapHMS:             formatHMS(gap),
			DisconnectRawName:  cov.RawName,
			DisconnectJoinRaw:  cov.JoinRaw,
			DisconnectLeaveRaw: cov.LeaveRaw,
			ReconnectRawName:   s.RawName,
			ReconnectJoinRaw:   s.JoinRaw,
			ReconnectLeaveRaw:  s.LeaveRaw,
		})
		cov = s
	}
	return events
}

// formatHMS renders a gap as H:MM:SS.
func formatHMS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
