package attendance

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/SAK-124/attendance-backend-go/internal/models"
)

// Issue annotations attached to verdict rows. Wording is part of the
// stored output and must stay stable across releases.
const (
	issueDualDevice   = "Duplicate account - overlapping (two devices)"
	issueReconnectFmt = "Duplicate account - reconnects (non-overlapping x%d)"
	issueAmbiguous    = "Ambiguous duplicate name (no ERP / alias ambiguous)"
	issueMergedFmt    = "Merged alias %s into %s"
	issueRosterOnly   = "Not in meeting log (roster)"
)

// decisionContext carries the run-wide values every finalize call needs.
type decisionContext struct {
	params       models.DecisionParams
	exemptions   models.ExemptionMap
	adjusted     float64
	effectiveThr float64
	hasTimes     bool
	tolerance    time.Duration
	ambiguous    map[string]bool
	merges       []models.AliasMerge
}

// finalize turns one aggregate into its verdict row and, with
// timestamps, its reconnect events. Aggregates are read-only from here.
func (ctx *decisionContext) finalize(agg *identityAgg) (models.VerdictRow, []models.ReconnectEvent) {
	var (
		unionUncapped float64
		badOnly       float64
		segCount      int
		events        []models.ReconnectEvent
	)

	if ctx.hasTimes {
		all := append(append([]Interval{}, agg.Intervals...), agg.BadIvs...)
		unionUncapped = unionMinutes(all)
		badOnly = minutesAMinusB(agg.BadIvs, agg.Intervals)

		repaired := repairSegments(agg.Segments)
		segCount = len(repaired)
		if segCount == 0 {
			segCount = len(all)
		}
		events = sweepReconnects(agg, repaired, ctx.tolerance)
	} else {
		for _, d := range agg.Durations {
			unionUncapped += d
		}
		for _, d := range agg.BadDurs {
			unionUncapped += d
			badOnly += d
		}
		segCount = len(agg.Durations) + len(agg.BadDurs)
	}

	capped := unionUncapped
	if capped > ctx.adjusted {
		capped = ctx.adjusted
	}

	dual := unionUncapped > ctx.adjusted+0.1
	reconnect := !dual && segCount > 1
	reconnectCount := 0
	if reconnect {
		reconnectCount = segCount - 1
	}

	attRaw := round2(capped)
	badMin := round2(badOnly)
	badPct := 0.0
	if capped > 0 {
		badPct = round2(badOnly / capped * 100)
	}
	thrRaw := round2(ctx.effectiveThr)

	attDecision, thrDecision := applyRounding(attRaw, thrRaw, ctx.params.Rounding)

	ex := ctx.exemptions[agg.Key]
	ambiguous := ctx.ambiguous[agg.Key]

	status := models.StatusAbsent
	if attDecision >= thrDecision {
		status = models.StatusPresent
	}
	if ambiguous {
		status = models.StatusNeedsReview
	}

	shortfall := 0.0
	if status != models.StatusPresent && thrDecision > attDecision {
		shortfall = round2(thrDecision - attDecision)
	}

	penalty := 0
	if badOnly > ctx.params.PenaltyToleranceMinutes && !ex.Naming {
		penalty = -1
	}

	var issues []string
	if dual && !ex.Overlap {
		issues = append(issues, issueDualDevice)
	}
	if reconnect && !ex.Reconnect {
		issues = append(issues, fmt.Sprintf(issueReconnectFmt, reconnectCount))
	}
	if ambiguous {
		issues = append(issues, issueAmbiguous)
	}
	for _, m := range ctx.merges {
		if m.TargetKey == agg.Key {
			issues = append(issues, fmt.Sprintf(issueMergedFmt, m.SourceKey, m.TargetKey))
		}
	}

	row := models.VerdictRow{
		Key:                      agg.Key,
		ERP:                      agg.ERP,
		Name:                     agg.Name,
		RawNames:                 strings.Join(agg.sortedRawNames(), "; "),
		MatchSource:              agg.MatchSource,
		AttendedMinutesRaw:       attRaw,
		ThresholdMinutesRaw:      thrRaw,
		AttendedMinutesDecision:  attDecision,
		ThresholdMinutesDecision: thrDecision,
		ShortfallMinutes:         shortfall,
		Status:                   status,
		NamingPenalty:            penalty,
		BadMinutes:               badMin,
		BadPercent:               badPct,
		SegmentCount:             segCount,
		DualDevice:               dual,
		Reconnect:                reconnect,
		ReconnectCount:           reconnectCount,
		Ambiguous:                ambiguous,
		Issues:                   issues,
	}
	return row, events
}

// applyRounding adjusts the attended/threshold pair per the configured
// mode before comparison.
func applyRounding(att, thr float64, mode models.RoundingMode) (float64, float64) {
	switch mode {
	case models.RoundingCeilAttendance:
		return math.Ceil(att), thr
	case models.RoundingCeilBoth:
		return math.Ceil(att), math.Ceil(thr)
	default:
		return att, thr
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// markRawOverlapAmbiguity flags name-only identities whose own raw
// intervals overlap. Two people sharing a display name produce exactly
// this shape, and there is no ID token to split them on.
func markRawOverlapAmbiguity(set *aggregateSet, ambiguous map[string]bool) {
	set.each(func(a *identityAgg) {
		if a.MatchSource != models.MatchSourceNameOnly {
			return
		}
		all := append(append([]Interval{}, a.Intervals...), a.BadIvs...)
		if hasRawOverlap(all) {
			ambiguous[a.Key] = true
		}
	})
}

func sortErps(erps map[string]struct{}) []string {
	out := make([]string, 0, len(erps))
	for e := range erps {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
