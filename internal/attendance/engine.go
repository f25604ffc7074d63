package attendance

import (
	"fmt"
	"regexp"
	"time"

	"github.com/SAK-124/attendance-backend-go/internal/models"
)

const (
	defaultAliasGap           = 7 * time.Minute
	defaultReconnectTolerance = 2 * time.Second

	decisionRule = "Present if DECISION Attended >= DECISION Threshold"
)

// Options configure one Engine. Zero values fall back to the documented
// defaults; ExclusionPatterns nil means the built-in bot list, an empty
// slice disables exclusion entirely.
type Options struct {
	ExclusionPatterns  []string
	AliasGap           time.Duration
	ReconnectTolerance time.Duration
}

// Engine resolves identities and decides attendance for one log at a
// time. It is a pure computation: a given (rows, roster, params,
// exemptions) input always produces the same report, and one instance
// may serve concurrent calls since all per-run state is local.
type Engine struct {
	patterns   []string
	exclusions []*regexp.Regexp
	aliasGap   time.Duration
	tolerance  time.Duration
}

// NewEngine compiles the exclusion patterns and fixes the gap
// tolerances. Pattern compilation is the only failure mode.
func NewEngine(opts Options) (*Engine, error) {
	patterns := opts.ExclusionPatterns
	if patterns == nil {
		patterns = DefaultExclusionPatterns
	}
	res, err := compileExclusions(patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to compile exclusion pattern: %w", err)
	}

	gap := opts.AliasGap
	if gap <= 0 {
		gap = defaultAliasGap
	}
	tol := opts.ReconnectTolerance
	if tol <= 0 {
		tol = defaultReconnectTolerance
	}

	return &Engine{
		patterns:   patterns,
		exclusions: res,
		aliasGap:   gap,
		tolerance:  tol,
	}, nil
}

// Process runs the full pipeline over one normalized log: exclusion
// filtering, identity aggregation, alias resolution, reconnect
// detection, per-identity decisions, and roster reconciliation.
func (e *Engine) Process(rows []models.ParticipantRow, roster []models.RosterEntry, params models.DecisionParams, exemptions models.ExemptionMap) (*models.Report, error) {
	params = params.Sanitized()
	if exemptions == nil {
		exemptions = models.ExemptionMap{}
	}

	filtered := filterExcluded(rows, e.exclusions)
	hasTimes := detectTimestamps(filtered)
	set := aggregateRows(filtered, hasTimes)

	total, totalSource, err := classDuration(filtered, hasTimes, params)
	if err != nil {
		return nil, err
	}

	adjusted := total - params.BreakMinutes
	if adjusted < 1 {
		adjusted = 1
	}
	rawThr := params.ThresholdRatio * adjusted
	effThr := rawThr - params.BufferMinutes
	if effThr < 0 {
		effThr = 0
	}

	merges, ambiguous := resolveAliases(set, hasTimes, e.aliasGap)
	if hasTimes {
		markRawOverlapAmbiguity(set, ambiguous)
	}

	ctx := &decisionContext{
		params:       params,
		exemptions:   exemptions,
		adjusted:     adjusted,
		effectiveThr: effThr,
		hasTimes:     hasTimes,
		tolerance:    e.tolerance,
		ambiguous:    ambiguous,
		merges:       merges,
	}

	report := &models.Report{
		AliasMerges: merges,
		Meta: models.MetaBlock{
			TotalMinutesSource: totalSource,
			TotalMinutes:       round2(total),
			BreakMinutes:       params.BreakMinutes,
			AdjustedTotal:      round2(adjusted),
			ThresholdRatio:     params.ThresholdRatio,
			RawThreshold:       round2(rawThr),
			BufferMinutes:      params.BufferMinutes,
			EffectiveThreshold: round2(effThr),
			DecisionRule:       decisionRule,
			RoundingMode:       params.Rounding.Label(),
			PenaltyTolerance:   params.PenaltyToleranceMinutes,
			RosterProvided:     len(roster) > 0,
			TimestampsUsed:     hasTimes,
			ExcludedPatterns:   e.patterns,
		},
	}

	seenERPs := make(map[string]struct{})
	set.each(func(a *identityAgg) {
		row, events := ctx.finalize(a)
		report.Verdicts = append(report.Verdicts, row)
		report.Reconnects = append(report.Reconnects, events...)
		if a.ERP != "" {
			seenERPs[a.ERP] = struct{}{}
		}
	})

	rawCanons := collectRawNameCanons(set)
	report.Verdicts = append(report.Verdicts, ctx.reconcileRoster(roster, set, rawCanons)...)

	if len(roster) > 0 {
		erps := make(map[string]struct{}, len(roster))
		for _, r := range roster {
			erps[r.ERP] = struct{}{}
		}
		report.ERPs = sortErps(erps)
	} else {
		report.ERPs = sortErps(seenERPs)
	}

	return report, nil
}

// Keys runs extraction, aggregation, and alias resolution only,
// returning the surviving identities in first-appearance order. Used to
// build exemption configuration without computing verdicts.
func (e *Engine) Keys(rows []models.ParticipantRow) []models.IdentityKey {
	filtered := filterExcluded(rows, e.exclusions)
	hasTimes := detectTimestamps(filtered)
	set := aggregateRows(filtered, hasTimes)
	resolveAliases(set, hasTimes, e.aliasGap)

	out := make([]models.IdentityKey, 0, set.len())
	set.each(func(a *identityAgg) {
		out = append(out, models.IdentityKey{
			Key:         a.Key,
			ERP:         a.ERP,
			Name:        a.Name,
			RawNames:    a.sortedRawNames(),
			MatchSource: a.MatchSource,
		})
	})
	return out
}

// classDuration determines the total class length in minutes and where
// it came from: an explicit override, the observed timestamp span, or
// the largest reported duration.
func classDuration(rows []models.ParticipantRow, hasTimes bool, params models.DecisionParams) (float64, string, error) {
	if params.OverrideTotalMinutes > 0 {
		return params.OverrideTotalMinutes, "override", nil
	}

	if hasTimes {
		var minJoin, maxLeave time.Time
		for _, r := range rows {
			if !r.Join.IsZero() && (minJoin.IsZero() || r.Join.Before(minJoin)) {
				minJoin = r.Join
			}
			if !r.Leave.IsZero() && (maxLeave.IsZero() || r.Leave.After(maxLeave)) {
				maxLeave = r.Leave
			}
		}
		if !minJoin.IsZero() && !maxLeave.IsZero() && maxLeave.After(minJoin) {
			return maxLeave.Sub(minJoin).Minutes(), "auto", nil
		}
	}

	var maxDur float64
	found := false
	for _, r := range rows {
		if r.HasDuration {
			found = true
			if r.Duration > maxDur {
				maxDur = r.Duration
			}
		}
	}
	if found && maxDur > 0 {
		return maxDur, "auto", nil
	}

	return 0, "", models.NewInputError("Could not determine total class duration.")
}
