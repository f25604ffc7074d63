package attendance

import (
	"github.com/SAK-124/attendance-backend-go/internal/models"
)

// reconcileRoster appends a zero-attendance Absent row for every roster
// entry that never appeared in the log: its ID is not among the resolved
// ID-tagged identities and its canonical name matches none of the raw
// names seen. Roster rows are synthesized, never merged into log
// identities.
func (ctx *decisionContext) reconcileRoster(roster []models.RosterEntry, set *aggregateSet, rawNameCanons map[string]struct{}) []models.VerdictRow {
	if len(roster) == 0 {
		return nil
	}

	seenERPs := make(map[string]struct{})
	set.each(func(a *identityAgg) {
		if a.ERP != "" {
			seenERPs[a.ERP] = struct{}{}
		}
	})

	thrRaw := round2(ctx.effectiveThr)
	_, thrDecision := applyRounding(0, thrRaw, ctx.params.Rounding)

	var out []models.VerdictRow
	for _, entry := range roster {
		if _, ok := seenERPs[entry.ERP]; ok {
			continue
		}
		if _, ok := set.get(KeyPrefixID + entry.ERP); ok {
			continue
		}
		if c := CanonicalName(entry.Name); c != "" {
			if _, ok := rawNameCanons[c]; ok {
				continue
			}
		}
		out = append(out, models.VerdictRow{
			Key:                      KeyPrefixID + entry.ERP,
			ERP:                      entry.ERP,
			Name:                     entry.Name,
			RawNames:                 entry.Name + " (roster)",
			MatchSource:              models.MatchSourceRosterOnly,
			AttendedMinutesRaw:       0,
			ThresholdMinutesRaw:      thrRaw,
			AttendedMinutesDecision:  0,
			ThresholdMinutesDecision: thrDecision,
			ShortfallMinutes:         thrDecision,
			Status:                   models.StatusAbsent,
			RosterOnly:               true,
			Issues:                   []string{issueRosterOnly},
		})
	}
	return out
}

// collectRawNameCanons gathers the canonical forms of every raw name
// seen in the log, for the roster "never showed up" check.
func collectRawNameCanons(set *aggregateSet) map[string]struct{} {
	out := make(map[string]struct{})
	set.each(func(a *identityAgg) {
		for n := range a.RawNames {
			if c := CanonicalName(n); c != "" {
				out[c] = struct{}{}
			}
		}
	})
	return out
}
