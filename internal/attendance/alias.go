package attendance

import (
	"strings"
	"time"

	"github.com/SAK-124/attendance-backend-go/internal/models"
)

// resolveAliases folds NAME:-keyed identities into ID:-keyed ones that
// share a canonical name. With timestamps, a single candidate merges
// outright and several candidates are tried in first-appearance order,
// taking the first whose union overlaps or comes within gap of the
// alias's; no candidate matching marks the alias ambiguous. Without
// timestamps there is nothing to disambiguate on, so only a lone
// candidate merges and several candidates mark the alias ambiguous.
// Returns the merge log and the set of keys left ambiguous.
func resolveAliases(set *aggregateSet, hasTimes bool, gap time.Duration) ([]models.AliasMerge, map[string]bool) {
	byCanon := make(map[string][]string)
	var canonOrder []string

	set.each(func(a *identityAgg) {
		if !strings.HasPrefix(a.Key, KeyPrefixID) {
			return
		}
		c := CanonicalName(a.Name)
		if c == "" {
			return
		}
		if _, seen := byCanon[c]; !seen {
			canonOrder = append(canonOrder, c)
		}
		byCanon[c] = append(byCanon[c], a.Key)
	})

	var merges []models.AliasMerge
	ambiguous := make(map[string]bool)

	// Walk NAME: entries in first-appearance order so candidate trials
	// are reproducible.
	var nameKeys []string
	set.each(func(a *identityAgg) {
		if strings.HasPrefix(a.Key, KeyPrefixName) {
			nameKeys = append(nameKeys, a.Key)
		}
	})

	for _, nk := range nameKeys {
		src, ok := set.get(nk)
		if !ok {
			continue
		}
		c := CanonicalName(src.Name)
		if c == "" {
			continue
		}
		candidates := byCanon[c]
		switch {
		case len(candidates) == 0:
			continue
		case len(candidates) == 1:
			dst, ok := set.get(candidates[0])
			if !ok {
				continue
			}
			mergeInto(set, src, dst)
			merges = append(merges, models.AliasMerge{SourceKey: nk, TargetKey: dst.Key})
		default:
			if !hasTimes {
				ambiguous[nk] = true
				continue
			}
			srcIvs := append(append([]Interval{}, src.Intervals...), src.BadIvs...)
			matched := false
			for _, ck := range candidates {
				dst, ok := set.get(ck)
				if !ok {
					continue
				}
				dstIvs := append(append([]Interval{}, dst.Intervals...), dst.BadIvs...)
				if overlapOrClose(srcIvs, dstIvs, gap) {
					mergeInto(set, src, dst)
					merges = append(merges, models.AliasMerge{SourceKey: nk, TargetKey: dst.Key})
					matched = true
					break
				}
			}
			if !matched {
				ambiguous[nk] = true
			}
		}
	}

	return merges, ambiguous
}

// mergeInto folds the alias's accumulators into the target and
// tombstones the alias. The target is tagged as alias-merged so the
// report shows how the identity was assembled.
func mergeInto(set *aggregateSet, src, dst *identityAgg) {
	dst.Intervals = append(dst.Intervals, src.Intervals...)
	dst.BadIvs = append(dst.BadIvs, src.BadIvs...)
	dst.Durations = append(dst.Durations, src.Durations...)
	dst.BadDurs = append(dst.BadDurs, src.BadDurs...)
	dst.Segments = append(dst.Segments, src.Segments...)
	for n := range src.RawNames {
		dst.noteRawName(n)
	}
	dst.MatchSource = models.MatchSourceAliasMerge
	src.Merged = true
	set.remove(src.Key)
}
