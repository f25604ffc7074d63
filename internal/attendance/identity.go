package attendance

import (
	"regexp"
	"strings"
)

// DefaultExclusionPatterns are the known bot and notetaker accounts
// stripped from every log before aggregation. The list is configuration,
// not code: deployments override it through the rules file.
var DefaultExclusionPatterns = []string{
	`^\s*meeting analytics from read\s*$`,
	`^\s*ta\s*$`,
	`^\s*saboor'?s fathom notetaker\s*$`,
	`^\s*hassaan khalid\s*$`,
}

const (
	// KeyPrefixID tags identities carrying a recognized 5-digit ERP token
	KeyPrefixID = "ID:"
	// KeyPrefixName tags identities keyed by normalized display name only
	KeyPrefixName = "NAME:"
)

var (
	leadingERPRe  = regexp.MustCompile(`^\s*(\d{5})[\s\-_]+(.+?)\s*$`)
	embeddedERPRe = regexp.MustCompile(`(?:^|[\s\-_])(\d{5})(?:[\s\-_]|$)`)

	parenRe     = regexp.MustCompile(`\([^)]*\)`)
	fiveDigitRe = regexp.MustCompile(`\d{5}`)
	dashScoreRe = regexp.MustCompile(`[_\-]`)
	nonAlphaRe  = regexp.MustCompile(`[^a-z]+`)
	spacesRe    = regexp.MustCompile(`\s+`)
)

// ExtractERP parses an ERP token out of a raw display name. A token is a
// 5-digit run delimited by whitespace, dash, underscore, or the string
// edges, with a non-empty remainder; leading tokens win over embedded
// ones. Returns the ERP (empty when absent), the cleaned display name,
// and the match flag: 0 for a recovered token, -1 for a name that
// carries none (a naming-hygiene defect counted against the row).
func ExtractERP(name string) (erp string, clean string, flag int) {
	trimmed := strings.TrimSpace(name)

	if m := leadingERPRe.FindStringSubmatch(trimmed); m != nil {
		return m[1], strings.TrimSpace(m[2]), 0
	}
	if m := embeddedERPRe.FindStringSubmatchIndex(trimmed); m != nil {
		rest := strings.TrimSpace(trimmed[:m[0]] + " " + trimmed[m[1]:])
		if rest != "" {
			return trimmed[m[2]:m[3]], rest, 0
		}
	}
	return "", trimmed, -1
}

// IdentityKey derives the grouping key for a raw display name:
// "ID:<erp>" when an ERP token is recoverable, "NAME:<normalized>"
// otherwise.
func IdentityKey(name string) string {
	erp, clean, flag := ExtractERP(name)
	if flag == 0 {
		return KeyPrefixID + erp
	}
	return KeyPrefixName + NormalizeName(clean)
}

// NormalizeName lower-cases and whitespace-collapses a name. Used for
// NAME: keys; accents and punctuation are left untouched.
func NormalizeName(s string) string {
	return spacesRe.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
}

// CanonicalName reduces a raw name to its alias-matching form: lower
// case, parenthetical text dropped, 5-digit runs dropped, everything
// non-alphabetic collapsed to single spaces. Used only for alias
// resolution, never for keying.
func CanonicalName(s string) string {
	s = strings.ToLower(s)
	s = parenRe.ReplaceAllString(s, " ")
	s = fiveDigitRe.ReplaceAllString(s, " ")
	s = dashScoreRe.ReplaceAllString(s, " ")
	s = nonAlphaRe.ReplaceAllString(s, " ")
	s = spacesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// compileExclusions builds case-insensitive matchers for the configured
// exclusion patterns
func compileExclusions(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}
