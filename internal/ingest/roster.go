package ingest

import (
	"encoding/csv"
	"regexp"
	"strings"

	"github.com/SAK-124/attendance-backend-go/internal/models"
)

var (
	exactERPRe = regexp.MustCompile(`^\s*\d{5}\s*$`)
	anyERPRe   = regexp.MustCompile(`\d{5}`)

	rosterNameColumns  = []string{"name", "student name", "full name", "official name"}
	rosterEmailColumns = []string{"email", "user email", "attendee email", "e-mail"}
)

// rosterSniffLimit caps how many values per column the ERP detection
// inspects.
const rosterSniffLimit = 500

// ParseRoster decodes a roster CSV into entries keyed by institutional
// ID. The ID column is sniffed by counting exact 5-digit values; the
// per-cell ID is then extracted from anywhere in the cell, so decorated
// values like "ERP-12345" still resolve. Duplicate IDs keep the first
// occurrence.
func ParseRoster(data []byte) ([]models.RosterEntry, error) {
	r := csv.NewReader(strings.NewReader(decodeText(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, models.NewInputError("Could not parse the roster CSV: %v", err)
	}
	if len(records) < 2 {
		return nil, models.NewInputError("Could not detect ERP/Name columns in roster. Make sure it has 5-digit ERP and a Name column.")
	}

	header := records[0]
	body := records[1:]

	erpCol := sniffERPColumn(header, body)
	nameCol := pickRosterColumn(header, rosterNameColumns)
	if nameCol < 0 {
		for i := range header {
			if i != erpCol {
				nameCol = i
				break
			}
		}
	}
	if erpCol < 0 || nameCol < 0 {
		return nil, models.NewInputError("Could not detect ERP/Name columns in roster. Make sure it has 5-digit ERP and a Name column.")
	}
	emailCol := pickRosterColumn(header, rosterEmailColumns)

	seen := make(map[string]struct{})
	entries := make([]models.RosterEntry, 0, len(body))
	for _, rec := range body {
		erpMatch := anyERPRe.FindString(cell(rec, erpCol))
		name := strings.TrimSpace(cell(rec, nameCol))
		if erpMatch == "" || name == "" {
			continue
		}
		if _, dup := seen[erpMatch]; dup {
			continue
		}
		seen[erpMatch] = struct{}{}

		entry := models.RosterEntry{ERP: erpMatch, Name: name}
		if emailCol >= 0 {
			entry.Email = strings.TrimSpace(cell(rec, emailCol))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// sniffERPColumn scores every column by how many of its leading values
// are exactly five digits, returning the best scorer with at least one
// hit.
func sniffERPColumn(header []string, body [][]string) int {
	best, bestHits := -1, 0
	for i := range header {
		hits := 0
		for n, rec := range body {
			if n >= rosterSniffLimit {
				break
			}
			if exactERPRe.MatchString(cell(rec, i)) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}
	return best
}

func pickRosterColumn(header []string, candidates []string) int {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := byName[key]; !seen {
			byName[key] = i
		}
	}
	for _, c := range candidates {
		if i, ok := byName[c]; ok {
			return i
		}
	}
	return -1
}
