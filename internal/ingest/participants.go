package ingest

import (
	"encoding/csv"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SAK-124/attendance-backend-go/internal/models"
)

// Column header candidates, checked in order against lower-cased header
// cells. These cover the export variants of the major meeting platforms.
var (
	nameColumns     = []string{"name (original name)", "name", "participant", "user name", "full name", "display name"}
	joinColumns     = []string{"join time", "join time (timezone)", "join time (yyyy-mm-dd hh:mm:ss)", "join time (utc)", "first join time", "first join time (utc)"}
	leaveColumns    = []string{"leave time", "leave time (timezone)", "leave time (yyyy-mm-dd hh:mm:ss)", "leave time (utc)", "last leave time", "last leave time (utc)"}
	durationColumns = []string{"duration (minutes)", "total duration (minutes)", "time in meeting (minutes)"}
	emailColumns    = []string{"user email", "email", "attendee email"}
)

// Participant exports often carry a free-form preamble (meeting topic,
// ID, host) before the real table. The canonical header starts with the
// "Name (original name)" cell; the fallback looks for a line mentioning
// both time columns.
var participantsHeaderRe = regexp.MustCompile(`(?im)^\s*name\s*\(original name\)\s*,`)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04",
}

// ParseParticipants decodes a raw participants CSV upload into
// normalized row records. Timestamps that fail to parse leave the row's
// time fields zero; the raw cell text is carried through either way.
func ParseParticipants(data []byte) ([]models.ParticipantRow, error) {
	payload, err := locateParticipantsTable(decodeText(data))
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(payload))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, models.NewInputError("Could not parse the participants CSV: %v", err)
	}
	if len(records) == 0 {
		return nil, models.NewInputError("Could not locate the participants header row in the CSV.")
	}

	cols := detectParticipantColumns(records[0])
	if cols.name < 0 {
		return nil, models.NewInputError("Could not detect participant name column. Found: %v", records[0])
	}
	if (cols.join < 0 || cols.leave < 0) && cols.duration < 0 {
		return nil, models.NewInputError("No join/leave or duration columns found in the CSV.")
	}

	rows := make([]models.ParticipantRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		name := cell(rec, cols.name)
		if strings.TrimSpace(name) == "" {
			continue
		}

		row := models.ParticipantRow{Name: name}
		if cols.email >= 0 {
			row.Email = strings.TrimSpace(cell(rec, cols.email))
		}
		if cols.join >= 0 {
			row.JoinRaw = strings.TrimSpace(cell(rec, cols.join))
			if t, ok := parseTimestamp(row.JoinRaw); ok {
				row.Join = t
			}
		}
		if cols.leave >= 0 {
			row.LeaveRaw = strings.TrimSpace(cell(rec, cols.leave))
			if t, ok := parseTimestamp(row.LeaveRaw); ok {
				row.Leave = t
			}
		}
		if cols.duration >= 0 {
			row.HasDuration = true
			row.Duration = parseMinutes(cell(rec, cols.duration))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// locateParticipantsTable returns the CSV text from the header row on.
func locateParticipantsTable(text string) (string, error) {
	if loc := participantsHeaderRe.FindStringIndex(text); loc != nil {
		start := strings.LastIndexByte(text[:loc[0]], '\n') + 1
		return text[start:], nil
	}

	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, ln)
		}
	}
	for i, ln := range lines {
		low := strings.ToLower(ln)
		if strings.Contains(low, "join time") && strings.Contains(low, "leave time") {
			return strings.Join(lines[i:], "\n"), nil
		}
	}
	return "", models.NewInputError("Could not locate the participants header row in the CSV.")
}

type participantColumns struct {
	name, join, leave, duration, email int
}

func detectParticipantColumns(header []string) participantColumns {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := byName[key]; !seen {
			byName[key] = i
		}
	}
	pick := func(candidates []string) int {
		for _, c := range candidates {
			if i, ok := byName[c]; ok {
				return i
			}
		}
		return -1
	}
	return participantColumns{
		name:     pick(nameColumns),
		join:     pick(joinColumns),
		leave:    pick(leaveColumns),
		duration: pick(durationColumns),
		email:    pick(emailColumns),
	}
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseMinutes(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}
