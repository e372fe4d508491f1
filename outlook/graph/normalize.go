package graph

import (
	"strings"
	"time"

	"github.com/zbarettnymbl/Deep-Agent/outlook/priority"
)

// graph returns zone-less timestamps with up to seven fractional digits for
// flag due dates, e.g. "2025-06-12T00:00:00.0000000".
var graphLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
}

// ParseGraphTime parses a Graph timestamp. Zone-less values are interpreted
// in the record's stated time zone, falling back to UTC when the zone is
// missing or unknown. Malformed input yields the zero time.
func ParseGraphTime(value, zone string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	loc := time.UTC
	if zone != "" {
		if parsed, err := time.LoadLocation(zone); err == nil {
			loc = parsed
		}
	}
	for _, layout := range graphLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Normalize converts a wire message into the scorer's email record. Parse
// failures degrade to zero values rather than erroring.
func Normalize(m Message) priority.Email {
	importance := strings.ToLower(m.Importance)
	if importance == "" {
		importance = "normal"
	}
	return priority.Email{
		ID:            m.ID,
		Subject:       m.Subject,
		SenderName:    m.FromName,
		SenderAddress: strings.ToLower(m.From),
		Received:      ParseGraphTime(m.ReceivedISO, ""),
		Importance:    importance,
		Flagged:       strings.ToLower(m.FlagStatus) == "flagged",
		Read:          m.IsRead,
		DueAt:         ParseGraphTime(m.DueISO, m.DueTimeZone),
	}
}

// NormalizeAll converts a batch preserving fetch order.
func NormalizeAll(msgs []Message) []priority.Email {
	out := make([]priority.Email, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Normalize(m))
	}
	return out
}

// PreviousWorkdayRange returns the [start, end) UTC day window of the last
// work day before now: Saturday and Sunday roll back to Friday.
func PreviousWorkdayRange(now time.Time) (time.Time, time.Time) {
	day := now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	switch day.Weekday() {
	case time.Sunday:
		day = day.AddDate(0, 0, -2)
	case time.Saturday:
		day = day.AddDate(0, 0, -1)
	}
	return day, day.AddDate(0, 0, 1)
}
