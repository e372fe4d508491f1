package graph

import (
	"testing"
	"time"
)

func TestParseGraphTime(t *testing.T) {
	got := ParseGraphTime("2025-06-12T09:30:00Z", "")
	want := time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("rfc3339 parse mismatch: %v", got)
	}

	// Graph flag due dates come without a zone suffix.
	got = ParseGraphTime("2025-06-12T00:00:00.0000000", "UTC")
	want = time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("zone-less parse mismatch: %v", got)
	}

	// Unknown zone names fall back to UTC rather than failing.
	got = ParseGraphTime("2025-06-12T08:00:00", "Pacific Standard Time")
	want = time.Date(2025, 6, 12, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unknown zone fallback mismatch: %v", got)
	}

	if !ParseGraphTime("not-a-date", "").IsZero() {
		t.Fatalf("expected zero time for malformed input")
	}
	if !ParseGraphTime("", "").IsZero() {
		t.Fatalf("expected zero time for empty input")
	}
}

func TestNormalize(t *testing.T) {
	msg := Message{
		ID:          "m1",
		Subject:     "Status",
		FromName:    "Alice",
		From:        "Alice@Corp.Example",
		ReceivedISO: "2025-06-12T09:30:00Z",
		Importance:  "High",
		FlagStatus:  "flagged",
		DueISO:      "2025-06-13T00:00:00.0000000",
		DueTimeZone: "UTC",
	}
	e := Normalize(msg)
	if e.SenderAddress != "alice@corp.example" {
		t.Fatalf("sender not lower-cased: %s", e.SenderAddress)
	}
	if e.Importance != "high" {
		t.Fatalf("importance not normalized: %s", e.Importance)
	}
	if !e.Flagged {
		t.Fatalf("expected flagged")
	}
	if e.DueAt.IsZero() {
		t.Fatalf("expected parsed due date")
	}

	// Defaults when fields are absent or malformed.
	e = Normalize(Message{ID: "m2", ReceivedISO: "garbage"})
	if e.Importance != "normal" {
		t.Fatalf("expected normal importance default, got %s", e.Importance)
	}
	if !e.Received.IsZero() || !e.DueAt.IsZero() || e.Flagged {
		t.Fatalf("expected degraded zero values: %+v", e)
	}
}

func TestPreviousWorkdayRange(t *testing.T) {
	// Monday: previous work day is Friday.
	monday := time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)
	start, end := PreviousWorkdayRange(monday)
	if start.Weekday() != time.Friday {
		t.Fatalf("expected Friday, got %s", start.Weekday())
	}
	if end.Sub(start) != 24*time.Hour {
		t.Fatalf("expected one day window, got %v", end.Sub(start))
	}

	// Midweek: simply the prior day.
	thursday := time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)
	start, _ = PreviousWorkdayRange(thursday)
	if start.Weekday() != time.Wednesday {
		t.Fatalf("expected Wednesday, got %s", start.Weekday())
	}

	// Sunday rolls back to Friday as well.
	sunday := time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC)
	start, _ = PreviousWorkdayRange(sunday)
	if start.Weekday() != time.Friday {
		t.Fatalf("expected Friday, got %s", start.Weekday())
	}
}

func TestReceivedFilter(t *testing.T) {
	if got := receivedFilter("", ""); got != "" {
		t.Fatalf("expected empty filter, got %q", got)
	}
	got := receivedFilter("2025-06-11T00:00:00Z", "2025-06-12T00:00:00Z")
	want := "receivedDateTime ge 2025-06-11T00:00:00Z and receivedDateTime le 2025-06-12T00:00:00Z"
	if got != want {
		t.Fatalf("filter mismatch: %q", got)
	}
}

func TestFormatRecipients(t *testing.T) {
	recipients, err := formatRecipients([]string{" a@x.example ", "", "b@x.example"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipients) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(recipients))
	}
	if _, err := formatRecipients([]string{"", "  "}); err == nil {
		t.Fatalf("expected error for empty recipient list")
	}
}
