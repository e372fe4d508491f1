package mcp

import (
	"strings"
	"testing"

	"github.com/zbarettnymbl/Deep-Agent/outlook/graph"
	"github.com/zbarettnymbl/Deep-Agent/outlook/priority"
)

func TestSummarizeEmails(t *testing.T) {
	if got := summarizeEmails(nil); got != "No new email since the previous work day." {
		t.Errorf("empty summary: %q", got)
	}
	emails := []priority.Email{
		{Subject: "a", Read: false, Flagged: true},
		{Subject: "b", Read: true},
		{Subject: "c", Read: false},
	}
	got := summarizeEmails(emails)
	if got != "3 messages received (2 unread, 1 flagged)." {
		t.Errorf("summary: %q", got)
	}
}

func TestSummarizeEvents(t *testing.T) {
	if got := summarizeEvents(nil); got != "No meetings on the calendar today." {
		t.Errorf("empty summary: %q", got)
	}
	events := []graph.CalendarEvent{
		{Subject: "Standup", StartISO: "2026-03-02T09:30:00Z", Location: "Room 4"},
		{Subject: "1:1"},
	}
	got := summarizeEvents(events)
	if !strings.HasPrefix(got, "2 meetings today:") {
		t.Errorf("header: %q", got)
	}
	if !strings.Contains(got, "- Standup at 09:30 UTC (Room 4)") {
		t.Errorf("event line: %q", got)
	}
	if !strings.Contains(got, "- 1:1") {
		t.Errorf("missing bare event: %q", got)
	}
}

func TestBuildBriefing(t *testing.T) {
	emails := []priority.Email{{Subject: "Budget", SenderName: "Alice", Read: false}}
	scored := []priority.ScoredEmail{{Email: emails[0], Score: 50, Reasons: []string{"Marked as high importance", "Flagged for follow-up"}}}
	got := buildBriefing(scored, emails, nil)
	for _, want := range []string{
		"Daily briefing",
		"1 messages received (1 unread, 0 flagged).",
		"No meetings on the calendar today.",
		"Top priorities:",
		"1. Budget — Alice (score 50): Marked as high importance; Flagged for follow-up",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("briefing missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatFollowUps(t *testing.T) {
	if got := formatFollowUps(nil); got != "No messages need a follow-up right now." {
		t.Errorf("empty: %q", got)
	}
	items := []FollowUpItem{
		{Subject: "Contract", Sender: "Bob", Reasons: "flagged, unread"},
		{Subject: "Invoice", Sender: "Eve", Reasons: "recent message"},
	}
	got := formatFollowUps(items)
	if !strings.Contains(got, "1. Contract — Bob [flagged, unread]") {
		t.Errorf("first line: %q", got)
	}
	if !strings.Contains(got, "2. Invoice — Eve [recent message]") {
		t.Errorf("second line: %q", got)
	}
}

func TestFormatPriorities(t *testing.T) {
	if got := formatPriorities(nil); got != "No prioritized email in the requested window." {
		t.Errorf("empty: %q", got)
	}
	emails := []PriorityEmail{{Subject: "Outage", Sender: "Ops", Score: 70, Reasons: []string{"Marked as high importance", "Deadline has passed"}}}
	got := formatPriorities(emails)
	if !strings.Contains(got, "1. Outage — Ops (score 70): Marked as high importance; Deadline has passed") {
		t.Errorf("line: %q", got)
	}
}

func TestFollowUpStatus(t *testing.T) {
	cases := []struct {
		f      priority.FollowUp
		expect string
	}{
		{priority.FollowUp{Read: true}, "read"},
		{priority.FollowUp{Read: false}, "unread"},
		{priority.FollowUp{Read: false, Flagged: true}, "flagged, unread"},
		{priority.FollowUp{Read: true, Flagged: true}, "flagged, read"},
	}
	for _, tc := range cases {
		if got := followUpStatus(tc.f); got != tc.expect {
			t.Errorf("status: got %q, want %q", got, tc.expect)
		}
	}
}
