package mcp

import (
	"fmt"
	"strings"

	"github.com/zbarettnymbl/Deep-Agent/outlook/graph"
	"github.com/zbarettnymbl/Deep-Agent/outlook/priority"
)

// summarizeEmails builds the mail section of the daily briefing from the
// previous work day's inbox.
func summarizeEmails(emails []priority.Email) string {
	if len(emails) == 0 {
		return "No new email since the previous work day."
	}
	unread := 0
	flagged := 0
	for _, e := range emails {
		if !e.Read {
			unread++
		}
		if e.Flagged {
			flagged++
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d messages received (%d unread, %d flagged).", len(emails), unread, flagged)
	return b.String()
}

// summarizeEvents builds the calendar section of the daily briefing.
func summarizeEvents(events []graph.CalendarEvent) string {
	if len(events) == 0 {
		return "No meetings on the calendar today."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d meetings today:", len(events))
	for _, ev := range events {
		line := "\n- " + ev.Subject
		if start := formatEventTime(ev.StartISO); start != "" {
			line += " at " + start
		}
		if ev.Location != "" {
			line += " (" + ev.Location + ")"
		}
		b.WriteString(line)
	}
	return b.String()
}

// buildBriefing combines the mail and calendar summaries with the top scored
// emails into a single text block.
func buildBriefing(scored []priority.ScoredEmail, all []priority.Email, events []graph.CalendarEvent) string {
	var b strings.Builder
	b.WriteString("Daily briefing\n\n")
	b.WriteString(summarizeEmails(all))
	b.WriteString("\n\n")
	b.WriteString(summarizeEvents(events))
	if len(scored) > 0 {
		b.WriteString("\n\nTop priorities:")
		for i, s := range scored {
			fmt.Fprintf(&b, "\n%d. %s — %s (score %.0f)", i+1, s.Subject, s.SenderName, s.Score)
			if len(s.Reasons) > 0 {
				fmt.Fprintf(&b, ": %s", strings.Join(s.Reasons, "; "))
			}
		}
	}
	return b.String()
}

// formatFollowUps renders ranked follow-ups as numbered plain text.
func formatFollowUps(items []FollowUpItem) string {
	if len(items) == 0 {
		return "No messages need a follow-up right now."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d messages may need a follow-up:", len(items))
	for i, it := range items {
		fmt.Fprintf(&b, "\n%d. %s — %s [%s]", i+1, it.Subject, it.Sender, it.Reasons)
	}
	return b.String()
}

// formatPriorities renders scored emails as numbered plain text.
func formatPriorities(emails []PriorityEmail) string {
	if len(emails) == 0 {
		return "No prioritized email in the requested window."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Top %d priorities:", len(emails))
	for i, e := range emails {
		fmt.Fprintf(&b, "\n%d. %s — %s (score %.0f)", i+1, e.Subject, e.Sender, e.Score)
		if len(e.Reasons) > 0 {
			fmt.Fprintf(&b, ": %s", strings.Join(e.Reasons, "; "))
		}
	}
	return b.String()
}

// formatEventTime renders an event start as HH:MM UTC.
func formatEventTime(iso string) string {
	t := graph.ParseGraphTime(iso, "")
	if t.IsZero() {
		return ""
	}
	return t.Format("15:04") + " UTC"
}
