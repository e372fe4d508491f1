package priority

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FollowUp is a ranked follow-up candidate. Rank position is implicit in
// slice order.
type FollowUp struct {
	MessageID  string
	Subject    string
	Sender     string
	Received   time.Time
	Importance string
	Flagged    bool
	Read       bool
	Reasons    string
}

func importanceRank(level string) int {
	switch level {
	case "high":
		return 0
	case "low":
		return 2
	default:
		return 1
	}
}

// Rank orders follow-up candidates by (flagged, unread, importance, earliest
// received) and truncates to topN. The full candidate set is always sorted
// before truncation. topN <= 0 yields an empty result.
func Rank(msgs []Email, topN int, now time.Time) []FollowUp {
	if topN <= 0 || len(msgs) == 0 {
		return nil
	}
	ordered := make([]Email, len(msgs))
	copy(ordered, msgs)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := rankKey(ordered[i]), rankKey(ordered[j])
		for n := range a {
			if a[n] != b[n] {
				return a[n] < b[n]
			}
		}
		return false
	})
	if topN < len(ordered) {
		ordered = ordered[:topN]
	}
	out := make([]FollowUp, 0, len(ordered))
	for _, e := range ordered {
		out = append(out, FollowUp{
			MessageID:  e.ID,
			Subject:    e.Subject,
			Sender:     e.SenderName,
			Received:   e.Received,
			Importance: e.Importance,
			Flagged:    e.Flagged,
			Read:       e.Read,
			Reasons:    followUpReasons(e, now),
		})
	}
	return out
}

func rankKey(e Email) [4]int64 {
	var key [4]int64
	if !e.Flagged {
		key[0] = 1
	}
	if e.Read {
		key[1] = 1
	}
	key[2] = int64(importanceRank(e.Importance))
	if e.Received.IsZero() {
		key[3] = int64(^uint64(0) >> 1) // missing timestamps sort last
	} else {
		key[3] = e.Received.UnixNano()
	}
	return key
}

func followUpReasons(e Email, now time.Time) string {
	var parts []string
	if e.Flagged {
		parts = append(parts, "flagged")
	}
	if !e.Read {
		parts = append(parts, "unread")
	}
	if e.Importance == "high" {
		parts = append(parts, "high importance")
	}
	if !e.Received.IsZero() {
		parts = append(parts, fmt.Sprintf("received %.1fh ago", now.Sub(e.Received).Hours()))
	}
	if len(parts) == 0 {
		return "recent message"
	}
	return strings.Join(parts, ", ")
}
