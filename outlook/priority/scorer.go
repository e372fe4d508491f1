package priority

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Email is a normalized mailbox record. Timestamp fields are zero when the
// source value was missing or malformed.
type Email struct {
	ID            string
	Subject       string
	SenderName    string
	SenderAddress string
	Received      time.Time
	// Importance is the lower-cased importance level; empty means normal.
	Importance string
	Flagged    bool
	Read       bool
	// DueAt is the follow-up deadline, zero when none is set.
	DueAt time.Time
}

// ScoredEmail pairs an email with its priority score and the reasons that
// contributed to it, in rule evaluation order.
type ScoredEmail struct {
	Email
	Score   float64
	Reasons []string
}

// Scorer computes priority scores against an immutable weight table.
type Scorer struct {
	weights *Weights
}

func NewScorer(weights *Weights) *Scorer {
	if weights == nil {
		weights = DefaultWeights()
	}
	return &Scorer{weights: weights}
}

// Score evaluates each signal once, in fixed order, accumulating at most one
// reason per signal. Emails with no matching signal return an empty reason
// list.
func (s *Scorer) Score(e Email, now time.Time) (float64, []string) {
	var score float64
	var reasons []string

	level := e.Importance
	if level == "" {
		level = "normal"
	}
	if w, ok := s.weights.Importance[level]; ok {
		score += w
		reasons = append(reasons, fmt.Sprintf("Marked as %s importance", level))
	}

	if addr := strings.ToLower(e.SenderAddress); addr != "" {
		if w, ok := s.weights.Senders[addr]; ok {
			score += w
			reasons = append(reasons, "Matches high-priority sender rule")
		} else if at := strings.LastIndex(addr, "@"); at >= 0 && at+1 < len(addr) {
			if w, ok := s.weights.Domains[addr[at+1:]]; ok {
				score += w
				reasons = append(reasons, "Matches high-priority domain rule")
			}
		}
	}

	if e.Flagged {
		score += s.weights.Flagged
		reasons = append(reasons, "Flagged for follow-up")
	}

	if !e.DueAt.IsZero() {
		switch {
		case !e.DueAt.After(now):
			// A deadline equal to now counts as overdue.
			score += s.weights.Overdue
			reasons = append(reasons, "Deadline has passed")
		case !e.DueAt.After(now.Add(s.weights.DueSoonWindow)):
			score += s.weights.DueSoon
			reasons = append(reasons, fmt.Sprintf("Due within %dh", int(s.weights.DueSoonWindow.Hours())))
		}
	}

	return score, reasons
}

// TopK scores the batch and returns the k highest scoring emails, descending
// by score. Ties keep their original fetch order; k <= 0 yields an empty
// result.
func (s *Scorer) TopK(emails []Email, k int, now time.Time) []ScoredEmail {
	if k <= 0 || len(emails) == 0 {
		return nil
	}
	scored := make([]ScoredEmail, 0, len(emails))
	for _, e := range emails {
		score, reasons := s.Score(e, now)
		scored = append(scored, ScoredEmail{Email: e, Score: score, Reasons: reasons})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}
