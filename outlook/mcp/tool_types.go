package mcp

import (
	"github.com/zbarettnymbl/Deep-Agent/outlook/graph"
)

// TopPrioritiesInput requests the highest priority inbox messages. Without
// explicit bounds the previous work day is scanned.
type TopPrioritiesInput struct {
	Account graph.Account `json:"account"`
	// Limit caps the result size (1-25). Omitted means 5; zero or negative
	// yields an empty result.
	Limit    *int   `json:"limit,omitempty" description:"maximum number of prioritized emails to return (1-25)"`
	SinceISO string `json:"sinceISO,omitempty" description:"override window start (RFC3339)"`
	UntilISO string `json:"untilISO,omitempty" description:"override window end (RFC3339)"`
}

// PriorityEmail is one scored result record.
type PriorityEmail struct {
	Subject     string   `json:"subject"`
	Sender      string   `json:"sender"`
	SenderEmail string   `json:"senderEmail"`
	Received    string   `json:"received,omitempty"`
	Importance  string   `json:"importance"`
	Score       float64  `json:"score"`
	Reasons     []string `json:"reasons,omitempty"`
	DueBy       string   `json:"dueBy,omitempty"`
}

type TopPrioritiesOutput struct {
	Limit  int             `json:"limit"`
	Emails []PriorityEmail `json:"emails"`
}

// FollowUpsInput requests ranked follow-up recommendations over unread or
// flagged messages.
type FollowUpsInput struct {
	Account graph.Account `json:"account"`
	// Limit caps the result size (1-20). Omitted means 5; zero or negative
	// yields an empty result.
	Limit *int `json:"limit,omitempty" description:"maximum number of follow-up recommendations to return (1-20)"`
}

// FollowUpItem is one ranked follow-up record.
type FollowUpItem struct {
	Subject    string `json:"subject"`
	Sender     string `json:"sender"`
	Received   string `json:"received,omitempty"`
	Importance string `json:"importance"`
	Status     string `json:"status"`
	MessageID  string `json:"messageId"`
	Reasons    string `json:"reasons"`
}

type FollowUpsOutput struct {
	Items []FollowUpItem `json:"items,omitempty"`
}

// BriefingInput requests the combined previous-workday briefing.
type BriefingInput struct {
	Account graph.Account `json:"account"`
}

type BriefingOutput struct {
	Briefing string `json:"briefing"`
}

// resolveLimit applies default/empty/clamp semantics for tool limits: nil
// means the default, zero or negative means no results, values above max are
// clamped.
func resolveLimit(limit *int, def, max int) int {
	if limit == nil {
		return def
	}
	if *limit <= 0 {
		return 0
	}
	if *limit > max {
		return max
	}
	return *limit
}
