// Package priority implements the rule based email priority scorer and the
// follow-up ranker used by the Outlook tools. All functions are pure: they
// operate on already fetched, normalized records and a weight table built
// once at startup.
package priority

import (
	"encoding/json"
	"strings"
	"time"
)

// defaultRuleWeight applies to sender/domain entries listed without an
// explicit weight.
const defaultRuleWeight = 30

// Weights holds the tunable parameters of the scorer. Built once from
// configuration and treated as immutable afterwards; concurrent readers need
// no synchronization.
type Weights struct {
	// Importance maps a lower-cased importance level to a signed weight.
	Importance map[string]float64
	// Senders maps a lower-cased full address to a weight. An exact sender
	// match takes precedence over a domain match.
	Senders map[string]float64
	// Domains maps a lower-cased bare domain (no "@") to a weight.
	Domains map[string]float64

	Flagged float64
	Overdue float64
	DueSoon float64
	// DueSoonWindow is the horizon within which an upcoming deadline adds
	// the DueSoon weight.
	DueSoonWindow time.Duration
}

// DefaultWeights returns the canonical weight table.
func DefaultWeights() *Weights {
	return &Weights{
		Importance: map[string]float64{
			"high":   40,
			"normal": 10,
			"low":    -5,
		},
		Senders:       map[string]float64{},
		Domains:       map[string]float64{},
		Flagged:       10,
		Overdue:       30,
		DueSoon:       20,
		DueSoonWindow: 24 * time.Hour,
	}
}

// ParseRuleList parses a comma separated list of "key[:weight]" or
// "key=weight" entries into a weight map. Keys are lower-cased and a leading
// "@" is stripped, so sender and domain lists share the same syntax.
// Entries with an unparseable weight are skipped; a single bad entry never
// aborts the whole list.
func ParseRuleList(raw string) map[string]float64 {
	rules := map[string]float64{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key := entry
		weight := float64(defaultRuleWeight)
		if i := strings.IndexAny(entry, ":="); i >= 0 {
			key = entry[:i]
			var parsed float64
			if err := json.Unmarshal([]byte(strings.TrimSpace(entry[i+1:])), &parsed); err != nil {
				continue
			}
			weight = parsed
		}
		key = strings.ToLower(strings.TrimSpace(key))
		key = strings.TrimPrefix(key, "@")
		if key == "" {
			continue
		}
		rules[key] = weight
	}
	return rules
}

// ApplySenderRules merges a rule list into the sender table.
func (w *Weights) ApplySenderRules(raw string) {
	for k, v := range ParseRuleList(raw) {
		w.Senders[k] = v
	}
}

// ApplyDomainRules merges a rule list into the domain table.
func (w *Weights) ApplyDomainRules(raw string) {
	for k, v := range ParseRuleList(raw) {
		w.Domains[k] = v
	}
}

// ApplyImportanceOverrides merges a JSON object of {level: weight} into the
// importance table. Invalid JSON leaves the table untouched.
func (w *Weights) ApplyImportanceOverrides(raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	var overrides map[string]float64
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return
	}
	for level, weight := range overrides {
		w.Importance[strings.ToLower(level)] = weight
	}
}
