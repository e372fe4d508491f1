package mcp

import (
	"time"

	"github.com/viant/scy"

	"github.com/zbarettnymbl/Deep-Agent/outlook/priority"
)

// Config controls the Outlook MCP server behaviour, authentication and the
// priority scorer weight table.
type Config struct {
	// Azure AD application (client) ID for Microsoft Graph.
	ClientID string `json:"clientID"`
	// Tenant ID or "organizations"/"common".
	TenantID string `json:"tenantID"`

	// StorageURL is an afs base URL where auth records are persisted per
	// account alias (e.g. file://~/.deep-agent, mem://localhost/deep-agent).
	StorageURL string `json:"storageURL,omitempty"`

	// CallbackBaseURL is used to generate absolute URLs for OOB flows.
	CallbackBaseURL string `json:"callbackBaseURL,omitempty"`

	// If true, return tool results in the structured field instead of text.
	UseData bool `json:"useData,omitempty"`

	// AzureRef optionally points to an Azure OAuth2 client config stored as
	// a scy resource, using EncodedResource syntax "<URL>|<kmsKey>".
	AzureRef scy.EncodedResource `json:"azureRef,omitempty"`

	Priority PriorityConfig `json:"priority,omitempty"`
}

// PriorityConfig carries the raw weight inputs. They are resolved into a
// priority.Weights table once at service construction; the scorer itself
// never consults the environment.
type PriorityConfig struct {
	// SenderRules is a comma separated "address[:weight]" list.
	SenderRules string `json:"senderRules,omitempty"`
	// DomainRules is a comma separated "domain[:weight]" list; a leading
	// "@" on each key is accepted.
	DomainRules string `json:"domainRules,omitempty"`
	// ImportanceWeights is a JSON object mapping level name to weight.
	ImportanceWeights string `json:"importanceWeights,omitempty"`

	FlaggedWeight      *float64 `json:"flaggedWeight,omitempty"`
	OverdueWeight      *float64 `json:"overdueWeight,omitempty"`
	DueSoonWeight      *float64 `json:"dueSoonWeight,omitempty"`
	DueSoonWindowHours int      `json:"dueSoonWindowHours,omitempty"`
}

// Weights resolves the configured inputs over the canonical defaults.
func (c *PriorityConfig) Weights() *priority.Weights {
	w := priority.DefaultWeights()
	if c == nil {
		return w
	}
	w.ApplySenderRules(c.SenderRules)
	w.ApplyDomainRules(c.DomainRules)
	w.ApplyImportanceOverrides(c.ImportanceWeights)
	if c.FlaggedWeight != nil {
		w.Flagged = *c.FlaggedWeight
	}
	if c.OverdueWeight != nil {
		w.Overdue = *c.OverdueWeight
	}
	if c.DueSoonWeight != nil {
		w.DueSoon = *c.DueSoonWeight
	}
	if c.DueSoonWindowHours > 0 {
		w.DueSoonWindow = time.Duration(c.DueSoonWindowHours) * time.Hour
	}
	return w
}
