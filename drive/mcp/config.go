package mcp

import (
	"github.com/zbarettnymbl/Deep-Agent/drive/gdrive"
)

// Config controls the Drive MCP server behaviour and credential source.
type Config struct {
	Drive gdrive.Config `json:"drive"`
	// If true, return tool results in the structured field instead of text.
	UseData bool `json:"useData,omitempty"`
}
