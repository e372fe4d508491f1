package mcp

import (
	"github.com/zbarettnymbl/Deep-Agent/drive/gdrive"
	"google.golang.org/api/option"
)

// Service wires the Drive client behind the MCP tools.
type Service struct {
	client  *gdrive.Client
	useText bool
}

func NewService(cfg *Config, opts ...option.ClientOption) *Service {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Service{
		client:  gdrive.New(&cfg.Drive, opts...),
		useText: !cfg.UseData,
	}
}

func (s *Service) Client() *gdrive.Client { return s.client }
func (s *Service) UseTextField() bool     { return s.useText }
