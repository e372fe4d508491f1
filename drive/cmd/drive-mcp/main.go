package main

import (
	"context"
	"log"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/viant/mcp-protocol/schema"
	mcpsrv "github.com/viant/mcp/server"

	"github.com/zbarettnymbl/Deep-Agent/drive/gdrive"
	"github.com/zbarettnymbl/Deep-Agent/drive/mcp"
)

// Options defines CLI flags for the Drive MCP server.
type Options struct {
	HTTPAddr           string `short:"a" long:"addr" description:"HTTP listen address (empty disables HTTP)"`
	ServiceAccountPath string `long:"service-account" description:"path to a Google service account JSON file"`
	DelegatedUser      string `long:"delegated-user" description:"email to impersonate via domain-wide delegation"`
	TokenPath          string `long:"token-path" description:"path to an authorized-user token JSON file"`
	UseData            bool   `long:"use-data" description:"Return tool results as structured content instead of text"`
}

func main() {

	var opts Options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		os.Exit(2)
	}
	// Env fallbacks mirror the Google client library conventions.
	if opts.ServiceAccountPath == "" {
		opts.ServiceAccountPath = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if opts.DelegatedUser == "" {
		opts.DelegatedUser = os.Getenv("GOOGLE_DRIVE_DELEGATED_USER")
	}
	if opts.TokenPath == "" {
		opts.TokenPath = os.Getenv("GOOGLE_DRIVE_TOKEN_PATH")
	}
	tokenJSON := os.Getenv("GOOGLE_DRIVE_TOKEN_JSON")
	if opts.ServiceAccountPath == "" && opts.TokenPath == "" && tokenJSON == "" {
		log.Fatal("missing Drive credentials: set --service-account/GOOGLE_APPLICATION_CREDENTIALS or --token-path/GOOGLE_DRIVE_TOKEN_PATH/GOOGLE_DRIVE_TOKEN_JSON")
	}

	svc := mcp.NewService(&mcp.Config{
		Drive: gdrive.Config{
			ServiceAccountPath: opts.ServiceAccountPath,
			DelegatedUser:      opts.DelegatedUser,
			TokenJSON:          tokenJSON,
			TokenPath:          opts.TokenPath,
		},
		UseData: opts.UseData,
	})

	server, err := mcpsrv.New(
		mcpsrv.WithImplementation(schema.Implementation{Name: "deep-agent-drive", Version: "0.1.0"}),
		mcpsrv.WithNewHandler(mcp.NewHandler(svc)),
		mcpsrv.WithEndpointAddress(opts.HTTPAddr),
		mcpsrv.WithRootRedirect(true),
		mcpsrv.WithStreamableURI("/mcp"),
	)
	if err != nil {
		log.Fatal(err)
	}
	if opts.HTTPAddr != "" {
		server.UseStreamableHTTP(true)
		if err := server.HTTP(context.Background(), opts.HTTPAddr).ListenAndServe(); err != nil {
			log.Fatal(err)
		}
	}
}
