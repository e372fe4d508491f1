package main

import (
	"context"
	"log"
	"os"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/viant/mcp-protocol/authorization"
	oauthmeta "github.com/viant/mcp-protocol/oauth2/meta"
	"github.com/viant/mcp-protocol/schema"
	mcpsrv "github.com/viant/mcp/server"
	serverauth "github.com/viant/mcp/server/auth"
	"github.com/viant/scy"
	"github.com/viant/scy/auth/flow"
	"github.com/viant/scy/cred"
	_ "github.com/viant/scy/kms/blowfish"

	"github.com/zbarettnymbl/Deep-Agent/outlook/mcp"
)

// Options defines CLI flags for the Outlook MCP server.
type Options struct {
	HTTPAddr     string `short:"a" long:"addr" description:"HTTP listen address (empty disables HTTP)"`
	ClientID     string `long:"client-id" description:"Azure AD application (client) ID"`
	TenantID     string `long:"tenant-id" description:"Tenant ID or 'organizations'"`
	StorageURL   string `long:"storage-url" description:"afs base URL for persisting auth records (e.g., mem://localhost/deep-agent)"`
	AzureRef     string `long:"azure-ref" description:"scy EncodedResource for Azure cred (e.g., gcp://...|blowfish://default)"`
	Oauth2Config string `short:"o" long:"oauth2config" description:"Path to JSON OAuth2 configuration file (scy EncodedResource)"`
	UseIdToken   bool   `short:"i" long:"use-id-token" description:"Use ID token (instead of access token) for identity scoping"`
	UseData      bool   `long:"use-data" description:"Return tool results as structured content instead of text"`

	// Priority scorer weights. Unset values fall back to built-in defaults.
	SenderRules        string   `long:"priority-senders" description:"comma separated address[:weight] list of high-priority senders"`
	DomainRules        string   `long:"priority-domains" description:"comma separated domain[:weight] list of high-priority domains"`
	ImportanceWeights  string   `long:"priority-importance" description:"JSON object mapping importance level to weight"`
	FlaggedWeight      *float64 `long:"priority-flagged" description:"weight added to flagged messages"`
	OverdueWeight      *float64 `long:"priority-overdue" description:"weight added to messages past their due date"`
	DueSoonWeight      *float64 `long:"priority-due-soon" description:"weight added to messages due within the window"`
	DueSoonWindowHours int      `long:"priority-due-soon-hours" description:"due-soon window size in hours (default 24)"`
}

func main() {

	var opts Options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		os.Exit(2)
	}
	// Apply simple defaults and env fallbacks
	if opts.StorageURL == "" {
		opts.StorageURL = envOr("DEEP_AGENT_STORAGE_URL", "mem://localhost/deep-agent")
	}
	if opts.TenantID == "" {
		opts.TenantID = envOr("OUTLOOK_TENANT_ID", "organizations")
	}
	if opts.ClientID == "" {
		opts.ClientID = envOr("OUTLOOK_CLIENT_ID", "")
	}
	if opts.AzureRef == "" {
		opts.AzureRef = envOr("OUTLOOK_AZURE_REF", "")
	}
	if opts.SenderRules == "" {
		opts.SenderRules = os.Getenv("PRIORITY_SENDERS")
	}
	if opts.DomainRules == "" {
		opts.DomainRules = os.Getenv("PRIORITY_DOMAINS")
	}
	if opts.ImportanceWeights == "" {
		opts.ImportanceWeights = os.Getenv("PRIORITY_IMPORTANCE")
	}
	if opts.ClientID == "" && opts.AzureRef == "" {
		log.Fatal("missing --client-id/OUTLOOK_CLIENT_ID (or provide --azure-ref / OUTLOOK_AZURE_REF)")
	}

	// Derive callback base URL from listen address.
	baseURL := "http://localhost"
	if opts.HTTPAddr != "" {
		hostport := opts.HTTPAddr
		if hostport[0] == ':' {
			hostport = "localhost" + hostport
		}
		baseURL = "http://" + hostport
	}
	// If azure-ref provided, derive missing values from secret (clientID, tenantID).
	if opts.AzureRef != "" {
		res := scy.EncodedResource(opts.AzureRef).Decode(context.Background(), cred.Azure{})
		sec, err := scy.New().Load(context.Background(), res)
		if err != nil {
			log.Fatalf("failed to load azure-ref secret: %v", err)
		}
		az, ok := sec.Target.(*cred.Azure)
		if !ok {
			log.Fatal("azure-ref secret is not of type cred.Azure (expected JSON with ClientID, TenantID, EncryptedClientSecret)")
		}
		if opts.ClientID == "" && az.ClientID != "" {
			opts.ClientID = az.ClientID
		}
		if (opts.TenantID == "" || opts.TenantID == "organizations") && az.TenantID != "" {
			opts.TenantID = az.TenantID
		}
	}

	svc := mcp.NewService(&mcp.Config{
		ClientID:        opts.ClientID,
		TenantID:        opts.TenantID,
		StorageURL:      strings.Replace(opts.StorageURL, "$HOME", os.Getenv("HOME"), 1),
		CallbackBaseURL: baseURL,
		UseData:         opts.UseData,
		AzureRef:        scy.EncodedResource(opts.AzureRef),
		Priority: mcp.PriorityConfig{
			SenderRules:        opts.SenderRules,
			DomainRules:        opts.DomainRules,
			ImportanceWeights:  opts.ImportanceWeights,
			FlaggedWeight:      opts.FlaggedWeight,
			OverdueWeight:      opts.OverdueWeight,
			DueSoonWeight:      opts.DueSoonWeight,
			DueSoonWindowHours: opts.DueSoonWindowHours,
		},
	})

	// Build server options baseline
	options := []mcpsrv.Option{
		mcpsrv.WithImplementation(schema.Implementation{Name: "deep-agent-outlook", Version: "0.1.0"}),
		mcpsrv.WithNewHandler(mcp.NewHandler(svc)),
		mcpsrv.WithEndpointAddress(opts.HTTPAddr),
		mcpsrv.WithRootRedirect(true),
		mcpsrv.WithStreamableURI("/mcp"),
		mcpsrv.WithCustomHTTPHandler("/outlook/auth/device/", svc.DeviceHandler()),
		mcpsrv.WithCustomHTTPHandler("/outlook/auth/pending", svc.PendingListHandler()),
		mcpsrv.WithCustomHTTPHandler("/outlook/auth/pending/clear", svc.PendingClearHandler()),
	}

	// Optional server-level OAuth2
	if v := strings.TrimSpace(opts.Oauth2Config); v != "" {
		res := scy.EncodedResource(v).Decode(context.Background(), cred.Oauth2Config{})
		sec, err := scy.New().Load(context.Background(), res)
		if err != nil {
			log.Fatalf("failed to load oauth2config: %v", err)
		}
		oc, ok := sec.Target.(*cred.Oauth2Config)
		if !ok {
			log.Fatalf("invalid oauth2config secret type")
		}
		authPolicy := &authorization.Policy{
			Global: &authorization.Authorization{
				UseIdToken: opts.UseIdToken,
				ProtectedResourceMetadata: &oauthmeta.ProtectedResourceMetadata{
					AuthorizationServers: []string{oc.Config.Endpoint.AuthURL},
				}},
			// Allow SSE/UI without auth; protect /mcp
			ExcludeURI: "/sse,/ui/interaction/",
		}
		header := flow.AuthorizationExchangeHeader
		bff := &serverauth.BackendForFrontend{Client: &oc.Config, AuthorizationExchangeHeader: header}
		authSvc, err := serverauth.New(&serverauth.Config{Policy: authPolicy, BackendForFrontend: bff})
		if err != nil {
			log.Fatalf("failed to init auth service: %v", err)
		}
		options = append(options,
			mcpsrv.WithAuthorizer(authSvc.Middleware),
			mcpsrv.WithProtectedResourcesHandler(authSvc.ProtectedResourcesHandler),
		)
	}

	server, err := mcpsrv.New(options...)
	if err != nil {
		log.Fatal(err)
	}
	if opts.HTTPAddr != "" {
		// Enable streamable HTTP so /mcp endpoint is active
		server.UseStreamableHTTP(true)
		if err := server.HTTP(context.Background(), opts.HTTPAddr).ListenAndServe(); err != nil {
			log.Fatal(err)
		}
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
