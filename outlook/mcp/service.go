package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	protoclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/scy"
	"github.com/viant/scy/cred"

	oaauth "github.com/zbarettnymbl/Deep-Agent/auth"
	"github.com/zbarettnymbl/Deep-Agent/outlook/graph"
	"github.com/zbarettnymbl/Deep-Agent/outlook/priority"
)

// Service wires the graph manager, the priority scorer and the pending-auth
// registry behind the Outlook tools.
type Service struct {
	graphMgr *graph.Manager
	scorer   *priority.Scorer
	baseURL  string
	useText  bool
	pending  *PendingAuths
	auth     *oaauth.Service
	tenantID string
	clientID string
}

func NewService(cfg *Config) *Service {
	if cfg == nil {
		cfg = &Config{}
	}
	clientID := cfg.ClientID
	// Optionally resolve the Azure OAuth2 client from a scy EncodedResource.
	if cfg.AzureRef != "" {
		res := cfg.AzureRef.Decode(context.Background(), cred.Azure{})
		if sec, err := scy.New().Load(context.Background(), res); err == nil {
			if az, ok := sec.Target.(*cred.Azure); ok && az.ClientID != "" {
				clientID = az.ClientID
			}
		}
	}
	return &Service{
		graphMgr: graph.NewManager(clientID, cfg.StorageURL),
		scorer:   priority.NewScorer(cfg.Priority.Weights()),
		baseURL:  cfg.CallbackBaseURL,
		useText:  !cfg.UseData,
		pending:  NewPendingAuths(),
		auth:     oaauth.New(),
		tenantID: cfg.TenantID,
		clientID: clientID,
	}
}

func (s *Service) GraphManager() *graph.Manager { return s.graphMgr }
func (s *Service) Scorer() *priority.Scorer     { return s.scorer }
func (s *Service) UseTextField() bool           { return s.useText }
func (s *Service) BaseURL() string              { return s.baseURL }
func (s *Service) Pending() *PendingAuths       { return s.pending }
func (s *Service) TenantID() string             { return s.tenantID }
func (s *Service) ClientID() string             { return s.clientID }

// NewOperationsHook allows passing protocol client operations if needed later.
func (s *Service) NewOperationsHook(_ protoclient.Operations) {}

// DeviceHandler serves the device login page for a pending auth UUID.
func (s *Service) DeviceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// URL: /outlook/auth/device/{uuid}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 4 {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		pend, ok := s.pending.Get(parts[3])
		if !ok {
			http.Error(w, "no pending auth", http.StatusNotFound)
			return
		}
		msg := s.graphMgr.DevicePrompt(pend.Alias)
		if msg == "" {
			deadline := time.Now().Add(8 * time.Second)
			for msg == "" && time.Now().Before(deadline) {
				time.Sleep(200 * time.Millisecond)
				msg = s.graphMgr.DevicePrompt(pend.Alias)
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if msg == "" {
			_, _ = fmt.Fprint(w, buildWaitingForDeviceHTML())
			return
		}
		_, _ = fmt.Fprint(w, buildDeviceLoginHTML(msg))
	}
}

// buildDeviceLoginHTML converts the Azure device prompt into a clickable page
// with a copyable code.
func buildDeviceLoginHTML(msg string) string {
	url := extractURL(msg)
	code := extractCode(msg)
	escURL := html.EscapeString(url)
	escCode := html.EscapeString(code)
	if escCode == "" {
		escMsg := html.EscapeString(msg)
		return fmt.Sprintf(`<html><body>
<h3>Sign in to Outlook</h3>
<p>Open <a href="%[1]s" target="_blank" rel="noopener noreferrer">%[1]s</a> and follow the instructions.</p>
<pre>%[2]s</pre>
<p>Keep this tab open; return to your assistant after completing sign-in.</p>
</body></html>`, escURL, escMsg)
	}
	return fmt.Sprintf(`<html><body style="font-family: -apple-system, Segoe UI, Roboto, sans-serif;">
<h3>Sign in to Outlook</h3>
<p>Click to open: <a href="%[1]s" target="_blank" rel="noopener noreferrer">%[1]s</a></p>
<p>Then enter this code:</p>
<p style="font-size: 1.4em; font-weight: 600;"><code>%[2]s</code> <button onclick="navigator.clipboard.writeText('%[2]s')">Copy</button></p>
<p>Keep this tab open; return to your assistant after completing sign-in.</p>
</body></html>`, escURL, escCode)
}

func buildWaitingForDeviceHTML() string {
	url := html.EscapeString("https://microsoft.com/devicelogin")
	return fmt.Sprintf(`<!doctype html>
<html><head>
<meta http-equiv="refresh" content="2">
<meta charset="utf-8">
<title>Sign in to Outlook</title>
<style>body{font-family:-apple-system,Segoe UI,Roboto,sans-serif;margin:24px}</style>
</head><body>
<h3>Sign in to Outlook</h3>
<p>Preparing device login… this page refreshes automatically.</p>
<p>If it takes too long, you can open <a href="%[1]s" target="_blank" rel="noopener noreferrer">%[1]s</a> and follow the instructions.</p>
<p>Keep this tab open; return to your assistant after completing sign-in.</p>
</body></html>`, url)
}

// PendingListHandler returns JSON of pending auths for a namespace.
func (s *Service) PendingListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ns := r.URL.Query().Get("namespace")
		if ns == "" {
			if v, err := s.auth.Namespace(r.Context()); err == nil {
				ns = v
			}
		}
		if ns == "" {
			http.Error(w, "namespace required", http.StatusBadRequest)
			return
		}
		list := s.pending.ListNamespace(ns)
		type row struct{ UUID, Alias, TenantID, Namespace string }
		out := make([]row, 0, len(list))
		for _, v := range list {
			out = append(out, row{UUID: v.UUID, Alias: v.Alias, TenantID: v.TenantID, Namespace: v.Namespace})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

// PendingClearHandler clears all pending auths for a namespace.
func (s *Service) PendingClearHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ns := r.URL.Query().Get("namespace")
		if ns == "" {
			if v, err := s.auth.Namespace(r.Context()); err == nil {
				ns = v
			}
		}
		if ns == "" {
			http.Error(w, "namespace required", http.StatusBadRequest)
			return
		}
		cleared := s.pending.ClearNamespace(ns)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"cleared": len(cleared), "uuids": cleared})
	}
}

// Minimal helpers to extract the device login URL/code from the Azure prompt.
func extractURL(msg string) string {
	if m := regexp.MustCompile(`https?://[^\s]+`).FindString(msg); m != "" {
		return m
	}
	return "https://microsoft.com/devicelogin"
}

func extractCode(msg string) string {
	if m := regexp.MustCompile(`(?i)code\s+([A-Z0-9-]+)`).FindStringSubmatch(msg); len(m) == 2 {
		return m[1]
	}
	return ""
}
