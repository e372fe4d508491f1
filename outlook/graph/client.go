package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	idcache "github.com/Azure/azure-sdk-for-go/sdk/azidentity/cache"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/viant/afs"
	"github.com/viant/afs/url"

	oaauth "github.com/zbarettnymbl/Deep-Agent/auth"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// Manager provides Microsoft Graph credentials and client instances per
// account alias, scoped by the caller namespace. Credentials use the device
// code flow; successful logins persist an authentication record so later
// processes can sign in silently.
type Manager struct {
	clientID string
	// storageURL is an afs base URL (file://, mem://, ...) for auth records.
	storageURL string
	fs         afs.Service
	auth       *oaauth.Service

	mu      sync.RWMutex
	clients map[string]*msgraphsdk.GraphServiceClient
	creds   map[string]*azidentity.DeviceCodeCredential

	// pending holds device-code prompts keyed by account alias.
	pendingMu sync.Mutex
	pending   map[string]*pendingAuth
}

type pendingAuth struct{ message string }

func NewManager(clientID, storageURL string) *Manager {
	return &Manager{
		clientID:   clientID,
		storageURL: storageURL,
		fs:         afs.New(),
		auth:       oaauth.New(),
		clients:    map[string]*msgraphsdk.GraphServiceClient{},
		creds:      map[string]*azidentity.DeviceCodeCredential{},
		pending:    map[string]*pendingAuth{},
	}
}

// DefaultScopes returns the scope set for mail and calendar access.
func DefaultScopes() []string {
	return []string{"https://graph.microsoft.com/.default"}
}

func (m *Manager) namespace(ctx context.Context) string {
	ns, _ := m.auth.Namespace(ctx)
	if ns == "" {
		ns = "default"
	}
	return ns
}

func (m *Manager) recordURL(ns, alias string) string {
	return url.Join(m.storageURL, safePart(ns)+"_"+safePart(alias)+"_auth_record.json")
}

func safePart(s string) string {
	s = strings.TrimSpace(os.ExpandEnv(s))
	repl := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "|", "_", " ", "_", "@", "_")
	return repl.Replace(s)
}

func (m *Manager) loadRecord(ctx context.Context, ns, alias string) (azidentity.AuthenticationRecord, bool) {
	var rec azidentity.AuthenticationRecord
	data, err := m.fs.DownloadWithURL(ctx, m.recordURL(ns, alias))
	if err != nil {
		return rec, false
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, false
	}
	return rec, true
}

func (m *Manager) saveRecord(ctx context.Context, ns, alias string, rec azidentity.AuthenticationRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := m.fs.Upload(ctx, m.recordURL(ns, alias), 0o600, bytes.NewReader(data)); err != nil {
		debugf("failed to save auth record; ns=%s alias=%s: %v", ns, alias, err)
		return
	}
	debugf("saved auth record; ns=%s alias=%s", ns, alias)
}

// HasAuthRecord reports whether a persisted auth record exists for alias.
func (m *Manager) HasAuthRecord(ctx context.Context, alias string) bool {
	ok, _ := m.fs.Exists(ctx, m.recordURL(m.namespace(ctx), alias))
	return ok
}

// NeedsInteractive checks quickly (non-interactive) whether a device flow is
// required for alias.
func (m *Manager) NeedsInteractive(ctx context.Context, alias, tenantID string, scopes []string) bool {
	ns := m.namespace(ctx)
	rec, haveRec := m.loadRecord(ctx, ns, alias)
	cred, err := m.newCredential(ns, alias, tenantID, rec, haveRec, nil)
	if err != nil {
		return true
	}
	ctx2, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_, err = cred.GetToken(ctx2, policy.TokenRequestOptions{Scopes: scopes})
	return err != nil
}

func (m *Manager) newCredential(ns, alias, tenantID string, rec azidentity.AuthenticationRecord, haveRec bool, prompt func(string)) (*azidentity.DeviceCodeCredential, error) {
	aCache, err := idcache.New(&idcache.Options{Name: "deep-agent-" + safePart(ns) + "-" + safePart(alias)})
	if err != nil {
		return nil, err
	}
	opts := &azidentity.DeviceCodeCredentialOptions{
		TenantID: tenantID,
		ClientID: m.clientID,
		Cache:    aCache,
		// Always supply a callback so the SDK never prints to stdout.
		UserPrompt: func(_ context.Context, msg azidentity.DeviceCodeMessage) error {
			if prompt != nil {
				prompt(msg.Message)
			}
			return nil
		},
	}
	if haveRec {
		opts.AuthenticationRecord = rec
	}
	return azidentity.NewDeviceCodeCredential(opts)
}

// acquireCredential performs the device code flow. A persisted auth record
// enables a silent preflight first; interaction happens only when the silent
// attempt fails.
func (m *Manager) acquireCredential(ctx context.Context, alias, tenantID string, scopes []string, prompt func(string)) (*azidentity.DeviceCodeCredential, error) {
	if m.storageURL == "" {
		return nil, errors.New("storage URL is required")
	}
	ns := m.namespace(ctx)
	rec, haveRec := m.loadRecord(ctx, ns, alias)
	cred, err := m.newCredential(ns, alias, tenantID, rec, haveRec, prompt)
	if err != nil {
		return nil, err
	}
	if haveRec {
		tctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		_, preErr := cred.GetToken(tctx, policy.TokenRequestOptions{Scopes: scopes})
		cancel()
		if preErr == nil {
			return cred, nil
		}
	}
	fresh, err := cred.Authenticate(ctx, &policy.TokenRequestOptions{Scopes: scopes})
	if err != nil {
		return nil, err
	}
	m.saveRecord(ctx, ns, alias, fresh)
	return cred, nil
}

// Credential returns a cached DeviceCodeCredential for alias, acquiring and
// caching it if absent.
func (m *Manager) Credential(ctx context.Context, alias, tenantID string, scopes []string, prompt func(string)) (*azidentity.DeviceCodeCredential, error) {
	key := m.namespace(ctx) + "|" + alias
	m.mu.RLock()
	if c := m.creds[key]; c != nil {
		m.mu.RUnlock()
		return c, nil
	}
	m.mu.RUnlock()
	cred, err := m.acquireCredential(ctx, alias, tenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	if existing := m.creds[key]; existing != nil {
		m.mu.Unlock()
		return existing, nil
	}
	m.creds[key] = cred
	m.mu.Unlock()
	return cred, nil
}

// Client returns a ready-to-use GraphServiceClient with the given scopes.
func (m *Manager) Client(ctx context.Context, alias, tenantID string, scopes []string, prompt func(string)) (*msgraphsdk.GraphServiceClient, error) {
	key := m.clientKey(m.namespace(ctx), alias, tenantID, scopes)
	m.mu.RLock()
	if cli, ok := m.clients[key]; ok {
		m.mu.RUnlock()
		return cli, nil
	}
	m.mu.RUnlock()

	cred, err := m.Credential(ctx, alias, tenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, scopes)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	if existing, ok := m.clients[key]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.clients[key] = client
	m.mu.Unlock()
	return client, nil
}

// Bearer returns a bearer token for the account, for plain REST calls.
func (m *Manager) Bearer(ctx context.Context, account Account, scopes []string, prompt func(string)) (string, error) {
	cred, err := m.Credential(ctx, account.Alias, account.TenantID, scopes, prompt)
	if err != nil {
		return "", err
	}
	tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: scopes})
	if err != nil {
		return "", err
	}
	return tok.Token, nil
}

// StartDeviceLogin launches device code authentication in the background and
// stores the prompt message for retrieval via DevicePrompt.
func (m *Manager) StartDeviceLogin(ctx context.Context, alias, tenantID string, scopes []string, onComplete func()) {
	m.pendingMu.Lock()
	if _, ok := m.pending[alias]; ok {
		m.pendingMu.Unlock()
		return
	}
	holder := &pendingAuth{}
	m.pending[alias] = holder
	m.pendingMu.Unlock()
	go func() {
		prompt := func(msg string) { holder.message = msg }
		if _, err := m.acquireCredential(ctx, alias, tenantID, scopes, prompt); err == nil && onComplete != nil {
			onComplete()
		}
		m.pendingMu.Lock()
		delete(m.pending, alias)
		m.pendingMu.Unlock()
	}()
}

// DevicePrompt returns the last device-code prompt message for alias.
func (m *Manager) DevicePrompt(alias string) string {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	if p, ok := m.pending[alias]; ok {
		return p.message
	}
	return ""
}

// clientKey builds a stable cache key from namespace, alias, tenant and
// normalized scopes.
func (m *Manager) clientKey(ns, alias, tenantID string, scopes []string) string {
	if len(scopes) > 0 {
		norm := make([]string, 0, len(scopes))
		for _, s := range scopes {
			if s == "" {
				continue
			}
			norm = append(norm, strings.ToLower(s))
		}
		sort.Strings(norm)
		scopes = norm
	}
	return ns + "|" + alias + "|" + tenantID + "|" + strings.Join(scopes, ",")
}

func debugf(format string, args ...any) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("DEEP_AGENT_DEBUG")))
	if v == "" || v == "0" || v == "false" {
		return
	}
	log.Printf("[outlook] "+format, args...)
}

func ptr[T any](v T) *T { return &v }

func ptrVal[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
