// Package gdrive wraps the Google Drive v3 API for metadata queries over a
// time window.
package gdrive

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveScopes is the read-only metadata scope the client requests.
var DriveScopes = []string{drive.DriveMetadataReadonlyScope}

const (
	defaultPageSize = 25
	maxPageSize     = 100

	listFields = "files(id, name, mimeType, owners(displayName, emailAddress), modifiedTime, webViewLink)"
	getFields  = "id, name, mimeType, modifiedTime, createdTime, size, owners(displayName, emailAddress), webViewLink, iconLink, description"
)

// Config selects the credential source. ServiceAccountPath wins over token
// credentials; DelegatedUser enables domain-wide delegation.
type Config struct {
	ServiceAccountPath string `json:"serviceAccountPath,omitempty"`
	DelegatedUser      string `json:"delegatedUser,omitempty"`
	// TokenJSON is an inline authorized-user payload; TokenPath points to the
	// same payload on disk. The payload must carry a refresh token.
	TokenJSON string `json:"tokenJSON,omitempty"`
	TokenPath string `json:"tokenPath,omitempty"`
}

// Client is a lazy Drive v3 service wrapper. Extra client options (endpoint,
// http client) can be injected for testing.
type Client struct {
	cfg  Config
	opts []option.ClientOption

	mu  sync.Mutex
	svc *drive.Service
}

func New(cfg *Config, opts ...option.ClientOption) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Client{cfg: *cfg, opts: opts}
}

func (c *Client) service(ctx context.Context) (*drive.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc != nil {
		return c.svc, nil
	}
	opts := c.opts
	if len(opts) == 0 {
		ts, err := c.tokenSource(ctx)
		if err != nil {
			return nil, err
		}
		opts = []option.ClientOption{option.WithTokenSource(ts)}
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	c.svc = svc
	return svc, nil
}

func (c *Client) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if c.cfg.ServiceAccountPath != "" {
		data, err := os.ReadFile(c.cfg.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read service account file: %w", err)
		}
		if c.cfg.DelegatedUser != "" {
			jwtCfg, err := google.JWTConfigFromJSON(data, DriveScopes...)
			if err != nil {
				return nil, fmt.Errorf("invalid service account JSON: %w", err)
			}
			jwtCfg.Subject = c.cfg.DelegatedUser
			return jwtCfg.TokenSource(ctx), nil
		}
		creds, err := google.CredentialsFromJSON(ctx, data, DriveScopes...)
		if err != nil {
			return nil, fmt.Errorf("invalid service account JSON: %w", err)
		}
		return creds.TokenSource, nil
	}
	var data []byte
	switch {
	case c.cfg.TokenJSON != "":
		data = []byte(c.cfg.TokenJSON)
	case c.cfg.TokenPath != "":
		b, err := os.ReadFile(c.cfg.TokenPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read token file: %w", err)
		}
		data = b
	default:
		return nil, fmt.Errorf("drive credentials not configured: set a service account path or an authorized-user token")
	}
	creds, err := google.CredentialsFromJSON(ctx, data, DriveScopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid authorized-user token: %w", err)
	}
	return creds.TokenSource, nil
}

// ListModifiedBetween returns files whose modifiedTime falls in [start, end],
// newest first. pageSize is clamped to 1-100; zero means the default of 25.
func (c *Client) ListModifiedBetween(ctx context.Context, start, end time.Time, pageSize int64) ([]*drive.File, error) {
	if start.After(end) {
		return nil, fmt.Errorf("window start %s is after end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("modifiedTime >= '%s' and modifiedTime <= '%s'",
		start.UTC().Format("2006-01-02T15:04:05Z"), end.UTC().Format("2006-01-02T15:04:05Z"))
	resp, err := svc.Files.List().
		Q(query).
		OrderBy("modifiedTime desc").
		PageSize(pageSize).
		Fields(listFields).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("drive list request failed: %w", err)
	}
	return resp.Files, nil
}

// GetMetadata fetches the metadata record for a single file.
func (c *Client) GetMetadata(ctx context.Context, fileID string) (*drive.File, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileId is required")
	}
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}
	file, err := svc.Files.Get(fileID).Fields(getFields).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("drive metadata request failed: %w", err)
	}
	return file, nil
}

// SummarizeFiles renders a file listing as bullet-point text.
func SummarizeFiles(files []*drive.File) string {
	lines := []string{"Recent Google Drive activity:"}
	for _, f := range files {
		name := f.Name
		if name == "" {
			name = "Untitled file"
		}
		mimeType := f.MimeType
		if mimeType == "" {
			mimeType = "unknown type"
		}
		modified := f.ModifiedTime
		if modified == "" {
			modified = "unknown"
		}
		lines = append(lines, fmt.Sprintf("- %s (ID: %s) [%s] modified %s by %s.",
			name, f.Id, mimeType, modified, ownerNames(f.Owners)))
	}
	if len(lines) == 1 {
		lines = append(lines, "- No file changes detected in the selected window.")
	}
	return strings.Join(lines, "\n")
}

func ownerNames(owners []*drive.User) string {
	var names []string
	for _, o := range owners {
		switch {
		case o.DisplayName != "":
			names = append(names, o.DisplayName)
		case o.EmailAddress != "":
			names = append(names, o.EmailAddress)
		default:
			names = append(names, "Unknown")
		}
	}
	if len(names) == 0 {
		return "Unknown owner"
	}
	return strings.Join(names, ", ")
}

// FormatMetadata renders a metadata record as bullet-point text, skipping
// empty fields.
func FormatMetadata(file *drive.File) string {
	lines := []string{"Google Drive file metadata:"}
	add := func(key, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", key, value))
		}
	}
	add("name", file.Name)
	add("id", file.Id)
	add("mimeType", file.MimeType)
	add("modifiedTime", file.ModifiedTime)
	add("createdTime", file.CreatedTime)
	if file.Size > 0 {
		add("size", fmt.Sprintf("%d", file.Size))
	}
	add("webViewLink", file.WebViewLink)
	add("iconLink", file.IconLink)
	add("description", file.Description)
	var owners []string
	for _, o := range file.Owners {
		switch {
		case o.DisplayName != "" && o.EmailAddress != "":
			owners = append(owners, fmt.Sprintf("%s <%s>", o.DisplayName, o.EmailAddress))
		case o.DisplayName != "":
			owners = append(owners, o.DisplayName)
		case o.EmailAddress != "":
			owners = append(owners, o.EmailAddress)
		}
	}
	if len(owners) > 0 {
		add("owners", strings.Join(owners, ", "))
	}
	if len(lines) == 1 {
		lines = append(lines, "- No metadata available.")
	}
	return strings.Join(lines, "\n")
}
