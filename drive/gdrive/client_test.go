package gdrive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(&Config{}, option.WithEndpoint(srv.URL), option.WithHTTPClient(srv.Client()))
}

func TestListModifiedBetween(t *testing.T) {
	var gotQuery, gotOrder, gotPageSize string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/files") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		gotOrder = r.URL.Query().Get("orderBy")
		gotPageSize = r.URL.Query().Get("pageSize")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"files": []map[string]any{
				{"id": "f1", "name": "Budget.xlsx", "mimeType": "application/vnd.ms-excel", "modifiedTime": "2026-03-02T10:00:00Z"},
			},
		})
	})

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	files, err := client.ListModifiedBetween(context.Background(), start, end, 500)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 1 || files[0].Id != "f1" {
		t.Fatalf("files: %+v", files)
	}
	want := "modifiedTime >= '2026-03-02T00:00:00Z' and modifiedTime <= '2026-03-03T00:00:00Z'"
	if gotQuery != want {
		t.Errorf("query: %q, want %q", gotQuery, want)
	}
	if gotOrder != "modifiedTime desc" {
		t.Errorf("orderBy: %q", gotOrder)
	}
	if gotPageSize != "100" {
		t.Errorf("pageSize not clamped: %q", gotPageSize)
	}
}

func TestListModifiedBetweenInvalidWindow(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid window")
	})
	end := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if _, err := client.ListModifiedBetween(context.Background(), end.Add(time.Hour), end, 10); err == nil {
		t.Fatal("expected error when start is after end")
	}
}

func TestGetMetadata(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/files/f42") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "f42", "name": "Notes", "mimeType": "application/vnd.google-apps.document",
		})
	})
	file, err := client.GetMetadata(context.Background(), "f42")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if file.Name != "Notes" {
		t.Errorf("file: %+v", file)
	}

	if _, err := client.GetMetadata(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty file id")
	}
}

func TestSummarizeFiles(t *testing.T) {
	if got := SummarizeFiles(nil); !strings.Contains(got, "No file changes detected") {
		t.Errorf("empty summary: %q", got)
	}
	files := []*drive.File{
		{Id: "f1", Name: "Plan.doc", MimeType: "application/msword", ModifiedTime: "2026-03-02T10:00:00Z",
			Owners: []*drive.User{{DisplayName: "Alice"}, {EmailAddress: "bob@corp.example"}}},
		{Id: "f2"},
	}
	got := SummarizeFiles(files)
	if !strings.Contains(got, "- Plan.doc (ID: f1) [application/msword] modified 2026-03-02T10:00:00Z by Alice, bob@corp.example.") {
		t.Errorf("first line: %q", got)
	}
	if !strings.Contains(got, "- Untitled file (ID: f2) [unknown type] modified unknown by Unknown owner.") {
		t.Errorf("degraded line: %q", got)
	}
}

func TestFormatMetadata(t *testing.T) {
	file := &drive.File{
		Id: "f1", Name: "Plan.doc", MimeType: "application/msword",
		ModifiedTime: "2026-03-02T10:00:00Z", Size: 2048,
		Owners: []*drive.User{{DisplayName: "Alice", EmailAddress: "alice@corp.example"}},
	}
	got := FormatMetadata(file)
	for _, want := range []string{
		"- name: Plan.doc",
		"- size: 2048",
		"- owners: Alice <alice@corp.example>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("metadata missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "description") {
		t.Errorf("empty fields should be skipped:\n%s", got)
	}

	if got := FormatMetadata(&drive.File{}); !strings.Contains(got, "No metadata available") {
		t.Errorf("empty metadata: %q", got)
	}
}
