package mcp

import (
	"testing"
	"time"

	drive "google.golang.org/api/drive/v3"
)

func TestResolveWindow(t *testing.T) {
	start, end, err := resolveWindow("2026-03-01T00:00:00Z", "2026-03-02T00:00:00Z")
	if err != nil {
		t.Fatalf("explicit window: %v", err)
	}
	if start.Format(time.RFC3339) != "2026-03-01T00:00:00Z" || end.Format(time.RFC3339) != "2026-03-02T00:00:00Z" {
		t.Errorf("window: %s .. %s", start, end)
	}

	start, end, err = resolveWindow("", "")
	if err != nil {
		t.Fatalf("default window: %v", err)
	}
	if got := end.Sub(start); got != 24*time.Hour {
		t.Errorf("default window size: %s", got)
	}

	if _, _, err := resolveWindow("not-a-time", "2026-03-02T00:00:00Z"); err == nil {
		t.Error("expected error for invalid start")
	}
	if _, _, err := resolveWindow("2026-03-01T00:00:00Z", "not-a-time"); err == nil {
		t.Error("expected error for invalid end")
	}
}

func TestToDriveFile(t *testing.T) {
	f := &drive.File{
		Id: "f1", Name: "Plan", MimeType: "application/pdf",
		ModifiedTime: "2026-03-02T10:00:00Z", WebViewLink: "https://drive.example/f1",
		Owners: []*drive.User{{DisplayName: "Alice"}, {EmailAddress: "bob@corp.example"}, {}},
	}
	got := toDriveFile(f)
	if got.ID != "f1" || got.Name != "Plan" || got.WebViewLink != "https://drive.example/f1" {
		t.Errorf("record: %+v", got)
	}
	if len(got.Owners) != 2 || got.Owners[0] != "Alice" || got.Owners[1] != "bob@corp.example" {
		t.Errorf("owners: %v", got.Owners)
	}
}
