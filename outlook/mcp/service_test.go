package mcp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestService() *Service {
	return NewService(&Config{ClientID: "client-1", TenantID: "organizations", StorageURL: "mem://localhost/deep-agent-test", CallbackBaseURL: "http://localhost:4981"})
}

func TestDeviceHandlerPathValidation(t *testing.T) {
	svc := newTestService()
	handler := svc.DeviceHandler()

	req := httptest.NewRequest(http.MethodGet, "/outlook/auth/device", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short path: got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/outlook/auth/device/unknown-uuid", nil)
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown uuid: got %d", rec.Code)
	}
}

func TestBuildDeviceLoginHTML(t *testing.T) {
	msg := "To sign in, use a web browser to open the page https://microsoft.com/devicelogin and enter the code ABCD-1234 to authenticate."
	page := buildDeviceLoginHTML(msg)
	if !strings.Contains(page, "https://microsoft.com/devicelogin") {
		t.Errorf("missing login URL:\n%s", page)
	}
	if !strings.Contains(page, "ABCD-1234") {
		t.Errorf("missing code:\n%s", page)
	}

	// No recognizable code falls back to showing the raw message.
	page = buildDeviceLoginHTML("open https://example.com/login and follow instructions")
	if !strings.Contains(page, "follow instructions") {
		t.Errorf("missing raw message:\n%s", page)
	}
}

func TestExtractURLAndCode(t *testing.T) {
	msg := "use https://microsoft.com/devicelogin and enter the code XYZW-9876 to authenticate"
	if got := extractURL(msg); got != "https://microsoft.com/devicelogin" {
		t.Errorf("url: %q", got)
	}
	if got := extractCode(msg); got != "XYZW-9876" {
		t.Errorf("code: %q", got)
	}
	if got := extractURL("no url here"); got != "https://microsoft.com/devicelogin" {
		t.Errorf("fallback url: %q", got)
	}
	if got := extractCode("no code here"); got != "" {
		t.Errorf("missing code: %q", got)
	}
}

func TestPendingListAndClearHandlers(t *testing.T) {
	svc := newTestService()
	svc.Pending().Put(NewPendingAuth("id-1", "work", "organizations", "ns-a"))
	svc.Pending().Put(NewPendingAuth("id-2", "personal", "organizations", "ns-b"))

	req := httptest.NewRequest(http.MethodGet, "/outlook/auth/pending?namespace=ns-a", nil)
	rec := httptest.NewRecorder()
	svc.PendingListHandler()(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	var listed []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("list body: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("list: %v", listed)
	}

	req = httptest.NewRequest(http.MethodPost, "/outlook/auth/pending/clear?namespace=ns-a", nil)
	rec = httptest.NewRecorder()
	svc.PendingClearHandler()(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: got %d", rec.Code)
	}
	if _, ok := svc.Pending().Get("id-1"); ok {
		t.Error("id-1 should be cleared")
	}
	if _, ok := svc.Pending().Get("id-2"); !ok {
		t.Error("id-2 should survive")
	}
}
