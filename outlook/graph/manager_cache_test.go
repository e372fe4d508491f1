package graph

import (
	"context"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
)

func TestClientCacheKeyNormalization(t *testing.T) {
	m := NewManager("", "mem://localhost/deep-agent-test")
	k1 := m.clientKey("default", "aliasA", "tenantX", []string{"scope2", "Scope1"})
	k2 := m.clientKey("default", "aliasA", "tenantX", []string{"scope1", "scope2"})
	if k1 != k2 {
		t.Fatalf("expected normalized keys to be equal, got %q vs %q", k1, k2)
	}
	k3 := m.clientKey("other", "aliasA", "tenantX", []string{"scope1"})
	if k3 == k1 {
		t.Fatalf("expected namespace to scope the key")
	}
}

func TestClientReturnsCachedInstance(t *testing.T) {
	m := NewManager("", "mem://localhost/deep-agent-test")
	alias, tenant := "acc", "ten"
	scopes := []string{"s1", "s2"}
	key := m.clientKey("default", alias, tenant, scopes)
	want := &msgraphsdk.GraphServiceClient{}
	m.mu.Lock()
	m.clients[key] = want
	m.mu.Unlock()

	got, err := m.Client(context.Background(), alias, tenant, []string{"s2", "s1"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("expected cached client to be returned")
	}
}

func TestAuthRecordRoundTrip(t *testing.T) {
	m := NewManager("client", "mem://localhost/deep-agent-records")
	ctx := context.Background()
	if m.HasAuthRecord(ctx, "acc") {
		t.Fatalf("expected no record before save")
	}
	if _, ok := m.loadRecord(ctx, "default", "acc"); ok {
		t.Fatalf("expected load miss before save")
	}

	m.saveRecord(ctx, "default", "acc", azidentity.AuthenticationRecord{Username: "user@corp.example"})
	if !m.HasAuthRecord(ctx, "acc") {
		t.Fatalf("expected record after save")
	}
	rec, ok := m.loadRecord(ctx, "default", "acc")
	if !ok {
		t.Fatalf("expected load hit after save")
	}
	if rec.Username != "user@corp.example" {
		t.Fatalf("record round trip mismatch: %+v", rec)
	}
}
