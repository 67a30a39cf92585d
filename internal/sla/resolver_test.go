package sla

import (
	"context"
	"strings"
	"testing"

	"slawatch/internal/domain"
)

func threeTierStore() *memStore {
	store := newMemStore()
	store.addDefinition(domain.SLADefinition{ID: "sla-local", TenantID: "acme", Name: "Local", FirstResponseMinutes: 15, Active: true})
	store.addDefinition(domain.SLADefinition{ID: "sla-channel", TenantID: "acme", Name: "Channel", FirstResponseMinutes: 30, Active: true})
	store.setDefault("acme", domain.SLADefinition{ID: "sla-default", TenantID: "acme", Name: "Default", FirstResponseMinutes: 60, Active: true})
	store.bindLocation("acme", "loc-1", "sla-local")
	store.bindChannel("acme", "email", "sla-channel")
	return store
}

func TestResolvePrecedence_LocalWins(t *testing.T) {
	r := NewResolver(threeTierStore())

	res := r.Resolve(context.Background(), "acme", "loc-1", "email")
	if res.Source != SourceLocal {
		t.Fatalf("expected local source, got %s", res.Source)
	}
	if res.Definition == nil || res.Definition.ID != "sla-local" {
		t.Fatalf("expected sla-local, got %+v", res.Definition)
	}
}

func TestResolveFallback_ChannelThenTenant(t *testing.T) {
	store := threeTierStore()
	r := NewResolver(store)
	ctx := context.Background()

	delete(store.localBindings, "acme|loc-1")
	res := r.Resolve(ctx, "acme", "loc-1", "email")
	if res.Source != SourceChannel || res.Definition.ID != "sla-channel" {
		t.Fatalf("expected channel fallback, got %s (%+v)", res.Source, res.Definition)
	}

	delete(store.channelBindings, "acme|email")
	res = r.Resolve(ctx, "acme", "loc-1", "email")
	if res.Source != SourceTenant || res.Definition.ID != "sla-default" {
		t.Fatalf("expected tenant fallback, got %s (%+v)", res.Source, res.Definition)
	}
}

func TestResolveNoSLAAnywhere(t *testing.T) {
	r := NewResolver(newMemStore())

	res := r.Resolve(context.Background(), "acme", "loc-1", "email")
	if res.Source != SourceNone {
		t.Fatalf("expected none source, got %s", res.Source)
	}
	if res.Definition != nil {
		t.Fatalf("expected nil definition, got %+v", res.Definition)
	}
}

func TestResolveOptionalScopesSkipped(t *testing.T) {
	r := NewResolver(threeTierStore())
	ctx := context.Background()

	res := r.Resolve(ctx, "acme", "", "email")
	if res.Source != SourceChannel {
		t.Fatalf("without location the channel tier should win, got %s", res.Source)
	}
	res = r.Resolve(ctx, "acme", "", "")
	if res.Source != SourceTenant {
		t.Fatalf("without location and channel the tenant default should win, got %s", res.Source)
	}
}

func TestResolveStorageErrorFallsThrough(t *testing.T) {
	store := threeTierStore()
	store.failLocal = true
	r := NewResolver(store)

	res := r.Resolve(context.Background(), "acme", "loc-1", "email")
	if res.Source != SourceChannel || res.Definition.ID != "sla-channel" {
		t.Fatalf("local tier storage error should fall through to channel, got %s (%+v)", res.Source, res.Definition)
	}

	store.failChannel = true
	res = r.Resolve(context.Background(), "acme", "loc-1", "email")
	if res.Source != SourceTenant {
		t.Fatalf("channel tier storage error should fall through to tenant, got %s", res.Source)
	}
}

func TestResolveInactiveOrMissingDefinitionFallsThrough(t *testing.T) {
	store := threeTierStore()
	store.defs["acme|sla-local"].Active = false
	r := NewResolver(store)

	res := r.Resolve(context.Background(), "acme", "loc-1", "email")
	if res.Source != SourceChannel {
		t.Fatalf("inactive local definition should fall through, got %s", res.Source)
	}

	store.bindLocation("acme", "loc-1", "sla-vanished")
	res = r.Resolve(context.Background(), "acme", "loc-1", "email")
	if res.Source != SourceChannel {
		t.Fatalf("dangling local binding should fall through, got %s", res.Source)
	}
}

func TestHierarchyReturnsAllTiers(t *testing.T) {
	r := NewResolver(threeTierStore())

	h := r.Hierarchy(context.Background(), "acme", "loc-1", "email")
	if h.Local == nil || h.Local.Definition == nil || h.Local.Definition.ID != "sla-local" {
		t.Fatalf("expected local tier populated, got %+v", h.Local)
	}
	if h.Channel == nil || h.Channel.Definition == nil || h.Channel.Definition.ID != "sla-channel" {
		t.Fatalf("expected channel tier populated, got %+v", h.Channel)
	}
	if h.TenantDefault == nil || h.TenantDefault.ID != "sla-default" {
		t.Fatalf("expected tenant default populated, got %+v", h.TenantDefault)
	}
	if h.Effective.Source != SourceLocal {
		t.Fatalf("expected effective local, got %s", h.Effective.Source)
	}
	if !containsRec(h.Recommendations, "shadowed") {
		t.Fatalf("expected shadowing recommendation, got %v", h.Recommendations)
	}
}

func TestHierarchyRecommendationsFixedRules(t *testing.T) {
	ctx := context.Background()

	h := NewResolver(newMemStore()).Hierarchy(ctx, "acme", "loc-1", "email")
	if h.Effective.Source != SourceNone {
		t.Fatalf("expected none, got %s", h.Effective.Source)
	}
	if !containsRec(h.Recommendations, "no SLA is configured at any tier") {
		t.Fatalf("expected unconfigured recommendation, got %v", h.Recommendations)
	}

	store := newMemStore()
	store.setDefault("acme", domain.SLADefinition{ID: "sla-default", TenantID: "acme", Name: "Default", FirstResponseMinutes: 60, Active: true})
	store.bindLocation("acme", "loc-1", "sla-vanished")
	h = NewResolver(store).Hierarchy(ctx, "acme", "loc-1", "")
	if h.Effective.Source != SourceTenant {
		t.Fatalf("expected tenant fallback, got %s", h.Effective.Source)
	}
	if !containsRec(h.Recommendations, "missing or inactive") {
		t.Fatalf("expected dead-binding recommendation, got %v", h.Recommendations)
	}

	store = newMemStore()
	store.addDefinition(domain.SLADefinition{ID: "sla-local", TenantID: "acme", Name: "Local", FirstResponseMinutes: 15, Active: true})
	store.bindLocation("acme", "loc-1", "sla-local")
	h = NewResolver(store).Hierarchy(ctx, "acme", "loc-1", "")
	if !containsRec(h.Recommendations, "no tenant-wide default") {
		t.Fatalf("expected missing-default recommendation, got %v", h.Recommendations)
	}
}

func containsRec(recs []string, substr string) bool {
	for _, r := range recs {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}
