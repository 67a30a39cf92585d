package sla

import (
	"context"
	"fmt"
	"log"

	"slawatch/internal/domain"
)

// Source is the scope tier that supplied a resolved SLA.
type Source string

const (
	SourceLocal   Source = "local"
	SourceChannel Source = "channel"
	SourceTenant  Source = "tenant"
	SourceNone    Source = "none"
)

// Resolution is the outcome of one hierarchy lookup. Definition is nil
// when Source is SourceNone.
type Resolution struct {
	Definition *domain.SLADefinition
	Source     Source
}

// Store is the read-only view of SLA configuration and conversation
// snapshots the engine consumes. Lookups return (nil, nil) on a plain
// miss; errors mean the lookup itself failed.
type Store interface {
	BindingByLocation(ctx context.Context, tenantID, locationID string) (*domain.ScopeBinding, error)
	BindingByChannel(ctx context.Context, tenantID, channelType string) (*domain.ScopeBinding, error)
	DefinitionByID(ctx context.Context, tenantID, slaID string) (*domain.SLADefinition, error)
	DefaultDefinition(ctx context.Context, tenantID string) (*domain.SLADefinition, error)
	OpenConversations(ctx context.Context, tenantID string) ([]domain.Conversation, error)
}

// Resolver walks the local > channel > tenant precedence chain.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve picks the single SLA definition governing a conversation at the
// given location and channel type. A storage failure at any tier is logged
// and treated as a miss so a broken lower tier never blocks a higher one;
// callers never see an error.
func (r *Resolver) Resolve(ctx context.Context, tenantID, locationID, channelType string) Resolution {
	if locationID != "" {
		if def := r.boundDefinition(ctx, tenantID, locationID, "", SourceLocal); def != nil {
			return Resolution{Definition: def, Source: SourceLocal}
		}
	}
	if channelType != "" {
		if def := r.boundDefinition(ctx, tenantID, "", channelType, SourceChannel); def != nil {
			return Resolution{Definition: def, Source: SourceChannel}
		}
	}
	def, err := r.store.DefaultDefinition(ctx, tenantID)
	if err != nil {
		log.Printf("resolver tenant=%s tier=tenant lookup err=%v", tenantID, err)
	} else if def != nil {
		return Resolution{Definition: def, Source: SourceTenant}
	}
	return Resolution{Source: SourceNone}
}

// boundDefinition resolves one binding tier to an active definition, or
// nil when the tier misses, errors, or points at a dead definition.
func (r *Resolver) boundDefinition(ctx context.Context, tenantID, locationID, channelType string, tier Source) *domain.SLADefinition {
	var binding *domain.ScopeBinding
	var err error
	if tier == SourceLocal {
		binding, err = r.store.BindingByLocation(ctx, tenantID, locationID)
	} else {
		binding, err = r.store.BindingByChannel(ctx, tenantID, channelType)
	}
	if err != nil {
		log.Printf("resolver tenant=%s tier=%s binding lookup err=%v", tenantID, tier, err)
		return nil
	}
	if binding == nil {
		return nil
	}
	def, err := r.store.DefinitionByID(ctx, tenantID, binding.SLAID)
	if err != nil {
		log.Printf("resolver tenant=%s tier=%s sla=%s definition lookup err=%v", tenantID, tier, binding.SLAID, err)
		return nil
	}
	if def == nil || !def.Active {
		return nil
	}
	return def
}

// TierBinding pairs a scope binding with the definition it points at.
// Definition is nil when the binding references a missing definition.
type TierBinding struct {
	Binding    *domain.ScopeBinding
	Definition *domain.SLADefinition
}

// Hierarchy is the full three-tier read model for display: what is bound
// at every tier, the effective outcome, and fixed-rule recommendations.
type Hierarchy struct {
	Local           *TierBinding
	Channel         *TierBinding
	TenantDefault   *domain.SLADefinition
	Effective       Resolution
	Recommendations []string
}

// Hierarchy loads the bindings at all three tiers, not just the winner.
// Lookup failures leave the tier empty, mirroring Resolve.
func (r *Resolver) Hierarchy(ctx context.Context, tenantID, locationID, channelType string) Hierarchy {
	var h Hierarchy
	if locationID != "" {
		h.Local = r.tierBinding(ctx, tenantID, locationID, "", SourceLocal)
	}
	if channelType != "" {
		h.Channel = r.tierBinding(ctx, tenantID, "", channelType, SourceChannel)
	}
	def, err := r.store.DefaultDefinition(ctx, tenantID)
	if err != nil {
		log.Printf("resolver tenant=%s tier=tenant lookup err=%v", tenantID, err)
	} else {
		h.TenantDefault = def
	}

	switch {
	case h.Local != nil && usable(h.Local.Definition):
		h.Effective = Resolution{Definition: h.Local.Definition, Source: SourceLocal}
	case h.Channel != nil && usable(h.Channel.Definition):
		h.Effective = Resolution{Definition: h.Channel.Definition, Source: SourceChannel}
	case h.TenantDefault != nil:
		h.Effective = Resolution{Definition: h.TenantDefault, Source: SourceTenant}
	default:
		h.Effective = Resolution{Source: SourceNone}
	}

	h.Recommendations = recommendations(h, locationID, channelType)
	return h
}

func (r *Resolver) tierBinding(ctx context.Context, tenantID, locationID, channelType string, tier Source) *TierBinding {
	var binding *domain.ScopeBinding
	var err error
	if tier == SourceLocal {
		binding, err = r.store.BindingByLocation(ctx, tenantID, locationID)
	} else {
		binding, err = r.store.BindingByChannel(ctx, tenantID, channelType)
	}
	if err != nil {
		log.Printf("resolver tenant=%s tier=%s binding lookup err=%v", tenantID, tier, err)
		return nil
	}
	if binding == nil {
		return nil
	}
	tb := &TierBinding{Binding: binding}
	def, err := r.store.DefinitionByID(ctx, tenantID, binding.SLAID)
	if err != nil {
		log.Printf("resolver tenant=%s tier=%s sla=%s definition lookup err=%v", tenantID, tier, binding.SLAID, err)
		return tb
	}
	tb.Definition = def
	return tb
}

func usable(def *domain.SLADefinition) bool {
	return def != nil && def.Active
}

func recommendations(h Hierarchy, locationID, channelType string) []string {
	var recs []string
	if h.Local != nil && !usable(h.Local.Definition) {
		recs = append(recs, fmt.Sprintf(
			"location %s is bound to a missing or inactive SLA (%s); the binding is ignored",
			locationID, h.Local.Binding.SLAID))
	}
	if h.Channel != nil && !usable(h.Channel.Definition) {
		recs = append(recs, fmt.Sprintf(
			"channel %s is bound to a missing or inactive SLA (%s); the binding is ignored",
			channelType, h.Channel.Binding.SLAID))
	}
	if h.Local != nil && usable(h.Local.Definition) && h.Channel != nil && usable(h.Channel.Definition) {
		recs = append(recs, fmt.Sprintf(
			"channel %s binding is shadowed by the local SLA of location %s",
			channelType, locationID))
	}
	if h.Effective.Source == SourceNone {
		recs = append(recs, "no SLA is configured at any tier; conversations here are not monitored")
	} else if h.TenantDefault == nil {
		recs = append(recs, "no tenant-wide default SLA; conversations outside bound locations and channels are unmonitored")
	}
	return recs
}
