package sla

import (
	"context"
	"errors"

	"slawatch/internal/domain"
)

// memStore is the in-memory Store used across the engine tests. Keys are
// tenant|location, tenant|channel, and tenant|slaID. The fail* switches
// force lookup errors per method to exercise the fall-through policy.
type memStore struct {
	localBindings   map[string]*domain.ScopeBinding
	channelBindings map[string]*domain.ScopeBinding
	defs            map[string]*domain.SLADefinition
	defaults        map[string]*domain.SLADefinition
	convs           map[string][]domain.Conversation

	failLocal         bool
	failChannel       bool
	failDefinitions   bool
	failDefault       bool
	failConversations bool
}

var errStore = errors.New("storage unavailable")

func newMemStore() *memStore {
	return &memStore{
		localBindings:   make(map[string]*domain.ScopeBinding),
		channelBindings: make(map[string]*domain.ScopeBinding),
		defs:            make(map[string]*domain.SLADefinition),
		defaults:        make(map[string]*domain.SLADefinition),
		convs:           make(map[string][]domain.Conversation),
	}
}

func (m *memStore) addDefinition(def domain.SLADefinition) *domain.SLADefinition {
	d := def
	m.defs[def.TenantID+"|"+def.ID] = &d
	return &d
}

func (m *memStore) setDefault(tenantID string, def domain.SLADefinition) {
	d := def
	m.defaults[tenantID] = &d
	m.defs[def.TenantID+"|"+def.ID] = &d
}

func (m *memStore) bindLocation(tenantID, locationID, slaID string) {
	m.localBindings[tenantID+"|"+locationID] = &domain.ScopeBinding{
		TenantID: tenantID, SLAID: slaID, Scope: domain.ScopeLocal, LocationID: locationID,
	}
}

func (m *memStore) bindChannel(tenantID, channelType, slaID string) {
	m.channelBindings[tenantID+"|"+channelType] = &domain.ScopeBinding{
		TenantID: tenantID, SLAID: slaID, Scope: domain.ScopeChannel, ChannelType: channelType,
	}
}

func (m *memStore) BindingByLocation(_ context.Context, tenantID, locationID string) (*domain.ScopeBinding, error) {
	if m.failLocal {
		return nil, errStore
	}
	return m.localBindings[tenantID+"|"+locationID], nil
}

func (m *memStore) BindingByChannel(_ context.Context, tenantID, channelType string) (*domain.ScopeBinding, error) {
	if m.failChannel {
		return nil, errStore
	}
	return m.channelBindings[tenantID+"|"+channelType], nil
}

func (m *memStore) DefinitionByID(_ context.Context, tenantID, slaID string) (*domain.SLADefinition, error) {
	if m.failDefinitions {
		return nil, errStore
	}
	return m.defs[tenantID+"|"+slaID], nil
}

func (m *memStore) DefaultDefinition(_ context.Context, tenantID string) (*domain.SLADefinition, error) {
	if m.failDefault {
		return nil, errStore
	}
	return m.defaults[tenantID], nil
}

func (m *memStore) OpenConversations(_ context.Context, tenantID string) ([]domain.Conversation, error) {
	if m.failConversations {
		return nil, errStore
	}
	return m.convs[tenantID], nil
}
