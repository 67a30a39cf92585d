package sqlite

import (
	"context"
	"database/sql"

	"slawatch/internal/domain"
)

// Store adapts the package-level query functions onto the engine's
// storage interface.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) BindingByLocation(ctx context.Context, tenantID, locationID string) (*domain.ScopeBinding, error) {
	return GetBindingByLocation(ctx, s.db, tenantID, locationID)
}

func (s *Store) BindingByChannel(ctx context.Context, tenantID, channelType string) (*domain.ScopeBinding, error) {
	return GetBindingByChannel(ctx, s.db, tenantID, channelType)
}

func (s *Store) DefinitionByID(ctx context.Context, tenantID, slaID string) (*domain.SLADefinition, error) {
	return GetDefinitionByID(ctx, s.db, tenantID, slaID)
}

func (s *Store) DefaultDefinition(ctx context.Context, tenantID string) (*domain.SLADefinition, error) {
	return GetDefaultDefinition(ctx, s.db, tenantID)
}

func (s *Store) OpenConversations(ctx context.Context, tenantID string) ([]domain.Conversation, error) {
	return GetOpenConversations(ctx, s.db, tenantID)
}
