package sqlite

import (
	"context"
	"database/sql"

	"slawatch/internal/domain"
)

const conversationColumns = `id, tenant_id, subject, state, location_id, location_name,
	channel_type, contact_id, contact_name, assignee_id, assignee_name, created_at, last_activity_at`

func InsertConversation(ctx context.Context, db *sql.DB, c domain.Conversation) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO conversations
		 (id, tenant_id, subject, state, location_id, location_name, channel_type,
		  contact_id, contact_name, assignee_id, assignee_name, created_at, last_activity_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.TenantID, c.Subject, string(c.State), c.LocationID, c.LocationName,
		c.ChannelType, c.ContactID, c.ContactName, c.AssigneeID, c.AssigneeName,
		c.CreatedAt, c.LastActivityAt,
	)
	return err
}

// InsertConversations imports a batch of snapshots in one transaction,
// returning how many rows were inserted before the first failure.
func InsertConversations(ctx context.Context, db *sql.DB, convs []domain.Conversation) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO conversations
		 (id, tenant_id, subject, state, location_id, location_name, channel_type,
		  contact_id, contact_name, assignee_id, assignee_name, created_at, last_activity_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range convs {
		_, err := stmt.ExecContext(ctx,
			c.ID, c.TenantID, c.Subject, string(c.State), c.LocationID, c.LocationName,
			c.ChannelType, c.ContactID, c.ContactName, c.AssigneeID, c.AssigneeName,
			c.CreatedAt, c.LastActivityAt,
		)
		if err != nil {
			return inserted, err
		}
		inserted++
	}

	return inserted, tx.Commit()
}

// GetOpenConversations returns the tenant's open and pending conversations,
// oldest first.
func GetOpenConversations(ctx context.Context, db *sql.DB, tenantID string) ([]domain.Conversation, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations
		 WHERE tenant_id = ? AND state IN ('open', 'pending')
		 ORDER BY created_at, id`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		var state string
		err := rows.Scan(
			&c.ID, &c.TenantID, &c.Subject, &state, &c.LocationID, &c.LocationName,
			&c.ChannelType, &c.ContactID, &c.ContactName, &c.AssigneeID, &c.AssigneeName,
			&c.CreatedAt, &c.LastActivityAt,
		)
		if err != nil {
			return nil, err
		}
		c.State = domain.ConversationState(state)
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func UpdateConversationState(ctx context.Context, db *sql.DB, id string, state domain.ConversationState) error {
	_, err := db.ExecContext(ctx, `UPDATE conversations SET state = ? WHERE id = ?`, string(state), id)
	return err
}
