package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"slawatch/internal/domain"
)

func InsertDefinition(ctx context.Context, db *sql.DB, def domain.SLADefinition) error {
	days, open, close, tz := packCalendar(def.Calendar)
	createdAt := def.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO sla_definitions
		 (id, tenant_id, name, first_response_minutes, resolution_minutes, priority, active,
		  business_days, business_open, business_close, business_tz, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		def.ID, def.TenantID, def.Name, def.FirstResponseMinutes, def.ResolutionMinutes,
		string(def.Priority), boolToInt(def.Active), days, open, close, tz, createdAt,
	)
	return err
}

const definitionColumns = `id, tenant_id, name, first_response_minutes, resolution_minutes,
	priority, active, business_days, business_open, business_close, business_tz, created_at`

// GetDefinitionByID returns (nil, nil) when no row matches.
func GetDefinitionByID(ctx context.Context, db *sql.DB, tenantID, slaID string) (*domain.SLADefinition, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+definitionColumns+` FROM sla_definitions WHERE tenant_id = ? AND id = ?`,
		tenantID, slaID,
	)
	return scanDefinition(row)
}

// GetDefaultDefinition returns the tenant's earliest-created active
// definition, ties broken by id, or (nil, nil) when the tenant has none.
func GetDefaultDefinition(ctx context.Context, db *sql.DB, tenantID string) (*domain.SLADefinition, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+definitionColumns+` FROM sla_definitions
		 WHERE tenant_id = ? AND active = 1
		 ORDER BY created_at, id LIMIT 1`,
		tenantID,
	)
	return scanDefinition(row)
}

func scanDefinition(row *sql.Row) (*domain.SLADefinition, error) {
	var def domain.SLADefinition
	var priority string
	var active int
	var days, open, close, tz string
	err := row.Scan(
		&def.ID, &def.TenantID, &def.Name, &def.FirstResponseMinutes, &def.ResolutionMinutes,
		&priority, &active, &days, &open, &close, &tz, &def.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	def.Priority = domain.Priority(priority)
	def.Active = active != 0
	def.Calendar = unpackCalendar(days, open, close, tz)
	return &def, nil
}

func InsertBinding(ctx context.Context, db *sql.DB, b domain.ScopeBinding) (int64, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO sla_bindings (tenant_id, sla_id, scope, location_id, channel_type)
		 VALUES (?, ?, ?, ?, ?)`,
		b.TenantID, b.SLAID, string(b.Scope), b.LocationID, b.ChannelType,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func DeleteBinding(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM sla_bindings WHERE id = ?`, id)
	return err
}

const bindingColumns = `id, tenant_id, sla_id, scope, location_id, channel_type, created_at`

// GetBindingByLocation returns (nil, nil) when the (tenant, location) pair
// has no local binding.
func GetBindingByLocation(ctx context.Context, db *sql.DB, tenantID, locationID string) (*domain.ScopeBinding, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bindingColumns+` FROM sla_bindings
		 WHERE tenant_id = ? AND location_id = ? AND scope = 'local'`,
		tenantID, locationID,
	)
	return scanBinding(row)
}

func GetBindingByChannel(ctx context.Context, db *sql.DB, tenantID, channelType string) (*domain.ScopeBinding, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bindingColumns+` FROM sla_bindings
		 WHERE tenant_id = ? AND channel_type = ? AND scope = 'channel'`,
		tenantID, channelType,
	)
	return scanBinding(row)
}

func scanBinding(row *sql.Row) (*domain.ScopeBinding, error) {
	var b domain.ScopeBinding
	var scope string
	err := row.Scan(&b.ID, &b.TenantID, &b.SLAID, &scope, &b.LocationID, &b.ChannelType, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.Scope = domain.BindingScope(scope)
	return &b, nil
}

// Calendars are stored inline on the definition row: a csv of weekday
// numbers (Sunday=0) plus open/close clocks and a timezone name.

func packCalendar(cal *domain.BusinessCalendar) (days, open, close, tz string) {
	if cal == nil {
		return "", "", "", ""
	}
	parts := make([]string, 0, len(cal.Weekdays))
	for _, d := range cal.Weekdays {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return strings.Join(parts, ","), cal.OpensAt, cal.ClosesAt, cal.Timezone
}

func unpackCalendar(days, open, close, tz string) *domain.BusinessCalendar {
	if days == "" && open == "" && close == "" {
		return nil
	}
	cal := &domain.BusinessCalendar{OpensAt: open, ClosesAt: close, Timezone: tz}
	for _, part := range strings.Split(days, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil && n >= 0 && n <= 6 {
			cal.Weekdays = append(cal.Weekdays, time.Weekday(n))
		}
	}
	return cal
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
