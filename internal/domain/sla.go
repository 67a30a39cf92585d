package domain

import "time"

// Priority is the ordered urgency tag attached to an SLA definition.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// BusinessCalendar is a weekly recurring set of working days and a daily
// open/close window, evaluated in Timezone. Clock values are "HH:MM".
type BusinessCalendar struct {
	Timezone string
	Weekdays []time.Weekday
	OpensAt  string
	ClosesAt string
}

func (c BusinessCalendar) WorksOn(day time.Weekday) bool {
	for _, d := range c.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

type SLADefinition struct {
	ID                   string
	TenantID             string
	Name                 string
	FirstResponseMinutes int
	ResolutionMinutes    int // 0 when no resolution budget is set
	Priority             Priority
	Active               bool
	Calendar             *BusinessCalendar // nil means wall-clock time
	CreatedAt            time.Time
}

// BindingScope is the tier a scope binding attaches an SLA to. The tenant
// default is not a binding: it is the tenant's earliest-created active
// definition.
type BindingScope string

const (
	ScopeLocal   BindingScope = "local"
	ScopeChannel BindingScope = "channel"
)

// ScopeBinding assigns an SLA definition to a location or a channel type.
// At most one binding exists per (tenant, location) and per
// (tenant, channel type); storage enforces this, the resolver relies on it.
type ScopeBinding struct {
	ID          int64
	TenantID    string
	SLAID       string
	Scope       BindingScope
	LocationID  string
	ChannelType string
	CreatedAt   time.Time
}
