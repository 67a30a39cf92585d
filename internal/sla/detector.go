package sla

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"slawatch/internal/domain"
)

// WarningSeverity grades conversations nearing their first-response
// budget: critical > high > medium > low.
type WarningSeverity string

const (
	WarningLow      WarningSeverity = "low"
	WarningMedium   WarningSeverity = "medium"
	WarningHigh     WarningSeverity = "high"
	WarningCritical WarningSeverity = "critical"
)

func (s WarningSeverity) rank() int {
	switch s {
	case WarningCritical:
		return 3
	case WarningHigh:
		return 2
	case WarningMedium:
		return 1
	}
	return 0
}

// ExpirySeverity grades conversations past their first-response budget:
// urgent > critical > overdue.
type ExpirySeverity string

const (
	ExpiryOverdue  ExpirySeverity = "overdue"
	ExpiryCritical ExpirySeverity = "critical"
	ExpiryUrgent   ExpirySeverity = "urgent"
)

func (s ExpirySeverity) rank() int {
	switch s {
	case ExpiryUrgent:
		return 2
	case ExpiryCritical:
		return 1
	}
	return 0
}

// Warning is a conversation that has consumed at least 75% of its
// first-response budget without exceeding it. Recomputed on every pass,
// never persisted.
type Warning struct {
	ConversationID   string
	Subject          string
	TenantID         string
	ChannelType      string
	LocationID       string
	LocationName     string
	ContactName      string
	AssigneeID       string
	AssigneeName     string
	SLAID            string
	SLAName          string
	BudgetMinutes    int
	ElapsedMinutes   int
	RemainingMinutes int
	PercentUsed      float64
	Severity         WarningSeverity
	Source           Source
}

// Expired is a conversation that has exceeded 100% of its first-response
// budget. ExpiredAt is the exact instant the budget lapsed.
type Expired struct {
	ConversationID string
	Subject        string
	TenantID       string
	ChannelType    string
	LocationID     string
	LocationName   string
	ContactName    string
	AssigneeID     string
	AssigneeName   string
	SLAID          string
	SLAName        string
	BudgetMinutes  int
	ElapsedMinutes int
	OverdueMinutes int
	PercentOverdue int
	ExpiredAt      time.Time
	Severity       ExpirySeverity
	Source         Source
}

// WarningReport is the outcome of one warning pass. Failed counts
// conversations skipped because their evaluation broke; Degraded is set
// when the snapshot itself could not be read. Either way the entry list
// stands on its own and no error is returned to the caller.
type WarningReport struct {
	Warnings []Warning
	Checked  int
	Failed   int
	Degraded bool
}

type ExpiryReport struct {
	Expired  []Expired
	Checked  int
	Failed   int
	Degraded bool
}

// Detector runs the warning and expiry passes over a tenant's open and
// pending conversations.
type Detector struct {
	store    Store
	resolver *Resolver
	workers  int
	now      func() time.Time
}

func NewDetector(store Store, workers int) *Detector {
	if workers < 1 {
		workers = 1
	}
	return &Detector{
		store:    store,
		resolver: NewResolver(store),
		workers:  workers,
		now:      time.Now,
	}
}

func (d *Detector) Resolver() *Resolver {
	return d.resolver
}

// evaluated is one conversation with its resolved SLA and wall-clock
// elapsed minutes. Both passes share this traversal; only the threshold
// policy differs.
type evaluated struct {
	conv    domain.Conversation
	res     Resolution
	elapsed float64
	visited bool
	failed  bool
}

// evaluate fans the per-conversation resolution out across a bounded
// worker pool and collects results before any ordering is applied.
// Cancelling ctx stops dispatching further conversations.
func (d *Detector) evaluate(ctx context.Context, tenantID string) (evals []evaluated, failed int, degraded bool) {
	convs, err := d.store.OpenConversations(ctx, tenantID)
	if err != nil {
		log.Printf("detector tenant=%s snapshot read err=%v", tenantID, err)
		return nil, 0, true
	}

	now := d.now()
	results := make([]evaluated, len(convs))
	sem := make(chan struct{}, d.workers)
	var wg sync.WaitGroup
	for i := range convs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			conv := convs[i]
			ev := evaluated{conv: conv, visited: true}
			ev.res = d.resolver.Resolve(ctx, conv.TenantID, conv.LocationID, conv.ChannelType)
			if ev.res.Definition != nil {
				if ev.res.Definition.FirstResponseMinutes <= 0 {
					log.Printf("detector tenant=%s conversation=%s sla=%s skipped: non-positive first-response budget",
						tenantID, conv.ID, ev.res.Definition.ID)
					ev.failed = true
					ev.res = Resolution{Source: SourceNone}
				} else {
					ev.elapsed = now.Sub(conv.CreatedAt).Minutes()
				}
			}
			results[i] = ev
		}(i)
	}
	wg.Wait()

	for _, ev := range results {
		if !ev.visited {
			continue
		}
		if ev.failed {
			failed++
		}
		evals = append(evals, ev)
	}
	return evals, failed, false
}

// Warnings flags conversations that have consumed at least 75% of their
// first-response budget but have not yet exceeded it, most urgent first.
func (d *Detector) Warnings(ctx context.Context, tenantID string) WarningReport {
	evals, failed, degraded := d.evaluate(ctx, tenantID)
	rep := WarningReport{Checked: len(evals), Failed: failed, Degraded: degraded}

	for _, ev := range evals {
		def := ev.res.Definition
		if def == nil {
			continue
		}
		budget := float64(def.FirstResponseMinutes)
		if ev.elapsed > budget {
			continue // past the budget entirely; the expiry pass owns it
		}
		percent := ev.elapsed / budget * 100
		if percent < 75 {
			continue
		}
		remaining := budget - ev.elapsed
		rep.Warnings = append(rep.Warnings, Warning{
			ConversationID:   ev.conv.ID,
			Subject:          ev.conv.Subject,
			TenantID:         ev.conv.TenantID,
			ChannelType:      ev.conv.ChannelType,
			LocationID:       ev.conv.LocationID,
			LocationName:     ev.conv.LocationName,
			ContactName:      ev.conv.ContactName,
			AssigneeID:       ev.conv.AssigneeID,
			AssigneeName:     ev.conv.AssigneeName,
			SLAID:            def.ID,
			SLAName:          def.Name,
			BudgetMinutes:    def.FirstResponseMinutes,
			ElapsedMinutes:   int(ev.elapsed),
			RemainingMinutes: int(remaining),
			PercentUsed:      math.Min(100, percent),
			Severity:         warningSeverity(percent, remaining),
			Source:           ev.res.Source,
		})
	}

	sort.Slice(rep.Warnings, func(i, j int) bool {
		a, b := rep.Warnings[i], rep.Warnings[j]
		if a.Severity != b.Severity {
			return a.Severity.rank() > b.Severity.rank()
		}
		return a.RemainingMinutes < b.RemainingMinutes
	})
	return rep
}

// Expired flags conversations past 100% of their first-response budget,
// worst first.
func (d *Detector) Expired(ctx context.Context, tenantID string) ExpiryReport {
	evals, failed, degraded := d.evaluate(ctx, tenantID)
	rep := ExpiryReport{Checked: len(evals), Failed: failed, Degraded: degraded}

	for _, ev := range evals {
		def := ev.res.Definition
		if def == nil {
			continue
		}
		budget := float64(def.FirstResponseMinutes)
		if ev.elapsed <= budget {
			continue
		}
		overdue := ev.elapsed - budget
		percentOverdue := int(math.Round(overdue / budget * 100))
		rep.Expired = append(rep.Expired, Expired{
			ConversationID: ev.conv.ID,
			Subject:        ev.conv.Subject,
			TenantID:       ev.conv.TenantID,
			ChannelType:    ev.conv.ChannelType,
			LocationID:     ev.conv.LocationID,
			LocationName:   ev.conv.LocationName,
			ContactName:    ev.conv.ContactName,
			AssigneeID:     ev.conv.AssigneeID,
			AssigneeName:   ev.conv.AssigneeName,
			SLAID:          def.ID,
			SLAName:        def.Name,
			BudgetMinutes:  def.FirstResponseMinutes,
			ElapsedMinutes: int(ev.elapsed),
			OverdueMinutes: int(overdue),
			PercentOverdue: percentOverdue,
			ExpiredAt:      ev.conv.CreatedAt.Add(time.Duration(def.FirstResponseMinutes) * time.Minute),
			Severity:       expirySeverity(overdue, percentOverdue),
			Source:         ev.res.Source,
		})
	}

	sort.Slice(rep.Expired, func(i, j int) bool {
		a, b := rep.Expired[i], rep.Expired[j]
		if a.Severity != b.Severity {
			return a.Severity.rank() > b.Severity.rank()
		}
		return a.OverdueMinutes > b.OverdueMinutes
	})
	return rep
}

func warningSeverity(percent, remaining float64) WarningSeverity {
	switch {
	case percent >= 95 || remaining <= 5:
		return WarningCritical
	case percent >= 90 || remaining <= 15:
		return WarningHigh
	case percent >= 85 || remaining <= 30:
		return WarningMedium
	}
	return WarningLow
}

func expirySeverity(overdue float64, percentOverdue int) ExpirySeverity {
	switch {
	case overdue >= 120 || percentOverdue >= 200:
		return ExpiryUrgent
	case overdue >= 60 || percentOverdue >= 150:
		return ExpiryCritical
	}
	return ExpiryOverdue
}
