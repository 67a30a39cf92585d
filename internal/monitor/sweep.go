package monitor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"slawatch/internal/config"
	"slawatch/internal/notify"
	"slawatch/internal/sla"
)

// Poster delivers one tenant's digest; nil disables delivery.
type Poster interface {
	PostDigest(ctx context.Context, d notify.Digest) error
}

// RunStats tracks separate counters for one sweep across all tenants.
type RunStats struct {
	TenantsSwept         int
	ConversationsChecked int
	Warnings             int
	Expired              int
	Failed               int
	DegradedTenants      int
	Duration             time.Duration
}

// RunSweep evaluates every configured tenant once and hands non-empty
// digests to the poster. A failing tenant never aborts the sweep.
func RunSweep(ctx context.Context, cfg config.Config, det *sla.Detector, poster Poster) RunStats {
	start := time.Now()
	var stats RunStats

	for _, tenantID := range cfg.Tenants {
		if ctx.Err() != nil {
			break
		}
		warn := det.Warnings(ctx, tenantID)
		exp := det.Expired(ctx, tenantID)

		stats.TenantsSwept++
		stats.ConversationsChecked += warn.Checked
		stats.Warnings += len(warn.Warnings)
		stats.Expired += len(exp.Expired)
		stats.Failed += warn.Failed + exp.Failed
		if warn.Degraded || exp.Degraded {
			stats.DegradedTenants++
		}

		if poster == nil {
			continue
		}
		if len(warn.Warnings) == 0 && len(exp.Expired) == 0 && !warn.Degraded && !exp.Degraded {
			continue
		}
		digest := notify.BuildDigest(tenantID, warn, exp)
		if err := poster.PostDigest(ctx, digest); err != nil {
			log.Printf("sweep digest post failed tenant=%s err=%v", tenantID, err)
		}
	}

	stats.Duration = time.Since(start)
	return stats
}

// Run drives sweeps on the configured cron schedule until ctx is
// cancelled. The schedule is a standard 5-field cron expression
// (minute hour day-of-month month day-of-week). An empty schedule runs a
// single sweep and returns.
func Run(ctx context.Context, cfg config.Config, det *sla.Detector, poster Poster) error {
	schedule := strings.TrimSpace(cfg.SweepSchedule)
	if schedule == "" {
		logStats("One-shot sweep complete", RunSweep(ctx, cfg, det, poster))
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid sweep_schedule %q: %w", schedule, err)
	}
	log.Printf("Sweep scheduled (cron: %s) for %d tenant(s)", schedule, len(cfg.Tenants))

	// Initial sweep before settling into the schedule.
	logStats("Sweep complete", RunSweep(ctx, cfg, det, poster))

	for {
		now := time.Now().In(cfg.Location)
		next := sched.Next(now)
		log.Printf("Next sweep at %s (in %s)", next.Format("Mon Jan 2 15:04"), next.Sub(now).Round(time.Minute))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("Sweep scheduler shutting down")
			return nil
		case <-timer.C:
			logStats("Sweep complete", RunSweep(ctx, cfg, det, poster))
		}
	}
}

func logStats(prefix string, s RunStats) {
	log.Printf("%s: tenants=%d checked=%d warnings=%d expired=%d failed=%d degraded=%d duration=%s",
		prefix, s.TenantsSwept, s.ConversationsChecked, s.Warnings, s.Expired,
		s.Failed, s.DegradedTenants, s.Duration.Round(time.Millisecond))
}
