package notify

import (
	"strings"
	"testing"
	"time"

	"slawatch/internal/sla"
)

func TestBuildDigestSectionsAndCounters(t *testing.T) {
	warn := sla.WarningReport{
		Warnings: []sla.Warning{
			{ConversationID: "c-10", Subject: "Password reset", ChannelType: "chat", Severity: sla.WarningHigh, RemainingMinutes: 12, PercentUsed: 92, AssigneeName: "Ana"},
		},
		Checked: 5,
	}
	exp := sla.ExpiryReport{
		Expired: []sla.Expired{
			{ConversationID: "c-1", Subject: "Refund request", ChannelType: "email", Severity: sla.ExpiryUrgent, OverdueMinutes: 130, PercentOverdue: 210, ExpiredAt: time.Now()},
			{ConversationID: "c-2", ChannelType: "email", Severity: sla.ExpiryOverdue, OverdueMinutes: 10, PercentOverdue: 8},
		},
		Checked: 5,
	}

	d := BuildDigest("acme", warn, exp)

	if d.TenantID != "acme" {
		t.Fatalf("unexpected tenant: %q", d.TenantID)
	}
	if d.UrgentCount != 1 {
		t.Fatalf("expected 1 urgent, got %d", d.UrgentCount)
	}
	if !strings.Contains(d.Text, "2 expired, 1 at risk") {
		t.Fatalf("digest header missing counts:\n%s", d.Text)
	}
	if !strings.Contains(d.Text, "[urgent] Refund request — 130m overdue (210%)") {
		t.Fatalf("digest missing expired entry:\n%s", d.Text)
	}
	// Entries without a subject fall back to the conversation id.
	if !strings.Contains(d.Text, "[overdue] c-2") {
		t.Fatalf("digest should fall back to conversation id:\n%s", d.Text)
	}
	if !strings.Contains(d.Text, "[high] Password reset — 12m left (92% used)") {
		t.Fatalf("digest missing warning entry:\n%s", d.Text)
	}
	if !strings.Contains(d.Text, "assignee: unassigned") {
		t.Fatalf("digest missing unassigned fallback:\n%s", d.Text)
	}
	if !strings.Contains(d.Text, "By channel: chat=1 email=2") {
		t.Fatalf("digest missing channel breakdown:\n%s", d.Text)
	}
	if !strings.Contains(d.Text, "Overdue: avg 70m, max 130m") {
		t.Fatalf("digest missing overdue aggregates:\n%s", d.Text)
	}
}

func TestBuildDigestDegradedAndFailedNotes(t *testing.T) {
	d := BuildDigest("acme", sla.WarningReport{Degraded: true}, sla.ExpiryReport{Degraded: true})
	if !strings.Contains(d.Text, "Evaluation degraded") {
		t.Fatalf("degraded digest missing note:\n%s", d.Text)
	}

	d = BuildDigest("acme", sla.WarningReport{Failed: 2}, sla.ExpiryReport{Failed: 1})
	if !strings.Contains(d.Text, "3 conversation(s) skipped") {
		t.Fatalf("failed-count note missing:\n%s", d.Text)
	}
}

func TestBuildDigestCapsEntriesPerSection(t *testing.T) {
	var expired []sla.Expired
	for i := 0; i < digestEntryLimit+4; i++ {
		expired = append(expired, sla.Expired{
			ConversationID: "c", ChannelType: "email",
			Severity: sla.ExpiryOverdue, OverdueMinutes: 10,
		})
	}
	d := BuildDigest("acme", sla.WarningReport{}, sla.ExpiryReport{Expired: expired})
	if !strings.Contains(d.Text, "… and 4 more") {
		t.Fatalf("expected truncation marker:\n%s", d.Text)
	}
	if got := strings.Count(d.Text, "[overdue]"); got != digestEntryLimit {
		t.Fatalf("expected %d listed entries, got %d", digestEntryLimit, got)
	}
}
