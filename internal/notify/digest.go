package notify

import (
	"fmt"
	"sort"
	"strings"

	"slawatch/internal/sla"
)

// digestEntryLimit caps how many conversations each section lists; the
// breakdown counters still cover everything.
const digestEntryLimit = 10

// Digest is one tenant's formatted breach report, ready for delivery.
type Digest struct {
	TenantID    string
	Text        string
	UrgentCount int
}

// BuildDigest renders the classifier output into a Slack-ready message.
// Entries arrive pre-sorted by the detector (worst first).
func BuildDigest(tenantID string, warn sla.WarningReport, exp sla.ExpiryReport) Digest {
	wStats := sla.WarningStats(warn.Warnings)
	eStats := sla.ExpiredStats(exp.Expired)

	var b strings.Builder
	fmt.Fprintf(&b, "*SLA status for %s*: %d expired, %d at risk\n", tenantID, eStats.Total, wStats.Total)

	if len(exp.Expired) > 0 {
		b.WriteString("\n*Expired:*\n")
		for i, e := range exp.Expired {
			if i >= digestEntryLimit {
				fmt.Fprintf(&b, "… and %d more\n", len(exp.Expired)-digestEntryLimit)
				break
			}
			fmt.Fprintf(&b, "• [%s] %s — %dm overdue (%d%%), %s, assignee: %s\n",
				e.Severity, entrySubject(e.Subject, e.ConversationID), e.OverdueMinutes,
				e.PercentOverdue, e.ChannelType, assigneeLabel(e.AssigneeName, e.AssigneeID))
		}
	}

	if len(warn.Warnings) > 0 {
		b.WriteString("\n*At risk:*\n")
		for i, w := range warn.Warnings {
			if i >= digestEntryLimit {
				fmt.Fprintf(&b, "… and %d more\n", len(warn.Warnings)-digestEntryLimit)
				break
			}
			fmt.Fprintf(&b, "• [%s] %s — %dm left (%.0f%% used), %s, assignee: %s\n",
				w.Severity, entrySubject(w.Subject, w.ConversationID), w.RemainingMinutes,
				w.PercentUsed, w.ChannelType, assigneeLabel(w.AssigneeName, w.AssigneeID))
		}
	}

	if line := countLine("By severity", mergeCounts(eStats.BySeverity, wStats.BySeverity)); line != "" {
		b.WriteString("\n" + line + "\n")
	}
	if line := countLine("By channel", mergeCounts(eStats.ByChannel, wStats.ByChannel)); line != "" {
		b.WriteString(line + "\n")
	}
	if eStats.Total > 0 {
		fmt.Fprintf(&b, "Overdue: avg %.0fm, max %dm\n", eStats.AverageOverdueMinutes, eStats.MaxOverdueMinutes)
	}

	failed := warn.Failed + exp.Failed
	if warn.Degraded || exp.Degraded {
		b.WriteString("\n_Evaluation degraded: the conversation snapshot could not be read._\n")
	} else if failed > 0 {
		fmt.Fprintf(&b, "\n_%d conversation(s) skipped due to evaluation failures._\n", failed)
	}

	return Digest{
		TenantID:    tenantID,
		Text:        b.String(),
		UrgentCount: eStats.BySeverity[string(sla.ExpiryUrgent)],
	}
}

func entrySubject(subject, conversationID string) string {
	if subject != "" {
		return subject
	}
	return conversationID
}

func assigneeLabel(name, id string) string {
	if name != "" {
		return name
	}
	if id != "" {
		return id
	}
	return "unassigned"
}

func mergeCounts(a, b map[string]int) map[string]int {
	out := make(map[string]int, len(a)+len(b))
	for k, v := range a {
		out[k] += v
	}
	for k, v := range b {
		out[k] += v
	}
	return out
}

func countLine(label string, counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return label + ": " + strings.Join(parts, " ")
}
