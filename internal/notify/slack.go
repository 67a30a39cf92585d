package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/slack-go/slack"

	"slawatch/internal/integrations/llm"
)

// SlackPoster delivers digests to a channel and, for urgent expirations,
// DMs the configured managers. An optional summarizer prepends an
// LLM-written paragraph; summarizer failures degrade to the raw digest.
type SlackPoster struct {
	api        *slack.Client
	channelID  string
	managerIDs []string
	summarizer *llm.Summarizer
}

func NewSlackPoster(api *slack.Client, channelID string, managerIDs []string, summarizer *llm.Summarizer) *SlackPoster {
	return &SlackPoster{
		api:        api,
		channelID:  channelID,
		managerIDs: managerIDs,
		summarizer: summarizer,
	}
}

func (p *SlackPoster) PostDigest(ctx context.Context, d Digest) error {
	text := d.Text
	if p.summarizer != nil {
		summary, usage, err := p.summarizer.SummarizeDigest(ctx, d.Text)
		if err != nil {
			log.Printf("digest summary skipped tenant=%s err=%v", d.TenantID, err)
		} else if summary != "" {
			log.Printf("digest summary tenant=%s tokens=%d", d.TenantID, usage.TotalTokens())
			text = summary + "\n\n" + text
		}
	}

	_, _, err := p.api.PostMessageContext(ctx, p.channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting digest for tenant %s: %w", d.TenantID, err)
	}

	if d.UrgentCount > 0 {
		p.notifyManagers(ctx, d)
	}
	return nil
}

func (p *SlackPoster) notifyManagers(ctx context.Context, d Digest) {
	msg := fmt.Sprintf("%d conversation(s) for tenant %s are urgently overdue. See <#%s> for the full digest.",
		d.UrgentCount, d.TenantID, p.channelID)
	for _, userID := range p.managerIDs {
		channel, _, _, err := p.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
			Users: []string{userID},
		})
		if err != nil {
			log.Printf("Error opening DM with %s: %v", userID, err)
			continue
		}
		_, _, err = p.api.PostMessageContext(ctx, channel.ID, slack.MsgOptionText(msg, false))
		if err != nil {
			log.Printf("Error alerting manager %s: %v", userID, err)
		} else {
			log.Printf("Alerted manager %s for tenant %s", userID, d.TenantID)
		}
	}
}
