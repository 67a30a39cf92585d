package llm

import (
	"context"
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"slawatch/internal/httpx"
)

type Usage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u Usage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

const summarySystemPrompt = `You summarize SLA breach digests for support team leads.
Write one short paragraph (3 sentences max) highlighting the most urgent breaches,
which channels or locations are worst affected, and whether unassigned conversations
are involved. Plain text only, no markdown headings, no preamble.`

// Summarizer turns a breach digest into a one-paragraph executive summary.
type Summarizer struct {
	apiKey string
	model  string
}

// NewSummarizer returns nil when no API key is configured; callers treat
// a nil summarizer as "post the raw digest".
func NewSummarizer(apiKey, model string) *Summarizer {
	if apiKey == "" {
		return nil
	}
	return &Summarizer{apiKey: apiKey, model: model}
}

func (s *Summarizer) SummarizeDigest(ctx context.Context, digest string) (string, Usage, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(s.apiKey),
		option.WithHTTPClient(httpx.Client()),
	)

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: summarySystemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildSummaryPrompt(digest))),
		},
	})
	if err != nil {
		log.Printf("llm summary error: %v", err)
		return "", Usage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := Usage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm summary size=%d tokens_in=%d tokens_out=%d cache_create=%d cache_read=%d",
				len(block.Text), usage.InputTokens, usage.OutputTokens,
				usage.CacheCreationInputTokens, usage.CacheReadInputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}

func buildSummaryPrompt(digest string) string {
	return "Summarize this SLA breach digest:\n\n" + digest
}
