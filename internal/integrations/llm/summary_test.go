package llm

import (
	"strings"
	"testing"
)

func TestNewSummarizerRequiresAPIKey(t *testing.T) {
	if s := NewSummarizer("", "claude-sonnet-4-5-20250929"); s != nil {
		t.Fatalf("expected nil summarizer without API key")
	}
	if s := NewSummarizer("sk-test", "claude-sonnet-4-5-20250929"); s == nil {
		t.Fatalf("expected summarizer with API key")
	}
}

func TestBuildSummaryPromptEmbedsDigest(t *testing.T) {
	digest := "*SLA status for acme*: 2 expired, 1 at risk"
	prompt := buildSummaryPrompt(digest)
	if !strings.Contains(prompt, digest) {
		t.Fatalf("prompt missing digest text:\n%s", prompt)
	}
}

func TestUsageTotalTokens(t *testing.T) {
	u := Usage{InputTokens: 120, OutputTokens: 30, CacheReadInputTokens: 50}
	if u.TotalTokens() != 150 {
		t.Fatalf("expected 150 total tokens, got %d", u.TotalTokens())
	}
}
