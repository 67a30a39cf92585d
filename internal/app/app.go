package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/slack-go/slack"

	"slawatch/internal/config"
	"slawatch/internal/httpx"
	"slawatch/internal/integrations/llm"
	"slawatch/internal/monitor"
	"slawatch/internal/notify"
	"slawatch/internal/sla"
	"slawatch/internal/storage/sqlite"
)

func Main() {
	cfg := config.LoadConfig()
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf(
		"Config loaded. Tenants=%d Timezone=%s SweepSchedule=%s SweepConcurrency=%d LLMSummary=%t ExternalHTTPTimeout=%s",
		len(cfg.Tenants),
		cfg.Timezone,
		cfg.SweepSchedule,
		cfg.SweepConcurrency,
		cfg.LLMSummaryEnabled,
		appliedHTTPTimeout,
	)

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	log.Printf("Database initialized at %s", cfg.DBPath)
	defer db.Close()

	detector := sla.NewDetector(sqlite.NewStore(db), cfg.SweepConcurrency)

	var poster monitor.Poster
	if cfg.SlackBotToken != "" && cfg.SlackChannelID != "" {
		api := slack.New(cfg.SlackBotToken, slack.OptionHTTPClient(httpx.Client()))
		var summarizer *llm.Summarizer
		if cfg.LLMSummaryEnabled {
			summarizer = llm.NewSummarizer(cfg.AnthropicAPIKey, cfg.LLMModel)
		}
		poster = notify.NewSlackPoster(api, cfg.SlackChannelID, cfg.ManagerSlackIDs, summarizer)
	} else {
		log.Println("Slack delivery disabled (slack_bot_token or slack_channel_id not set)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("Starting SLA breach monitor...")
	if err := monitor.Run(ctx, cfg, detector, poster); err != nil {
		log.Fatalf("Monitor error: %v", err)
	}
}
