package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

const defaultSweepSchedule = "*/5 * * * *"
const defaultSweepConcurrency = 8
const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

type Config struct {
	SlackBotToken   string   `yaml:"slack_bot_token"`
	SlackChannelID  string   `yaml:"slack_channel_id"`
	ManagerSlackIDs []string `yaml:"manager_slack_ids"`

	Tenants []string `yaml:"tenants"`

	DBPath           string `yaml:"db_path"`
	SweepSchedule    string `yaml:"sweep_schedule"`
	SweepConcurrency int    `yaml:"sweep_concurrency"`

	AnthropicAPIKey   string `yaml:"anthropic_api_key"`
	LLMModel          string `yaml:"llm_model"`
	LLMSummaryEnabled bool   `yaml:"llm_summary_enabled"`

	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`
	Timezone                   string `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverrideList(&cfg.ManagerSlackIDs, "MANAGER_SLACK_IDS")
	envOverrideList(&cfg.Tenants, "TENANTS")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.SweepSchedule, "SWEEP_SCHEDULE")
	envOverrideInt(&cfg.SweepConcurrency, "SWEEP_CONCURRENCY")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideBool(&cfg.LLMSummaryEnabled, "LLM_SUMMARY_ENABLED")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverride(&cfg.Timezone, "TIMEZONE")

	if cfg.DBPath == "" {
		cfg.DBPath = "./slawatch.db"
	}
	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = defaultSweepSchedule
	}
	if cfg.SweepConcurrency == 0 {
		cfg.SweepConcurrency = defaultSweepConcurrency
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultAnthropicModel
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	if cfg.SweepConcurrency < 1 {
		log.Fatalf("invalid sweep_concurrency '%d': must be >= 1", cfg.SweepConcurrency)
	}
	if cfg.SlackChannelID != "" && cfg.SlackBotToken == "" {
		log.Fatalf("slack_channel_id is set but slack_bot_token is not")
	}
	if cfg.LLMSummaryEnabled && cfg.AnthropicAPIKey == "" {
		log.Fatalf("anthropic_api_key is required when llm_summary_enabled is true")
	}
	if len(cfg.Tenants) == 0 {
		log.Printf("WARNING: no tenants configured. Sweeps will have nothing to evaluate.")
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg
}

func envOverride(field *string, key string) {
	if val := os.Getenv(key); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, key string) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Ignoring invalid %s=%q: %v", key, val, err)
		}
	}
}

func envOverrideBool(field *bool, key string) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*field = b
		} else {
			log.Printf("Ignoring invalid %s=%q: %v", key, val, err)
		}
	}
}

func envOverrideList(field *[]string, key string) {
	if val := os.Getenv(key); val != "" {
		*field = nil
		for _, part := range strings.Split(val, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				*field = append(*field, part)
			}
		}
	}
}
