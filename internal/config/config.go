package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
// Missing credentials or an unreadable roster are fatal.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		log.Fatalf("Invalid configuration: %s", err)
	}
	roster, err := LoadRoster(cfg.RosterPath)
	if err != nil {
		log.Fatalf("Failed to load roster: %s", err)
	}
	cfg.Roster = roster
	return cfg
}

// LoadState reads only the state backend settings, for tools that never talk to Riot or chat.
func LoadState() StateConfig {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, reading from environment variables")
	}
	return StateFromEnv(os.LookupEnv)
}

// StateFromEnv builds the state backend settings from the given lookup function.
func StateFromEnv(lookup func(string) (string, bool)) StateConfig {
	getEnvOr := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}
	return StateConfig{
		Backend: strings.ToLower(getEnvOr("STATE_BACKEND", StateBackendFile)),
		Path:    getEnvOr("STATE_PATH", "tracker_state.json"),
		DBName:  getEnvOr("DB_NAME", "tracker.db"),
		Turso: TursoConfig{
			PrimaryURL: getEnvOr("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvOr("TURSO_AUTH_TOKEN", ""),
		},
		RedisURL: getEnvOr("REDIS_ADDR", "localhost:6379"),
		RedisKey: getEnvOr("REDIS_KEY", "soloq-tracker:state"),
	}
}

// FromEnv builds a Config from the given lookup function. It does not read the roster.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var missing []string
	var invalid []error

	// A helper function to get a required env var. Missing keys are collected and reported together.
	getEnv := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		missing = append(missing, key)
		return ""
	}
	getEnvOr := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}
	getInt := func(key string, fallback int) int {
		raw := getEnvOr(key, "")
		if raw == "" {
			return fallback
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			invalid = append(invalid, fmt.Errorf("%s: %w", key, err))
			return fallback
		}
		return v
	}
	getFloat := func(key string, fallback float64) float64 {
		raw := getEnvOr(key, "")
		if raw == "" {
			return fallback
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			invalid = append(invalid, fmt.Errorf("%s: %w", key, err))
			return fallback
		}
		return v
	}
	getDuration := func(key string, fallback time.Duration) time.Duration {
		raw := getEnvOr(key, "")
		if raw == "" {
			return fallback
		}
		v, err := time.ParseDuration(raw)
		if err != nil {
			invalid = append(invalid, fmt.Errorf("%s: %w", key, err))
			return fallback
		}
		return v
	}
	getBool := func(key string) bool {
		v, _ := strconv.ParseBool(getEnvOr(key, "false"))
		return v
	}

	cfg := Config{
		Riot: RiotConfig{
			APIKey:        getEnv("RIOT_API_KEY"),
			Region:        getEnvOr("RIOT_REGION", "euw1"),
			Routing:       getEnvOr("RIOT_ROUTING", "europe"),
			DefaultTag:    getEnvOr("RIOT_DEFAULT_TAG", "EUW"),
			QueueID:       getInt("RIOT_QUEUE_ID", 420),
			RatePerSecond: getFloat("RIOT_RATE_PER_SECOND", 0.8),
			RateBurst:     getInt("RIOT_RATE_BURST", 20),
		},
		Notifier: strings.ToLower(getEnvOr("NOTIFIER", NotifierDiscord)),
		State:    StateFromEnv(lookup),
		RosterPath:       getEnvOr("ROSTER_PATH", "config.json"),
		PollInterval:     getDuration("POLL_INTERVAL", 2*time.Minute),
		CycleTimeout:     getDuration("CYCLE_TIMEOUT", 60*time.Second),
		FetchConcurrency: getInt("FETCH_CONCURRENCY", 1),
		RunOnce:          getBool("RUN_ONCE"),
		Port:             getEnvOr("PORT", ""),
		ProjectID:        getEnvOr("GCP_PROJECT", ""),
		PraisesPath:      getEnvOr("PRAISES_PATH", ""),
		RoastsPath:       getEnvOr("ROASTS_PATH", ""),
		LogLevel:         getEnvOr("LOG_LEVEL", "info"),
	}

	switch cfg.Notifier {
	case NotifierDiscord:
		cfg.Discord = DiscordConfig{
			Token:     getEnv("DISCORD_BOT_TOKEN"),
			ChannelID: getEnv("DISCORD_CHANNEL_ID"),
		}
	case NotifierSlack:
		cfg.Slack = SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN"),
			ChannelID: getEnv("SLACK_CHANNEL_ID"),
		}
	default:
		invalid = append(invalid, fmt.Errorf("NOTIFIER: unknown platform %q", cfg.Notifier))
	}

	switch cfg.State.Backend {
	case StateBackendFile, StateBackendSQLite, StateBackendRedis:
	default:
		invalid = append(invalid, fmt.Errorf("STATE_BACKEND: unknown backend %q", cfg.State.Backend))
	}
	if cfg.PollInterval <= 0 {
		invalid = append(invalid, errors.New("POLL_INTERVAL must be positive"))
	}
	if cfg.CycleTimeout <= 0 {
		invalid = append(invalid, errors.New("CYCLE_TIMEOUT must be positive"))
	}
	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = 1
	}

	if len(missing) > 0 {
		invalid = append(invalid, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		return cfg, errors.Join(invalid...)
	}
	return cfg, nil
}

// LoadRoster reads the roster document. Blank and duplicate entries are dropped.
func LoadRoster(path string) ([]RosterEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster %s: %w", path, err)
	}
	var doc rosterFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse roster %s: %w", path, err)
	}

	seen := make(map[string]bool, len(doc.Players))
	roster := make([]RosterEntry, 0, len(doc.Players))
	for _, p := range doc.Players {
		id := strings.TrimSpace(p.RiotID)
		if id == "" {
			log.Warn("Skipping blank roster entry", "path", path)
			continue
		}
		if seen[strings.ToLower(id)] {
			log.Warn("Skipping duplicate roster entry", "riotID", id)
			continue
		}
		seen[strings.ToLower(id)] = true
		roster = append(roster, RosterEntry{RiotID: id})
	}
	return roster, nil
}

// RiotIDs returns the display names of the roster in order.
func (c Config) RiotIDs() []string {
	ids := make([]string, 0, len(c.Roster))
	for _, r := range c.Roster {
		ids = append(ids, r.RiotID)
	}
	return ids
}
