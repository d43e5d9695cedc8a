package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	Riot             RiotConfig
	Notifier         string
	Discord          DiscordConfig
	Slack            SlackConfig
	State            StateConfig
	RosterPath       string
	Roster           []RosterEntry
	PollInterval     time.Duration
	CycleTimeout     time.Duration
	FetchConcurrency int
	RunOnce          bool
	Port             string
	ProjectID        string
	PraisesPath      string
	RoastsPath       string
	LogLevel         string
}

type RiotConfig struct {
	APIKey        string
	Region        string
	Routing       string
	DefaultTag    string
	QueueID       int
	RatePerSecond float64
	RateBurst     int
}

type DiscordConfig struct {
	Token     string
	ChannelID string
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

// StateConfig selects and configures the persisted tracker state backend.
type StateConfig struct {
	Backend  string
	Path     string
	DBName   string
	Turso    TursoConfig
	RedisURL string
	RedisKey string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// RosterEntry is one player to track, identified by "GameName#TAG".
type RosterEntry struct {
	RiotID string `json:"riot_id"`
}

// rosterFile mirrors the on-disk roster document.
type rosterFile struct {
	Players []RosterEntry `json:"players"`
}

const (
	NotifierDiscord = "discord"
	NotifierSlack   = "slack"

	StateBackendFile   = "file"
	StateBackendSQLite = "sqlite"
	StateBackendRedis  = "redis"
)
