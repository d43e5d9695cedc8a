package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"
	"github.com/mauv0809/soloq-tracker/internal/tracker"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub. It doubles as the topic name.
type EventType string

const (
	EventMatchDetected EventType = "ranked-match-detected"
)

// MatchEvent is the msgpack payload published for every match alert.
type MatchEvent struct {
	EventID      string    `msgpack:"event_id"`
	CycleID      string    `msgpack:"cycle_id"`
	DetectedAt   time.Time `msgpack:"detected_at"`
	MatchID      string    `msgpack:"match_id"`
	PUUID        string    `msgpack:"puuid"`
	RiotID       string    `msgpack:"riot_id"`
	Win          bool      `msgpack:"win"`
	ChampionName string    `msgpack:"champion_name"`
	Tier         string    `msgpack:"tier,omitempty"`
	Division     string    `msgpack:"division,omitempty"`
	LeaguePoints *int      `msgpack:"league_points,omitempty"`
	Delta        *int      `msgpack:"delta,omitempty"`
}

// NewMatchEvent builds the event for an alert detected in the given cycle.
func NewMatchEvent(cycleID string, alert tracker.MatchAlert) MatchEvent {
	event := MatchEvent{
		EventID:    uuid.NewString(),
		CycleID:    cycleID,
		DetectedAt: time.Now().UTC(),
		MatchID:    alert.MatchID(),
		PUUID:      alert.Player.PUUID,
		RiotID:     alert.Player.RiotID,
		Delta:      alert.RankPointDelta,
	}
	if p, ok := alert.Match.Participant(alert.Player.PUUID); ok {
		event.Win = p.Win
		event.ChampionName = p.ChampionName
	}
	if alert.NewRank != nil {
		lp := alert.NewRank.LeaguePoints
		event.Tier = string(alert.NewRank.Tier)
		event.Division = alert.NewRank.Division
		event.LeaguePoints = &lp
	}
	return event
}
