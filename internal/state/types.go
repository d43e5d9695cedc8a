package state

import (
	"context"
	"errors"

	"github.com/mauv0809/soloq-tracker/internal/riot"
)

// ErrCorrupt is returned when a persisted document exists but cannot be decoded.
var ErrCorrupt = errors.New("state: corrupt document")

// TrackedPlayer is one roster member together with the last observation made for them.
// JSON field names are kept stable so existing state files remain readable.
type TrackedPlayer struct {
	RiotID      string             `json:"riot_id"`
	PUUID       string             `json:"puuid"`
	LastMatchID string             `json:"last_match_id,omitempty"`
	LastRank    *riot.RankSnapshot `json:"last_rank"`
}

// Clone returns a deep copy.
func (p TrackedPlayer) Clone() TrackedPlayer {
	if p.LastRank != nil {
		rank := *p.LastRank
		p.LastRank = &rank
	}
	return p
}

// State maps PUUID to tracked player. It is persisted wholesale.
type State map[string]TrackedPlayer

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for id, p := range s {
		out[id] = p.Clone()
	}
	return out
}

// Store persists the tracker state document.
type Store interface {
	// Load returns an empty state and no error when nothing has been saved yet.
	// A document that cannot be decoded yields ErrCorrupt.
	Load(ctx context.Context) (State, error)
	// Save replaces the persisted document.
	Save(ctx context.Context, s State) error
	Close() error
}
