package tracker

import (
	"github.com/mauv0809/soloq-tracker/internal/riot"
	"github.com/mauv0809/soloq-tracker/internal/state"
)

// MatchAlert reports a newly observed ranked match for one tracked player.
type MatchAlert struct {
	// Player is the tracked player as it was before this match was recorded.
	Player state.TrackedPlayer
	Match  *riot.Match
	// NewRank is nil when the player is unranked or the rank lookup failed.
	NewRank *riot.RankSnapshot
	// RankPointDelta is nil unless the old and new rank share tier and division.
	RankPointDelta *int
}

// MatchID returns the id of the alerted match.
func (a MatchAlert) MatchID() string {
	if a.Match == nil {
		return ""
	}
	return a.Match.Metadata.MatchID
}

// Standing is one leaderboard row.
type Standing struct {
	Position int                `json:"position"`
	RiotID   string             `json:"riot_id"`
	PUUID    string             `json:"puuid"`
	Rank     *riot.RankSnapshot `json:"rank"`
}

// observation is the outcome of polling one player, applied during commit.
type observation struct {
	player      state.TrackedPlayer
	matchID     string
	match       *riot.Match
	rank        *riot.RankSnapshot
	rankFetched bool
	delta       *int
}
