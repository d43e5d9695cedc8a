package pubsub

import (
	"context"
	"testing"

	"github.com/mauv0809/soloq-tracker/internal/riot"
	"github.com/mauv0809/soloq-tracker/internal/state"
	"github.com/mauv0809/soloq-tracker/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestNewMatchEvent(t *testing.T) {
	delta := 15
	alert := tracker.MatchAlert{
		Player: state.TrackedPlayer{RiotID: "Faker#KR1", PUUID: "p1"},
		Match: &riot.Match{
			Metadata: riot.MatchMetadata{MatchID: "KR_1"},
			Info: riot.MatchInfo{Participants: []riot.Participant{
				{PUUID: "p1", ChampionName: "Ahri", Win: true},
			}},
		},
		NewRank:        &riot.RankSnapshot{Tier: riot.TierGold, Division: "II", LeaguePoints: 55},
		RankPointDelta: &delta,
	}

	event := NewMatchEvent("cycle-1", alert)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "cycle-1", event.CycleID)
	assert.Equal(t, "KR_1", event.MatchID)
	assert.True(t, event.Win)
	assert.Equal(t, "Ahri", event.ChampionName)
	assert.Equal(t, "GOLD", event.Tier)
	require.NotNil(t, event.LeaguePoints)
	assert.Equal(t, 55, *event.LeaguePoints)

	data, err := msgpack.Marshal(event)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, msgpack.Unmarshal(data, &decoded))
	assert.Equal(t, "KR_1", decoded["match_id"])
	assert.Equal(t, "Faker#KR1", decoded["riot_id"])

	unranked := NewMatchEvent("cycle-1", tracker.MatchAlert{
		Player: state.TrackedPlayer{RiotID: "Caps#EUW", PUUID: "p2"},
		Match:  &riot.Match{Metadata: riot.MatchMetadata{MatchID: "EUW1_1"}},
	})
	assert.Empty(t, unranked.Tier)
	assert.Nil(t, unranked.LeaguePoints)
	assert.NotEqual(t, event.EventID, unranked.EventID)
}

func TestNewWithoutProject(t *testing.T) {
	c, err := New(context.Background(), "")
	require.NoError(t, err)
	assert.IsType(t, noop{}, c)
	assert.NoError(t, c.SendMessage(context.Background(), EventMatchDetected, MatchEvent{}))
	assert.NoError(t, c.Close())
}
