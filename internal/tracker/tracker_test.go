package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/soloq-tracker/internal/metrics"
	"github.com/mauv0809/soloq-tracker/internal/riot"
	"github.com/mauv0809/soloq-tracker/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRiot is a scriptable gateway backed by per-player tables.
type fakeRiot struct {
	mu         sync.Mutex
	puuids     map[string]string
	latest     map[string][]string
	ranks      map[string]*riot.RankSnapshot
	matchErrs  map[string]error
	idErrs     map[string]error
	rankErrs   map[string]error
	detailHits map[string]int
}

func newFakeRiot() *fakeRiot {
	return &fakeRiot{
		puuids:     map[string]string{},
		latest:     map[string][]string{},
		ranks:      map[string]*riot.RankSnapshot{},
		matchErrs:  map[string]error{},
		idErrs:     map[string]error{},
		rankErrs:   map[string]error{},
		detailHits: map[string]int{},
	}
}

// mock wires the fake tables into a riot.MockClient so call records are available.
func (f *fakeRiot) mock() *riot.MockClient {
	m := riot.NewMockClient()
	m.ResolveIdentityFunc = func(riotID string) (string, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if id, ok := f.puuids[riotID]; ok {
			return id, nil
		}
		return "", riot.ErrNotFound
	}
	m.GetRecentMatchIDsFunc = func(puuid string, count int) ([]string, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if err := f.idErrs[puuid]; err != nil {
			return nil, err
		}
		return f.latest[puuid], nil
	}
	m.GetMatchDetailsFunc = func(matchID string) (*riot.Match, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.detailHits[matchID]++
		if err := f.matchErrs[matchID]; err != nil {
			return nil, err
		}
		return &riot.Match{Metadata: riot.MatchMetadata{MatchID: matchID}}, nil
	}
	m.GetRankStandingFunc = func(puuid string) (*riot.RankSnapshot, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if err := f.rankErrs[puuid]; err != nil {
			return nil, err
		}
		if r := f.ranks[puuid]; r != nil {
			c := *r
			return &c, nil
		}
		return nil, nil
	}
	return m
}

func (f *fakeRiot) set(fn func(f *fakeRiot)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func rank(tier riot.Tier, division string, lp int) *riot.RankSnapshot {
	return &riot.RankSnapshot{Tier: tier, Division: division, LeaguePoints: lp}
}

var errTransient = &riot.APIError{Operation: "test", StatusCode: 503}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("new players get a baseline and summary", func(t *testing.T) {
		f := newFakeRiot()
		f.puuids["Faker#KR1"] = "p1"
		f.puuids["Caps#EUW"] = "p2"
		f.latest["p1"] = []string{"M1"}
		f.ranks["p1"] = rank(riot.TierGold, "II", 40)

		store := state.NewMock(nil)
		m := metrics.NewMock()
		tr := New(ctx, f.mock(), store, m, 1)

		summary := tr.Initialize(ctx, []string{"Faker#KR1", "Caps#EUW"})
		assert.Equal(t, []string{"Faker#KR1: GOLD II - 40 LP", "Caps#EUW: Unranked"}, summary)

		saved := store.Saved()
		require.Len(t, saved, 2)
		assert.Equal(t, "M1", saved["p1"].LastMatchID)
		assert.Equal(t, rank(riot.TierGold, "II", 40), saved["p1"].LastRank)
		assert.Equal(t, "", saved["p2"].LastMatchID, "no history leaves the cursor absent")
		assert.Nil(t, saved["p2"].LastRank)
		assert.Equal(t, 1, store.SaveCount(), "state is persisted once")
		assert.Equal(t, 2, m.TrackedPlayers())
	})

	t.Run("unresolvable entries are skipped", func(t *testing.T) {
		f := newFakeRiot()
		f.puuids["Caps#EUW"] = "p2"
		tr := New(ctx, f.mock(), state.NewMock(nil), metrics.NewMock(), 1)

		summary := tr.Initialize(ctx, []string{"Ghost#404", "Caps#EUW"})
		assert.Equal(t, []string{"Caps#EUW: Unranked"}, summary)
		assert.Equal(t, 1, tr.Len())
	})

	t.Run("baseline match failure skips the entry", func(t *testing.T) {
		f := newFakeRiot()
		f.puuids["Faker#KR1"] = "p1"
		f.idErrs["p1"] = errTransient
		tr := New(ctx, f.mock(), state.NewMock(nil), metrics.NewMock(), 1)

		summary := tr.Initialize(ctx, []string{"Faker#KR1"})
		assert.Empty(t, summary)
		assert.Equal(t, 0, tr.Len())
	})

	t.Run("idempotent across calls", func(t *testing.T) {
		f := newFakeRiot()
		f.puuids["Faker#KR1"] = "p1"
		f.latest["p1"] = []string{"M1"}
		f.ranks["p1"] = rank(riot.TierGold, "II", 40)
		store := state.NewMock(nil)
		tr := New(ctx, f.mock(), store, metrics.NewMock(), 1)

		first := tr.Initialize(ctx, []string{"Faker#KR1"})
		before := store.Saved()
		second := tr.Initialize(ctx, []string{"Faker#KR1"})

		assert.Equal(t, first, second)
		assert.Equal(t, before, store.Saved())
		assert.Equal(t, 1, tr.Len())
	})

	t.Run("existing players only get their name updated", func(t *testing.T) {
		f := newFakeRiot()
		f.puuids["Faker#NEW"] = "p1"
		f.latest["p1"] = []string{"M9"}
		f.ranks["p1"] = rank(riot.TierDiamond, "I", 99)
		store := state.NewMock(state.State{
			"p1": {RiotID: "Faker#KR1", PUUID: "p1", LastMatchID: "M1", LastRank: rank(riot.TierGold, "II", 40)},
		})
		tr := New(ctx, f.mock(), store, metrics.NewMock(), 1)

		summary := tr.Initialize(ctx, []string{"Faker#NEW"})
		assert.Equal(t, []string{"Faker#NEW: GOLD II - 40 LP"}, summary)

		saved := store.Saved()["p1"]
		assert.Equal(t, "Faker#NEW", saved.RiotID)
		assert.Equal(t, "M1", saved.LastMatchID)
		assert.Equal(t, rank(riot.TierGold, "II", 40), saved.LastRank)
	})
}

func seeded(players ...state.TrackedPlayer) state.State {
	s := state.State{}
	for _, p := range players {
		s[p.PUUID] = p
	}
	return s
}

func TestCheckForNewMatches(t *testing.T) {
	ctx := context.Background()

	t.Run("no duplicate alert for an unchanged match", func(t *testing.T) {
		f := newFakeRiot()
		f.latest["p1"] = []string{"M2"}
		store := state.NewMock(seeded(state.TrackedPlayer{RiotID: "A#1", PUUID: "p1", LastMatchID: "M1"}))
		tr := New(ctx, f.mock(), store, metrics.NewMock(), 1)

		alerts, err := tr.CheckForNewMatches(ctx)
		require.NoError(t, err)
		assert.Len(t, alerts, 1)

		alerts, err = tr.CheckForNewMatches(ctx)
		require.NoError(t, err)
		assert.Empty(t, alerts)
		assert.Equal(t, 1, store.SaveCount(), "cycles without alerts do not write")
	})

	t.Run("alert exactly once per new match", func(t *testing.T) {
		f := newFakeRiot()
		f.latest["p1"] = []string{"M2", "M1"}
		f.ranks["p1"] = rank(riot.TierGold, "II", 55)
		previous := rank(riot.TierGold, "II", 40)
		store := state.NewMock(seeded(state.TrackedPlayer{RiotID: "A#1", PUUID: "p1", LastMatchID: "M1", LastRank: previous}))
		m := metrics.NewMock()
		tr := New(ctx, f.mock(), store, m, 1)

		alerts, err := tr.CheckForNewMatches(ctx)
		require.NoError(t, err)
		require.Len(t, alerts, 1)

		alert := alerts[0]
		assert.Equal(t, "M2", alert.MatchID())
		assert.Equal(t, "M1", alert.Player.LastMatchID, "alert carries the pre-update snapshot")
		assert.Equal(t, previous, alert.Player.LastRank)
		assert.Equal(t, rank(riot.TierGold, "II", 55), alert.NewRank)
		require.NotNil(t, alert.RankPointDelta)
		assert.Equal(t, 15, *alert.RankPointDelta)

		saved := store.Saved()["p1"]
		assert.Equal(t, "M2", saved.LastMatchID)
		assert.Equal(t, rank(riot.TierGold, "II", 55), saved.LastRank)
		assert.Equal(t, 1, m.Alerts())
	})

	t.Run("detail failure retries on the next cycle", func(t *testing.T) {
		f := newFakeRiot()
		f.latest["p1"] = []string{"M2"}
		f.matchErrs["M2"] = errTransient
		store := state.NewMock(seeded(state.TrackedPlayer{RiotID: "A#1", PUUID: "p1", LastMatchID: "M1"}))
		tr := New(ctx, f.mock(), store, metrics.NewMock(), 1)

		alerts, err := tr.CheckForNewMatches(ctx)
		require.NoError(t, err)
		assert.Empty(t, alerts)
		assert.Equal(t, "M1", tr.Players()[0].LastMatchID)
		assert.Equal(t, 0, store.SaveCount())

		f.set(func(f *fakeRiot) { delete(f.matchErrs, "M2") })

		alerts, err = tr.CheckForNewMatches(ctx)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, "M2", alerts[0].MatchID())
		assert.Equal(t, "M2", tr.Players()[0].LastMatchID)
	})

	t.Run("rank failure still alerts and keeps the previous rank", func(t *testing.T) {
		f := newFakeRiot()
		f.latest["p1"] = []string{"M2"}
		f.rankErrs["p1"] = errTransient
		previous := rank(riot.TierSilver, "I", 70)
		store := state.NewMock(seeded(state.TrackedPlayer{RiotID: "A#1", PUUID: "p1", LastMatchID: "M1", LastRank: previous}))
		tr := New(ctx, f.mock(), store, metrics.NewMock(), 1)

		alerts, err := tr.CheckForNewMatches(ctx)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Nil(t, alerts[0].NewRank)
		assert.Nil(t, alerts[0].RankPointDelta)

		saved := store.Saved()["p1"]
		assert.Equal(t, "M2", saved.LastMatchID)
		assert.Equal(t, previous, saved.LastRank)
	})

	t.Run("becoming unranked clears the rank", func(t *testing.T) {
		f := newFakeRiot()
		f.latest["p1"] = []string{"M2"}
		store := state.NewMock(seeded(state.TrackedPlayer{RiotID: "A#1", PUUID: "p1", LastMatchID: "M1", LastRank: rank(riot.TierIron, "IV", 0)}))
		tr := New(ctx, f.mock(), store, metrics.NewMock(), 1)

		alerts, err := tr.CheckForNewMatches(ctx)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Nil(t, store.Saved()["p1"].LastRank)
	})

	t.Run("batch resilience", func(t *testing.T) {
		for _, concurrency := range []int{1, 3} {
			f := newFakeRiot()
			f.latest["p1"] = []string{"A2"}
			f.idErrs["p2"] = errors.New("connection reset")
			f.latest["p3"] = []string{"C2"}
			store := state.NewMock(seeded(
				state.TrackedPlayer{RiotID: "Alpha#1", PUUID: "p1", LastMatchID: "A1"},
				state.TrackedPlayer{RiotID: "Bravo#1", PUUID: "p2", LastMatchID: "B1"},
				state.TrackedPlayer{RiotID: "Charlie#1", PUUID: "p3", LastMatchID: "C1"},
			))
			m := metrics.NewMock()
			tr := New(ctx, f.mock(), store, m, concurrency)

			alerts, err := tr.CheckForNewMatches(ctx)
			require.NoError(t, err)
			require.Len(t, alerts, 2)
			assert.Equal(t, "A2", alerts[0].MatchID())
			assert.Equal(t, "C2", alerts[1].MatchID())

			saved := store.Saved()
			assert.Equal(t, "A2", saved["p1"].LastMatchID)
			assert.Equal(t, "B1", saved["p2"].LastMatchID)
			assert.Equal(t, "C2", saved["p3"].LastMatchID)
			assert.Equal(t, 1, store.SaveCount(), "one batched write per cycle")
			assert.Equal(t, 1, m.GatewayErrors("recent matches"))
		}
	})

	t.Run("empty match history yields no alert", func(t *testing.T) {
		f := newFakeRiot()
		store := state.NewMock(seeded(state.TrackedPlayer{RiotID: "A#1", PUUID: "p1"}))
		tr := New(ctx, f.mock(), store, metrics.NewMock(), 1)

		alerts, err := tr.CheckForNewMatches(ctx)
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})

	t.Run("expired cycle commits nothing", func(t *testing.T) {
		f := newFakeRiot()
		f.latest["p1"] = []string{"M2"}
		store := state.NewMock(seeded(state.TrackedPlayer{RiotID: "A#1", PUUID: "p1", LastMatchID: "M1"}))
		gateway := f.mock()
		cycleCtx, cancel := context.WithCancel(ctx)
		gateway.GetRankStandingFunc = func(puuid string) (*riot.RankSnapshot, error) {
			cancel()
			return nil, nil
		}
		tr := New(ctx, gateway, store, metrics.NewMock(), 1)

		alerts, err := tr.CheckForNewMatches(cycleCtx)
		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, alerts)
		assert.Equal(t, "M1", tr.Players()[0].LastMatchID)
		assert.Equal(t, 0, store.SaveCount())
	})

	t.Run("persistence failure keeps in-memory state", func(t *testing.T) {
		f := newFakeRiot()
		f.latest["p1"] = []string{"M2"}
		store := state.NewMock(seeded(state.TrackedPlayer{RiotID: "A#1", PUUID: "p1", LastMatchID: "M1"}))
		store.SaveFunc = func(s state.State) error { return errors.New("disk full") }
		m := metrics.NewMock()
		tr := New(ctx, f.mock(), store, m, 1)

		alerts, err := tr.CheckForNewMatches(ctx)
		require.NoError(t, err)
		assert.Len(t, alerts, 1)
		assert.Equal(t, "M2", tr.Players()[0].LastMatchID)
		assert.Equal(t, 1, m.StateSaveFailures())
	})
}

func TestRankPointDelta(t *testing.T) {
	tests := []struct {
		name string
		prev *riot.RankSnapshot
		next *riot.RankSnapshot
		want *int
	}{
		{name: "gain in same division", prev: rank(riot.TierGold, "II", 40), next: rank(riot.TierGold, "II", 55), want: intPtr(15)},
		{name: "loss in same division", prev: rank(riot.TierGold, "II", 40), next: rank(riot.TierGold, "II", 22), want: intPtr(-18)},
		{name: "promotion", prev: rank(riot.TierGold, "II", 90), next: rank(riot.TierGold, "I", 5)},
		{name: "tier change", prev: rank(riot.TierGold, "IV", 0), next: rank(riot.TierSilver, "I", 75)},
		{name: "apex tier", prev: rank(riot.TierMaster, "", 100), next: rank(riot.TierMaster, "", 120), want: intPtr(20)},
		{name: "previously unranked", next: rank(riot.TierGold, "II", 40)},
		{name: "now unranked", prev: rank(riot.TierGold, "II", 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RankPointDelta(tt.prev, tt.next))
		})
	}
}

func intPtr(v int) *int { return &v }

func TestStandings(t *testing.T) {
	store := state.NewMock(seeded(
		state.TrackedPlayer{RiotID: "Unranked#1", PUUID: "p1"},
		state.TrackedPlayer{RiotID: "GoldLow#1", PUUID: "p2", LastRank: rank(riot.TierGold, "III", 80)},
		state.TrackedPlayer{RiotID: "GoldHigh#1", PUUID: "p3", LastRank: rank(riot.TierGold, "I", 10)},
		state.TrackedPlayer{RiotID: "Master#1", PUUID: "p4", LastRank: rank(riot.TierMaster, "", 5)},
		state.TrackedPlayer{RiotID: "GoldHighLP#1", PUUID: "p5", LastRank: rank(riot.TierGold, "I", 60)},
	))
	tr := New(context.Background(), riot.NewMockClient(), store, metrics.NewMock(), 1)

	standings := tr.Standings()
	names := make([]string, 0, len(standings))
	for i, s := range standings {
		assert.Equal(t, i+1, s.Position)
		names = append(names, s.RiotID)
	}
	assert.Equal(t, []string{"Master#1", "GoldHighLP#1", "GoldHigh#1", "GoldLow#1", "Unranked#1"}, names)
}

func TestStateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tracker_state.json")

	f := newFakeRiot()
	f.puuids["Faker#KR1"] = "p1"
	f.puuids["Caps#EUW"] = "p2"
	f.latest["p1"] = []string{"M1"}
	f.latest["p2"] = []string{"N1"}
	f.ranks["p2"] = rank(riot.TierEmerald, "III", 12)

	first := New(ctx, f.mock(), state.NewFileStore(path), metrics.NewMock(), 1)
	first.Initialize(ctx, []string{"Faker#KR1", "Caps#EUW"})

	second := New(ctx, f.mock(), state.NewFileStore(path), metrics.NewMock(), 1)
	assert.Equal(t, first.Players(), second.Players())
}

func TestCorruptStateRecovers(t *testing.T) {
	store := state.NewMock(nil)
	store.LoadFunc = func() (state.State, error) {
		return nil, state.ErrCorrupt
	}

	tr := New(context.Background(), riot.NewMockClient(), store, metrics.NewMock(), 1)
	assert.Equal(t, 0, tr.Len())
	assert.NotNil(t, tr.Players())
}

func TestSummaryLine(t *testing.T) {
	assert.Equal(t, "A#1: Unranked", SummaryLine(state.TrackedPlayer{RiotID: "A#1"}))
	assert.Equal(t, "A#1: CHALLENGER - 1204 LP", SummaryLine(state.TrackedPlayer{RiotID: "A#1", LastRank: rank(riot.TierChallenger, "", 1204)}))
}

func TestConcurrentReadsDuringCycle(t *testing.T) {
	ctx := context.Background()
	f := newFakeRiot()
	f.latest["p1"] = []string{"M2"}
	store := state.NewMock(seeded(state.TrackedPlayer{RiotID: "A#1", PUUID: "p1", LastMatchID: "M1"}))
	gateway := f.mock()
	gateway.GetMatchDetailsFunc = func(matchID string) (*riot.Match, error) {
		time.Sleep(10 * time.Millisecond)
		return &riot.Match{Metadata: riot.MatchMetadata{MatchID: matchID}}, nil
	}
	tr := New(ctx, gateway, store, metrics.NewMock(), 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = tr.CheckForNewMatches(ctx)
	}()
	for i := 0; i < 50; i++ {
		_ = tr.Standings()
		_ = tr.Players()
	}
	<-done
	assert.Equal(t, "M2", tr.Players()[0].LastMatchID)
}

// deadlineStore fails saves whose context is done by the time the write completes,
// like the sqlite and redis backends.
type deadlineStore struct {
	*state.MockStore
	delay time.Duration
}

func (d *deadlineStore) Save(ctx context.Context, s state.State) error {
	time.Sleep(d.delay)
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.MockStore.Save(ctx, s)
}

func TestPersistOutlivesContext(t *testing.T) {
	t.Run("committed cycle is saved after the deadline passes", func(t *testing.T) {
		f := newFakeRiot()
		f.latest["p1"] = []string{"M2"}
		store := &deadlineStore{
			MockStore: state.NewMock(seeded(state.TrackedPlayer{RiotID: "A#1", PUUID: "p1", LastMatchID: "M1"})),
			delay:     60 * time.Millisecond,
		}
		m := metrics.NewMock()
		tr := New(context.Background(), f.mock(), store, m, 1)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		alerts, err := tr.CheckForNewMatches(ctx)

		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, "M2", store.Saved()["p1"].LastMatchID)
		assert.Equal(t, 0, m.StateSaveFailures())
	})

	t.Run("expired context commits nothing", func(t *testing.T) {
		f := newFakeRiot()
		f.latest["p1"] = []string{"M2"}
		store := state.NewMock(seeded(state.TrackedPlayer{RiotID: "A#1", PUUID: "p1", LastMatchID: "M1"}))
		tr := New(context.Background(), f.mock(), store, metrics.NewMock(), 1)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		alerts, err := tr.CheckForNewMatches(ctx)

		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, alerts)
		assert.Equal(t, "M1", tr.Players()[0].LastMatchID)
		assert.Equal(t, 0, store.SaveCount())
	})

	t.Run("initialize saves baselines when cancelled mid-startup", func(t *testing.T) {
		f := newFakeRiot()
		f.puuids["Faker#KR1"] = "p1"
		f.latest["p1"] = []string{"KR_9"}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		gateway := f.mock()
		rankFunc := gateway.GetRankStandingFunc
		gateway.GetRankStandingFunc = func(puuid string) (*riot.RankSnapshot, error) {
			cancel()
			return rankFunc(puuid)
		}
		store := &deadlineStore{MockStore: state.NewMock(nil)}
		m := metrics.NewMock()
		tr := New(context.Background(), gateway, store, m, 1)

		summary := tr.Initialize(ctx, []string{"Faker#KR1"})

		assert.Equal(t, []string{"Faker#KR1: Unranked"}, summary)
		saved := store.Saved()
		require.Contains(t, saved, "p1")
		assert.Equal(t, "KR_9", saved["p1"].LastMatchID)
		assert.Equal(t, 0, m.StateSaveFailures())
	})
}
