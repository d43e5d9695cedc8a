package tracker

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/soloq-tracker/internal/metrics"
	"github.com/mauv0809/soloq-tracker/internal/riot"
	"github.com/mauv0809/soloq-tracker/internal/state"
	"golang.org/x/sync/errgroup"
)

// Tracker owns the tracked-player state. It detects new ranked matches and keeps
// each player's cursor and last known rank in step.
type Tracker struct {
	gateway     riot.Gateway
	store       state.Store
	metrics     metrics.Metrics
	concurrency int

	// cycleMu serialises Initialize and CheckForNewMatches.
	cycleMu sync.Mutex
	mu      sync.RWMutex
	players state.State
}

// New loads the persisted state. An unreadable or corrupt document is logged and the
// tracker starts empty. concurrency bounds how many players are polled at once.
func New(ctx context.Context, gateway riot.Gateway, store state.Store, m metrics.Metrics, concurrency int) *Tracker {
	players, err := store.Load(ctx)
	if err != nil {
		if errors.Is(err, state.ErrCorrupt) {
			log.Warn("Persisted state is corrupt, starting with empty state", "error", err)
		} else {
			log.Warn("Failed to load persisted state, starting with empty state", "error", err)
		}
		players = state.State{}
	}
	if players == nil {
		players = state.State{}
	}
	if concurrency < 1 {
		concurrency = 1
	}
	m.SetTrackedPlayers(len(players))
	log.Info("Tracker state loaded", "players", len(players))

	return &Tracker{
		gateway:     gateway,
		store:       store,
		metrics:     m,
		concurrency: concurrency,
		players:     players,
	}
}

// Initialize reconciles the roster with the persisted state and returns one summary
// line per successfully resolved entry, in roster order. New players get a baseline
// of their latest match and current rank so that history is never reported as new.
// Known players only have their display name refreshed. State is persisted once.
func (t *Tracker) Initialize(ctx context.Context, roster []string) []string {
	t.cycleMu.Lock()
	defer t.cycleMu.Unlock()

	summary := make([]string, 0, len(roster))
	for i, riotID := range roster {
		if err := ctx.Err(); err != nil {
			log.Warn("Initialization interrupted", "error", err, "remaining", len(roster)-i)
			break
		}

		puuid, err := t.gateway.ResolveIdentity(ctx, riotID)
		if err != nil {
			t.metrics.IncGatewayErrors("resolve identity")
			log.Error("Failed to resolve player, skipping", "riotID", riotID, "error", err, "transient", riot.IsTransient(err))
			continue
		}

		t.mu.RLock()
		existing, known := t.players[puuid]
		t.mu.RUnlock()

		if known {
			if existing.RiotID != riotID {
				log.Info("Player display name changed", "puuid", puuid, "from", existing.RiotID, "to", riotID)
				existing.RiotID = riotID
				t.mu.Lock()
				t.players[puuid] = existing
				t.mu.Unlock()
			}
			summary = append(summary, SummaryLine(existing))
			continue
		}

		player, err := t.baseline(ctx, riotID, puuid)
		if err != nil {
			continue
		}
		t.mu.Lock()
		t.players[puuid] = player
		t.mu.Unlock()
		log.Info("Started tracking player", "riotID", riotID, "puuid", puuid, "lastMatchID", player.LastMatchID)
		summary = append(summary, SummaryLine(player))
	}

	t.persist(context.WithoutCancel(ctx))
	t.metrics.SetTrackedPlayers(t.Len())
	return summary
}

// baseline records the player's latest match and rank without alerting on them.
func (t *Tracker) baseline(ctx context.Context, riotID, puuid string) (state.TrackedPlayer, error) {
	player := state.TrackedPlayer{RiotID: riotID, PUUID: puuid}

	ids, err := t.gateway.GetRecentMatchIDs(ctx, puuid, 1)
	if err != nil {
		t.metrics.IncGatewayErrors("recent matches")
		log.Error("Failed to fetch baseline match, skipping player until next start", "riotID", riotID, "error", err)
		return player, err
	}
	if len(ids) > 0 {
		player.LastMatchID = ids[0]
	}

	rank, err := t.gateway.GetRankStanding(ctx, puuid)
	if err != nil {
		t.metrics.IncGatewayErrors("rank standing")
		log.Warn("Failed to fetch baseline rank, tracking as unranked", "riotID", riotID, "error", err)
		return player, nil
	}
	player.LastRank = rank
	return player, nil
}

// CheckForNewMatches polls every tracked player once and returns an alert per newly
// observed match. Per-player failures are logged and skipped. Observations are applied
// only if ctx is still live once polling completes; otherwise nothing is committed and
// the context error is returned. A nil error means the alerts are committed, even if
// ctx expires while state is being persisted. State is persisted once when there are alerts.
//
// Players are polled from the persisted state, so entries removed from the roster are
// still polled until they are removed from the state.
func (t *Tracker) CheckForNewMatches(ctx context.Context) ([]MatchAlert, error) {
	t.cycleMu.Lock()
	defer t.cycleMu.Unlock()

	t.mu.RLock()
	snapshot := t.players.Clone()
	t.mu.RUnlock()

	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return strings.ToLower(snapshot[ids[i]].RiotID) < strings.ToLower(snapshot[ids[j]].RiotID)
	})

	observations := make([]*observation, len(ids))
	var g errgroup.Group
	g.SetLimit(t.concurrency)
	for i, id := range ids {
		player := snapshot[id]
		g.Go(func() error {
			observations[i] = t.observe(ctx, player)
			return nil
		})
	}
	_ = g.Wait()

	// The deadline is checked under the write lock so that a cycle either commits
	// every observation or none of them.
	t.mu.Lock()
	if err := ctx.Err(); err != nil {
		t.mu.Unlock()
		log.Warn("Cycle expired before commit, discarding observations", "error", err)
		return nil, err
	}
	alerts := make([]MatchAlert, 0)
	for _, obs := range observations {
		if obs == nil {
			continue
		}
		current, ok := t.players[obs.player.PUUID]
		if !ok {
			continue
		}
		alerts = append(alerts, MatchAlert{
			Player:         obs.player,
			Match:          obs.match,
			NewRank:        obs.rank,
			RankPointDelta: obs.delta,
		})
		current.LastMatchID = obs.matchID
		if obs.rankFetched {
			current.LastRank = cloneRank(obs.rank)
		}
		t.players[obs.player.PUUID] = current
	}
	t.mu.Unlock()

	if len(alerts) > 0 {
		t.metrics.AddAlerts(len(alerts))
		// Committed: the save must not be cut short by the cycle deadline.
		t.persist(context.WithoutCancel(ctx))
	}
	return alerts, nil
}

// observe polls a single player. It returns nil when there is nothing to commit.
func (t *Tracker) observe(ctx context.Context, player state.TrackedPlayer) *observation {
	logger := log.With("riotID", player.RiotID, "puuid", player.PUUID)

	ids, err := t.gateway.GetRecentMatchIDs(ctx, player.PUUID, 1)
	if err != nil {
		t.metrics.IncGatewayErrors("recent matches")
		logger.Warn("Failed to fetch recent matches, skipping player", "error", err, "transient", riot.IsTransient(err))
		return nil
	}
	if len(ids) == 0 {
		logger.Debug("No ranked matches found")
		return nil
	}
	latest := ids[0]
	if latest == player.LastMatchID {
		return nil
	}

	logger.Info("New match detected", "matchID", latest, "previousMatchID", player.LastMatchID)
	match, err := t.gateway.GetMatchDetails(ctx, latest)
	if err != nil {
		t.metrics.IncGatewayErrors("match details")
		logger.Error("Failed to fetch match details, will retry next cycle", "matchID", latest, "error", err)
		return nil
	}

	obs := &observation{player: player, matchID: latest, match: match}
	rank, err := t.gateway.GetRankStanding(ctx, player.PUUID)
	if err != nil {
		t.metrics.IncGatewayErrors("rank standing")
		logger.Warn("Failed to fetch rank after match, alerting without rank", "matchID", latest, "error", err)
		return obs
	}
	obs.rank = rank
	obs.rankFetched = true
	obs.delta = RankPointDelta(player.LastRank, rank)
	return obs
}

func (t *Tracker) persist(ctx context.Context) {
	t.mu.RLock()
	snapshot := t.players.Clone()
	t.mu.RUnlock()

	if err := t.store.Save(ctx, snapshot); err != nil {
		t.metrics.IncStateSaveFailures()
		log.Error("Failed to persist tracker state", "error", err, "players", len(snapshot))
	}
}

// Players returns a copy of every tracked player sorted by display name.
func (t *Tracker) Players() []state.TrackedPlayer {
	t.mu.RLock()
	defer t.mu.RUnlock()

	players := make([]state.TrackedPlayer, 0, len(t.players))
	for _, p := range t.players {
		players = append(players, p.Clone())
	}
	sort.Slice(players, func(i, j int) bool {
		return strings.ToLower(players[i].RiotID) < strings.ToLower(players[j].RiotID)
	})
	return players
}

// Standings returns the leaderboard, highest rank first and unranked players last.
func (t *Tracker) Standings() []Standing {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return buildStandings(t.players)
}

// Len returns the number of tracked players.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.players)
}

func cloneRank(r *riot.RankSnapshot) *riot.RankSnapshot {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
