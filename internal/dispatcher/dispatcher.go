package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/soloq-tracker/internal/notifier"
	"github.com/mauv0809/soloq-tracker/internal/tracker"
)

// ErrParticipantNotFound is returned when the alerted player is missing from the match roster.
var ErrParticipantNotFound = errors.New("player not found among match participants")

// Dispatcher turns match alerts into notification payloads and hands them to the notifier.
type Dispatcher struct {
	notifier notifier.Notifier
	flavor   *Flavor
}

// New creates a Dispatcher. flavor may be nil to omit flavor lines.
func New(n notifier.Notifier, flavor *Flavor) *Dispatcher {
	return &Dispatcher{notifier: n, flavor: flavor}
}

// BuildPayload extracts what the notifier needs from an alert.
func (d *Dispatcher) BuildPayload(alert tracker.MatchAlert) (notifier.MatchPayload, error) {
	if alert.Match == nil {
		return notifier.MatchPayload{}, fmt.Errorf("alert for %s has no match details", alert.Player.RiotID)
	}
	p, ok := alert.Match.Participant(alert.Player.PUUID)
	if !ok {
		return notifier.MatchPayload{}, fmt.Errorf("match %s: %w", alert.MatchID(), ErrParticipantNotFound)
	}

	payload := notifier.MatchPayload{
		MatchID:      alert.MatchID(),
		RiotID:       alert.Player.RiotID,
		Win:          p.Win,
		Outcome:      notifier.OutcomeDefeat,
		QueueLabel:   queueLabel(alert.Match.Info.QueueID),
		ChampionName: p.ChampionName,
		ChampionID:   p.ChampionID,
		Kills:        p.Kills,
		Deaths:       p.Deaths,
		Assists:      p.Assists,
		KDA:          p.KDA(),
		CreepScore:   p.CreepScore(),
		Duration:     alert.Match.Duration(),
		EndedAt:      alert.Match.EndedAt(),
		RankText:     notifier.RankUnranked,
		Delta:        alert.RankPointDelta,
	}
	if p.Win {
		payload.Outcome = notifier.OutcomeVictory
	}
	if alert.NewRank != nil {
		payload.Tier = alert.NewRank.Tier
		payload.RankText = alert.NewRank.String()
	}
	if alert.RankPointDelta != nil && *alert.RankPointDelta != 0 {
		payload.DeltaText = fmt.Sprintf("%+d LP", *alert.RankPointDelta)
	}
	if d.flavor != nil {
		payload.Flavor = d.flavor.Line(p.Win, p.ChampionName)
	}
	return payload, nil
}

// Dispatch delivers one notification per alert, in order, and returns how many were
// delivered. Alerts that cannot be rendered or delivered are logged and skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, alerts []tracker.MatchAlert, dryRun bool) int {
	delivered := 0
	for _, alert := range alerts {
		payload, err := d.BuildPayload(alert)
		if err != nil {
			log.Warn("Skipping alert, payload could not be built", "riotID", alert.Player.RiotID, "matchID", alert.MatchID(), "error", err)
			continue
		}
		if err := d.notifier.SendMatchNotification(ctx, payload, dryRun); err != nil {
			log.Error("Failed to deliver match notification", "riotID", payload.RiotID, "matchID", payload.MatchID, "error", err)
			continue
		}
		log.Info("Match notification delivered", "riotID", payload.RiotID, "matchID", payload.MatchID, "outcome", payload.Outcome)
		delivered++
	}
	return delivered
}

func queueLabel(queueID int) string {
	switch queueID {
	case 420:
		return "Ranked Solo/Duo"
	case 440:
		return "Ranked Flex"
	}
	return "Ranked"
}
