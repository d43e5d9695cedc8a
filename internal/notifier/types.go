package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/mauv0809/soloq-tracker/internal/riot"
)

// MatchPayload is everything a platform needs to render a match notification.
type MatchPayload struct {
	MatchID      string
	RiotID       string
	Win          bool
	Outcome      string
	QueueLabel   string
	ChampionName string
	ChampionID   int
	Kills        int
	Deaths       int
	Assists      int
	KDA          float64
	CreepScore   int
	Duration     time.Duration
	EndedAt      time.Time
	// Tier is empty when the new rank is unknown.
	Tier     riot.Tier
	RankText string
	// Delta is nil when no comparable previous rank exists.
	Delta     *int
	DeltaText string
	Flavor    string
}

const (
	OutcomeVictory = "VICTORY"
	OutcomeDefeat  = "DEFEAT"
	RankUnranked   = "UNRANKED"
)

// DurationText renders "31m 5s".
func (p MatchPayload) DurationText() string {
	total := int(p.Duration.Round(time.Second).Seconds())
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}

// ScoreLine renders "8/2/10 (KDA 9.00) - 212 CS".
func (p MatchPayload) ScoreLine() string {
	return fmt.Sprintf("%d/%d/%d (KDA %.2f) - %d CS", p.Kills, p.Deaths, p.Assists, p.KDA, p.CreepScore)
}

// RankLine renders the rank with the signed delta appended when present.
func (p MatchPayload) RankLine() string {
	if p.DeltaText == "" {
		return p.RankText
	}
	return fmt.Sprintf("%s (%s)", p.RankText, p.DeltaText)
}

// ChampionIconURL returns the square champion icon.
func ChampionIconURL(championID int) string {
	return fmt.Sprintf("https://raw.communitydragon.org/latest/plugins/rcp-be-lol-game-data/global/default/v1/champion-icons/%d.png", championID)
}

// RankEmblemURL returns the ranked emblem image for a tier, or "" for unknown tiers.
func RankEmblemURL(tier riot.Tier) string {
	if tier.Index() < 0 {
		return ""
	}
	return fmt.Sprintf("https://raw.communitydragon.org/latest/plugins/rcp-fe-lol-static-assets/global/default/images/ranked-emblem/emblem-%s.png", strings.ToLower(string(tier)))
}

// Medal returns the podium marker for leaderboard positions 1 to 3.
func Medal(position int) string {
	switch position {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return fmt.Sprintf("%d.", position)
}
