package tracker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mauv0809/soloq-tracker/internal/riot"
	"github.com/mauv0809/soloq-tracker/internal/state"
)

// RankPointDelta returns next minus prev league points, or nil when either rank is
// missing or the two are in different tier/division brackets.
func RankPointDelta(prev, next *riot.RankSnapshot) *int {
	if prev == nil || next == nil || !prev.SameBracket(*next) {
		return nil
	}
	delta := next.LeaguePoints - prev.LeaguePoints
	return &delta
}

// SummaryLine renders "Name#TAG: GOLD II - 40 LP" or "Name#TAG: Unranked".
func SummaryLine(p state.TrackedPlayer) string {
	if p.LastRank == nil {
		return fmt.Sprintf("%s: Unranked", p.RiotID)
	}
	return fmt.Sprintf("%s: %s", p.RiotID, p.LastRank.String())
}

// rankLess orders higher standings first. Unranked players sort last.
func rankLess(a, b state.TrackedPlayer) bool {
	if (a.LastRank == nil) != (b.LastRank == nil) {
		return a.LastRank != nil
	}
	if a.LastRank != nil {
		ra, rb := a.LastRank, b.LastRank
		if ti, tj := ra.Tier.Index(), rb.Tier.Index(); ti != tj {
			return ti > tj
		}
		if di, dj := riot.DivisionIndex(ra.Division), riot.DivisionIndex(rb.Division); di != dj {
			return di > dj
		}
		if ra.LeaguePoints != rb.LeaguePoints {
			return ra.LeaguePoints > rb.LeaguePoints
		}
	}
	return strings.ToLower(a.RiotID) < strings.ToLower(b.RiotID)
}

func buildStandings(players state.State) []Standing {
	list := make([]state.TrackedPlayer, 0, len(players))
	for _, p := range players {
		list = append(list, p.Clone())
	}
	sort.SliceStable(list, func(i, j int) bool { return rankLess(list[i], list[j]) })

	standings := make([]Standing, 0, len(list))
	for i, p := range list {
		standings = append(standings, Standing{
			Position: i + 1,
			RiotID:   p.RiotID,
			PUUID:    p.PUUID,
			Rank:     p.LastRank,
		})
	}
	return standings
}
