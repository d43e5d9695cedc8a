package riot

import (
	"fmt"
	"strings"
	"time"
)

// Tier is a ranked tier name as reported by league-v4.
type Tier string

const (
	TierIron        Tier = "IRON"
	TierBronze      Tier = "BRONZE"
	TierSilver      Tier = "SILVER"
	TierGold        Tier = "GOLD"
	TierPlatinum    Tier = "PLATINUM"
	TierEmerald     Tier = "EMERALD"
	TierDiamond     Tier = "DIAMOND"
	TierMaster      Tier = "MASTER"
	TierGrandmaster Tier = "GRANDMASTER"
	TierChallenger  Tier = "CHALLENGER"
)

// Tiers lists every known tier from lowest to highest.
var Tiers = []Tier{
	TierIron, TierBronze, TierSilver, TierGold, TierPlatinum,
	TierEmerald, TierDiamond, TierMaster, TierGrandmaster, TierChallenger,
}

// Divisions lists divisions from lowest to highest.
var Divisions = []string{"IV", "III", "II", "I"}

// Index returns the position of the tier in Tiers, or -1 when unknown.
func (t Tier) Index() int {
	for i, known := range Tiers {
		if strings.EqualFold(string(t), string(known)) {
			return i
		}
	}
	return -1
}

// IsApex reports whether the tier has no divisions.
func (t Tier) IsApex() bool {
	return t.Index() >= TierMaster.Index()
}

// DivisionIndex returns the position of a division in Divisions, or -1.
func DivisionIndex(division string) int {
	for i, d := range Divisions {
		if d == division {
			return i
		}
	}
	return -1
}

// RankSnapshot is a player's solo queue standing at a point in time.
// JSON tags match the league-v4 entry fields.
type RankSnapshot struct {
	Tier         Tier   `json:"tier"`
	Division     string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// SameBracket reports whether both snapshots are in the same tier and division,
// which is the only case where league points are comparable.
func (r RankSnapshot) SameBracket(other RankSnapshot) bool {
	return r.Tier == other.Tier && r.Division == other.Division
}

// Label renders "GOLD II", or just the tier for apex tiers.
func (r RankSnapshot) Label() string {
	if r.Tier.IsApex() || r.Division == "" {
		return string(r.Tier)
	}
	return fmt.Sprintf("%s %s", r.Tier, r.Division)
}

func (r RankSnapshot) String() string {
	return fmt.Sprintf("%s - %d LP", r.Label(), r.LeaguePoints)
}

// WinRate returns the percentage of wins, 0 when no games were played.
func (r RankSnapshot) WinRate() float64 {
	total := r.Wins + r.Losses
	if total == 0 {
		return 0
	}
	return float64(r.Wins) * 100 / float64(total)
}

// Match is a match-v5 match document, trimmed to the fields the tracker reads.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

type MatchInfo struct {
	GameDuration     int64         `json:"gameDuration"`
	GameEndTimestamp int64         `json:"gameEndTimestamp"`
	GameMode         string        `json:"gameMode"`
	QueueID          int           `json:"queueId"`
	Participants     []Participant `json:"participants"`
}

type Participant struct {
	PUUID                       string `json:"puuid"`
	RiotIDGameName              string `json:"riotIdGameName"`
	RiotIDTagline               string `json:"riotIdTagline"`
	ChampionName                string `json:"championName"`
	ChampionID                  int    `json:"championId"`
	TeamPosition                string `json:"teamPosition"`
	Kills                       int    `json:"kills"`
	Deaths                      int    `json:"deaths"`
	Assists                     int    `json:"assists"`
	TotalMinionsKilled          int    `json:"totalMinionsKilled"`
	NeutralMinionsKilled        int    `json:"neutralMinionsKilled"`
	TotalDamageDealtToChampions int    `json:"totalDamageDealtToChampions"`
	GoldEarned                  int    `json:"goldEarned"`
	VisionScore                 int    `json:"visionScore"`
	Win                         bool   `json:"win"`
}

// Participant returns the participant entry for the given PUUID.
func (m *Match) Participant(puuid string) (*Participant, bool) {
	if m == nil {
		return nil, false
	}
	for i := range m.Info.Participants {
		if m.Info.Participants[i].PUUID == puuid {
			return &m.Info.Participants[i], true
		}
	}
	return nil, false
}

// Duration returns the game length. Documents without gameEndTimestamp report
// gameDuration in milliseconds.
func (m *Match) Duration() time.Duration {
	if m.Info.GameEndTimestamp == 0 {
		return time.Duration(m.Info.GameDuration) * time.Millisecond
	}
	return time.Duration(m.Info.GameDuration) * time.Second
}

// EndedAt returns the game end time, zero when unknown.
func (m *Match) EndedAt() time.Time {
	if m.Info.GameEndTimestamp == 0 {
		return time.Time{}
	}
	return time.UnixMilli(m.Info.GameEndTimestamp)
}

// CreepScore is lane minions plus neutral monsters.
func (p Participant) CreepScore() int {
	return p.TotalMinionsKilled + p.NeutralMinionsKilled
}

// KDA returns (kills + assists) / max(1, deaths).
func (p Participant) KDA() float64 {
	deaths := p.Deaths
	if deaths < 1 {
		deaths = 1
	}
	return float64(p.Kills+p.Assists) / float64(deaths)
}

// leagueEntry is a league-v4 entry.
type leagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

type account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

const rankedSoloQueue = "RANKED_SOLO_5x5"

// ParseRiotID splits "GameName#TAG". A missing tag falls back to defaultTag.
func ParseRiotID(riotID, defaultTag string) (string, string, error) {
	name, tag, found := strings.Cut(strings.TrimSpace(riotID), "#")
	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)
	if name == "" {
		return "", "", fmt.Errorf("invalid riot id %q: empty game name", riotID)
	}
	if !found || tag == "" {
		tag = defaultTag
	}
	return name, tag, nil
}
