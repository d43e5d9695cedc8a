package riot

import "context"

// Gateway defines the interface for the stats provider. All methods may block on the network
// and honour the context deadline.
type Gateway interface {
	// ResolveIdentity maps a "GameName#TAG" display name to the account's stable PUUID.
	ResolveIdentity(ctx context.Context, riotID string) (string, error)
	// GetRankStanding returns the solo queue standing, or nil when the player is unranked.
	GetRankStanding(ctx context.Context, puuid string) (*RankSnapshot, error)
	// GetRecentMatchIDs returns up to count ranked match ids, most recent first.
	GetRecentMatchIDs(ctx context.Context, puuid string, count int) ([]string, error)
	GetMatchDetails(ctx context.Context, matchID string) (*Match, error)
}
