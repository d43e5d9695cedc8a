package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mauv0809/soloq-tracker/internal/config"
	"github.com/mauv0809/soloq-tracker/internal/state"
	"github.com/spf13/cobra"
)

// openStore is replaced in tests.
var openStore = func(ctx context.Context) (state.Store, error) {
	return state.Open(ctx, config.LoadState())
}

var rootCmd = &cobra.Command{
	Use:   "soloq-statectl",
	Short: "Inspect and edit the persisted soloq-tracker state",
	Long: `Operates directly on the configured state backend (STATE_BACKEND).
Stop the tracker before editing, otherwise its next save overwrites your change.`,
	SilenceUsage: true,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every tracked player",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store state.Store) error {
			st, err := store.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load state: %w", err)
			}
			return printPlayers(cmd.OutOrStdout(), st)
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <puuid|riot-id>",
	Short: "Stop tracking a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store state.Store) error {
			st, err := store.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load state: %w", err)
			}
			removed, ok := removePlayer(st, args[0])
			if !ok {
				if hints := suggestPlayers(st, args[0]); len(hints) > 0 {
					return fmt.Errorf("no tracked player matches %q, did you mean: %s", args[0], strings.Join(hints, ", "))
				}
				return fmt.Errorf("no tracked player matches %q", args[0])
			}
			if err := store.Save(ctx, st); err != nil {
				return fmt.Errorf("failed to save state: %w", err)
			}
			log.Info("Player removed", "riotID", removed.RiotID, "puuid", removed.PUUID)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", removed.RiotID, removed.PUUID)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
}

func withStore(cmd *cobra.Command, fn func(ctx context.Context, store state.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := openStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open state backend: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close state backend", "error", err)
		}
	}()
	return fn(ctx, store)
}

// removePlayer deletes the entry keyed by ident, or else the one whose Riot ID matches
// it case-insensitively.
func removePlayer(st state.State, ident string) (state.TrackedPlayer, bool) {
	ident = strings.TrimSpace(ident)
	if p, ok := st[ident]; ok {
		delete(st, ident)
		return p, true
	}
	for puuid, p := range st {
		if strings.EqualFold(p.RiotID, ident) {
			delete(st, puuid)
			return p, true
		}
	}
	return state.TrackedPlayer{}, false
}

// suggestPlayers returns up to three tracked Riot IDs close to ident, best first.
func suggestPlayers(st state.State, ident string) []string {
	ids := make([]string, 0, len(st))
	for _, p := range st {
		ids = append(ids, p.RiotID)
	}
	ident = strings.TrimSpace(ident)
	ranks := fuzzy.RankFindFold(ident, ids)
	sort.Sort(ranks)
	seen := make(map[string]bool)
	var hints []string
	for _, r := range ranks {
		seen[r.Target] = true
		hints = append(hints, r.Target)
	}
	// Typos break subsequence matching, so fall back to edit distance.
	name := strings.ToLower(ident)
	sort.Strings(ids)
	for _, id := range ids {
		if !seen[id] && fuzzy.LevenshteinDistance(name, strings.ToLower(id)) <= maxSuggestDistance {
			hints = append(hints, id)
		}
	}
	if len(hints) > 3 {
		hints = hints[:3]
	}
	return hints
}

const maxSuggestDistance = 3

func printPlayers(out io.Writer, st state.State) error {
	if len(st) == 0 {
		fmt.Fprintln(out, "No players tracked.")
		return nil
	}
	players := make([]state.TrackedPlayer, 0, len(st))
	for _, p := range st {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		return strings.ToLower(players[i].RiotID) < strings.ToLower(players[j].RiotID)
	})

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RIOT ID\tPUUID\tLAST MATCH\tRANK")
	for _, p := range players {
		rank := "Unranked"
		if p.LastRank != nil {
			rank = p.LastRank.String()
		}
		lastMatch := p.LastMatchID
		if lastMatch == "" {
			lastMatch = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.RiotID, p.PUUID, lastMatch, rank)
	}
	return w.Flush()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
