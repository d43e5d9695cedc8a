package dispatcher

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

var victoryLines = []string{
	"GG, the LP bank is open.",
	"Another step up the ladder.",
	"Carried or carrying, it counts all the same.",
	"Clean game. The climb continues.",
	"That one goes in the highlight reel.",
}

var defeatLines = []string{
	"The climb takes a small detour.",
	"Even the pros drop games.",
	"Queue up again, revenge is waiting.",
	"That one is going in the blooper reel.",
	"Mute all and try again.",
}

// Flavor picks a short line to accompany a match notification. Champion specific
// praise (wins) and roasts (losses) are mixed in with equal weight when available.
type Flavor struct {
	praises map[string][]string
	roasts  map[string][]string
	intN    func(n int) int
}

// NewFlavor loads optional champion line files shaped as {"Champion": ["line", ...]}.
// Empty paths are ignored; unreadable files are logged and ignored.
func NewFlavor(praisesPath, roastsPath string) *Flavor {
	return &Flavor{
		praises: loadLines(praisesPath, "praises"),
		roasts:  loadLines(roastsPath, "roasts"),
		intN:    rand.IntN,
	}
}

// Line returns a flavor line for the outcome on the given champion.
func (f *Flavor) Line(win bool, champion string) string {
	generic, specific := defeatLines, f.roasts
	if win {
		generic, specific = victoryLines, f.praises
	}
	line := generic[f.intN(len(generic))]

	lines := specific[championKey(champion)]
	if len(lines) > 0 && f.intN(2) == 1 {
		line = lines[f.intN(len(lines))]
	}
	return line
}

func loadLines(path, kind string) map[string][]string {
	out := make(map[string][]string)
	if path == "" {
		return out
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("Failed to read champion lines", "kind", kind, "path", path, "error", err)
		return out
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Error("Failed to parse champion lines", "kind", kind, "path", path, "error", fmt.Errorf("decode: %w", err))
		return out
	}
	for champion, lines := range raw {
		if len(lines) == 0 {
			continue
		}
		out[championKey(champion)] = lines
	}
	log.Info("Loaded champion lines", "kind", kind, "champions", len(out))
	return out
}

// championKey normalises names so "Lee Sin", "LeeSin" and "Kai'Sa"/"Kaisa" match.
func championKey(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '\'', '.', '&':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
