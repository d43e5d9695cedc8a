package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/soloq-tracker/internal/metrics"
	"github.com/mauv0809/soloq-tracker/internal/notifier"
	"github.com/mauv0809/soloq-tracker/internal/tracker"
)

const (
	colorVictory = 0x57F287
	colorDefeat  = 0xED4245
	colorInfo    = 0x5865F2
	colorGold    = 0xF1C40F

	maxDescription = 4096
)

// discordSession contains the methods from *discordgo.Session that we use.
// This allows for easy mocking in tests.
type discordSession interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ notifier.Notifier = (*Notifier)(nil)

// Notifier posts embeds to a Discord channel over the REST API.
type Notifier struct {
	api       discordSession
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a Notifier authenticated with a bot token. No gateway
// connection is opened; only REST calls are made.
func NewNotifier(token, channelID string, metrics metrics.Metrics) (*Notifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return NewNotifierWithAPI(session, channelID, metrics), nil
}

// NewNotifierWithAPI creates a Notifier with a specific session instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api discordSession, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (n *Notifier) sendEmbed(ctx context.Context, embed *discordgo.MessageEmbed, dryRun bool) error {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(embed, "", "  ")
		log.Info("[Dry Run] Would send Discord embed", "channel", n.channelID, "embed", string(jsonMsg))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg, err := n.api.ChannelMessageSendEmbed(n.channelID, embed, discordgo.WithContext(ctx))
	if err != nil {
		n.metrics.IncNotifFailed()
		log.Error("Failed to send Discord message", "error", err, "channel", n.channelID)
		return fmt.Errorf("failed to send embed: %w", err)
	}

	n.metrics.IncNotifSent()
	log.Info("Successfully sent Discord message", "channel", n.channelID, "messageID", msg.ID)
	return nil
}

func (n *Notifier) SendStartupSummary(ctx context.Context, lines []string, dryRun bool) error {
	return n.sendEmbed(ctx, formatStartupSummary(lines), dryRun)
}

func (n *Notifier) SendMatchNotification(ctx context.Context, payload notifier.MatchPayload, dryRun bool) error {
	return n.sendEmbed(ctx, formatMatch(payload), dryRun)
}

func (n *Notifier) SendLeaderboard(ctx context.Context, standings []tracker.Standing, dryRun bool) error {
	return n.sendEmbed(ctx, formatLeaderboard(standings), dryRun)
}

func formatStartupSummary(lines []string) *discordgo.MessageEmbed {
	bolded := make([]string, 0, len(lines))
	for _, line := range lines {
		name, rest, ok := strings.Cut(line, ": ")
		if !ok {
			bolded = append(bolded, line)
			continue
		}
		bolded = append(bolded, fmt.Sprintf("**%s**: %s", name, rest))
	}
	return &discordgo.MessageEmbed{
		Title:       "Bot Started",
		Description: truncate("Now tracking ranked solo/duo for:\n"+strings.Join(bolded, "\n"), maxDescription),
		Color:       colorInfo,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func formatMatch(p notifier.MatchPayload) *discordgo.MessageEmbed {
	color := colorDefeat
	if p.Win {
		color = colorVictory
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    fmt.Sprintf("%s • %s", p.RiotID, p.QueueLabel),
			IconURL: notifier.ChampionIconURL(p.ChampionID),
		},
		Title:       fmt.Sprintf("%s on %s", p.Outcome, p.ChampionName),
		Description: p.Flavor,
		Color:       color,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: notifier.ChampionIconURL(p.ChampionID)},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Performance", Value: p.ScoreLine(), Inline: true},
			{Name: "Rank Update", Value: p.RankLine(), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Match Duration: " + p.DurationText()},
	}
	if emblem := notifier.RankEmblemURL(p.Tier); emblem != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: emblem}
	}
	if !p.EndedAt.IsZero() {
		embed.Timestamp = p.EndedAt.Format(time.RFC3339)
	}
	return embed
}

func formatLeaderboard(standings []tracker.Standing) *discordgo.MessageEmbed {
	var sb strings.Builder
	if len(standings) == 0 {
		sb.WriteString("No players tracked yet.")
	}
	for _, s := range standings {
		fmt.Fprintf(&sb, "%s **%s**: ", notifier.Medal(s.Position), s.RiotID)
		if s.Rank == nil {
			sb.WriteString("Unranked\n")
			continue
		}
		fmt.Fprintf(&sb, "%s (%dW/%dL, %.0f%%)\n", s.Rank.String(), s.Rank.Wins, s.Rank.Losses, s.Rank.WinRate())
	}
	return &discordgo.MessageEmbed{
		Title:       "🏆 Solo/Duo Leaderboard",
		Description: truncate(strings.TrimRight(sb.String(), "\n"), maxDescription),
		Color:       colorGold,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit-3]
	if i := strings.LastIndex(cut, "\n"); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
