package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/soloq-tracker/internal/metrics"
	"github.com/mauv0809/soloq-tracker/internal/notifier"
	"github.com/mauv0809/soloq-tracker/internal/tracker"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendStartupSummary(ctx context.Context, lines []string, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, s.formatStartupSummary(lines), dryRun)
	return err
}

func (s *Notifier) SendMatchNotification(ctx context.Context, payload notifier.MatchPayload, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, s.formatMatch(payload), dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(ctx context.Context, standings []tracker.Standing, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, s.formatLeaderboard(standings), dryRun)
	return err
}

func (s *Notifier) formatStartupSummary(lines []string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "Bot Started", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	bolded := make([]string, 0, len(lines))
	for _, line := range lines {
		if name, rest, ok := strings.Cut(line, ": "); ok {
			line = fmt.Sprintf("*%s*: %s", name, rest)
		}
		bolded = append(bolded, line)
	}
	body := "Now tracking ranked solo/duo for:\n" + strings.Join(bolded, "\n")
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", body, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatMatch creates the Slack message for a finished ranked match using Block Kit.
func (s *Notifier) formatMatch(p notifier.MatchPayload) slack.Message {
	blocks := make([]slack.Block, 0)

	emoji := "❌"
	if p.Win {
		emoji = "✅"
	}
	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("%s %s: %s on %s", emoji, p.RiotID, p.Outcome, p.ChampionName), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if p.Flavor != "" {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", "_"+p.Flavor+"_", false, false), nil, nil))
	}

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject("mrkdwn", "*Performance*\n"+p.ScoreLine(), false, false),
		slack.NewTextBlockObject("mrkdwn", "*Rank Update*\n"+p.RankLine(), false, false),
	}
	var accessory *slack.Accessory
	if emblem := notifier.RankEmblemURL(p.Tier); emblem != "" {
		accessory = slack.NewAccessory(slack.NewImageBlockElement(emblem, string(p.Tier)))
	}
	blocks = append(blocks, slack.NewSectionBlock(nil, fields, accessory))

	footer := fmt.Sprintf("%s • Match Duration: %s • %s", p.QueueLabel, p.DurationText(), p.MatchID)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("mrkdwn", footer, false, false)))

	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatLeaderboard(standings []tracker.Standing) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Solo/Duo Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(standings) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players tracked yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, st := range standings {
		playerText := fmt.Sprintf("%s %s\n> Unranked", notifier.Medal(st.Position), st.RiotID)
		if st.Rank != nil {
			playerText = fmt.Sprintf("%s %s\n> %s | %dW/%dL (%.0f%%)",
				notifier.Medal(st.Position),
				st.RiotID,
				st.Rank.String(),
				st.Rank.Wins,
				st.Rank.Losses,
				st.Rank.WinRate(),
			)
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
