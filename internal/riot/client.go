package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/soloq-tracker/internal/config"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

var _ Gateway = (*Client)(nil)

// Client talks to the Riot Games REST API.
type Client struct {
	apiKey      string
	client      *fasthttp.Client
	limiter     *rate.Limiter
	platformURL string
	regionalURL string
	defaultTag  string
	queueID     int
}

// NewClient creates a Client for the configured platform and regional routing hosts.
// Every request waits on a shared limiter sized for the key's rate limit.
func NewClient(cfg config.RiotConfig) *Client {
	ratePerSecond := cfg.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 0.8
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		apiKey: cfg.APIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: time.Minute,
		},
		limiter:     rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		platformURL: fmt.Sprintf("https://%s.api.riotgames.com", cfg.Region),
		regionalURL: fmt.Sprintf("https://%s.api.riotgames.com", cfg.Routing),
		defaultTag:  cfg.DefaultTag,
		queueID:     cfg.QueueID,
	}
}

func (c *Client) ResolveIdentity(ctx context.Context, riotID string) (string, error) {
	name, tag, err := ParseRiotID(riotID, c.defaultTag)
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.regionalURL, url.PathEscape(name), url.PathEscape(tag))
	acc, err := doRequest[account](ctx, c, "resolve identity", endpoint)
	if err != nil {
		return "", err
	}
	if acc.PUUID == "" {
		return "", fmt.Errorf("resolve identity %s: %w", riotID, ErrNotFound)
	}
	return acc.PUUID, nil
}

func (c *Client) GetRankStanding(ctx context.Context, puuid string) (*RankSnapshot, error) {
	endpoint := fmt.Sprintf("%s/lol/league/v4/entries/by-puuid/%s", c.platformURL, url.PathEscape(puuid))
	entries, err := doRequest[[]leagueEntry](ctx, c, "rank standing", endpoint)
	if err != nil {
		return nil, err
	}
	for _, e := range *entries {
		if e.QueueType != rankedSoloQueue {
			continue
		}
		tier := Tier(e.Tier)
		if tier.Index() < 0 {
			log.Warn("Unknown tier in league entry", "tier", e.Tier, "puuid", puuid)
		}
		division := e.Rank
		if tier.IsApex() {
			division = ""
		}
		return &RankSnapshot{
			Tier:         tier,
			Division:     division,
			LeaguePoints: e.LeaguePoints,
			Wins:         e.Wins,
			Losses:       e.Losses,
		}, nil
	}
	return nil, nil
}

func (c *Client) GetRecentMatchIDs(ctx context.Context, puuid string, count int) ([]string, error) {
	if count < 1 {
		count = 1
	}
	endpoint := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?queue=%d&start=0&count=%d",
		c.regionalURL, url.PathEscape(puuid), c.queueID, count)
	ids, err := doRequest[[]string](ctx, c, "recent matches", endpoint)
	if err != nil {
		return nil, err
	}
	return *ids, nil
}

func (c *Client) GetMatchDetails(ctx context.Context, matchID string) (*Match, error) {
	endpoint := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.regionalURL, url.PathEscape(matchID))
	return doRequest[Match](ctx, c, "match details", endpoint)
}

func doRequest[T any](ctx context.Context, c *Client, op, endpoint string) (*T, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &APIError{Operation: op, Err: err}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Riot-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		return nil, &APIError{Operation: op, Err: err}
	}
	log.Debug("Riot API call", "operation", op, "status", resp.StatusCode(), "duration_ms", time.Since(start).Milliseconds())

	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusOK:
	case status == fasthttp.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	case status == fasthttp.StatusTooManyRequests:
		retryAfter := time.Duration(0)
		if secs, convErr := strconv.Atoi(string(resp.Header.Peek("Retry-After"))); convErr == nil {
			retryAfter = time.Duration(secs) * time.Second
		}
		log.Warn("Riot API rate limit hit", "operation", op, "retry_after", retryAfter)
		return nil, &APIError{Operation: op, StatusCode: status, RetryAfter: retryAfter}
	default:
		return nil, &APIError{Operation: op, StatusCode: status}
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return &result, nil
}
