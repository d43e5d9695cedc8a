package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	checkDryRun bool
	verbose     bool
)

func init() {
	checkCmd.Flags().BoolVar(&checkDryRun, "dry-run", false, "Detect and commit matches without posting to chat")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Ask the server to log this request at debug level")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the tracker",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(cmd, http.MethodGet, "/health", nil)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a poll cycle now and report the alerts it produced",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if checkDryRun {
			params.Set("dry_run", "true")
		}
		return performRequest(cmd, http.MethodPost, "/check", params)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the tracked players and their last seen state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(cmd, http.MethodGet, "/players", nil)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the current standings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(cmd, http.MethodGet, "/leaderboard", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(cmd, http.MethodGet, "/metrics", nil)
	},
}

func performRequest(cmd *cobra.Command, method, endpoint string, params url.Values) error {
	if params == nil {
		params = url.Values{}
	}
	if verbose {
		params.Set("verbose", "true")
	}
	target := host + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Making request to %s\n", target)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Fprintf(out, "Status Code: %d\n", resp.StatusCode)
	fmt.Fprintln(out, "Response Body:")
	fmt.Fprintln(out, prettyJSON(body))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server responded with %s", resp.Status)
	}
	return nil
}

// prettyJSON indents JSON bodies and returns anything else unchanged.
func prettyJSON(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}
