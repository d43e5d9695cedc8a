package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	host    string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "soloq-cli",
	Short: "A CLI to interact with a running soloq-tracker",
	Long: `A command-line interface for the operational endpoints of soloq-tracker.
The tracker must be started with PORT set for these endpoints to be served.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "How long to wait for a response")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
