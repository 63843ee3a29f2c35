package cmd

import (
	"context"
	"os"

	"github.com/T9ner/echo-sub000/internal/app"
	"github.com/T9ner/echo-sub000/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "echo-calendar",
	Short: "Command line client for the echo calendar API",
	Long: `echo-calendar talks to a running echo calendar API: it lists upcoming
events, checks time slots for conflicts, and moves events in and out as
JSON, CSV, or iCalendar files.`,
	// Errors are reported once, by main through logrus.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "Path to config file")
}

// buildDependencies loads configuration and wires the full service stack for
// one command invocation.
func buildDependencies(ctx context.Context) (*app.Dependencies, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	return app.BuildDependencies(ctx, cfg, tokenSourceFromEnv())
}

// tokenSourceFromEnv wraps a ready provider access token from
// ECHO_GOOGLE_TOKEN. The CLI has no auth flow of its own; without a token the
// provider feed stays disabled.
func tokenSourceFromEnv() oauth2.TokenSource {
	token := os.Getenv("ECHO_GOOGLE_TOKEN")
	if token == "" {
		return nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
}
