package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	baseURL        string
	owner          string
	idempotencyKey string
	timeout        time.Duration
	jsonOutput     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "bankcore-cli",
		Short:         "bankcore CLI tool",
		Long:          `A command line interface for interacting with the bankcore API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", envOr("BANKCORE_URL", "http://localhost:8080"), "Base URL of the bankcore API")
	flags.StringVar(&opts.owner, "owner", os.Getenv("BANKCORE_OWNER"), "Owner ID sent as X-Owner-ID")
	flags.StringVar(&opts.idempotencyKey, "idempotency-key", "", "Idempotency-Key sent with write requests")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print raw JSON responses")

	rootCmd.AddCommand(
		accountsCmd(opts),
		depositCmd(opts),
		withdrawCmd(opts),
		transferCmd(opts),
		historyCmd(opts),
		ledgerCmd(opts),
	)

	return rootCmd
}

func (o *options) client() *apiClient {
	c := newAPIClient(o.baseURL, o.owner, o.timeout)
	c.idempotencyKey = o.idempotencyKey
	return c
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
