// btctracker — Bitcoin price tracker CLI.
//
// Main entrypoint using the cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"btctracker/internal/config"
	"btctracker/internal/exporter"
	"btctracker/internal/httpx"
	"btctracker/internal/provider/cache"
	"btctracker/internal/provider/coingecko"
	"btctracker/internal/provider/retry"
	"btctracker/internal/tracker"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

// Global config, loaded by the root PersistentPreRunE.
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "btctracker",
	Short: "btctracker — Bitcoin price tracker",
	Long: `btctracker polls the CoinGecko simple-price API for Bitcoin/USD,
caches the result, and reports current price, 24h change and trend.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

// newTracker wires client -> retry -> cache from the loaded config.
func newTracker(c *config.Config) *tracker.Tracker {
	httpClient := httpx.New(c.API.Timeout())
	httpClient.UserAgent = c.API.UserAgent

	client := coingecko.NewClient(
		c.API.Key,
		coingecko.WithBaseURL(c.API.BaseURL),
		coingecko.WithHTTPClient(httpClient),
	)
	return tracker.New(
		client,
		cache.New(c.Cache.TTL()),
		retry.New(c.Retry.MaxAttempts, c.Retry.Delay()),
	)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("btctracker %s (%s)\n", version, commit)
	},
}

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the current Bitcoin quote once and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		useRetry, _ := cmd.Flags().GetBool("retry")
		asJSON, _ := cmd.Flags().GetBool("json")

		t := newTracker(cfg)
		mode := tracker.ModeCached
		if useRetry {
			mode = tracker.ModeForceRetry
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout(cfg))
		defer cancel()

		snap, err := t.Snapshot(ctx, mode)
		if err != nil {
			return err
		}
		if asJSON {
			b, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		printSnapshot(snap)
		return nil
	},
}

func init() {
	fetchCmd.Flags().Bool("retry", false, "force a refresh with bounded retries, bypassing the cache TTL")
	fetchCmd.Flags().Bool("json", false, "print machine-readable JSON")
}

// commandTimeout leaves room for the full retry sequence:
// attempts * request timeout + the pauses in between.
func commandTimeout(c *config.Config) time.Duration {
	attempts := time.Duration(c.Retry.MaxAttempts)
	return attempts*c.API.Timeout() + attempts*c.Retry.Delay() + time.Second
}

// --- Watch Command ---

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render the quote on a fixed interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = cfg.Watch.Interval()
		}

		t := newTracker(cfg)
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		render := func() {
			fetchCtx, cancel := context.WithTimeout(ctx, commandTimeout(cfg))
			defer cancel()
			snap, err := t.Snapshot(fetchCtx, tracker.ModeCached)
			if err != nil {
				log.Printf("fetch error: %v", err)
				return
			}
			printSnapshot(snap)
		}

		render()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				render()
			}
		}
	},
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "refresh interval (default: watch.interval_sec from config)")
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quote API and Prometheus metrics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		listen, _ := cmd.Flags().GetString("listen")
		if listen == "" {
			listen = cfg.Server.Listen
		}

		t := newTracker(cfg)
		exp := exporter.New(listen, t)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Keep the metrics warm off the cached path.
		collectEvery := cfg.Cache.TTL()
		if collectEvery <= 0 {
			collectEvery = cfg.Watch.Interval()
		}
		go func() {
			ticker := time.NewTicker(collectEvery)
			defer ticker.Stop()
			for {
				collectCtx, cancel := context.WithTimeout(ctx, commandTimeout(cfg))
				if err := exp.Collect(collectCtx); err != nil {
					log.Printf("collect error: %v", err)
				}
				cancel()
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()

		go func() {
			log.Printf("serving on %s", listen)
			if err := exp.Serve(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("server: %v", err)
			}
		}()

		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return exp.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default: server.listen from config)")
}
