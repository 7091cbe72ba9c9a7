// Package cli implements the itinerary CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/rcliao/itinerary/internal/config"
	"github.com/rcliao/itinerary/internal/logging"
	"github.com/rcliao/itinerary/internal/planner"
	"github.com/rcliao/itinerary/internal/rules"
	"github.com/rcliao/itinerary/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
	formatFlag string

	cfg config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "itinerary",
	Short: "Multi-day itinerary planner",
	Long:  "Plans multi-day trips over an attraction graph: rule-based profiling, BFS candidate search, k-means day grouping and A* routing. SQLite-backed, single binary.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		slog.SetDefault(logging.New(cfg.Log))
		return nil
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $ITINERARY_DB or ~/.itinerary/itinerary.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.DBPath
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func newProfiler() *rules.Profiler {
	return rules.NewProfiler(rules.NewEngine(rules.WithMaxIterations(cfg.Planner.MaxInferenceIterations)))
}

func newOrchestrator(s planner.Store) *planner.Orchestrator {
	opts := []planner.Option{
		planner.WithProfiler(newProfiler()),
		planner.WithAStarIterations(cfg.Planner.MaxAStarIterations),
		planner.WithSearchLimits(cfg.Search.MaxTimeMinutes, cfg.Search.MaxDepth),
	}
	if cfg.Planner.ClusterSeed != nil {
		opts = append(opts, planner.WithClusterSeed(*cfg.Planner.ClusterSeed))
	}
	return planner.New(s, opts...)
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func textOutput() bool { return formatFlag == "text" }

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
