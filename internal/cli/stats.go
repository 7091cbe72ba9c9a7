package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	if textOutput() {
		fmt.Printf("db: %s (%d bytes)\n", stats.DBPath, stats.DBSizeBytes)
		fmt.Printf("destinations: %d  attractions: %d  connections: %d  profiles: %d  itineraries: %d\n",
			stats.Destinations, stats.Attractions, stats.Connections, stats.Profiles, stats.Itineraries)
		for _, c := range stats.Categories {
			fmt.Printf("  %-16s %d\n", c.Category, c.Count)
		}
		return
	}
	printJSON(stats)
}
