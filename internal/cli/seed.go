package cli

import (
	"github.com/rcliao/itinerary/internal/dataset"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the Mexico City demo dataset",
		Long:  "Load 30 Mexico City attractions and a demo profile, and generate walking, taxi and public transport connections from their coordinates. Safe to run twice.",
		Run:   runSeed,
	}

	RootCmd.AddCommand(cmd)
}

func runSeed(cmd *cobra.Command, args []string) {
	ds, err := dataset.Demo()
	if err != nil {
		exitErr("load demo dataset", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.ImportDataset(cmd.Context(), ds)
	if err != nil {
		exitErr("seed", err)
	}
	printJSON(map[string]interface{}{"ok": true, "imported": n})
}
