package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the optimal route between two attractions in every mode",
		Run:   runCompare,
	}

	cmd.Flags().Int64("start", 0, "Start attraction id")
	cmd.Flags().Int64("end", 0, "End attraction id")
	cmd.Flags().Int64("profile", 0, "Weigh stops by this profile's suitability scores")

	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")

	RootCmd.AddCommand(cmd)
}

func runCompare(cmd *cobra.Command, args []string) {
	start, _ := cmd.Flags().GetInt64("start")
	end, _ := cmd.Flags().GetInt64("end")
	profileID, _ := cmd.Flags().GetInt64("profile")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	opt, scores := optimizerFor(cmd.Context(), s, start, profileID)
	cmp, err := opt.Compare(start, end, scores)
	if err != nil {
		exitErr("compare", err)
	}

	if textOutput() {
		fmt.Printf("%-9s %-6s %10s %6s %9s %7s %6s\n", "mode", "found", "km", "min", "cost", "score", "stops")
		for _, c := range cmp {
			fmt.Printf("%-9s %-6t %10.2f %6d %9.2f %7.2f %6d\n",
				c.Mode, c.Found, c.TotalDistanceM/1000, c.TotalMinutes, c.TotalCost, c.OptimizationScore, c.AttractionsCount)
		}
		return
	}
	printJSON(cmp)
}
