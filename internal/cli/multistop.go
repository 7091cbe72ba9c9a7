package cli

import (
	"fmt"

	"github.com/rcliao/itinerary/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "multistop",
		Short: "Plan a greedy route through several waypoints",
		Long:  "Visit the waypoints nearest-first by leg cost, then return to the end point (the start when --end is not given).",
		Run:   runMultiStop,
	}

	cmd.Flags().Int64("start", 0, "Start attraction id")
	cmd.Flags().Int64Slice("via", nil, "Waypoint attraction ids")
	cmd.Flags().Int64("end", 0, "End attraction id (default: the start)")
	cmd.Flags().StringP("mode", "m", "balanced", "Optimization mode: distance, time, cost, balanced, score")
	cmd.Flags().Int64("profile", 0, "Weigh stops by this profile's suitability scores")

	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("via")

	RootCmd.AddCommand(cmd)
}

func runMultiStop(cmd *cobra.Command, args []string) {
	start, _ := cmd.Flags().GetInt64("start")
	via, _ := cmd.Flags().GetInt64Slice("via")
	modeStr, _ := cmd.Flags().GetString("mode")
	profileID, _ := cmd.Flags().GetInt64("profile")

	mode, err := model.ParseMode(modeStr)
	if err != nil {
		exitErr("mode", err)
	}
	var end *int64
	if cmd.Flags().Changed("end") {
		e, _ := cmd.Flags().GetInt64("end")
		end = &e
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	opt, scores := optimizerFor(cmd.Context(), s, start, profileID)
	r, err := opt.MultiStop(start, via, end, mode, scores)
	if err != nil {
		exitErr("multistop", err)
	}

	if textOutput() {
		printRoute(r.OptimizedRoute)
		fmt.Printf("waypoints: %d/%d  returned: %t  walking=%d transit=%d taxi=%d\n",
			r.WaypointsVisited, r.WaypointsRequested, r.ReturnedToEnd,
			r.Transport.Walking, r.Transport.PublicTransit, r.Transport.Taxi)
		return
	}
	printJSON(r)
}
