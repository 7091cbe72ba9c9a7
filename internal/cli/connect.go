package cli

import (
	"github.com/rcliao/itinerary/internal/model"
	"github.com/rcliao/itinerary/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Create, replace or remove a connection between attractions",
		Run:   runConnect,
	}

	cmd.Flags().Int64("from", 0, "Origin attraction id")
	cmd.Flags().Int64("to", 0, "Target attraction id")
	cmd.Flags().StringP("mode", "m", model.ModeWalking, "Transport: walking, taxi, public_transport")
	cmd.Flags().Float64("distance", 0, "Distance in meters")
	cmd.Flags().Int("minutes", 0, "Travel time in minutes")
	cmd.Flags().Float64("cost", 0, "Travel cost")
	cmd.Flags().Float64("traffic", 1.0, "Traffic factor")
	cmd.Flags().Bool("both", false, "Also create the reverse connection")
	cmd.Flags().Bool("rm", false, "Remove the connection")

	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	RootCmd.AddCommand(cmd)
}

func runConnect(cmd *cobra.Command, args []string) {
	from, _ := cmd.Flags().GetInt64("from")
	to, _ := cmd.Flags().GetInt64("to")
	mode, _ := cmd.Flags().GetString("mode")
	distance, _ := cmd.Flags().GetFloat64("distance")
	minutes, _ := cmd.Flags().GetInt("minutes")
	cost, _ := cmd.Flags().GetFloat64("cost")
	traffic, _ := cmd.Flags().GetFloat64("traffic")
	both, _ := cmd.Flags().GetBool("both")
	rm, _ := cmd.Flags().GetBool("rm")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c := model.Connection{
		FromID:        from,
		ToID:          to,
		DistanceM:     distance,
		TravelMinutes: minutes,
		Mode:          mode,
		Cost:          cost,
		TrafficFactor: traffic,
	}
	done := []model.Connection{c}
	if both {
		rev := c
		rev.FromID, rev.ToID = c.ToID, c.FromID
		done = append(done, rev)
	}
	for _, e := range done {
		if err := s.Connect(cmd.Context(), store.ConnectParams{Connection: e, Remove: rm}); err != nil {
			exitErr("connect", err)
		}
	}
	printJSON(map[string]interface{}{"ok": true, "removed": rm, "connections": done})
}
