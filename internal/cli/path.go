package cli

import (
	"context"
	"fmt"

	"github.com/rcliao/itinerary/internal/graph"
	"github.com/rcliao/itinerary/internal/model"
	"github.com/rcliao/itinerary/internal/route"
	"github.com/rcliao/itinerary/internal/scoring"
	"github.com/rcliao/itinerary/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Find the optimal route between two attractions with A*",
		Run:   runPath,
	}

	cmd.Flags().Int64("start", 0, "Start attraction id")
	cmd.Flags().Int64("end", 0, "End attraction id")
	cmd.Flags().StringP("mode", "m", "balanced", "Optimization mode: distance, time, cost, balanced, score")
	cmd.Flags().String("heuristic", "euclidean", "Heuristic: euclidean, manhattan, zero")
	cmd.Flags().Int64("profile", 0, "Weigh stops by this profile's suitability scores")

	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")

	RootCmd.AddCommand(cmd)
}

// optimizerFor loads the graph around start and, when profileID is set, the
// suitability scores of every attraction for that profile.
func optimizerFor(ctx context.Context, s *store.SQLiteStore, start, profileID int64) (*route.Optimizer, map[int64]float64) {
	g, err := graph.LoadForAttraction(ctx, s, start)
	if err != nil {
		exitErr("load graph", err)
	}
	opt := route.NewOptimizer(g, route.WithMaxIterations(cfg.Planner.MaxAStarIterations))
	if profileID == 0 {
		return opt, nil
	}
	p, err := s.GetProfile(ctx, profileID)
	if err != nil {
		exitErr("get profile", err)
	}
	cp := newProfiler().Enrich(*p, nil, false).Computed
	return opt, scoring.New(scoring.DefaultWeights).ScoreNodes(g, cp)
}

func printRoute(r model.OptimizedRoute) {
	if !textOutput() {
		printJSON(r)
		return
	}
	if !r.Found {
		fmt.Printf("no path (%d nodes explored)\n", r.NodesExplored)
		return
	}
	for i, st := range r.Attractions {
		fmt.Printf("%2d. %s\n", st.Order+1, st.Name)
		if i < len(r.Segments) {
			seg := r.Segments[i]
			fmt.Printf("      %s %.0fm %dmin $%.2f\n", seg.Mode, seg.DistanceM, seg.TravelMinutes, seg.Cost)
		}
	}
	fmt.Printf("total: %.2f km, %d min, $%.2f, score %.2f, %d nodes explored\n",
		r.TotalDistanceM/1000, r.TotalMinutes, r.TotalCost, r.OptimizationScore, r.NodesExplored)
}

func runPath(cmd *cobra.Command, args []string) {
	start, _ := cmd.Flags().GetInt64("start")
	end, _ := cmd.Flags().GetInt64("end")
	modeStr, _ := cmd.Flags().GetString("mode")
	hStr, _ := cmd.Flags().GetString("heuristic")
	profileID, _ := cmd.Flags().GetInt64("profile")

	mode, err := model.ParseMode(modeStr)
	if err != nil {
		exitErr("mode", err)
	}
	h, err := route.ParseHeuristic(hStr)
	if err != nil {
		exitErr("heuristic", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	opt, scores := optimizerFor(cmd.Context(), s, start, profileID)
	r, err := opt.FindPath(start, end, mode, h, scores)
	if err != nil {
		exitErr("path", err)
	}
	printRoute(r)
}
