package cli

import (
	"fmt"

	"github.com/rcliao/itinerary/internal/graph"
	"github.com/rcliao/itinerary/internal/model"
	"github.com/rcliao/itinerary/internal/search"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Find candidate attractions breadth-first from a start point",
		Run:   runExplore,
	}

	cmd.Flags().Int64("start", 0, "Start attraction id")
	cmd.Flags().Int64("profile", 0, "Derive filters from this profile")
	cmd.Flags().StringP("mode", "m", "", "Optimization mode: distance, time, cost, balanced, score")
	cmd.Flags().Float64("radius", 0, "Max distance in km (default from config)")
	cmd.Flags().Int("max-time", 0, "Max accumulated travel minutes (default from config)")
	cmd.Flags().Int("depth", 0, "Max BFS depth (default from config)")
	cmd.Flags().IntP("limit", "l", 0, "Max candidates (default from config)")
	cmd.Flags().String("transport", "", "Only follow connections of this transport mode")
	cmd.Flags().StringSlice("category", nil, "Only keep these categories")
	cmd.Flags().Float64("min-rating", 0, "Only keep attractions rated at least this")

	cmd.MarkFlagRequired("start")

	RootCmd.AddCommand(cmd)
}

func runExplore(cmd *cobra.Command, args []string) {
	start, _ := cmd.Flags().GetInt64("start")
	profileID, _ := cmd.Flags().GetInt64("profile")
	modeStr, _ := cmd.Flags().GetString("mode")
	radius, _ := cmd.Flags().GetFloat64("radius")
	maxTime, _ := cmd.Flags().GetInt("max-time")
	depth, _ := cmd.Flags().GetInt("depth")
	limit, _ := cmd.Flags().GetInt("limit")
	transport, _ := cmd.Flags().GetString("transport")
	categories, _ := cmd.Flags().GetStringSlice("category")
	minRating, _ := cmd.Flags().GetFloat64("min-rating")

	c := search.Constraints{
		MaxDistanceM:  cfg.Search.RadiusKm * 1000,
		MaxMinutes:    cfg.Search.MaxTimeMinutes,
		MaxDepth:      cfg.Search.MaxDepth,
		MaxCandidates: cfg.Search.MaxCandidates,
		TransportMode: transport,
	}
	if radius > 0 {
		c.MaxDistanceM = radius * 1000
	}
	if maxTime > 0 {
		c.MaxMinutes = maxTime
	}
	if depth > 0 {
		c.MaxDepth = depth
	}
	if limit > 0 {
		c.MaxCandidates = limit
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if profileID != 0 {
		p, err := s.GetProfile(cmd.Context(), profileID)
		if err != nil {
			exitErr("get profile", err)
		}
		c.Filters = search.ProfileFilters(p)
	}
	if len(categories) > 0 {
		c.Filters.Categories = categories
	}
	if minRating > 0 {
		c.Filters.MinRating = model.Float(minRating)
	}

	key := search.SortBalanced
	if modeStr != "" {
		mode, err := model.ParseMode(modeStr)
		if err != nil {
			exitErr("mode", err)
		}
		c, key = search.AdjustForMode(mode, c)
	}

	g, err := graph.LoadForAttraction(cmd.Context(), s, start)
	if err != nil {
		exitErr("load graph", err)
	}
	res, err := search.Explore(g, start, c)
	if err != nil {
		exitErr("explore", err)
	}
	if modeStr != "" {
		search.Sort(res.Candidates, key)
	}

	if textOutput() {
		fmt.Printf("%d candidates, %d nodes explored, %d levels\n", len(res.Candidates), res.Explored, res.Levels)
		for _, cand := range res.Candidates {
			fmt.Printf("  %4d  %-36s depth=%d  %.0fm  %dmin  path=%v\n",
				cand.Attraction.ID, cand.Attraction.Name, cand.Depth, cand.DistanceM, cand.Minutes,
				search.PathTo(cand.Attraction.ID, res.Candidates))
		}
		return
	}
	printJSON(res)
}
