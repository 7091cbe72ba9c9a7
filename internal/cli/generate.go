package cli

import (
	"fmt"
	"time"

	"github.com/rcliao/itinerary/internal/model"
	"github.com/rcliao/itinerary/internal/planner"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and store a multi-day itinerary",
		Run:   runGenerate,
	}

	cmd.Flags().Int64("profile", 0, "Traveler profile id")
	cmd.Flags().Int64("center", 0, "City center attraction id")
	cmd.Flags().Int("days", 1, "Number of days (1-30)")
	cmd.Flags().String("start", "", "First day, YYYY-MM-DD (default: today)")
	cmd.Flags().Int64("hotel", 0, "Hotel attraction id; days start and end there")
	cmd.Flags().StringP("mode", "m", "balanced", "Optimization mode: distance, time, cost, balanced, score")
	cmd.Flags().Float64("radius", 0, "Max radius in km (default: search.radius_km)")
	cmd.Flags().Int("max-candidates", 0, "Max candidates considered (default: search.max_candidates)")
	cmd.Flags().Bool("dry-run", false, "Plan without storing the itinerary")

	cmd.MarkFlagRequired("profile")
	cmd.MarkFlagRequired("center")

	RootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	profileID, _ := cmd.Flags().GetInt64("profile")
	center, _ := cmd.Flags().GetInt64("center")
	days, _ := cmd.Flags().GetInt("days")
	startStr, _ := cmd.Flags().GetString("start")
	hotel, _ := cmd.Flags().GetInt64("hotel")
	modeStr, _ := cmd.Flags().GetString("mode")
	radius, _ := cmd.Flags().GetFloat64("radius")
	maxCand, _ := cmd.Flags().GetInt("max-candidates")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	mode, err := model.ParseMode(modeStr)
	if err != nil {
		exitErr("mode", err)
	}
	start := time.Now()
	if startStr != "" {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			exitErr("start date", err)
		}
	}
	if radius == 0 {
		radius = cfg.Search.RadiusKm
	}
	if maxCand == 0 {
		maxCand = cfg.Search.MaxCandidates
	}

	req := planner.Request{
		ProfileID:     profileID,
		CenterID:      center,
		NumDays:       days,
		StartDate:     start,
		Mode:          mode,
		MaxRadiusKm:   radius,
		MaxCandidates: maxCand,
	}
	if hotel != 0 {
		req.HotelID = &hotel
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var plan *model.ItineraryPlan
	if dryRun {
		plan, err = newOrchestrator(s).Build(cmd.Context(), req)
	} else {
		plan, err = planner.NewPool(newOrchestrator(s), cfg.Planner.Workers, cfg.Planner.Timeout).Generate(cmd.Context(), req)
	}
	if err != nil {
		exitErr("generate", err)
	}

	if textOutput() {
		printPlan(plan)
		return
	}
	printJSON(map[string]interface{}{"itinerary": plan, "summary": plan.Summary()})
}

func printPlan(plan *model.ItineraryPlan) {
	if plan.ID != "" {
		fmt.Printf("[%s] ", plan.ID)
	}
	fmt.Printf("%s (%s to %s)\n", plan.Name, plan.StartDate.Format("2006-01-02"), plan.EndDate.Format("2006-01-02"))
	for _, d := range plan.Days {
		tag := ""
		if !d.Optimized {
			tag = " (not optimized)"
		}
		fmt.Printf("\nDay %d, %s%s\n", d.DayNumber, d.Date.Format("Mon 2006-01-02"), tag)
		for _, st := range d.Stops {
			fmt.Printf("  %2d. %s (%d min)\n", st.Order, st.Name, st.VisitMinutes)
		}
		fmt.Printf("  %.2f km, %d min travel, $%.2f\n", d.TotalDistanceM/1000, d.TotalMinutes, d.TotalCost)
		for _, w := range d.Warnings {
			fmt.Printf("  warning: %s\n", w.Message)
		}
		for _, v := range d.ValidationErrors {
			fmt.Printf("  %s: %s\n", v.Severity, v.Message)
		}
	}
	sum := plan.Summary()
	fmt.Printf("\n%d attractions, %.2f km, %.1f h, $%.2f", sum.TotalAttractions, sum.TotalDistanceKm, sum.TotalTimeHours, sum.TotalCost)
	if sum.UnoptimizedDays > 0 {
		fmt.Printf(", %d day(s) not optimized", sum.UnoptimizedDays)
	}
	fmt.Println()
}
