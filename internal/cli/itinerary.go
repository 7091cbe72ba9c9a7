package cli

import (
	"fmt"

	"github.com/rcliao/itinerary/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "itinerary",
		Short: "Inspect stored itineraries",
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a stored itinerary with its days",
		Args:  cobra.ExactArgs(1),
		Run:   runItineraryGet,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored itineraries, newest first",
		Run:   runItineraryList,
	}
	list.Flags().Int64("profile", 0, "Only itineraries of this profile")
	list.Flags().IntP("limit", "l", 20, "Max results")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a stored itinerary",
		Args:  cobra.ExactArgs(1),
		Run:   runItineraryRm,
	}

	cmd.AddCommand(get, list, rm)
	RootCmd.AddCommand(cmd)
}

func runItineraryGet(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	plan, err := s.GetItinerary(cmd.Context(), args[0])
	if err != nil {
		exitErr("get itinerary", err)
	}
	if textOutput() {
		printPlan(plan)
		return
	}
	printJSON(plan)
}

func runItineraryList(cmd *cobra.Command, args []string) {
	profileID, _ := cmd.Flags().GetInt64("profile")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	plans, err := s.ListItineraries(cmd.Context(), store.ItineraryListParams{ProfileID: profileID, Limit: limit})
	if err != nil {
		exitErr("list itineraries", err)
	}
	if textOutput() {
		for _, p := range plans {
			fmt.Printf("%s  %s  profile=%d  %s  %d attractions\n",
				p.ID, p.CreatedAt.Format("2006-01-02 15:04"), p.ProfileID, p.Name, p.TotalAttractions)
		}
		return
	}
	printJSON(plans)
}

func runItineraryRm(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.RmItinerary(cmd.Context(), args[0]); err != nil {
		exitErr("rm itinerary", err)
	}
	printJSON(map[string]string{"deleted": args[0]})
}
