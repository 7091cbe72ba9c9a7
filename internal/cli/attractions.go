package cli

import (
	"fmt"
	"strconv"

	"github.com/rcliao/itinerary/internal/model"
	"github.com/rcliao/itinerary/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "attractions",
		Short: "Browse the attraction catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List attractions",
		Run:   runAttractionsList,
	}
	list.Flags().Int64("destination", 0, "Filter by destination id")
	list.Flags().String("category", "", "Filter by category")
	list.Flags().IntP("limit", "l", 100, "Max results")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one attraction and its outgoing connections",
		Args:  cobra.ExactArgs(1),
		Run:   runAttractionsGet,
	}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search attractions by name, description or address",
		Args:  cobra.ExactArgs(1),
		Run:   runAttractionsSearch,
	}
	search.Flags().Int64("destination", 0, "Filter by destination id")
	search.Flags().IntP("limit", "l", 20, "Max results")

	cmd.AddCommand(list, get, search)
	RootCmd.AddCommand(cmd)
}

func printAttractions(as []model.Attraction) {
	if !textOutput() {
		printJSON(as)
		return
	}
	for _, a := range as {
		rating := "-"
		if a.Rating != nil {
			rating = strconv.FormatFloat(*a.Rating, 'f', 1, 64)
		}
		fmt.Printf("%4d  %-36s %-16s %-6s %s\n", a.ID, a.Name, a.Category, a.PriceRange, rating)
	}
}

func runAttractionsList(cmd *cobra.Command, args []string) {
	dest, _ := cmd.Flags().GetInt64("destination")
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	as, err := s.ListAttractions(cmd.Context(), store.ListParams{
		DestinationID: dest,
		Category:      category,
		Limit:         limit,
	})
	if err != nil {
		exitErr("list", err)
	}
	printAttractions(as)
}

func runAttractionsGet(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		exitErr("parse id", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	a, err := s.GetAttraction(cmd.Context(), id)
	if err != nil {
		exitErr("get", err)
	}
	conns, err := s.Connections(cmd.Context(), id)
	if err != nil {
		exitErr("connections", err)
	}
	printJSON(map[string]interface{}{"attraction": a, "connections": conns})
}

func runAttractionsSearch(cmd *cobra.Command, args []string) {
	dest, _ := cmd.Flags().GetInt64("destination")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	as, err := s.SearchAttractions(cmd.Context(), store.SearchParams{
		DestinationID: dest,
		Query:         args[0],
		Limit:         limit,
	})
	if err != nil {
		exitErr("search", err)
	}
	printAttractions(as)
}
