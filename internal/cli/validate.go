package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rcliao/itinerary/internal/rules"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check an itinerary day against a profile with the validation rules",
		Long:  `Reads {"segments": [...], "attractions_count": n, "total_cost": x} from a file or stdin.`,
		Args:  cobra.MaximumNArgs(1),
		Run:   runValidate,
	}

	cmd.Flags().Int64("profile", 0, "Profile id")
	cmd.Flags().Bool("trace", false, "Include the execution trace")
	cmd.MarkFlagRequired("profile")

	RootCmd.AddCommand(cmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	profileID, _ := cmd.Flags().GetInt64("profile")
	trace, _ := cmd.Flags().GetBool("trace")

	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open itinerary", err)
		}
		defer f.Close()
		r = f
	}
	var facts rules.ItineraryFacts
	if err := json.NewDecoder(r).Decode(&facts); err != nil {
		exitErr("parse itinerary", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p, err := s.GetProfile(cmd.Context(), profileID)
	if err != nil {
		exitErr("get profile", err)
	}
	res := newProfiler().Validate(facts, *p, trace)
	printJSON(map[string]interface{}{"is_valid": res.Valid(), "result": res})
	if !res.Valid() {
		os.Exit(2)
	}
}
