package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/itinerary/internal/model"
	"github.com/rcliao/itinerary/internal/rules"
	"github.com/spf13/cobra"
)

// profileFile is the YAML (or JSON) form accepted by profile put.
type profileFile struct {
	ID          int64             `yaml:"id"`
	UserID      string            `yaml:"user_id"`
	Name        string            `yaml:"name"`
	Preferences model.Preferences `yaml:"preferences"`
	BudgetRange string            `yaml:"budget_range"`
	BudgetMin   *float64          `yaml:"budget_min"`
	BudgetMax   *float64          `yaml:"budget_max"`
	Mobility    model.Mobility    `yaml:"mobility"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage and analyse traveler profiles",
	}

	put := &cobra.Command{
		Use:   "put <file>",
		Short: "Create or replace a profile from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		Run:   runProfilePut,
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		Run:   runProfileGet,
	}

	enrich := &cobra.Command{
		Use:   "enrich <id>",
		Short: "Run the profile, temporal and weather rules and store the computed profile",
		Args:  cobra.ExactArgs(1),
		Run:   runProfileEnrich,
	}
	enrich.Flags().Bool("trace", false, "Include the execution trace")
	enrich.Flags().Bool("dry-run", false, "Do not store the computed profile")

	explain := &cobra.Command{
		Use:   "explain <id>",
		Short: "Show which rules apply to a profile",
		Args:  cobra.ExactArgs(1),
		Run:   runProfileExplain,
	}

	recommend := &cobra.Command{
		Use:   "recommend <id>",
		Short: "Show the recommendations derived from a profile",
		Args:  cobra.ExactArgs(1),
		Run:   runProfileRecommend,
	}

	for _, c := range []*cobra.Command{enrich, explain, recommend} {
		c.Flags().String("at", "", "Reference time (RFC3339); enables the temporal rules")
		c.Flags().String("weather", "", "Weather condition, e.g. rain or sunny; enables the weather rules")
		c.Flags().Float64("temperature", 0, "Temperature in Celsius")
	}

	cmd.AddCommand(put, get, enrich, explain, recommend)
	RootCmd.AddCommand(cmd)
}

// ruleContext builds the situational facts from the --at, --weather and
// --temperature flags.
func ruleContext(cmd *cobra.Command) *rules.Context {
	var rc rules.Context
	if at, _ := cmd.Flags().GetString("at"); at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			exitErr("parse --at", err)
		}
		rc.Time = &t
	}
	cond, _ := cmd.Flags().GetString("weather")
	if cond != "" || cmd.Flags().Changed("temperature") {
		rc.Weather = &rules.Weather{Condition: cond}
		if cmd.Flags().Changed("temperature") {
			temp, _ := cmd.Flags().GetFloat64("temperature")
			rc.Weather.Temperature = model.Float(temp)
		}
	}
	return &rc
}

func loadProfile(cmd *cobra.Command, arg string) *model.Profile {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		exitErr("parse id", err)
	}
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p, err := s.GetProfile(cmd.Context(), id)
	if err != nil {
		exitErr("get profile", err)
	}
	return p
}

func runProfilePut(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		exitErr("read profile", err)
	}
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		exitErr("parse profile", err)
	}
	if pf.Name == "" {
		exitErr("parse profile", fmt.Errorf("name is required"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p, err := s.PutProfile(cmd.Context(), model.Profile{
		ID:          pf.ID,
		UserID:      pf.UserID,
		Name:        pf.Name,
		Preferences: pf.Preferences,
		BudgetRange: pf.BudgetRange,
		BudgetMin:   pf.BudgetMin,
		BudgetMax:   pf.BudgetMax,
		Mobility:    pf.Mobility,
	})
	if err != nil {
		exitErr("put profile", err)
	}
	printJSON(p)
}

func runProfileGet(cmd *cobra.Command, args []string) {
	printJSON(loadProfile(cmd, args[0]))
}

func runProfileEnrich(cmd *cobra.Command, args []string) {
	trace, _ := cmd.Flags().GetBool("trace")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	p := loadProfile(cmd, args[0])
	res := newProfiler().Enrich(*p, ruleContext(cmd), trace)

	if !dryRun {
		s, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()
		if err := s.SaveComputedProfile(cmd.Context(), p.ID, res.Computed); err != nil {
			exitErr("save computed profile", err)
		}
	}
	printJSON(res)
}

func runProfileExplain(cmd *cobra.Command, args []string) {
	p := loadProfile(cmd, args[0])
	ex := newProfiler().Explain(*p, ruleContext(cmd))
	if textOutput() {
		for _, e := range ex {
			mark := " "
			if e.Fired {
				mark = "*"
			} else if e.Applicable {
				mark = "+"
			}
			fmt.Printf("%s %-14s %-9s %s\n", mark, e.RuleID, e.Priority, e.RuleName)
		}
		return
	}
	printJSON(ex)
}

func runProfileRecommend(cmd *cobra.Command, args []string) {
	p := loadProfile(cmd, args[0])
	printJSON(newProfiler().Recommend(*p, ruleContext(cmd)))
}
