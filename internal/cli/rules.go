package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the rule base",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every rule with its priority and category",
		Run:   runRulesList,
	}

	cmd.AddCommand(list)
	RootCmd.AddCommand(cmd)
}

func runRulesList(cmd *cobra.Command, args []string) {
	rs := newProfiler().Engine().Rules()
	if textOutput() {
		for _, r := range rs {
			fmt.Printf("%-14s %-9s %-11s %s\n", r.ID, r.Priority, r.Category, r.Description)
		}
		return
	}
	out := make([]map[string]interface{}, 0, len(rs))
	for _, r := range rs {
		out = append(out, map[string]interface{}{
			"rule_id":     r.ID,
			"name":        r.Name,
			"description": r.Description,
			"priority":    r.Priority.String(),
			"category":    r.Category,
		})
	}
	printJSON(out)
}
