package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog as JSON",
		Run:   runExport,
	}

	cmd.Flags().Int64("destination", 0, "Only export this destination")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	dest, _ := cmd.Flags().GetInt64("destination")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ds, err := s.ExportDataset(cmd.Context(), dest)
	if err != nil {
		exitErr("export", err)
	}
	printJSON(ds)
}
