package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rcliao/itinerary/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a dataset from JSON",
		Long:  "Import destinations, attractions, connections and profiles from JSON (file or stdin). Expects the format produced by export. Rows keep their ids.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open dataset", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		exitErr("read dataset", err)
	}

	var ds store.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.ImportDataset(cmd.Context(), &ds)
	if err != nil {
		exitErr("import", err)
	}
	printJSON(map[string]interface{}{"ok": true, "imported": n})
}
