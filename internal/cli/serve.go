package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rcliao/itinerary/internal/planner"
	"github.com/rcliao/itinerary/internal/server"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning API over HTTP",
		Run:   runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default: server.addr)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := planner.NewPool(newOrchestrator(s), cfg.Planner.Workers, cfg.Planner.Timeout)
	if err := server.New(s, pool, cfg).Run(ctx, addr); err != nil {
		exitErr("serve", err)
	}
}
