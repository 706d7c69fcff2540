package cli

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/listing-docs/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC extraction service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.GRPCAddr
		}
		proc, err := newProcessor(false)
		if err != nil {
			return err
		}
		svc := server.NewExtractionService(proc, cfg.Extract.MaxUploadMB, logger)
		gs, hs := server.NewGRPCServer(svc, cfg.Extract.MaxUploadMB, logger)
		return server.Serve(cmd.Context(), gs, hs, addr, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to GRPC_ADDR)")
}
