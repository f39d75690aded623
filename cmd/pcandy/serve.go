package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pushchain/candy-machine-client/candyClient/api"
	"github.com/pushchain/candy-machine-client/candyClient/ledger"
	"github.com/pushchain/candy-machine-client/candyClient/metrics"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(v *viper.Viper) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal, ledger health and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				a.cfg.QueryServerPort = port
			}

			database, j, err := a.openJournal()
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					a.log.Warn().Err(err).Msg("failed to close journal")
				}
			}()

			rpcLedger, err := ledger.New(&a.cfg, a.log)
			if err != nil {
				return err
			}
			defer rpcLedger.Close()

			metrics.New(a.registry)
			a.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			server := api.NewServer(a.log, a.cfg.QueryServerPort, j, rpcLedger, a.registry)
			if err := server.Start(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			a.log.Info().Msg("shutting down query server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Stop(shutdownCtx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default: query_server_port)")
	return cmd
}
