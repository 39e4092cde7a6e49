package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalworks/vendormetrics/internal/dataset"
	"github.com/signalworks/vendormetrics/internal/metrics"
	"github.com/signalworks/vendormetrics/internal/nlquery"
	"github.com/signalworks/vendormetrics/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the metrics HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if dataPath != "" {
			cfg.Data.CSVPath = dataPath
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		store := dataset.NewStore()
		if _, err := os.Stat(cfg.Data.CSVPath); err == nil {
			if err := store.LoadFile(cfg.Data.CSVPath); err != nil {
				return err
			}
		} else {
			zap.L().Warn("starting without a dataset; load one via the upload endpoint",
				zap.String("path", cfg.Data.CSVPath))
		}

		engine := metrics.NewEngine(store)

		var interp *nlquery.Interpreter
		if cfg.Anthropic.Key != "" {
			var err error
			if interp, err = buildInterpreter(store, engine); err != nil {
				return err
			}
		} else {
			zap.L().Warn("anthropic.key not set; natural-language queries are disabled")
		}

		srv := server.New(cfg, store, engine, interp).HTTPServer()

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
