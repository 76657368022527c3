package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sanctions-cli/internal/api"
	"github.com/sells-group/sanctions-cli/internal/extract"
	"github.com/sells-group/sanctions-cli/internal/screen"
	"github.com/sells-group/sanctions-cli/pkg/anthropic"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the screening HTTP API",
	Long:  "Serves name screening, document screening, and entry lookups over HTTP. Document screening requires an Anthropic API key.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx, "serve")
		if err != nil {
			return err
		}
		defer st.Close()

		ex := buildExtractor()
		if ex == nil {
			zap.L().Warn("no anthropic key configured, document screening disabled")
		}

		svc, err := screen.NewService(ctx, st, ex)
		if err != nil {
			return eris.Wrap(err, "serve: index list")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.New(svc, cfg).Router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(cmd.Context())
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Int("entries", svc.Entries()),
			zap.Int("names", svc.Names()),
		)
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

// buildExtractor returns a Claude-backed extractor, or nil when no API key
// is configured.
func buildExtractor() extract.Extractor {
	if cfg.Anthropic.Key == "" {
		return nil
	}
	ex := extract.New(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model)
	ex.SetMaxTokens(cfg.Anthropic.MaxTokens)
	return ex
}
