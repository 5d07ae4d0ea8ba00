package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/kpi"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/payment"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/schedule"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/pkg/leadsource"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/pkg/sheets"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		qualifier, err := buildQualifier()
		if err != nil {
			return err
		}

		api := &apiServer{
			store:     st,
			kpi:       kpi.NewService(st),
			payments:  payment.NewProvider(),
			schedule:  schedule.NewResolver(st),
			sink:      serveSink(),
			qualifier: qualifier,
		}

		// Lead endpoints stay dark without a configured source.
		if cfg.LeadSource.BaseURL != "" {
			api.source = leadsource.NewClient(cfg.LeadSource.BaseURL, cfg.LeadSource.APIKey,
				leadsource.WithRateLimit(cfg.LeadSource.RequestsPerSecond))
			api.captureJob = buildCaptureJob(qualifier, api.sink)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(api, cfg.Server.AllowedOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// serveSink is where triggered captures land and lead lookups read from.
func serveSink() sheets.Sink {
	if cfg.Sheets.WebhookURL != "" {
		return sheets.NewHTTPSink(cfg.Sheets.WebhookURL)
	}
	return sheets.NewXLSXSink(cfg.Sheets.OutputPath)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
