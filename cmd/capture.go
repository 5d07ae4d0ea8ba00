package main

import (
	"os"
	"time"

	gosf "github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/capture"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/qualify"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/resilience"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/pkg/leadsource"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/pkg/salesforce"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/pkg/sheets"
)

var (
	captureCNAE string
	captureDays int
	captureUF   string
	captureMax  int
	captureSink string
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Run one lead capture cycle: query, qualify, deliver to the sink",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("capture"); err != nil {
			return err
		}

		qualifier, err := buildQualifier()
		if err != nil {
			return err
		}
		sink, err := buildSink()
		if err != nil {
			return err
		}
		job := buildCaptureJob(qualifier, sink)

		report, err := job.Run(cmd.Context())
		if err != nil {
			return err
		}

		zap.L().Info("capture finished",
			zap.Int("fetched", report.Fetched),
			zap.Int("qualified", report.Qualified),
			zap.Int("appended", report.Appended),
			zap.Int("batches", report.Batches))
		return nil
	},
}

// buildCaptureJob assembles the capture pipeline from config and flags.
// Flags override the configured query parameters.
func buildCaptureJob(qualifier *qualify.Qualifier, sink sheets.Sink) *capture.Job {
	source := leadsource.NewClient(cfg.LeadSource.BaseURL, cfg.LeadSource.APIKey,
		leadsource.WithRateLimit(cfg.LeadSource.RequestsPerSecond))

	queryCfg := model.CaptureConfig{
		CNAE:       cfg.Capture.CNAE,
		WindowDays: cfg.Capture.WindowDays,
		UFFilter:   cfg.Capture.UF,
		Limit:      cfg.Capture.Limit,
	}
	if captureCNAE != "" {
		queryCfg.CNAE = captureCNAE
	}
	if captureDays > 0 {
		queryCfg.WindowDays = captureDays
	}
	if captureUF != "" {
		queryCfg.UFFilter = captureUF
	}
	if captureMax > 0 {
		queryCfg.Limit = captureMax
	}

	job := capture.NewJob(source, qualifier, sink, resilience.NewExecutor(resilience.AnalyticsConfig()), queryCfg)
	job.BatchSize = cfg.Capture.BatchSize
	job.BatchDelay = time.Duration(cfg.Capture.BatchDelaySecs) * time.Second
	return job
}

// buildQualifier picks the gate criteria from a file or a named preset.
func buildQualifier() (*qualify.Qualifier, error) {
	if cfg.Qualify.CriteriaFile != "" {
		criteria, err := qualify.LoadCriteria(cfg.Qualify.CriteriaFile)
		if err != nil {
			return nil, err
		}
		return qualify.New(criteria), nil
	}
	switch cfg.Qualify.Preset {
	case "", "standard":
		return qualify.New(qualify.StandardCriteria()), nil
	case "premium":
		return qualify.New(qualify.PremiumCriteria()), nil
	default:
		return nil, eris.Errorf("unknown qualify preset %q", cfg.Qualify.Preset)
	}
}

// buildSink selects the delivery target: a local workbook, the sheet
// webhook, or Salesforce.
func buildSink() (sheets.Sink, error) {
	switch captureSink {
	case "xlsx":
		return sheets.NewXLSXSink(cfg.Sheets.OutputPath), nil
	case "webhook":
		if cfg.Sheets.WebhookURL == "" {
			return nil, eris.New("sheets.webhook_url is required for the webhook sink")
		}
		return sheets.NewHTTPSink(cfg.Sheets.WebhookURL), nil
	case "salesforce":
		client, err := initSalesforce()
		if err != nil {
			return nil, err
		}
		return salesforce.NewCRMSink(client), nil
	default:
		return nil, eris.Errorf("unknown sink %q (want xlsx, webhook, or salesforce)", captureSink)
	}
}

// initSalesforce authenticates with a JWT key pair and wraps the client
// with a rate limit.
func initSalesforce() (salesforce.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (ASSISTPRO_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := gosf.Init(gosf.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return salesforce.NewClient(sf, salesforce.WithRateLimit(5)), nil
}

func init() {
	captureCmd.Flags().StringVar(&captureCNAE, "cnae", "", "CNAE code to query (default from config)")
	captureCmd.Flags().IntVar(&captureDays, "days", 0, "capture window in days (default from config)")
	captureCmd.Flags().StringVar(&captureUF, "uf", "", "restrict to one state")
	captureCmd.Flags().IntVar(&captureMax, "limit", 0, "maximum leads to fetch (default from config)")
	captureCmd.Flags().StringVar(&captureSink, "sink", "xlsx", "delivery target: xlsx, webhook, or salesforce")
	rootCmd.AddCommand(captureCmd)
}
