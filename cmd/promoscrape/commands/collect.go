package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/promoscrape/internal/browser"
	"github.com/jmylchreest/promoscrape/internal/collector"
	"github.com/jmylchreest/promoscrape/internal/extractor"
	"github.com/jmylchreest/promoscrape/internal/logger"
	"github.com/jmylchreest/promoscrape/internal/metrics"
	"github.com/jmylchreest/promoscrape/internal/report"
	"github.com/jmylchreest/promoscrape/internal/version"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect discounted products from the configured listing pages",
	Long: `Visit each listing URL in order, capture the rendered markup and extract
discounted products until the limit is reached or the URLs run out.

The report is printed to stdout. A page that times out is skipped; a
browser that cannot start or navigate aborts the run with a non-zero exit.

Examples:
  promoscrape collect
  promoscrape collect -u "https://www.youcom.com.br/promocao?o=descDate&pg=1" --limit 50
  promoscrape collect --mode static --format yaml
  promoscrape collect --metrics-file /var/lib/node_exporter/promoscrape.prom`,
	RunE: runCollect,
}

var collectFlagKeys = map[string]string{
	"url":          "urls",
	"mode":         "mode",
	"limit":        "limit",
	"output":       "output.path",
	"format":       "output.format",
	"metrics-file": "metrics_file",
	"chrome-path":  "browser.exec_path",
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringSliceP("url", "u", nil, "listing URL to visit (repeatable, default: youcom promotion pages 1-7)")
	collectCmd.Flags().String("mode", "scroll", "acquisition mode: scroll, wait or static")
	collectCmd.Flags().Int("limit", collector.DefaultLimit, "maximum number of products to collect")
	collectCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	collectCmd.Flags().StringP("format", "f", "json", "report format: json, jsonl or yaml")
	collectCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this textfile")
	collectCmd.Flags().String("chrome-path", "", "Chrome/Chromium binary (default: search PATH)")
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags(), collectFlagKeys)
	if err != nil {
		return err
	}
	logger.Info("promoscrape starting", "version", version.String(), "mode", cfg.Mode, "urls", len(cfg.URLs))

	ccfg, err := cfg.CollectorConfig()
	if err != nil {
		return err
	}
	ext, err := extractor.New(cfg.ExtractorConfig())
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bcfg := cfg.BrowserConfig()
	launch := func(ctx context.Context) (collector.Browser, error) {
		b, err := browser.Launch(ctx, bcfg)
		if err != nil {
			return nil, err
		}
		return b, nil
	}

	res, err := collector.New(ccfg, launch, ext, m).Run(ctx, cfg.URLs)
	if err != nil {
		logger.Error("collection aborted", "error", err)
		return err
	}
	logPages(res.Pages)

	if err := writeReport(cmd.OutOrStdout(), cfg.Output, report.Build(res.Total, res.Products, res.Limit)); err != nil {
		return err
	}

	if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func logPages(pages []collector.PageResult) {
	for _, p := range pages {
		switch {
		case p.Skipped:
			logger.Debug("page not visited", "url", p.URL)
		case p.Err != nil:
			logger.Warn("page failed", "url", p.URL, "error", p.Err)
		default:
			logger.Debug("page summary",
				"url", p.URL,
				"snapshots", p.Snapshots,
				"processed", p.Processed,
				"accepted", p.Accepted)
		}
	}
}
