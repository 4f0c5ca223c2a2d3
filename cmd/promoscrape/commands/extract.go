package commands

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/promoscrape/internal/collector"
	"github.com/jmylchreest/promoscrape/internal/extractor"
	"github.com/jmylchreest/promoscrape/internal/logger"
	"github.com/jmylchreest/promoscrape/internal/report"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Extract products from saved HTML pages",
	Long: `Run product extraction over HTML files captured earlier, without a
browser. Files are processed in order with the same selectors, limit and
deduplication as collect, which makes this the quickest way to check a
selector change.

Examples:
  promoscrape extract snapshot-1.html snapshot-2.html
  promoscrape extract --limit 20 --format yaml page.html`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

var extractFlagKeys = map[string]string{
	"limit":  "limit",
	"output": "output.path",
	"format": "output.format",
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().Int("limit", collector.DefaultLimit, "maximum number of products to keep")
	extractCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	extractCmd.Flags().StringP("format", "f", "json", "report format: json, jsonl or yaml")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags(), extractFlagKeys)
	if err != nil {
		return err
	}
	ext, err := extractor.New(cfg.ExtractorConfig())
	if err != nil {
		return err
	}

	acc := extractor.NewAccumulator(cfg.Limit)
	for _, path := range args {
		if acc.Full() {
			logger.Info("product limit reached, ignoring remaining files", "limit", acc.Limit())
			break
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		stats, err := ext.Extract(string(data), acc)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		logger.Info("file processed",
			"path", path,
			"size", humanize.Bytes(uint64(len(data))),
			"cards", stats.Cards,
			"accepted", stats.Accepted,
			"duplicates", stats.Duplicates,
			"skipped", stats.Skipped,
			"dropped", stats.Dropped)
	}

	return writeReport(cmd.OutOrStdout(), cfg.Output, report.Build(acc.Count(), acc.Products(), acc.Limit()))
}
