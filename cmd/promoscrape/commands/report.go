package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/jmylchreest/promoscrape/internal/config"
	"github.com/jmylchreest/promoscrape/internal/logger"
	"github.com/jmylchreest/promoscrape/internal/output"
	"github.com/jmylchreest/promoscrape/internal/report"
)

// writeReport emits r to cfg.Path, or to stdout when no path is set.
func writeReport(stdout io.Writer, cfg config.Output, r report.Report) error {
	if cfg.Path == "" {
		return encodeReport(stdout, cfg, r)
	}

	f, err := os.Create(cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := encodeReport(f, cfg, r); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	logger.Info("report written", "path", cfg.Path, "status", r.Status, "products", r.CollectedProducts)
	return nil
}

func encodeReport(dst io.Writer, cfg config.Output, r report.Report) error {
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	w, err := output.NewWriter(dst, format, output.WithIndent(cfg.Indent))
	if err != nil {
		return err
	}
	if err := w.Write(r); err != nil {
		return err
	}
	return w.Close()
}
