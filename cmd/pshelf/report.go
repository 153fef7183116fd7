package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/print-shelf/internal/report"
	"github.com/franz/print-shelf/internal/util"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a summary report from the catalog and event logs",
	Long: `Generate a catalog summary in Markdown format.

The report includes:
- Project, file and tag counts
- Files by kind and their size on disk
- Projects missing models, images or a default file
- Top errors from the event logs

The report is saved to <config-dir>/reports/<timestamp>/summary.md`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("out", "", "output directory for the report (default: <config-dir>/reports/<timestamp>)")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	util.InfoLog("=== Generating Summary Report ===")
	util.InfoLog("Database: %s", sess.dbPath)

	summary, err := report.GenerateSummaryReport(ctx, sess.db, sess.fs, filepath.Join(sess.dir, "events"))
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	summary.DatabasePath = sess.dbPath

	outputDir, _ := cmd.Flags().GetString("out")
	if outputDir == "" {
		outputDir = filepath.Join(sess.dir, "reports", time.Now().Format("20060102-150405"))
	}
	outputPath := filepath.Join(outputDir, "summary.md")

	util.InfoLog("Writing report to: %s", outputPath)
	if err := report.WriteMarkdownReport(summary, outputPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	util.SuccessLog("Report generated successfully!")
	util.InfoLog("  Projects: %s", humanize.Comma(int64(summary.Projects)))
	util.InfoLog("  Files: %s (%s)", humanize.Comma(int64(summary.Files)), humanize.Bytes(summary.BytesOnDisk))
	if summary.MissingFiles > 0 {
		util.WarnLog("  Missing on disk: %d", summary.MissingFiles)
	}
	if len(summary.TopErrors) > 0 {
		util.WarnLog("  Distinct errors: %d", len(summary.TopErrors))
	}
	return nil
}
