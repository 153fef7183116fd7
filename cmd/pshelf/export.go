package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/franz/print-shelf/internal/report"
	"github.com/franz/print-shelf/internal/util"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog as YAML or JSON",
	Long: `Export every project with its tags, sources and tracked files.
The catalog is written to stdout unless --out is given.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("format", "f", report.FormatYAML, "output format (yaml or json)")
	exportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	format, _ := cmd.Flags().GetString("format")
	if format != report.FormatYAML && format != report.FormatJSON {
		return fmt.Errorf("unknown format %q (use yaml or json)", format)
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	catalog, err := report.BuildCatalog(ctx, sess.db)
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	out, _ := cmd.Flags().GetString("out")
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	if err := report.WriteCatalog(w, catalog, format); err != nil {
		return err
	}
	if out != "" {
		util.SuccessLog("Exported %d project(s) to %s", len(catalog.Projects), out)
	}
	return nil
}
