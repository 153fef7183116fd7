package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/franz/print-shelf/internal/thumb"
	"github.com/franz/print-shelf/internal/util"
	"github.com/spf13/cobra"
)

var thumbsCmd = &cobra.Command{
	Use:   "thumbs [project-id]",
	Short: "Render missing model thumbnails",
	Long: `Render thumbnails for model files (.stl, .3mf) that have none cached yet.
Thumbnails are stored next to the model under .printshelf/.

Without a project ID every cataloged project is processed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runThumbs,
}

var tileCmd = &cobra.Command{
	Use:   "tile <project-id>",
	Short: "Generate a project's square preview tile",
	Args:  cobra.ExactArgs(1),
	RunE:  runTile,
}

func init() {
	rootCmd.AddCommand(thumbsCmd, tileCmd)

	thumbsCmd.Flags().IntP("workers", "j", runtime.NumCPU(), "number of concurrent renders")
	tileCmd.Flags().Int("size", thumb.DefaultTileSize, "tile edge length in pixels")
}

func runThumbs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	if !sess.resolver.Available() {
		return fmt.Errorf("%w: install %s or pass --thumbnailer", thumb.ErrNoRenderer, GetConfigString("thumbnailer", thumb.DefaultTool))
	}

	var paths []string
	if len(args) == 1 {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		p, err := sess.db.GetProject(ctx, id)
		if err != nil {
			return fmt.Errorf("project %d: %w", id, err)
		}
		for _, f := range p.Files {
			paths = append(paths, f.Path)
		}
	} else {
		files, err := sess.db.ListAllFiles(ctx)
		if err != nil {
			return err
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}

	workers, _ := cmd.Flags().GetInt("workers")
	util.InfoLog("=== Rendering thumbnails (%d workers) ===", workers)

	start := time.Now()
	rendered, failed := 0, 0
	for job := range sess.resolver.Prefetch(ctx, paths, workers) {
		if job.Err != nil {
			failed++
			var renderErr *thumb.RenderError
			if errors.As(job.Err, &renderErr) {
				util.WarnLog("  %s: exit %d", job.Model, renderErr.ExitCode)
			} else {
				util.WarnLog("  %s: %v", job.Model, job.Err)
			}
			continue
		}
		rendered++
		util.DebugLog("  %s -> %s", job.Model, job.Image)
	}

	util.SuccessLog("Thumbnails ready in %v", time.Since(start).Round(time.Millisecond))
	util.InfoLog("  Models: %d", rendered+failed)
	if failed > 0 {
		util.WarnLog("  Failed: %d", failed)
	}
	return nil
}

func runTile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	p, err := sess.db.GetProject(ctx, id)
	if err != nil {
		return fmt.Errorf("project %d: %w", id, err)
	}

	size, _ := cmd.Flags().GetInt("size")
	path, err := sess.resolver.Tile(ctx, p, size)
	if err != nil {
		return fmt.Errorf("failed to generate tile: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
