package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/franz/print-shelf/internal/reconcile"
	"github.com/franz/print-shelf/internal/util"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the catalog in sync with the watched roots",
	Long: `Reconcile the watched roots once, then watch them for changes and
re-sync affected projects as files come and go. New project directories are
cataloged as they appear. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("debounce", reconcile.DefaultDebounce, "quiet period before a changed project is re-synced")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	roots := sess.settings.PrintPaths
	if len(roots) == 0 {
		return fmt.Errorf("%w: no print paths configured (use 'pshelf roots add <dir>')", util.ErrInvalidConfig)
	}

	result, err := sess.reconciler.ScanRoots(ctx, roots, reconcile.Options{Refresh: true})
	if err != nil {
		return fmt.Errorf("initial scan failed: %w", err)
	}
	util.InfoLog("Initial scan: %d project(s) created, %d file(s) added, %d removed",
		result.ProjectsCreated, result.FilesAdded, result.FilesRemoved)

	debounce, _ := cmd.Flags().GetDuration("debounce")
	watcher, err := reconcile.NewWatcher(sess.reconciler, roots, debounce)
	if err != nil {
		return fmt.Errorf("failed to watch roots: %w", err)
	}
	defer watcher.Close()

	util.InfoLog("Watching %d root(s), press Ctrl-C to stop", len(roots))
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	util.InfoLog("Stopped watching")
	return nil
}
