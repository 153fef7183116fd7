package main

import (
	"context"
	"fmt"
	"time"

	"github.com/franz/print-shelf/internal/reconcile"
	"github.com/franz/print-shelf/internal/util"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [root...]",
	Short: "Reconcile the watched roots with the catalog",
	Long: `Walk the watched roots and catalog every subdirectory as a project.

New directories become projects and their files are tracked. Existing
projects are left alone unless --refresh is given, in which case their
tracked files are synced with disk as well.

Roots default to the print paths in the settings (see 'pshelf roots').`,
	RunE: runScan,
}

var syncCmd = &cobra.Command{
	Use:   "sync <project-id>",
	Short: "Sync one project's tracked files with disk",
	Args:  cobra.ExactArgs(1),
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(syncCmd)

	scanCmd.Flags().Bool("refresh", false, "also sync files of already cataloged projects")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	roots := args
	if len(roots) == 0 {
		roots = sess.settings.PrintPaths
	}
	if len(roots) == 0 {
		return fmt.Errorf("%w: no print paths configured (use 'pshelf roots add <dir>')", util.ErrInvalidConfig)
	}

	refresh, _ := cmd.Flags().GetBool("refresh")

	util.InfoLog("=== Reconciling %d root(s) ===", len(roots))
	if path := sess.logger.Path(); path != "" {
		util.DebugLog("Event log: %s", path)
	}

	start := time.Now()
	result, err := sess.reconciler.ScanRoots(ctx, roots, reconcile.Options{Refresh: refresh})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	util.SuccessLog("Scan complete in %v", time.Since(start).Round(time.Millisecond))
	util.InfoLog("  Roots scanned: %d", result.RootsScanned)
	util.InfoLog("  Projects created: %d", result.ProjectsCreated)
	util.InfoLog("  Projects already cataloged: %d", result.ProjectsExisting)
	util.InfoLog("  Files added: %d", result.FilesAdded)
	util.InfoLog("  Files removed: %d", result.FilesRemoved)
	if len(result.Errors) > 0 {
		util.WarnLog("  Errors: %d", len(result.Errors))
		for _, e := range result.Errors {
			util.DebugLog("    %v", e)
		}
	}

	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
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

	diff, err := sess.reconciler.SyncProject(ctx, p)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if diff.Empty() {
		util.SuccessLog("%s is up to date", p.Name)
		return nil
	}
	util.SuccessLog("Synced %s: %d added, %d removed", p.Name, len(diff.Added), len(diff.Removed))
	for _, path := range diff.Added {
		util.DebugLog("  + %s", path)
	}
	for _, path := range diff.Removed {
		util.DebugLog("  - %s", path)
	}
	return nil
}
