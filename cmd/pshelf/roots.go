package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/franz/print-shelf/internal/app"
	"github.com/franz/print-shelf/internal/settings"
	"github.com/franz/print-shelf/internal/util"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var rootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "Manage the watched print paths",
}

var rootsAddCmd = &cobra.Command{
	Use:   "add <dir>...",
	Short: "Add watched roots",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRootsAdd,
}

var rootsRmCmd = &cobra.Command{
	Use:   "rm <dir>...",
	Short: "Stop watching roots (cataloged projects are kept)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRootsRm,
}

var rootsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched roots",
	Args:  cobra.NoArgs,
	RunE:  runRootsList,
}

var themeCmd = &cobra.Command{
	Use:   "theme [name]",
	Short: "Show or set the color theme",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTheme,
}

func init() {
	rootCmd.AddCommand(rootsCmd, themeCmd)
	rootsCmd.AddCommand(rootsAddCmd, rootsRmCmd, rootsListCmd)
}

// editSettings applies intents to a settings draft and saves it
func editSettings(ctx context.Context, intents ...app.Intent) (*settings.Settings, error) {
	sess, err := openSession()
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	a, err := sess.app(ctx)
	if err != nil {
		return nil, err
	}

	intents = append([]app.Intent{app.ToSettings{}}, intents...)
	intents = append(intents, app.SettingsSave{})
	for _, intent := range intents {
		if err := a.Dispatch(ctx, intent); err != nil {
			return nil, err
		}
	}
	return a.Settings(), nil
}

func runRootsAdd(cmd *cobra.Command, args []string) error {
	var intents []app.Intent
	for _, arg := range args {
		dir, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		intents = append(intents, app.AddRoot{Path: dir})
	}

	s, err := editSettings(context.Background(), intents...)
	if err != nil {
		return err
	}
	util.SuccessLog("Watching %d root(s). Run 'pshelf scan' to catalog them.", len(s.PrintPaths))
	return nil
}

func runRootsRm(cmd *cobra.Command, args []string) error {
	var intents []app.Intent
	for _, arg := range args {
		dir, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		intents = append(intents, app.RemoveRoot{Path: dir})
	}

	s, err := editSettings(context.Background(), intents...)
	if err != nil {
		return err
	}
	util.SuccessLog("Watching %d root(s)", len(s.PrintPaths))
	return nil
}

func runRootsList(cmd *cobra.Command, args []string) error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	s, err := settings.Load(afero.NewOsFs(), dir)
	if err != nil {
		return err
	}

	if !s.HasPrintPaths() {
		util.InfoLog("No print paths configured")
		return nil
	}
	for _, path := range s.PrintPaths {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

func runTheme(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		s, err := editSettings(context.Background(), app.SetTheme{Name: args[0]})
		if err != nil {
			return fmt.Errorf("%w (available: %v)", err, settings.Themes)
		}
		util.SuccessLog("Theme set to %s", s.Theme)
		return nil
	}

	dir, err := configDir()
	if err != nil {
		return err
	}
	s, err := settings.Load(afero.NewOsFs(), dir)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	active := s.ActiveTheme()
	for _, name := range settings.Themes {
		marker := " "
		if name == active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, name)
	}
	return nil
}
