package main

import (
	"context"
	"fmt"

	"github.com/franz/print-shelf/internal/app"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <project-id> [file-id]",
	Short: "Open a project directory or one of its files",
	Long: `Open a project's directory, or one of its tracked files, with the
operating system's default application.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
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

	a, err := sess.projectApp(ctx, id)
	if err != nil {
		return err
	}
	p := a.State().(*app.ProjectState).Project

	path := p.Path
	if len(args) == 2 {
		fileID, err := parseID(args[1])
		if err != nil {
			return err
		}
		path = ""
		for _, f := range p.Files {
			if f.ID == fileID {
				path = f.Path
			}
		}
		if path == "" {
			return fmt.Errorf("file %d: %w", fileID, app.ErrUnknownFile)
		}
	}

	return a.Dispatch(ctx, app.OpenPath{Path: path})
}
