package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/franz/print-shelf/internal/app"
	"github.com/franz/print-shelf/internal/store"
	"github.com/franz/print-shelf/internal/util"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Add or edit projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <dir>",
	Short: "Catalog a directory as a project",
	Long: `Catalog a single directory as a project, whether or not it lives
under a watched root. Its files are tracked immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectAdd,
}

var projectEditCmd = &cobra.Command{
	Use:   "edit <project-id>",
	Short: "Rename a project, change its notes or move it to another directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectEdit,
}

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Edit tracked files",
}

var fileDefaultCmd = &cobra.Command{
	Use:   "default <file-id>",
	Short: "Make a file its project's default (representative) file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileDefault,
}

var fileNotesCmd = &cobra.Command{
	Use:   "notes <file-id> [text...]",
	Short: "Set a file's notes (reads stdin when no text is given)",
	Long: `Set a file's notes. For text files (.txt, .md, ...) the notes are the
file's content and are written to disk; other files keep their notes in the
catalog.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFileNotes,
}

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage project tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <project-id> <tag>",
	Short: "Tag a project (the tag is created if needed)",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagAdd,
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <project-id> <tag>",
	Short: "Remove a tag from a project (the tag itself is kept)",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagRm,
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags with their usage",
	Args:  cobra.NoArgs,
	RunE:  runTagList,
}

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage project sources",
}

var sourceAddCmd = &cobra.Command{
	Use:   "add <project-id> <name> <url>",
	Short: "Attach a named source URL to a project",
	Args:  cobra.ExactArgs(3),
	RunE:  runSourceAdd,
}

func init() {
	rootCmd.AddCommand(projectCmd, fileCmd, tagCmd, sourceCmd)
	projectCmd.AddCommand(projectAddCmd, projectEditCmd)
	fileCmd.AddCommand(fileDefaultCmd, fileNotesCmd)
	tagCmd.AddCommand(tagAddCmd, tagRmCmd, tagListCmd)
	sourceCmd.AddCommand(sourceAddCmd)

	projectAddCmd.Flags().String("name", "", "project name (default is the directory name)")
	projectAddCmd.Flags().String("notes", "", "project notes")
	projectEditCmd.Flags().String("name", "", "new project name")
	projectEditCmd.Flags().String("notes", "", "new project notes")
	projectEditCmd.Flags().String("path", "", "new project directory")
}

// withProject shows the project and dispatches intent to it
func withProject(ctx context.Context, sess *session, id int64, intent app.Intent) (*app.ProjectState, error) {
	a, err := sess.projectApp(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Dispatch(ctx, intent); err != nil {
		return nil, err
	}
	return a.State().(*app.ProjectState), nil
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	if ok, err := isDir(sess, dir); err != nil || !ok {
		return fmt.Errorf("not a directory: %s", dir)
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = filepath.Base(dir)
	}
	notes, _ := cmd.Flags().GetString("notes")

	p, err := sess.db.CreateProject(ctx, name, dir, notes)
	if errors.Is(err, store.ErrDuplicatePath) {
		return fmt.Errorf("%s is already cataloged", dir)
	}
	if err != nil {
		return err
	}
	sess.logger.LogProjectCreated(p.ID, p.Path)

	diff, err := sess.reconciler.SyncProject(ctx, p)
	if err != nil {
		return err
	}

	util.SuccessLog("Added project %s (#%d) with %d file(s)", p.Name, p.ID, len(diff.Added))
	return nil
}

func isDir(sess *session, path string) (bool, error) {
	info, err := sess.fs.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func runProjectEdit(cmd *cobra.Command, args []string) error {
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

	intent := app.UpdateProject{Name: p.Name, Notes: p.Notes}
	if cmd.Flags().Changed("name") {
		intent.Name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("notes") {
		intent.Notes, _ = cmd.Flags().GetString("notes")
	}
	if path, _ := cmd.Flags().GetString("path"); path != "" {
		if intent.Path, err = filepath.Abs(path); err != nil {
			return err
		}
	}

	if err := a.Dispatch(ctx, intent); err != nil {
		return err
	}
	util.SuccessLog("Updated project #%d", id)
	return nil
}

// dispatchToFile dispatches intent to the project the file belongs to
func dispatchToFile(ctx context.Context, fileID int64, intent app.Intent) (*app.ProjectState, error) {
	sess, err := openSession()
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	f, err := sess.db.GetProjectFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("file %d: %w", fileID, err)
	}
	return withProject(ctx, sess, f.ProjectID, intent)
}

func runFileDefault(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fileID, err := parseID(args[0])
	if err != nil {
		return err
	}
	st, err := dispatchToFile(ctx, fileID, app.SetDefaultFile{FileID: fileID})
	if err != nil {
		return err
	}
	util.SuccessLog("Default file of %s set", st.Project.Name)
	return nil
}

func runFileNotes(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fileID, err := parseID(args[0])
	if err != nil {
		return err
	}

	notes := strings.Join(args[1:], " ")
	if len(args) == 1 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read notes: %w", err)
		}
		notes = string(data)
	}

	if _, err := dispatchToFile(ctx, fileID, app.SaveFileNotes{FileID: fileID, Notes: notes}); err != nil {
		return err
	}
	util.SuccessLog("Notes saved")
	return nil
}

func runTagAdd(cmd *cobra.Command, args []string) error {
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

	st, err := withProject(ctx, sess, id, app.AddTag{Text: args[1]})
	if err != nil {
		return err
	}
	util.SuccessLog("%s tagged: %s", st.Project.Name, strings.Join(tagTexts(st.Project.Tags), ", "))
	return nil
}

func runTagRm(cmd *cobra.Command, args []string) error {
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

	tag := findTag(p, args[1])
	if tag == nil {
		return fmt.Errorf("%s is not tagged %q", p.Name, args[1])
	}

	if err := a.Dispatch(ctx, app.RemoveTag{TagID: tag.ID}); err != nil {
		return err
	}
	util.SuccessLog("Removed tag %q from %s", tag.Text, p.Name)
	return nil
}

// findTag matches a project's tag by text or by ID
func findTag(p *store.Project, arg string) *store.Tag {
	for _, t := range p.Tags {
		if t.Text == arg || fmt.Sprint(t.ID) == arg {
			return t
		}
	}
	return nil
}

func runTagList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	usage, err := sess.db.TagUsage(ctx)
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		util.InfoLog("No tags yet")
		return nil
	}

	w := cmd.OutOrStdout()
	for _, tc := range usage {
		fmt.Fprintf(w, "%5d  %-24s %d project(s)\n", tc.Tag.ID, tc.Tag.Text, tc.Projects)
	}
	return nil
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
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

	st, err := withProject(ctx, sess, id, app.AddSource{Name: args[1], URL: args[2]})
	if err != nil {
		return err
	}
	util.SuccessLog("%s now has %d source(s)", st.Project.Name, len(st.Project.Sources))
	return nil
}
