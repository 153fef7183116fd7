package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/franz/print-shelf/internal/app"
	"github.com/franz/print-shelf/internal/util"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Browse and edit the catalog interactively",
	Long: `Start a line-driven session over the catalog. Type 'help' for the
commands available on the current screen.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

var errQuit = errors.New("quit")

const shellHelp = `Everywhere:
  ls                      redraw the current screen
  home | back             go to the project list
  settings                edit settings
  quit | exit             leave the shell
Project list:
  scan [refresh]          reconcile the watched roots
  filter [text]           filter by name (empty clears)
  tags [tag...]           filter by tags (empty clears)
  select <id>             show a project
Project:
  tag <text>              add a tag
  untag <tag-id>          remove a tag
  source <name> <url>     add a source
  default <file-id>       make a file the default
  filenote <file-id> ...  set a file's notes
  rename <name...>        rename the project
  notes <text...>         set the project notes
  open [file-id]          open the project dir or a file
Settings:
  theme <name>            pick a theme
  addroot <dir>           watch a root
  rmroot <dir>            stop watching a root
  save | cancel           apply or drop the changes`

func runShell(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	a, err := sess.app(ctx)
	if err != nil {
		return err
	}

	return shellLoop(ctx, a, sess.fs, cmd.InOrStdin(), cmd.OutOrStdout())
}

// shellLoop reads commands from in until EOF or quit, rendering the state
// to out after every successful command
func shellLoop(ctx context.Context, a *app.App, fsys afero.Fs, in io.Reader, out io.Writer) error {
	render(out, fsys, a)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s> ", a.State().Name())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "help", "?":
			fmt.Fprintln(out, shellHelp)
			continue
		case "ls":
			render(out, fsys, a)
			continue
		}

		intent, err := parseCommand(a.State(), line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		if err := a.Dispatch(ctx, intent); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if _, ok := intent.(app.ScanRoots); ok {
			printScan(out, a)
		}
		if _, ok := intent.(app.OpenPath); ok {
			continue
		}
		render(out, fsys, a)
	}
}

// parseCommand turns a shell line into an intent for the given state
func parseCommand(st app.State, line string) (app.Intent, error) {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	fields := strings.Fields(rest)

	switch verb {
	case "quit", "exit":
		return nil, errQuit
	case "home", "back":
		return app.ToBrowsing{}, nil
	case "settings":
		return app.ToSettings{}, nil

	case "scan":
		return app.ScanRoots{Refresh: rest == "refresh"}, nil
	case "filter":
		return app.FilterChanged{Name: rest}, nil
	case "tags":
		return app.TagFilterChanged{Tags: fields}, nil
	case "select":
		id, err := oneID(fields)
		if err != nil {
			return nil, err
		}
		return app.SelectProject{ID: id}, nil

	case "tag":
		if rest == "" {
			return nil, errors.New("usage: tag <text>")
		}
		return app.AddTag{Text: rest}, nil
	case "untag":
		id, err := oneID(fields)
		if err != nil {
			return nil, err
		}
		return app.RemoveTag{TagID: id}, nil
	case "source":
		if len(fields) < 2 {
			return nil, errors.New("usage: source <name> <url>")
		}
		return app.AddSource{Name: strings.Join(fields[:len(fields)-1], " "), URL: fields[len(fields)-1]}, nil
	case "default":
		id, err := oneID(fields)
		if err != nil {
			return nil, err
		}
		return app.SetDefaultFile{FileID: id}, nil
	case "filenote":
		if len(fields) == 0 {
			return nil, errors.New("usage: filenote <file-id> <text>")
		}
		id, err := parseID(fields[0])
		if err != nil {
			return nil, err
		}
		_, notes, _ := strings.Cut(rest, " ")
		return app.SaveFileNotes{FileID: id, Notes: strings.TrimSpace(notes)}, nil
	case "rename", "notes":
		ps, ok := st.(*app.ProjectState)
		if !ok {
			return nil, fmt.Errorf("%w: %s in %s", app.ErrInvalidIntent, verb, st.Name())
		}
		if verb == "rename" {
			return app.UpdateProject{Name: rest, Notes: ps.Project.Notes}, nil
		}
		return app.UpdateProject{Name: ps.Project.Name, Notes: rest}, nil
	case "open":
		ps, ok := st.(*app.ProjectState)
		if !ok {
			return nil, fmt.Errorf("%w: open in %s", app.ErrInvalidIntent, st.Name())
		}
		if len(fields) == 0 {
			return app.OpenPath{Path: ps.Project.Path}, nil
		}
		id, err := oneID(fields)
		if err != nil {
			return nil, err
		}
		for _, f := range ps.Project.Files {
			if f.ID == id {
				return app.OpenPath{Path: f.Path}, nil
			}
		}
		return nil, app.ErrUnknownFile

	case "theme":
		return app.SetTheme{Name: rest}, nil
	case "addroot":
		return app.AddRoot{Path: rest}, nil
	case "rmroot":
		return app.RemoveRoot{Path: rest}, nil
	case "save":
		return app.SettingsSave{}, nil
	case "cancel":
		return app.SettingsCancel{}, nil

	default:
		return nil, fmt.Errorf("unknown command %q (try 'help')", verb)
	}
}

func oneID(fields []string) (int64, error) {
	if len(fields) != 1 {
		return 0, errors.New("expected one id")
	}
	return parseID(fields[0])
}

func render(w io.Writer, fsys afero.Fs, a *app.App) {
	switch st := a.State().(type) {
	case *app.BrowsingState:
		if st.NeedsRoots {
			fmt.Fprintln(w, "No print paths configured. Use 'settings' then 'addroot <dir>'.")
		}
		if st.NameFilter != "" || len(st.TagFilter) > 0 {
			fmt.Fprintf(w, "Filter: %q tags=%v\n", st.NameFilter, st.TagFilter)
		}
		if len(st.Projects) == 0 {
			fmt.Fprintln(w, "No projects")
			return
		}
		printProjects(w, st.Projects, util.GetTerminalWidth())

	case *app.ProjectState:
		printProject(w, fsys, st)

	case *app.SettingsState:
		fmt.Fprintf(w, "Theme: %s\n", st.Draft.ActiveTheme())
		fmt.Fprintln(w, "Print paths:")
		if !st.Draft.HasPrintPaths() {
			fmt.Fprintln(w, "  (none)")
		}
		for _, path := range st.Draft.PrintPaths {
			fmt.Fprintf(w, "  %s\n", path)
		}
	}
}

func printScan(w io.Writer, a *app.App) {
	r := a.LastScan()
	if r == nil {
		return
	}
	fmt.Fprintf(w, "Scanned %d root(s): %d project(s) created, %d file(s) added, %d removed\n",
		r.RootsScanned, r.ProjectsCreated, r.FilesAdded, r.FilesRemoved)
	for _, err := range r.Errors {
		fmt.Fprintf(w, "  %v\n", err)
	}
}
