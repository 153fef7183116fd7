package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/franz/print-shelf/internal/app"
	"github.com/franz/print-shelf/internal/filetype"
	"github.com/franz/print-shelf/internal/store"
	"github.com/franz/print-shelf/internal/util"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List cataloged projects",
	Long: `List cataloged projects, optionally filtered.

--name matches case-insensitively anywhere in the project name.
--tag may be repeated; only projects carrying every given tag are listed.`,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project's files, tags, sources and preview image",
	Long: `Show a single project. Its files are synced with disk first, the
same way selecting a project does.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)

	listCmd.Flags().String("name", "", "filter by name substring")
	listCmd.Flags().StringSlice("tag", nil, "filter by tag (repeatable, all must match)")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	a, err := sess.app(ctx)
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	if name != "" {
		if err := a.Dispatch(ctx, app.FilterChanged{Name: name}); err != nil {
			return err
		}
	}
	if len(tags) > 0 {
		if err := a.Dispatch(ctx, app.TagFilterChanged{Tags: tags}); err != nil {
			return err
		}
	}

	st := a.State().(*app.BrowsingState)
	if st.NeedsRoots {
		util.WarnLog("No print paths configured. Add one with 'pshelf roots add <dir>'.")
	}
	if len(st.Projects) == 0 {
		util.InfoLog("No projects found")
		return nil
	}

	printProjects(cmd.OutOrStdout(), st.Projects, util.GetTerminalWidth())
	return nil
}

// printProjects writes one line per project, truncated to width
func printProjects(w io.Writer, projects []*store.Project, width int) {
	for _, p := range projects {
		line := fmt.Sprintf("%5d  %-30s %3d files", p.ID, p.Name, len(p.Files))
		if len(p.Tags) > 0 {
			line += "  [" + strings.Join(tagTexts(p.Tags), ", ") + "]"
		}
		if width > 0 && len(line) > width {
			line = line[:width-1] + "…"
		}
		fmt.Fprintln(w, line)
	}
}

func tagTexts(tags []*store.Tag) []string {
	texts := make([]string, len(tags))
	for i, t := range tags {
		texts[i] = t.Text
	}
	return texts
}

func runShow(cmd *cobra.Command, args []string) error {
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

	printProject(cmd.OutOrStdout(), sess.fs, a.State().(*app.ProjectState))
	return nil
}

func printProject(w io.Writer, fsys afero.Fs, st *app.ProjectState) {
	p := st.Project

	fmt.Fprintf(w, "%s (#%d)\n", p.Name, p.ID)
	fmt.Fprintf(w, "  Path:  %s\n", p.Path)
	if p.Notes != "" {
		fmt.Fprintf(w, "  Notes: %s\n", p.Notes)
	}
	if st.Image != "" {
		fmt.Fprintf(w, "  Image: %s\n", st.Image)
	}

	if len(p.Tags) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tags:")
		for _, t := range p.Tags {
			fmt.Fprintf(w, "  %4d  %s\n", t.ID, t.Text)
		}
	}

	if len(p.Sources) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Sources:")
		for _, s := range p.Sources {
			fmt.Fprintf(w, "  %s: %s\n", s.Name, s.URL)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files (%d):\n", len(p.Files))
	for _, f := range p.Files {
		marker := " "
		if f.IsDefault {
			marker = "*"
		}

		size := "missing"
		if info, err := fsys.Stat(f.Path); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}

		rel, err := filepath.Rel(p.Path, f.Path)
		if err != nil {
			rel = f.Path
		}

		fmt.Fprintf(w, "  %s%4d  %-6s %9s  %s\n", marker, f.ID, filetype.Classify(f.Path), size, rel)
		if text, ok := st.Contents[f.ID]; ok {
			if first := firstLine(text); first != "" {
				fmt.Fprintf(w, "          %s\n", first)
			}
		} else if f.Notes != "" {
			fmt.Fprintf(w, "          %s\n", f.Notes)
		}
	}
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return line
}
