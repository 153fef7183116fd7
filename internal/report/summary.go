package report

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/print-shelf/internal/filetype"
	"github.com/franz/print-shelf/internal/store"
	"github.com/spf13/afero"
)

// SummaryReport describes the state of the catalog
type SummaryReport struct {
	GeneratedAt time.Time

	Projects int
	Files    int
	Tags     int

	FilesByKind  map[filetype.Kind]int
	BytesOnDisk  uint64
	MissingFiles int

	TagUsage       []store.TagCount
	WithoutModels  []string
	WithoutImages  []string
	WithoutDefault []string
	TopErrors      []ErrorSummary

	DatabasePath  string
	EventLogDir   string
	SchemaVersion uint
}

// ErrorSummary represents an error with its count
type ErrorSummary struct {
	Error string
	Count int
}

// GenerateSummaryReport collects catalog statistics. Files are stat'ed
// through fsys; eventDir may be empty.
func GenerateSummaryReport(ctx context.Context, db *store.Store, fsys afero.Fs, eventDir string) (*SummaryReport, error) {
	report := &SummaryReport{
		GeneratedAt: time.Now(),
		EventLogDir: eventDir,
		FilesByKind: make(map[filetype.Kind]int),
	}

	projects, err := db.GetFilteredProjects(ctx, store.ProjectFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	report.Projects = len(projects)

	for _, p := range projects {
		var models, images int
		hasDefault := false

		for _, f := range p.Files {
			report.Files++
			kind := filetype.Classify(f.Path)
			report.FilesByKind[kind]++

			switch kind {
			case filetype.KindModel:
				models++
			case filetype.KindImage:
				images++
			}
			if f.IsDefault {
				hasDefault = true
			}

			info, err := fsys.Stat(f.Path)
			if err != nil {
				report.MissingFiles++
				continue
			}
			report.BytesOnDisk += uint64(info.Size())
		}

		if models == 0 {
			report.WithoutModels = append(report.WithoutModels, p.Name)
		}
		if images == 0 {
			report.WithoutImages = append(report.WithoutImages, p.Name)
		}
		if !hasDefault {
			report.WithoutDefault = append(report.WithoutDefault, p.Name)
		}
	}

	usage, err := db.TagUsage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	report.Tags = len(usage)
	sort.SliceStable(usage, func(i, j int) bool {
		return usage[i].Projects > usage[j].Projects
	})
	report.TagUsage = usage

	if v, err := db.SchemaVersion(ctx); err == nil {
		report.SchemaVersion = v
	}

	if eventDir != "" {
		report.TopErrors = gatherTopErrors(eventDir, 10)
	}

	return report, nil
}

// ReadEvents decodes every event in the JSONL files of dir, oldest file first
func ReadEvents(dir string) ([]Event, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "events-*.jsonl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var events []Event
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			var e Event
			if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
				continue
			}
			events = append(events, e)
		}
		file.Close()
	}

	return events, nil
}

// gatherTopErrors counts error messages found in the event logs
func gatherTopErrors(dir string, limit int) []ErrorSummary {
	events, err := ReadEvents(dir)
	if err != nil {
		return nil
	}

	errorCounts := make(map[string]int)
	for _, e := range events {
		if e.Error != "" {
			errorCounts[e.Error]++
		}
	}

	errors := make([]ErrorSummary, 0, len(errorCounts))
	for msg, count := range errorCounts {
		errors = append(errors, ErrorSummary{Error: msg, Count: count})
	}

	sort.Slice(errors, func(i, j int) bool {
		if errors[i].Count != errors[j].Count {
			return errors[i].Count > errors[j].Count
		}
		return errors[i].Error < errors[j].Error
	})

	if len(errors) > limit {
		errors = errors[:limit]
	}

	return errors
}

// Markdown renders the summary report
func (r *SummaryReport) Markdown() string {
	var md strings.Builder

	md.WriteString("# PrintShelf - Catalog Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05")))
	if r.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s` (schema v%d)\n\n", r.DatabasePath, r.SchemaVersion))
	}

	md.WriteString("---\n\n")

	md.WriteString("## 📊 Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Projects | %s |\n", humanize.Comma(int64(r.Projects))))
	md.WriteString(fmt.Sprintf("| Files | %s |\n", humanize.Comma(int64(r.Files))))
	md.WriteString(fmt.Sprintf("| Tags | %d |\n", r.Tags))
	md.WriteString(fmt.Sprintf("| Size on Disk | %s |\n", humanize.Bytes(r.BytesOnDisk)))
	if r.MissingFiles > 0 {
		md.WriteString(fmt.Sprintf("| Missing Files | %d |\n", r.MissingFiles))
	}
	md.WriteString("\n")

	if r.Files > 0 {
		md.WriteString("## 🗂️ Files by Kind\n\n")
		md.WriteString("| Kind | Count |\n")
		md.WriteString("|------|-------|\n")
		for _, kind := range []filetype.Kind{filetype.KindModel, filetype.KindImage, filetype.KindText, filetype.KindOther} {
			if n := r.FilesByKind[kind]; n > 0 {
				md.WriteString(fmt.Sprintf("| %s | %d |\n", kind, n))
			}
		}
		md.WriteString("\n")
	}

	if len(r.TagUsage) > 0 {
		md.WriteString("## 🏷️ Tags\n\n")
		md.WriteString("| Tag | Projects |\n")
		md.WriteString("|-----|----------|\n")
		for _, tc := range r.TagUsage {
			md.WriteString(fmt.Sprintf("| %s | %d |\n", tc.Tag.Text, tc.Projects))
		}
		md.WriteString("\n")
	}

	writeNameList(&md, "## 🧩 Projects without Models", r.WithoutModels)
	writeNameList(&md, "## 🖼️ Projects without Images", r.WithoutImages)
	writeNameList(&md, "## 📌 Projects without a Default File", r.WithoutDefault)

	if len(r.TopErrors) > 0 {
		md.WriteString("## ⚠️ Top Errors\n\n")
		md.WriteString("| Count | Error |\n")
		md.WriteString("|-------|-------|\n")
		for _, e := range r.TopErrors {
			md.WriteString(fmt.Sprintf("| %d | %s |\n", e.Count, e.Error))
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n\n")
	md.WriteString("*Generated by pshelf*\n")

	return md.String()
}

func writeNameList(md *strings.Builder, header string, names []string) {
	if len(names) == 0 {
		return
	}
	md.WriteString(header + "\n\n")
	for _, name := range names {
		md.WriteString(fmt.Sprintf("- %s\n", name))
	}
	md.WriteString("\n")
}

// WriteMarkdownReport writes the summary report as Markdown
func WriteMarkdownReport(report *SummaryReport, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(report.Markdown()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
