package store

import (
	"sort"
	"strings"
)

// ProjectFilter selects projects. Nil/empty fields don't filter.
//
// Tags is an intersection: a project matches only if it carries every tag.
type ProjectFilter struct {
	Name *string
	Path *string
	Tags []string
}

// NameContains returns a filter matching names containing s
func NameContains(s string) ProjectFilter {
	return ProjectFilter{Name: &s}
}

// PathEquals returns a filter matching exactly one project path
func PathEquals(path string) ProjectFilter {
	return ProjectFilter{Path: &path}
}

// WithTags returns a copy of f that also requires every given tag
func (f ProjectFilter) WithTags(tags ...string) ProjectFilter {
	f.Tags = append(append([]string(nil), f.Tags...), tags...)
	return f
}

// likeEscaper escapes LIKE wildcards so user input matches literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildQuery composes the parameterized project query for f
func (f ProjectFilter) buildQuery() (string, []any) {
	var (
		sb    strings.Builder
		where []string
		args  []any
	)

	sb.WriteString("SELECT p.id, p.name, p.path, p.notes FROM projects p")

	tags := uniqueTags(f.Tags)
	if len(tags) > 0 {
		sb.WriteString(" JOIN projects_tags pt ON pt.project_id = p.id JOIN tags t ON t.id = pt.tag_id")
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tags)), ",")
		where = append(where, "t.tag IN ("+placeholders+")")
		for _, tag := range tags {
			args = append(args, tag)
		}
	}

	if f.Name != nil {
		where = append(where, `p.name LIKE '%' || ? || '%' ESCAPE '\'`)
		args = append(args, likeEscaper.Replace(*f.Name))
	}

	if f.Path != nil {
		where = append(where, "p.path = ?")
		args = append(args, *f.Path)
	}

	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	if len(tags) > 0 {
		sb.WriteString(" GROUP BY p.id HAVING COUNT(DISTINCT t.id) = ?")
		args = append(args, len(tags))
	}

	sb.WriteString(" ORDER BY p.name ASC, p.id ASC")

	return sb.String(), args
}

// uniqueTags trims, drops blanks and collapses duplicates so the
// intersection count matches the number of distinct requested tags
func uniqueTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
