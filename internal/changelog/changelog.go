// Package changelog turns the project CHANGELOG.md into structured entries.
// The transform is pure and order-preserving: entries come back in source
// order, newest first by convention of the file, which the parser does not
// enforce.
//
// Section grammar:
//
//	## vX.Y - Title (YYYY-MM-DD)
//	body until the next "## " marker
//
// The version token, dash, title, and date parenthetical are each optional;
// missing parts fall back deterministically (see Parse).
package changelog

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Entry is one parsed changelog section.
type Entry struct {
	Version string `json:"version"`
	Title   string `json:"title"`
	Date    string `json:"date,omitempty"`
	Content string `json:"content"`
}

// DefaultTitle is used when a header carries no title text.
const DefaultTitle = "Update"

const sectionMarker = "## "

var (
	versionRe = regexp.MustCompile(`^v[0-9][^\s]*`)
	dateRe    = regexp.MustCompile(`\((\d{4}-\d{2}-\d{2})\)\s*$`)
)

// Parse splits text into entries, one per H2 section. Anything before the
// first marker is ignored. For section i (0-based):
//
//   - Version is the leading vX.Y token of the header, else "v<i+1>".
//   - Date is the trailing "(YYYY-MM-DD)" parenthetical, if present.
//   - Title is the text between the first "-" after the version and the date
//     parenthetical; when the header has no dash the title falls back to the
//     header minus the version token, or DefaultTitle when that is empty.
//   - Content is the remaining section text verbatim.
func Parse(text string) []Entry {
	var entries []Entry
	for i, section := range splitSections(text) {
		header, body, _ := strings.Cut(section, "\n")
		entries = append(entries, parseHeader(strings.TrimSpace(header), body, i))
	}
	return entries
}

// splitSections returns one string per "## " section, header included but
// marker stripped. Only markers at the start of a line count.
func splitSections(text string) []string {
	var sections []string
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		if !strings.HasPrefix(line, sectionMarker) {
			continue
		}
		if start >= 0 {
			sections = append(sections, joinSection(lines[start:i]))
		}
		start = i
	}
	if start >= 0 {
		sections = append(sections, joinSection(lines[start:]))
	}
	return sections
}

func joinSection(lines []string) string {
	s := strings.Join(lines, "\n")
	return strings.TrimPrefix(s, sectionMarker)
}

func parseHeader(header, body string, index int) Entry {
	e := Entry{Content: body}

	if m := dateRe.FindStringSubmatch(header); m != nil {
		e.Date = m[1]
		header = strings.TrimSpace(header[:len(header)-len(m[0])])
	}

	if v := versionRe.FindString(header); v != "" {
		e.Version = v
		header = strings.TrimSpace(header[len(v):])
	} else {
		e.Version = fmt.Sprintf("v%d", index+1)
	}

	if rest, ok := strings.CutPrefix(header, "-"); ok {
		e.Title = strings.TrimSpace(rest)
	} else {
		e.Title = header
	}
	if e.Title == "" {
		e.Title = DefaultTitle
	}
	return e
}

// Format re-serialises the entry into the section grammar Parse accepts, so
// Parse(Format(e)) round-trips.
func (e Entry) Format() string {
	var b strings.Builder
	b.WriteString(sectionMarker)
	b.WriteString(e.Version)
	b.WriteString(" - ")
	b.WriteString(e.Title)
	if e.Date != "" {
		b.WriteString(" (")
		b.WriteString(e.Date)
		b.WriteString(")")
	}
	b.WriteString("\n")
	b.WriteString(e.Content)
	return b.String()
}

// FormatAll renders entries back into a single document.
func FormatAll(entries []Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Format()
	}
	return strings.Join(parts, "\n")
}

// Generate parses the markdown file at src and writes the JSON artifact
// consumed by the static site build to dst.
func Generate(src, dst string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read changelog: %w", err)
	}
	entries := Parse(string(raw))
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode changelog: %w", err)
	}
	if err := os.WriteFile(dst, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("write changelog artifact: %w", err)
	}
	return nil
}
