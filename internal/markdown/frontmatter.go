// Package markdown is the Markdown Projector: it
// serializes items and the current-state singleton to a front-matter
// plus body file format, and parses that format back: a per-file-per-item,
// YAML-front-matter layout over structured, line-oriented text.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// FrontMatter is the known, typed shape of an item's front-matter
// block. Fields shirokuma doesn't recognize on parse are preserved in
// Extra so they round-trip unchanged.
type FrontMatter struct {
	ID          string   `yaml:"id"`
	Type        string   `yaml:"type"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Status      string   `yaml:"status"`
	Priority    string   `yaml:"priority"`
	Category    string   `yaml:"category,omitempty"`
	Version     string   `yaml:"version,omitempty"`
	StartDate   string   `yaml:"start_date,omitempty"`
	EndDate     string   `yaml:"end_date,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Related     []string `yaml:"related,omitempty"`
	CreatedAt   string   `yaml:"created_at"`
	UpdatedAt   string   `yaml:"updated_at"`
	Extra       map[string]string `yaml:"-"`
}

var knownKeys = map[string]bool{
	"id": true, "type": true, "title": true, "description": true,
	"status": true, "priority": true, "category": true, "version": true,
	"start_date": true, "end_date": true, "tags": true, "related": true,
	"created_at": true, "updated_at": true,
}

// File is a fully parsed/rendered markdown file: front matter plus a
// verbatim body. Body is never transformed (code fences, unicode, and
// emojis all pass through untouched); only titles are filtered for zero-width
// characters, and that happens before this package ever sees them.
type File struct {
	FrontMatter FrontMatter
	Body        string
}

// Render produces the on-disk byte content for a file: delimited YAML
// front matter, a blank line, then the body verbatim.
func Render(f File) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(delimiter)
	buf.WriteString("\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f.FrontMatter); err != nil {
		return nil, fmt.Errorf("markdown: encoding front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("markdown: closing front-matter encoder: %w", err)
	}

	for k, v := range f.FrontMatter.Extra {
		fmt.Fprintf(&buf, "%s: %s\n", k, v)
	}

	buf.WriteString(delimiter)
	buf.WriteString("\n\n")
	buf.WriteString(f.Body)
	return buf.Bytes(), nil
}

// Parse reconstructs a File from raw bytes. It is strict about the
// leading "---" delimiter but tolerant of the rest: a parse failure
// returns an error so the Rebuild Engine can log-and-skip the file
// without aborting the run.
func Parse(raw []byte) (File, error) {
	text := string(raw)
	if !strings.HasPrefix(text, delimiter) {
		return File{}, fmt.Errorf("markdown: missing front-matter delimiter")
	}
	rest := text[len(delimiter):]
	idx := strings.Index(rest, "\n"+delimiter)
	if idx == -1 {
		return File{}, fmt.Errorf("markdown: unterminated front-matter block")
	}
	fmText := strings.TrimPrefix(rest[:idx], "\n")
	body := rest[idx+len("\n"+delimiter):]
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimPrefix(body, "\n")

	raw2 := map[string]any{}
	if err := yaml.Unmarshal([]byte(fmText), &raw2); err != nil {
		return File{}, fmt.Errorf("markdown: parsing front matter: %w", err)
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(fmText), &fm); err != nil {
		return File{}, fmt.Errorf("markdown: decoding front matter: %w", err)
	}

	fm.Extra = map[string]string{}
	for k, v := range raw2 {
		if knownKeys[k] {
			continue
		}
		fm.Extra[k] = fmt.Sprintf("%v", v)
	}

	return File{FrontMatter: fm, Body: body}, nil
}
