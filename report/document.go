// Package report assembles and renders the synthesized research document.
package report

import (
	"fmt"
	"strings"
	"time"
)

// Section is one named unit of the research document.
type Section struct {
	Name    string `json:"name"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

// Document is an ordered collection of sections under a title. Section
// order is insertion order; rendering never reorders.
type Document struct {
	Title     string    `json:"title"`
	Authors   []string  `json:"authors"`
	CreatedAt time.Time `json:"created_at"`
	sections  []Section
	index     map[string]int
}

// NewDocument creates an empty document.
func NewDocument(title string, authors []string) *Document {
	return &Document{
		Title:     title,
		Authors:   authors,
		CreatedAt: time.Now(),
		index:     make(map[string]int),
	}
}

// AddSection appends a section. Adding a section with an existing name
// replaces its content in place, keeping the original position.
func (d *Document) AddSection(name, author, content string) {
	if i, ok := d.index[name]; ok {
		d.sections[i].Content = content
		d.sections[i].Author = author
		return
	}
	d.index[name] = len(d.sections)
	d.sections = append(d.sections, Section{Name: name, Author: author, Content: content})
}

// Section returns the named section, if present.
func (d *Document) Section(name string) (Section, bool) {
	i, ok := d.index[name]
	if !ok {
		return Section{}, false
	}
	return d.sections[i], true
}

// Sections returns all sections in insertion order.
func (d *Document) Sections() []Section {
	return append([]Section{}, d.sections...)
}

// Len returns the number of sections.
func (d *Document) Len() int { return len(d.sections) }

// Renderer turns a document into a serialized byte form.
type Renderer interface {
	Render(doc *Document) ([]byte, error)
}

// MarkdownRenderer renders a document as a Markdown research paper.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a Markdown renderer.
func NewMarkdownRenderer() *MarkdownRenderer { return &MarkdownRenderer{} }

// Render implements Renderer.
func (r *MarkdownRenderer) Render(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("report: nil document")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	if len(doc.Authors) > 0 {
		fmt.Fprintf(&b, "*Authors: %s*\n\n", strings.Join(doc.Authors, ", "))
	}
	fmt.Fprintf(&b, "*Generated: %s*\n\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("---\n\n")

	for _, s := range doc.sections {
		fmt.Fprintf(&b, "## %s\n\n", headingFor(s.Name))
		if s.Author != "" {
			fmt.Fprintf(&b, "*Contributed by %s*\n\n", s.Author)
		}
		b.WriteString(strings.TrimSpace(s.Content))
		b.WriteString("\n\n")
	}

	return []byte(b.String()), nil
}

// headingFor capitalizes each word of a section name for display.
func headingFor(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
