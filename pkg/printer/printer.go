package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrymomot/imdm/pkg/result"
)

const indent = "  "

// Option configures the text output.
type Option func(*printer)

// WithMessages appends the check message to every line.
func WithMessages() Option {
	return func(p *printer) {
		p.messages = true
	}
}

// WithFailuresOnly omits passing and not applicable checks, and fields
// without failures.
func WithFailuresOnly() Option {
	return func(p *printer) {
		p.failuresOnly = true
	}
}

type printer struct {
	messages     bool
	failuresOnly bool

	pass  lipgloss.Style
	fail  lipgloss.Style
	skip  lipgloss.Style
	field lipgloss.Style

	b strings.Builder
}

func newPrinter(w io.Writer, opts []Option) *printer {
	r := lipgloss.NewRenderer(w)
	p := &printer{
		pass:  r.NewStyle().Foreground(lipgloss.Color("#27ca3f")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("#e74c3c")).Bold(true),
		skip:  r.NewStyle().Foreground(lipgloss.Color("#bababa")),
		field: r.NewStyle().Bold(true),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Print writes tree to w.
func Print(w io.Writer, tree *result.Tree, opts ...Option) error {
	p := newPrinter(w, opts)
	p.tree(tree, 0)
	_, err := io.WriteString(w, p.b.String())
	return err
}

// PrintChecks writes the checks of a single field validator to w.
func PrintChecks(w io.Writer, checks *result.Checks, opts ...Option) error {
	p := newPrinter(w, opts)
	p.checks(checks, 0)
	_, err := io.WriteString(w, p.b.String())
	return err
}

func (p *printer) tree(t *result.Tree, depth int) {
	if t.IsLeaf() {
		p.checks(t.Checks(), depth)
		return
	}
	for _, name := range t.Fields() {
		child := t.Field(name)
		if p.failuresOnly && child.OK() {
			continue
		}
		p.b.WriteString(strings.Repeat(indent, depth))
		p.b.WriteString(p.field.Render(name))
		p.b.WriteByte('\n')
		p.tree(child, depth+1)
	}
}

func (p *printer) checks(c *result.Checks, depth int) {
	for name, o := range c.All() {
		if p.failuresOnly && o.Status != result.Fail {
			continue
		}
		p.b.WriteString(strings.Repeat(indent, depth))
		p.b.WriteString(p.marker(o.Status))
		p.b.WriteByte(' ')
		p.b.WriteString(name)
		if p.messages && o.Message != "" {
			p.b.WriteString(": ")
			p.b.WriteString(o.Message)
		}
		p.b.WriteByte('\n')
	}
}

func (p *printer) marker(s result.Status) string {
	switch s {
	case result.Pass:
		return p.pass.Render("✓")
	case result.Fail:
		return p.fail.Render("✗")
	}
	return p.skip.Render("-")
}

// Summary writes one line with the number of checks per status.
func Summary(w io.Writer, tree *result.Tree) error {
	n := tree.Count()
	_, err := fmt.Fprintf(w, "%d passed, %d failed, %d not applicable\n",
		n[result.Pass], n[result.Fail], n[result.NotApplicable])
	return err
}

// JSON writes v, typically a *result.Tree or *result.Checks, as indented
// JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)
	return enc.Encode(v)
}
