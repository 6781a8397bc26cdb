package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrymomot/imdm/pkg/result"
)

// Entry is a named node, used to build a model in one call.
type Entry struct {
	Name string
	Node Node
}

// Field pairs a name with a node.
func Field(name string, node Node) Entry {
	return Entry{Name: name, Node: node}
}

// StructureField is the child of a result tree that holds the structure
// checks of a model configured with WithStructureChecks or WithStrict.
const StructureField = "_structure"

// Structure check names.
const (
	CheckStructureType   = "type"
	CheckStructureKeys   = "keys"
	CheckStructureLength = "length"
)

// Option configures a Model.
type Option func(*Model)

// WithStructureChecks reports, under StructureField, whether the sample is a
// mapping, whether it has every model field and whether it has exactly as
// many fields as the model.
func WithStructureChecks() Option {
	return func(m *Model) {
		m.structure = true
	}
}

// WithStrict enables structure checks and skips the field checks when one of
// them fails.
func WithStrict() Option {
	return func(m *Model) {
		m.structure = true
		m.strict = true
	}
}

// Model is an ordered mapping from field name to node.
type Model struct {
	names     []string
	nodes     []Node
	structure bool
	strict    bool
}

// New builds a model from fields in order.
func New(fields ...Entry) (*Model, error) {
	m := &Model{}
	for _, f := range fields {
		if err := m.Add(f.Name, f.Node); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Configure applies options. Structure checks cannot be enabled on a model
// with a field named StructureField.
func (m *Model) Configure(opts ...Option) error {
	next := *m
	for _, opt := range opts {
		opt(&next)
	}
	if next.structure && slices.Contains(m.names, StructureField) {
		return fmt.Errorf("%w: %s", ErrReservedName, StructureField)
	}
	m.structure, m.strict = next.structure, next.strict
	return nil
}

// Add appends a field. Nodes may be shared between fields, but a node that
// leads back to m is rejected with ErrCycle.
func (m *Model) Add(name string, node Node) error {
	switch {
	case name == "":
		return ErrEmptyName
	case m.structure && name == StructureField:
		return fmt.Errorf("%w: %s", ErrReservedName, name)
	case node == nil:
		return fmt.Errorf("%w: %s", ErrNilNode, name)
	case slices.Contains(m.names, name):
		return fmt.Errorf("%w: %s", ErrDuplicateField, name)
	case reaches(node, m, map[*Model]bool{}):
		return fmt.Errorf("%w: field %s", ErrCycle, name)
	}
	m.names = append(m.names, name)
	m.nodes = append(m.nodes, node)
	return nil
}

// reaches reports whether target is node or one of its descendants.
func reaches(node Node, target *Model, seen map[*Model]bool) bool {
	if sub, ok := node.(*Model); ok {
		if sub == target {
			return true
		}
		if seen[sub] {
			return false
		}
		seen[sub] = true
	}
	for _, c := range node.children() {
		if reaches(c, target, seen) {
			return true
		}
	}
	return false
}

// Names returns field names in declaration order.
func (m *Model) Names() []string {
	return slices.Clone(m.names)
}

// Node returns the node registered under name.
func (m *Model) Node(name string) (Node, bool) {
	if i := slices.Index(m.names, name); i >= 0 {
		return m.nodes[i], true
	}
	return nil, false
}

func (m *Model) Len() int {
	return len(m.names)
}

// Strict reports whether field checks are skipped after a structure failure.
func (m *Model) Strict() bool {
	return m.strict
}

// StructureChecks reports whether structure checks are reported.
func (m *Model) StructureChecks() bool {
	return m.structure
}

// Validate applies every field node to the matching value of sample. It
// never panics: a sample whose accessors panic is reported like a missing
// field.
func (m *Model) Validate(sample any) *result.Tree {
	return m.validate(sample)
}

func (m *Model) validate(x any) *result.Tree {
	tree := result.Branch()
	s, err := accessor(x)

	if m.structure {
		checks := m.structureChecks(s, err)
		tree.Add(StructureField, result.Leaf(checks))
		if m.strict && !checks.OK() {
			for i, name := range m.names {
				tree.Add(name, m.nodes[i].skip("skipped: structure check failed"))
			}
			return tree
		}
	}

	for i, name := range m.names {
		node := m.nodes[i]
		if err != nil {
			tree.Add(name, node.missing(err.Error()))
			continue
		}
		v, ok, lerr := s.lookup(name)
		switch {
		case lerr != nil:
			tree.Add(name, node.missing(lerr.Error()))
		case !ok:
			tree.Add(name, node.missing(fmt.Sprintf("field %q is missing", name)))
		default:
			tree.Add(name, node.validate(v))
		}
	}
	return tree
}

func (m *Model) structureChecks(s sample, accessErr error) *result.Checks {
	checks := result.NewChecks()
	if accessErr != nil {
		checks.Set(CheckStructureType, result.Failed(accessErr.Error()))
		checks.Set(CheckStructureKeys, result.Skipped())
		checks.Set(CheckStructureLength, result.Skipped())
		return checks
	}
	checks.Set(CheckStructureType, result.Passed("sample is a mapping"))
	checks.Set(CheckStructureKeys, m.keysOutcome(s))
	checks.Set(CheckStructureLength, m.lengthOutcome(s))
	return checks
}

func (m *Model) keysOutcome(s sample) result.Outcome {
	var missing []string
	for _, name := range m.names {
		_, ok, err := s.lookup(name)
		if err != nil {
			return result.Failed(err.Error())
		}
		if !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return result.Failedf("missing keys: %s", strings.Join(missing, ", "))
	}
	return result.Passed("all keys present")
}

func (m *Model) lengthOutcome(s sample) result.Outcome {
	keys, ok, err := s.list()
	switch {
	case err != nil:
		return result.Failed(err.Error())
	case !ok:
		return result.Skipped()
	case len(keys) == len(m.names):
		return result.Passed(fmt.Sprintf("%d fields", len(keys)))
	}

	var extra []string
	for _, k := range keys {
		if !slices.Contains(m.names, k) {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		return result.Failedf("got %d fields, want %d; unexpected: %s", len(keys), len(m.names), strings.Join(extra, ", "))
	}
	return result.Failedf("got %d fields, want %d", len(keys), len(m.names))
}

// structureOutcomes fills the structure leaf of a subtree that was not
// validated against a sample.
func (m *Model) structureOutcomes(o result.Outcome) *result.Tree {
	checks := result.NewChecks()
	for _, name := range []string{CheckStructureType, CheckStructureKeys, CheckStructureLength} {
		checks.Set(name, o)
	}
	return result.Leaf(checks)
}

func (m *Model) missing(reason string) *result.Tree {
	tree := result.Branch()
	if m.structure {
		tree.Add(StructureField, m.structureOutcomes(result.Failed(reason)))
	}
	for i, name := range m.names {
		tree.Add(name, m.nodes[i].missing(reason))
	}
	return tree
}

func (m *Model) skip(reason string) *result.Tree {
	tree := result.Branch()
	if m.structure {
		tree.Add(StructureField, m.structureOutcomes(result.SkippedWith(reason)))
	}
	for i, name := range m.names {
		tree.Add(name, m.nodes[i].skip(reason))
	}
	return tree
}

func (m *Model) children() []Node {
	return m.nodes
}
