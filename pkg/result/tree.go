package result

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Tree is a nested validation result. A leaf holds the Checks of one field
// validator; a branch holds named child trees in declaration order.
type Tree struct {
	checks   *Checks
	names    []string
	children map[string]*Tree
}

// Leaf wraps the checks of a single field.
func Leaf(c *Checks) *Tree {
	if c == nil {
		c = NewChecks()
	}
	return &Tree{checks: c}
}

// Branch returns an empty branch.
func Branch() *Tree {
	return &Tree{children: make(map[string]*Tree)}
}

// IsLeaf reports whether the tree holds checks rather than children.
func (t *Tree) IsLeaf() bool {
	return t != nil && t.checks != nil
}

// Checks returns the checks of a leaf, or nil for a branch.
func (t *Tree) Checks() *Checks {
	if t == nil {
		return nil
	}
	return t.checks
}

// Add attaches a child under name. Re-adding a name replaces the child and
// keeps its position. Adding to a leaf is a no-op.
func (t *Tree) Add(name string, child *Tree) {
	if t == nil || t.IsLeaf() || child == nil {
		return
	}
	if _, ok := t.children[name]; !ok {
		t.names = append(t.names, name)
	}
	t.children[name] = child
}

// Field returns the child registered under name, or nil.
func (t *Tree) Field(name string) *Tree {
	if t == nil || t.IsLeaf() {
		return nil
	}
	return t.children[name]
}

// Fields returns child names in declaration order.
func (t *Tree) Fields() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.names...)
}

// Lookup resolves a path of field names followed by a check name, e.g.
// Lookup("image", "shape").
func (t *Tree) Lookup(path ...string) (Outcome, bool) {
	if len(path) == 0 {
		return Outcome{}, false
	}
	node := t
	for _, name := range path[:len(path)-1] {
		node = node.Field(name)
		if node == nil {
			return Outcome{}, false
		}
	}
	return node.Checks().Get(path[len(path)-1])
}

// Status is Lookup reduced to the status; unknown paths are NotApplicable.
func (t *Tree) Status(path ...string) Status {
	o, _ := t.Lookup(path...)
	return o.Status
}

// Message is Lookup reduced to the message.
func (t *Tree) Message(path ...string) string {
	o, _ := t.Lookup(path...)
	return o.Message
}

// Walk visits every check depth-first in declaration order. The path holds
// the field names leading to the check's leaf.
func (t *Tree) Walk(fn func(path []string, check string, o Outcome)) {
	t.walk(nil, fn)
}

func (t *Tree) walk(path []string, fn func([]string, string, Outcome)) {
	if t == nil {
		return
	}
	if t.IsLeaf() {
		for name, o := range t.checks.All() {
			fn(path, name, o)
		}
		return
	}
	for _, name := range t.names {
		next := append(path[:len(path):len(path)], name)
		t.children[name].walk(next, fn)
	}
}

// OK reports whether no check anywhere in the tree failed.
func (t *Tree) OK() bool {
	ok := true
	t.Walk(func(_ []string, _ string, o Outcome) {
		if o.Status == Fail {
			ok = false
		}
	})
	return ok
}

// Failures returns dotted paths ("field.sub.check") of all failed checks.
func (t *Tree) Failures() []string {
	var out []string
	t.Walk(func(path []string, check string, o Outcome) {
		if o.Status == Fail {
			out = append(out, strings.Join(append(path[:len(path):len(path)], check), "."))
		}
	})
	return out
}

// Count returns the number of checks per status.
func (t *Tree) Count() map[Status]int {
	out := make(map[Status]int, 3)
	t.Walk(func(_ []string, _ string, o Outcome) {
		out[o.Status]++
	})
	return out
}

// MarshalJSON encodes the tree as nested ordered objects; leaves are encoded
// with Checks.MarshalJSON.
func (t *Tree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	if t.IsLeaf() {
		return t.checks.MarshalJSON()
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range t.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := t.children[name].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
