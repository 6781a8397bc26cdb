package result

import (
	"bytes"
	"encoding/json"
	"iter"
)

// Checks is an ordered mapping from check name to Outcome.
// The zero value is not usable; create instances with NewChecks.
type Checks struct {
	names    []string
	outcomes map[string]Outcome
}

// NewChecks returns an empty Checks map.
func NewChecks() *Checks {
	return &Checks{outcomes: make(map[string]Outcome)}
}

// Set records the outcome of a check. Setting an existing name replaces the
// outcome and keeps its original position.
func (c *Checks) Set(name string, o Outcome) {
	if _, ok := c.outcomes[name]; !ok {
		c.names = append(c.names, name)
	}
	c.outcomes[name] = o
}

// Get returns the outcome recorded for name.
func (c *Checks) Get(name string) (Outcome, bool) {
	if c == nil {
		return Outcome{}, false
	}
	o, ok := c.outcomes[name]
	return o, ok
}

// Has reports whether an outcome is recorded for name.
func (c *Checks) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Status returns the status recorded for name, or NotApplicable when the name
// is unknown.
func (c *Checks) Status(name string) Status {
	o, _ := c.Get(name)
	return o.Status
}

// Message returns the message recorded for name.
func (c *Checks) Message(name string) string {
	o, _ := c.Get(name)
	return o.Message
}

// Names returns check names in insertion order.
func (c *Checks) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

func (c *Checks) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// All iterates over checks in insertion order.
func (c *Checks) All() iter.Seq2[string, Outcome] {
	return func(yield func(string, Outcome) bool) {
		if c == nil {
			return
		}
		for _, name := range c.names {
			if !yield(name, c.outcomes[name]) {
				return
			}
		}
	}
}

// OK reports whether no check failed. Not-applicable checks do not count as
// failures.
func (c *Checks) OK() bool {
	for _, o := range c.All() {
		if o.Status == Fail {
			return false
		}
	}
	return true
}

// Failed returns the names of failed checks in insertion order.
func (c *Checks) Failed() []string {
	var names []string
	for name, o := range c.All() {
		if o.Status == Fail {
			names = append(names, name)
		}
	}
	return names
}

// Statuses returns a name to status map, convenient for comparisons.
func (c *Checks) Statuses() map[string]Status {
	out := make(map[string]Status, c.Len())
	for name, o := range c.All() {
		out[name] = o.Status
	}
	return out
}

// MarshalJSON encodes the checks as an ordered object of name to status.
func (c *Checks) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	for name, o := range c.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := o.Status.MarshalJSON()
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

// Bools returns a name to *bool view: true for Pass, false for Fail and nil
// for NotApplicable.
func (c *Checks) Bools() map[string]*bool {
	out := make(map[string]*bool, c.Len())
	for name, o := range c.All() {
		out[name] = o.Status.Bool()
	}
	return out
}
