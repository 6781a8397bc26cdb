package check

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Lookuper resolves metadata keys, e.g. DICOM tags.
type Lookuper interface {
	Lookup(key string) (string, bool)
}

// MetadataCheck passes when every expected key resolves to the expected value.
type MetadataCheck struct {
	want map[string]string
}

// Metadata returns a metadata check. An empty map is not applicable.
func Metadata(want map[string]string) *MetadataCheck {
	return &MetadataCheck{want: maps.Clone(want)}
}

func (c *MetadataCheck) Applicable() bool {
	return c != nil && len(c.want) > 0
}

// Unpack collects the values of the expected keys. Keys that do not resolve
// are left out.
func (c *MetadataCheck) Unpack(x any) (any, error) {
	lookup, err := lookupFunc(x)
	if err != nil {
		return nil, err
	}
	got := make(map[string]string, len(c.want))
	for key := range c.want {
		if v, ok := lookup(key); ok {
			got[key] = v
		}
	}
	return got, nil
}

func (c *MetadataCheck) Compare(v any) bool {
	got, ok := v.(map[string]string)
	if !ok {
		return false
	}
	for key, want := range c.want {
		if g, ok := got[key]; !ok || g != want {
			return false
		}
	}
	return true
}

func (c *MetadataCheck) Messages() (string, string) {
	return "metadata matches", "metadata does not match"
}

func (c *MetadataCheck) Detail(v any) string {
	got, _ := v.(map[string]string)
	var diffs []string
	for _, key := range slices.Sorted(maps.Keys(c.want)) {
		g, ok := got[key]
		switch {
		case !ok:
			diffs = append(diffs, key+" is missing")
		case g != c.want[key]:
			diffs = append(diffs, fmt.Sprintf("%s is %q, want %q", key, g, c.want[key]))
		}
	}
	return strings.Join(diffs, "; ")
}

func lookupFunc(x any) (func(string) (string, bool), error) {
	switch v := x.(type) {
	case Lookuper:
		return v.Lookup, nil
	case map[string]string:
		return func(k string) (string, bool) {
			s, ok := v[k]
			return s, ok
		}, nil
	case map[string]any:
		return func(k string) (string, bool) {
			s, ok := v[k]
			if !ok || s == nil {
				return "", false
			}
			return fmt.Sprint(s), true
		}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNoMetadata, x)
}
