package model

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Getter is implemented by samples that resolve their own fields.
type Getter interface {
	Get(key string) (any, bool)
}

// Keyer is implemented by Getter samples that can list their keys. Without
// it the structure length check is not applicable.
type Keyer interface {
	Keys() []string
}

// TagName is the struct tag used to name sample fields.
const TagName = "imdm"

// sample is read access to the fields of one validated value.
type sample struct {
	get  func(key string) (any, bool)
	keys func() []string // nil when keys cannot be listed
}

func accessor(x any) (sample, error) {
	if x == nil {
		return sample{}, fmt.Errorf("%w: nil", ErrNotMapping)
	}

	rv := reflect.ValueOf(x)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return sample{}, fmt.Errorf("%w: nil %T", ErrNotMapping, x)
		}
		if _, ok := rv.Interface().(Getter); ok {
			break
		}
		rv = rv.Elem()
	}

	if g, ok := rv.Interface().(Getter); ok {
		s := sample{get: g.Get}
		if k, ok := g.(Keyer); ok {
			s.keys = k.Keys
		}
		return s, nil
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return sample{}, fmt.Errorf("%w: %T", ErrNotMapping, x)
		}
		return mapSample(rv), nil
	case reflect.Struct:
		return structSample(rv), nil
	}
	return sample{}, fmt.Errorf("%w: %T", ErrNotMapping, x)
}

func mapSample(rv reflect.Value) sample {
	keyType := rv.Type().Key()
	return sample{
		get: func(key string) (any, bool) {
			v := rv.MapIndex(reflect.ValueOf(key).Convert(keyType))
			if !v.IsValid() {
				return nil, false
			}
			return v.Interface(), true
		},
		keys: func() []string {
			keys := make([]string, 0, rv.Len())
			for _, k := range rv.MapKeys() {
				keys = append(keys, k.String())
			}
			slices.Sort(keys)
			return keys
		},
	}
}

type structField struct {
	name  string
	index int
}

// structSample matches keys against exported fields by tag or name, then
// case-insensitively in declaration order.
func structSample(rv reflect.Value) sample {
	t := rv.Type()
	fields := make([]structField, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup(TagName); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		fields = append(fields, structField{name: name, index: i})
	}

	return sample{
		get: func(key string) (any, bool) {
			i := slices.IndexFunc(fields, func(f structField) bool { return f.name == key })
			if i < 0 {
				i = slices.IndexFunc(fields, func(f structField) bool { return strings.EqualFold(f.name, key) })
			}
			if i < 0 {
				return nil, false
			}
			return rv.Field(fields[i].index).Interface(), true
		},
		keys: func() []string {
			keys := make([]string, len(fields))
			for i, f := range fields {
				keys[i] = f.name
			}
			return keys
		},
	}
}

// lookup calls the sample getter, turning a panic into an error.
func (s sample) lookup(key string) (v any, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: lookup of %q panicked: %v", ErrSampleAccess, key, r)
		}
	}()
	v, ok = s.get(key)
	return v, ok, nil
}

// list returns the sample keys. ok is false when keys cannot be listed.
func (s sample) list() (keys []string, ok bool, err error) {
	if s.keys == nil {
		return nil, false, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: listing keys panicked: %v", ErrSampleAccess, r)
		}
	}()
	return s.keys(), true, nil
}
