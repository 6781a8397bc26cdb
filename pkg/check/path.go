package check

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/imdm/pkg/file"
)

// PathCheck passes when the input names an existing path in its source.
type PathCheck struct {
	src file.Source
}

// PathExists returns a path existence check. A nil source resolves paths on
// the local filesystem relative to the working directory.
func PathExists(src file.Source) *PathCheck {
	if src == nil {
		src = file.Local()
	}
	return &PathCheck{src: src}
}

// Unpack accepts strings and fmt.Stringer values.
func (c *PathCheck) Unpack(x any) (any, error) {
	return PathOf(x)
}

func (c *PathCheck) Compare(v any) bool {
	p, ok := v.(string)
	return ok && p != "" && c.src.Exists(context.Background(), p)
}

func (c *PathCheck) Messages() (string, string) {
	return "path exists", "path does not exist"
}

func (c *PathCheck) Detail(v any) string {
	return fmt.Sprintf("%v", v)
}

// PathOf extracts a path from a string or fmt.Stringer.
func PathOf(x any) (string, error) {
	switch v := x.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("%w: %T", ErrNotPath, x)
}
