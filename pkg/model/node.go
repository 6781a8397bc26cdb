package model

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/dmitrymomot/imdm/pkg/result"
	"github.com/dmitrymomot/imdm/pkg/validator"
)

// Node is an element of a structural model: a field validator, a nested
// Model or a sequence node.
type Node interface {
	validate(x any) *result.Tree
	missing(reason string) *result.Tree
	skip(reason string) *result.Tree
	children() []Node
}

type leaf struct {
	v *validator.Validator
}

// Leaf wraps a field validator as a node. A nil validator yields a nil node.
func Leaf(v *validator.Validator) Node {
	if v == nil {
		return nil
	}
	return leaf{v: v}
}

func (l leaf) validate(x any) *result.Tree {
	return result.Leaf(l.v.Validate(x))
}

func (l leaf) missing(reason string) *result.Tree {
	return result.Leaf(l.v.Missing(reason))
}

func (l leaf) skip(reason string) *result.Tree {
	return result.Leaf(l.v.Skipped(reason))
}

func (leaf) children() []Node { return nil }

// Wildcard is the child name used for the inner node of a sequence when
// there are no elements to report on.
const Wildcard = "*"

type each struct {
	inner Node
}

// Each returns a node that validates every element of a slice or array with
// inner. Children of the result are named by element index. A value that is
// not a sequence fails the inner node under the Wildcard name.
func Each(inner Node) Node {
	if inner == nil {
		return nil
	}
	return each{inner: inner}
}

func (e each) validate(x any) *result.Tree {
	tree := result.Branch()
	rv := reflect.ValueOf(x)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		tree.Add(Wildcard, e.inner.missing(fmt.Sprintf("%v: %T", ErrNotSequence, x)))
		return tree
	}
	for i := range rv.Len() {
		tree.Add(strconv.Itoa(i), e.inner.validate(rv.Index(i).Interface()))
	}
	return tree
}

func (e each) missing(reason string) *result.Tree {
	tree := result.Branch()
	tree.Add(Wildcard, e.inner.missing(reason))
	return tree
}

func (e each) skip(reason string) *result.Tree {
	tree := result.Branch()
	tree.Add(Wildcard, e.inner.skip(reason))
	return tree
}

func (e each) children() []Node { return []Node{e.inner} }
