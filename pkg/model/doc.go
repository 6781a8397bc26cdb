// Package model composes field validators into a structural model that
// mirrors the shape of a composite sample.
//
// A Model maps field names, in declaration order, to nodes. A node is a field
// validator (Leaf), a nested Model, or a sequence node (Each) that applies
// its inner node to every element of a slice. Validate looks up each field in
// the sample, dispatches to the node and returns a result.Tree with the same
// nesting as the model.
//
// Samples may be map[string]T values, structs (fields matched by name or by
// an `imdm:"name"` tag), or any type implementing Getter. A field that is
// absent from the sample is reported as failed for every configured check of
// its subtree; it never aborts validation of the remaining fields. A nil
// sample, or a Getter that panics, is reported the same way.
//
// Structure checks are opt-in. After m.Configure(model.WithStructureChecks())
// the tree gains a StructureField leaf with three checks: the sample is a
// mapping (type), it holds every model field (keys) and it holds exactly as
// many fields as the model (length). WithStrict also reports every field
// check as not applicable when a structure check fails.
//
// The model performs no cross-field logic. Cycles are rejected when fields are
// added, so validation is a finite depth-first walk.
//
// # Usage
//
//	m, err := model.New(
//	    model.Field("a", model.Leaf(validator.New(validator.WithTypeOf[string]()))),
//	    model.Field("b", model.Leaf(validator.New(
//	        validator.WithTypeOf[int](),
//	        validator.WithRange(check.Bound(-10), check.Bound(10)),
//	    ))),
//	)
//	if err != nil {
//	    return err
//	}
//	tree := m.Validate(map[string]any{"a": "hello_world!", "b": 999})
//	tree.Status("b", "range") // result.Fail
package model
