// Package check defines the unit of comparison used by field validators.
//
// A Check projects its input into a comparable domain with Unpack and decides
// the verdict with Compare. Evaluate drives both hooks and turns the verdict
// into a result.Outcome carrying a status and a human readable message. The
// outcome is returned rather than stored, so one Check value can be evaluated
// any number of times and shared between validators.
//
// # Applicability
//
// A check without a target reports result.NotApplicable for every input and
// neither hook is called. Built-in checks become inapplicable when their target
// is left empty (Shape with no dims, Range with no bounds, Type with no types).
// Custom checks opt in by implementing Optional.
//
// # Built-in checks
//
//   - Type, TypeOf: type membership; interface targets match by implementation.
//   - Length: exact length of strings (in runes), slices, arrays, maps and
//     values with a Len() int method.
//   - DType: element type name of a numeric array.
//   - Shape: array shape with AnyDim and AnyDims wildcards.
//   - Range, Between, AtLeast, AtMost: inclusive bounds over min and max.
//   - PathExists: existence of a path in a file.Source.
//   - Metadata: key/value pairs resolved through Lookup.
//   - Predicate, PredicateOf, Assert: user functions wrapped as checks.
//   - Expr: boolean expressions compiled with expr-lang.
//
// # Usage
//
//	c := check.Shape(3, check.AnyDim, 5)
//	out := check.Evaluate(c, [][][]float64{...})
//	if out.Status == result.Fail {
//	    fmt.Println(out.Message)
//	}
//
// # Errors
//
// Unpack errors and panics raised by user hooks never escape Evaluate; they
// become failing outcomes whose message carries the error text. Constructors
// panic with ErrInvalidTarget on targets that can never match, such as a
// negative length.
package check
