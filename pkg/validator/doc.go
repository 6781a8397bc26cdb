// Package validator implements the field validator: a set of named checks
// applied to one field value through a three-stage pipeline.
//
// # Architecture
//
// Every validation call walks the same pipeline:
//
//	raw ──preprocess──▶ preprocessed ──value──▶ value
//
// The raw stage is the input as given. The preprocessed stage is the result of
// the preprocess function (or the raw input when none is set), typically a
// decoded file. The value stage is the result of the value function (or the
// preprocessed input), typically a numeric array. Each check is registered
// against one stage and only sees that stage's data.
//
// Stages are computed lazily, at most once per call, and only when an
// applicable check needs them. A failing or panicking preprocess or value
// function never escapes Validate: every applicable check of that stage and
// of the later stages fails with a message naming the error.
//
// Built-in checks are always registered in a fixed order so results have a
// stable layout:
//   - type (preprocessed)
//   - length (preprocessed)
//   - shape (value)
//   - range (value)
//
// Unconfigured built-ins report result.NotApplicable. A dtype check (value
// stage) is added when WithDType is used.
//
// # Usage
//
//	v := validator.New(
//	    validator.WithTypeOf[string](),
//	    validator.WithLength(11),
//	)
//	v.AddCheck("path", check.PathExists(nil), validator.Raw)
//	res := v.Validate("test_string")
//	res.Status("type")  // result.Pass
//	res.Status("shape") // result.NotApplicable
//
// # Strict mode
//
// With WithStrict a failure in one stage stops the pipeline: applicable checks
// of later stages are reported not applicable and their stages are never
// computed. This avoids decoding files that already failed a raw check.
//
// # Concurrency
//
// Validate does not mutate the validator and may be called concurrently.
// AddCheck and RemoveCheck must not run concurrently with Validate.
package validator
