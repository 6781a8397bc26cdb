// Package result holds the values produced by validation: a tri-state Status,
// an Outcome that pairs the status with a human-readable message, an ordered
// per-field Checks map and a nested Tree that mirrors the shape of a
// structural model.
//
// # Status
//
// Every check resolves to exactly one of three states:
//
//   - Pass          – the comparison ran and succeeded
//   - Fail          – the comparison ran and failed, or could not run
//   - NotApplicable – the check was not configured
//
// NotApplicable is never conflated with Pass or Fail. In JSON it is encoded as
// null, while Pass and Fail are encoded as true and false.
//
// # Ordering
//
// Checks and Tree preserve insertion order. Iteration, printing and JSON
// encoding are therefore deterministic and follow the order in which checks
// were registered and fields were declared.
//
// # Usage
//
//	checks := result.NewChecks()
//	checks.Set("type", result.Passed("target type string is equal to input type"))
//	checks.Set("shape", result.Skipped())
//
//	tree := result.Branch()
//	tree.Add("name", result.Leaf(checks))
//
//	if !tree.OK() {
//	    for _, path := range tree.Failures() {
//	        fmt.Println("failed:", path)
//	    }
//	}
//
// # Error Handling
//
// Tree.Err and Checks.Err convert failures into ValidationErrors, an error
// value listing each failed check with its dotted field path:
//
//	if err := tree.Err(); err != nil {
//	    ve := result.ExtractValidationErrors(err)
//	    ve.Has("image") // true when any image check failed
//	}
package result
