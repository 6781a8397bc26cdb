// Package schema builds structural models from YAML documents.
//
// A schema has a top-level "fields" mapping. Field order in the document is
// the field order of the model and of its results. The optional top-level
// "structure" key enables the model structure checks; "strict" enables them
// and skips the field checks of a sample that fails one.
//
//	structure: true
//	fields:
//	  scan:
//	    format: dicom            # dicom, image, numpy, nifti or auto
//	    metadata: {Modality: MR}
//	    shape: ["*", 512, 512]   # "*" or null: any size, "...": any number of axes
//	    range: [0, 4095]         # null for an open bound
//	  label:
//	    type: string             # string, int, float, number, bool, list, map, array
//	    length: 3
//	  meta:
//	    fields:                  # nested model
//	      site: {type: string}
//	  scores:
//	    each:                    # sequence node
//	      type: number
//	      range: [0, 1]
//	  age:
//	    type: int
//	    strict: true
//	    checks:
//	      adult: {stage: value, expr: "value >= 18"}
//
// Paths of file-backed fields are resolved through the file.Source given with
// WithSource. Custom checks are expr-lang expressions evaluated against the
// stage data; the default stage is "value".
//
// All construction problems are reported as errors wrapping ErrInvalidSchema,
// prefixed with the location of the offending field.
package schema
