// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

// ValidateYAML checks a YAML document against a definition of a CUE schema:
//
//  1. Compile the embedded schema
//  2. Extract the YAML document and unify it with the definition
//  3. Validate the result
//
// definition is the path of the root definition (e.g. "#Config"). Errors are
// returned in the FormatError form.
func ValidateYAML(schema string, data []byte, definition string, opts ...Option) error {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}
	root := schemaValue.LookupPath(cue.ParsePath(definition))
	if root.Err() != nil {
		return fmt.Errorf("internal error: schema definition %s not found: %w", definition, root.Err())
	}

	file, err := cueyaml.Extract(options.filename, data)
	if err != nil {
		return FormatError(err, options.filename)
	}
	userValue := ctx.BuildFile(file)
	if userValue.Err() != nil {
		return FormatError(userValue.Err(), options.filename)
	}

	unified := root.Unify(userValue)
	var verr error
	if options.concrete {
		verr = unified.Validate(cue.Concrete(true))
	} else {
		verr = unified.Validate()
	}
	if verr != nil {
		return FormatError(verr, options.filename)
	}
	return nil
}
