// Package validate is the contract guard between pipeline stages: each
// vndk-* tool that writes a system model, vendor footprint, plan or linker
// config unifies it against the embedded CUE schema before writing it, so
// a malformed artifact fails loudly instead of reaching the next stage.
// Documents the tools read from disk, policy files included, are decoded
// without passing through this package.
package validate

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

// Kind names one of the #Definitions in schema.cue.
type Kind string

const (
	KindApiModel        Kind = "#ApiModel"
	KindVendorFootprint Kind = "#VendorFootprint"
	KindPolicy          Kind = "#Policy"
	KindPlan            Kind = "#Plan"
	KindLinkerConfig    Kind = "#LinkerConfig"
)

// Validator checks JSON documents against the embedded schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema once; the returned Validator is safe
// for concurrent use across stages.
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{ctx: ctx, schema: schema}, nil
}

// Validate marshals data to JSON and unifies it against kind.
func (v *Validator) Validate(kind Kind, data any) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling %s data: %w", kind, err)
	}
	return v.ValidateJSON(kind, jsonBytes)
}

// ValidateJSON unifies raw JSON bytes against kind without an intermediate
// Go value — used by CLI tools reading an artifact straight off disk.
func (v *Validator) ValidateJSON(kind Kind, jsonBytes []byte) error {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling %s JSON as CUE: %w", kind, dataValue.Err())
	}

	def := v.schema.LookupPath(cue.ParsePath(string(kind)))
	if def.Err() != nil {
		return fmt.Errorf("looking up %s definition: %w", kind, def.Err())
	}

	unified := def.Unify(dataValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s schema validation failed: %w", kind, err)
	}
	return nil
}

// Errors returns one message per CUE validation failure, for callers that
// want to report every violation instead of stopping at the first.
func (v *Validator) Errors(kind Kind, data any) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return []string{fmt.Sprintf("compile error: %v", dataValue.Err())}
	}

	def := v.schema.LookupPath(cue.ParsePath(string(kind)))
	if def.Err() != nil {
		return []string{fmt.Sprintf("schema lookup error: %v", def.Err())}
	}

	unified := def.Unify(dataValue)
	err = unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var out []string
	for _, e := range errors.Errors(err) {
		out = append(out, e.Error())
	}
	return out
}
