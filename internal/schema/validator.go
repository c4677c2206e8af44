// Package schema checks the shape of persisted catalog documents before
// they are decoded.
package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed snapshot.schema.json
var snapshotSchema []byte

// Validator checks JSON documents against the snapshot schema. The schema
// is compiled once, on first use.
type Validator struct {
	once   sync.Once
	schema *gojsonschema.Schema
	err    error
}

// NewValidator creates a snapshot validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate reports whether doc has the snapshot shape. Extra fields are
// allowed; wrong types and missing record names are not.
func (v *Validator) Validate(doc []byte) error {
	v.once.Do(func() {
		v.schema, v.err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(snapshotSchema))
	})
	if v.err != nil {
		return fmt.Errorf("invalid schema definition: %w", v.err)
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation execution failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("schema validation failed:\n- %s", dumpErrors(errs))
}

// dumpErrors keeps the first three messages so a badly broken file does
// not flood the log.
func dumpErrors(errs []string) string {
	const max = 3
	if len(errs) <= max {
		return strings.Join(errs, "\n- ")
	}
	return strings.Join(errs[:max], "\n- ") + fmt.Sprintf("\n... and %d more", len(errs)-max)
}
