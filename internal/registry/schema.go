package registry

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaURL identifies the embedded registry schema
const SchemaURL = "https://chadcn.dev/schema/registry.json"

//go:embed data/registry.schema.json
var registrySchema []byte

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaOnce sync.Once
	compiledSchemaErr  error
)

// ErrSchemaValidation is returned when a document does not match the registry schema
var ErrSchemaValidation = errors.New("registry schema validation failed")

func loadSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(registrySchema))
		if err != nil {
			compiledSchemaErr = fmt.Errorf("parse registry schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.DefaultDraft(jsonschema.Draft2020)
		if err := compiler.AddResource(SchemaURL, doc); err != nil {
			compiledSchemaErr = fmt.Errorf("add registry schema: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile(SchemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

// ValidateDocument checks a parsed document against the embedded registry
// schema. Numbers in value must be json.Number or float64.
func ValidateDocument(value any) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(value); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrSchemaValidation, verr.Error())
		}
		return fmt.Errorf("%w: %w", ErrSchemaValidation, err)
	}
	return nil
}
