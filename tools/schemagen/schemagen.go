// Package main regenerates the op script JSON Schema from the pkg/script
// types, keeping the embedded schema and the Go structs in step.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/manan/range-list/pkg/script"
)

const defaultOutput = "pkg/script/schema/script.schema.json"

// Schema represents a JSON Schema document.
type Schema struct {
	SchemaURI            string             `json:"$schema,omitempty"`
	ID                   string             `json:"$id,omitempty"`
	Title                string             `json:"title,omitempty"`
	Description          string             `json:"description,omitempty"`
	Type                 string             `json:"type,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
}

// fieldDescriptions documents the script fields; reflection supplies the
// structure, this map supplies the prose.
var fieldDescriptions = map[string]string{
	"name":   "Optional human-readable script name.",
	"ops":    "Operations applied in order.",
	"op":     "Operation kind.",
	"from":   "Inclusive range start.",
	"to":     "Exclusive range end.",
	"amount": "Intensity delta for add, absolute intensity for set.",
}

func main() {
	output := flag.String("o", defaultOutput, "Output path for the script schema")
	flag.Parse()

	schema := reflectSchema(reflect.TypeOf(script.Script{}))
	schema.SchemaURI = "http://json-schema.org/draft-07/schema#"
	schema.ID = "https://github.com/manan/range-list/pkg/script/schema/script.schema.json"
	schema.Title = "Range intensity op script"
	schema.Description = "A named sequence of add/set operations applied to an intensity accumulator."

	if err := writeSchema(*output, schema); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", *output)
}

// reflectSchema derives a schema node from a Go type using its json tags.
func reflectSchema(t reflect.Type) *Schema {
	switch t.Kind() {
	case reflect.Struct:
		return reflectStructSchema(t)
	case reflect.Slice:
		return &Schema{Type: "array", Items: reflectSchema(t.Elem())}
	case reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.String:
		schema := &Schema{Type: "string"}

		// OpKind is a closed set.
		if t == reflect.TypeOf(script.OpKind("")) {
			schema.Enum = []string{string(script.OpAdd), string(script.OpSet)}
		}

		return schema
	default:
		return &Schema{}
	}
}

func reflectStructSchema(t reflect.Type) *Schema {
	closed := false
	schema := &Schema{
		Type:                 "object",
		Properties:           map[string]*Schema{},
		AdditionalProperties: &closed,
	}

	for i := range t.NumField() {
		field := t.Field(i)

		name, optional := jsonName(field)
		if name == "" {
			continue
		}

		fieldSchema := reflectSchema(field.Type)
		fieldSchema.Description = fieldDescriptions[name]
		schema.Properties[name] = fieldSchema

		if !optional {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}

// jsonName resolves a struct field's JSON property name and whether it is
// optional (omitempty).
func jsonName(field reflect.StructField) (name string, optional bool) {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return "", false
	}

	parts := strings.Split(tag, ",")

	return parts[0], len(parts) > 1 && parts[1] == "omitempty"
}

func writeSchema(path string, schema *Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // generated artifact
		return fmt.Errorf("write schema: %w", err)
	}

	return nil
}
