// Package script loads and applies op scripts: named sequences of add/set
// operations that drive an intensity accumulator. JSON scripts are validated
// against the embedded JSON Schema before decoding; YAML scripts are checked
// structurally after decoding.
package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/manan/range-list/pkg/intensity"
)

// Script parsing errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported script format")
	ErrUnknownOp         = errors.New("unknown op kind")
	ErrNonFinite         = errors.New("non-finite range value")
	ErrSchemaViolation   = errors.New("script violates the schema")
)

// OpKind names an accumulator operation.
type OpKind string

// Supported op kinds.
const (
	OpAdd OpKind = "add"
	OpSet OpKind = "set"
)

// Op is a single accumulator operation on the half-open range [From, To).
type Op struct {
	Kind   OpKind  `json:"op"     yaml:"op"`
	From   float64 `json:"from"   yaml:"from"`
	To     float64 `json:"to"     yaml:"to"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// Script is an ordered op sequence with an optional name.
type Script struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Ops  []Op   `json:"ops"            yaml:"ops"`
}

// Load reads a script file, dispatching on the extension: .yaml/.yml parse
// as YAML, .json validates against the embedded schema and parses as JSON.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ParseYAML decodes a YAML script and checks op kinds and value finiteness.
func ParseYAML(data []byte) (*Script, error) {
	var s Script

	err := yaml.Unmarshal(data, &s)
	if err != nil {
		return nil, fmt.Errorf("decode yaml script: %w", err)
	}

	err = validateOps(&s)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// ParseJSON validates a JSON script against the embedded schema, then
// decodes it and checks op kinds and value finiteness.
func ParseJSON(data []byte) (*Script, error) {
	err := validateSchema(data)
	if err != nil {
		return nil, err
	}

	var s Script

	err = json.Unmarshal(data, &s)
	if err != nil {
		return nil, fmt.Errorf("decode json script: %w", err)
	}

	err = validateOps(&s)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Apply performs the operation on the accumulator.
func (op Op) Apply(seg *intensity.Segments) error {
	switch op.Kind {
	case OpAdd:
		seg.Add(op.From, op.To, op.Amount)
	case OpSet:
		seg.Set(op.From, op.To, op.Amount)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, op.Kind)
	}

	return nil
}

// Apply performs every operation in order on the accumulator.
func (s *Script) Apply(seg *intensity.Segments) error {
	for i, op := range s.Ops {
		err := op.Apply(seg)
		if err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}

	return nil
}

// Len returns the number of operations.
func (s *Script) Len() int {
	return len(s.Ops)
}

// validateSchema checks raw JSON against the embedded script schema.
func validateSchema(data []byte) error {
	schemaBytes, err := ScriptSchemaFS.ReadFile(schemaFileName)
	if err != nil {
		return fmt.Errorf("read embedded schema: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		details = append(details, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(details, "; "))
}

// validateOps rejects unknown kinds and non-finite range values. The
// accumulator itself never validates inputs, so scripts are the boundary
// where bad values must stop.
func validateOps(s *Script) error {
	for i, op := range s.Ops {
		if op.Kind != OpAdd && op.Kind != OpSet {
			return fmt.Errorf("op %d: %w: %q", i, ErrUnknownOp, op.Kind)
		}

		for _, v := range [3]float64{op.From, op.To, op.Amount} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("op %d: %w", i, ErrNonFinite)
			}
		}
	}

	return nil
}
