package codemodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Load reads a code model document from r, validates it against the
// embedded schema, and returns an indexed Model.
func Load(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading code model: %w", err)
	}

	if err := validate(data); err != nil {
		return nil, fmt.Errorf("invalid code model: %w", err)
	}

	var project Project
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("decoding code model: %w", err)
	}

	return NewModel(&project), nil
}

// LoadFile loads a code model from a JSON file on disk.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening code model %q: %w", path, err)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// validate checks a raw document against the code model schema.
func validate(data []byte) error {
	sch, err := jsonschema.UnmarshalJSON(strings.NewReader(Schema))
	if err != nil {
		return fmt.Errorf("parsing schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("code-model.schema.json", sch); err != nil {
		return fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("code-model.schema.json")
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}
	return compiled.Validate(inst)
}
