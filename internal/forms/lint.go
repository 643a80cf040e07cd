package forms

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var definitionSchema []byte

var (
	compiledSchema *gojsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func getSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(definitionSchema))
	})
	return compiledSchema, compileErr
}

// LintError lists the schema violations of a form definition.
type LintError struct {
	Problems []string
}

func (e *LintError) Error() string {
	return "invalid form definition:\n  " + strings.Join(e.Problems, "\n  ")
}

// Lint checks a YAML document against the form definition schema. It
// returns one description per violation, and an error only when the
// document cannot be parsed at all.
func Lint(data []byte) ([]string, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling form schema: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing form yaml: %w", err)
	}
	if doc == nil {
		return []string{"(root): document is empty"}, nil
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validating form: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return problems, nil
}
