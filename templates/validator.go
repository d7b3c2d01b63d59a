/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package templates provides JSON schema validation for tool arguments and
// the built-in task templates.
package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/xeipuuv/gojsonschema"

	"github.com/PivotLLM/clickup-mcp/logging"
)

// Validator checks tool arguments against JSON schemas and renders task templates
type Validator struct {
	logger      *logging.Logger
	mu          sync.RWMutex
	schemaCache map[string]*gojsonschema.Schema
}

// ValidationResult represents the result of a validation
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors,omitempty"`     // User-friendly error messages
	RawErrors []string `json:"raw_errors,omitempty"` // Original error messages from validator
}

// Error joins the friendly messages
func (r *ValidationResult) Error() string {
	return strings.Join(r.Errors, "; ")
}

// New creates a new Validator
func New(logger *logging.Logger) *Validator {
	return &Validator{
		logger:      logger,
		schemaCache: make(map[string]*gojsonschema.Schema),
	}
}

// ValidateJSON validates JSON data against a schema string
func (v *Validator) ValidateJSON(data []byte, schemaJSON string) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toValidationResult(result), nil
}

// ValidateArguments validates tool arguments against a tool's input schema.
// The compiled schema is cached under key.
func (v *Validator) ValidateArguments(key string, schema interface{}, args map[string]interface{}) (*ValidationResult, error) {
	compiled, err := v.compiled(key, schema)
	if err != nil {
		return nil, err
	}

	if args == nil {
		args = map[string]interface{}{}
	}
	result, err := compiled.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	validation := toValidationResult(result)
	if !validation.Valid {
		v.logger.Debugf("Arguments for %s failed validation: %s", key, validation.Error())
	}
	return validation, nil
}

// compiled returns the cached schema for key, compiling it on first use
func (v *Validator) compiled(key string, schema interface{}) (*gojsonschema.Schema, error) {
	v.mu.RLock()
	s, ok := v.schemaCache[key]
	v.mu.RUnlock()
	if ok {
		return s, nil
	}

	// Round-trip through JSON so struct schemas (such as mcp.ToolInputSchema) honour their tags
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema for %s: %w", key, err)
	}
	s, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema for %s: %w", key, err)
	}

	v.mu.Lock()
	v.schemaCache[key] = s
	v.mu.Unlock()
	return s, nil
}

func toValidationResult(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		out.RawErrors = append(out.RawErrors, e.String())
		out.Errors = append(out.Errors, describeError(e))
	}
	return out
}

// rootContext is how gojsonschema names the top-level document
const rootContext = "(root)"

// describeError phrases a schema violation in terms of the argument at fault
func describeError(e gojsonschema.ResultError) string {
	field := e.Field()
	atRoot := field == rootContext
	details := e.Details()

	switch e.Type() {
	case "required":
		if atRoot {
			return fmt.Sprintf("Missing required field: %v", details["property"])
		}
		return fmt.Sprintf("Missing required field: %v (in %s)", details["property"], field)
	case "additional_property_not_allowed":
		return fmt.Sprintf("Unexpected field: %v (not allowed by schema)", details["property"])
	case "invalid_type":
		if atRoot {
			field = "root object"
		}
		return fmt.Sprintf("Field '%s': expected %v, got %v", field, details["expected"], details["given"])
	case "enum":
		return fmt.Sprintf("Field '%s': must be one of %v", field, details["allowed"])
	}

	if atRoot {
		return e.Description()
	}
	return field + ": " + e.Description()
}

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"join":  strings.Join,
	"default": func(fallback, value interface{}) interface{} {
		if s, ok := value.(string); value == nil || (ok && s == "") {
			return fallback
		}
		return value
	},
}

// PopulateTemplate executes a text/template against data
func (v *Validator) PopulateTemplate(text string, data interface{}) (string, error) {
	tmpl, err := template.New("task").Funcs(funcs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
