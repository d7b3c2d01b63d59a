/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateJSON(t *testing.T) {
	v := New(nil)

	schema := `{
		"type": "object",
		"required": ["task_id"],
		"properties": {
			"task_id": {"type": "string"},
			"priority": {"type": "integer"}
		}
	}`

	tests := []struct {
		name  string
		data  string
		valid bool
	}{
		{
			name:  "valid with required field",
			data:  `{"task_id": "86abc"}`,
			valid: true,
		},
		{
			name:  "valid with all fields",
			data:  `{"task_id": "86abc", "priority": 2}`,
			valid: true,
		},
		{
			name:  "invalid missing required field",
			data:  `{"priority": 2}`,
			valid: false,
		},
		{
			name:  "invalid wrong type",
			data:  `{"task_id": 123}`,
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.ValidateJSON([]byte(tt.data), schema)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.Errors)
				assert.Len(t, result.RawErrors, len(result.Errors))
			}
		})
	}
}

func TestValidateArguments(t *testing.T) {
	v := New(nil)

	schema := map[string]interface{}{
		"type":     "object",
		"required": []string{"task_ids"},
		"properties": map[string]interface{}{
			"task_ids": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"priority": map[string]interface{}{"type": "number"},
		},
	}

	result, err := v.ValidateArguments("bulk", schema, map[string]interface{}{
		"task_ids": []interface{}{"86a", "gh-1"},
		"priority": 2.0,
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = v.ValidateArguments("bulk", schema, nil)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Missing required field: task_ids", result.Error())

	result, err = v.ValidateArguments("bulk", schema, map[string]interface{}{"task_ids": "86a"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error(), "task_ids")
}

func TestValidateArgumentsCachesSchema(t *testing.T) {
	v := New(nil)
	first := map[string]interface{}{"type": "object", "required": []string{"a"}}
	second := map[string]interface{}{"type": "object", "required": []string{"b"}}

	_, err := v.ValidateArguments("tool", first, map[string]interface{}{"a": 1})
	require.NoError(t, err)

	// Same key, different schema: the first compiled schema wins
	result, err := v.ValidateArguments("tool", second, map[string]interface{}{"a": 1})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Len(t, v.schemaCache, 1)
}

func TestValidateArgumentsBadSchema(t *testing.T) {
	v := New(nil)
	_, err := v.ValidateArguments("broken", map[string]interface{}{"type": 42}, nil)
	assert.Error(t, err)
	assert.Empty(t, v.schemaCache)
}

func TestDescribeError(t *testing.T) {
	v := New(nil)

	schema := `{
		"type": "object",
		"additionalProperties": false,
		"required": ["task_id"],
		"properties": {
			"task_id": {"type": "string"},
			"priority": {"type": "integer", "minimum": 1},
			"format": {"type": "string", "enum": ["json", "markdown"]},
			"updates": {"type": "object", "required": ["status"]}
		}
	}`

	tests := []struct {
		name   string
		data   string
		want   string
		prefix bool
	}{
		{"missing at root", `{}`, "Missing required field: task_id", false},
		{"missing nested", `{"task_id": "a", "updates": {}}`, "Missing required field: status (in updates)", false},
		{"unexpected field", `{"task_id": "a", "foo": 1}`, "Unexpected field: foo (not allowed by schema)", false},
		{"wrong type", `{"task_id": "a", "priority": "high"}`, "Field 'priority': expected integer, got string", false},
		{"wrong root type", `[]`, "Field 'root object': expected object, got array", false},
		{"enum", `{"task_id": "a", "format": "xml"}`, "Field 'format': must be one of", true},
		{"other keyword", `{"task_id": "a", "priority": 0}`, "priority: ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.ValidateJSON([]byte(tt.data), schema)
			require.NoError(t, err)
			require.False(t, result.Valid)
			require.Len(t, result.Errors, 1, result.RawErrors)
			if tt.prefix {
				assert.True(t, strings.HasPrefix(result.Errors[0], tt.want), result.Errors[0])
			} else {
				assert.Equal(t, tt.want, result.Errors[0])
			}
		})
	}
}

func TestPopulateTemplate(t *testing.T) {
	v := New(nil)

	tests := []struct {
		name     string
		template string
		data     interface{}
		want     string
		wantErr  bool
	}{
		{
			name:     "simple substitution",
			template: "Hello {{.name}}",
			data:     map[string]interface{}{"name": "World"},
			want:     "Hello World",
		},
		{
			name:     "upper and lower",
			template: "{{upper .a}} {{lower .b}}",
			data:     map[string]interface{}{"a": "up", "b": "DOWN"},
			want:     "UP down",
		},
		{
			name:     "join",
			template: `{{join .tags ", "}}`,
			data:     map[string]interface{}{"tags": []string{"bug", "ui"}},
			want:     "bug, ui",
		},
		{
			name:     "default on missing",
			template: `{{default "n/a" .missing}}`,
			data:     map[string]interface{}{},
			want:     "n/a",
		},
		{
			name:     "default on empty string",
			template: `{{default "n/a" .s}}`,
			data:     map[string]interface{}{"s": ""},
			want:     "n/a",
		},
		{
			name:     "parse error",
			template: "{{.name",
			data:     nil,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.PopulateTemplate(tt.template, tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidationResultError(t *testing.T) {
	r := &ValidationResult{Errors: []string{"a", "b"}}
	assert.Equal(t, "a; b", r.Error())
	assert.True(t, strings.HasPrefix(r.Error(), "a"))
}
