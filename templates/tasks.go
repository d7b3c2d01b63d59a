/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package templates

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PivotLLM/clickup-mcp/global"
)

// TaskTemplate is a reusable task shape. Name and Body are Go templates
// rendered with the caller's customizations.
type TaskTemplate struct {
	ID         string   `json:"id"`
	Summary    string   `json:"summary"`
	NameFormat string   `json:"name_format"`
	Body       string   `json:"-"`
	Priority   int      `json:"priority"`
	Tags       []string `json:"tags"`
	Fields     []string `json:"fields,omitempty"`
}

// RenderedTask is a template applied to a set of customizations
type RenderedTask struct {
	Template    string   `json:"template"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Priority    int      `json:"priority"`
	Tags        []string `json:"tags"`
}

// Template IDs
const (
	TemplateBugReport      = "bug_report"
	TemplateFeatureRequest = "feature_request"
	TemplateCodeReview     = "code_review"
)

// CustomizationSchema is the JSON schema customizations must satisfy
const CustomizationSchema = `{
	"type": "object",
	"properties": {
		"title":       {"type": "string", "minLength": 1},
		"name":        {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"priority":    {"type": "integer", "minimum": 1, "maximum": 4},
		"tags":        {"type": "array", "items": {"type": "string"}}
	}
}`

var builtin = map[string]TaskTemplate{
	TemplateBugReport: {
		ID:         TemplateBugReport,
		Summary:    "Bug report with reproduction steps and environment",
		NameFormat: "Bug Report: {{.title}}",
		Body: `## Description
{{with .summary}}{{.}}{{else}}Brief description of the bug{{end}}

## Steps to Reproduce
1. Step 1
2. Step 2
3. Step 3

## Expected Behavior
What should happen

## Actual Behavior
What actually happens

## Environment
{{with .environment}}{{.}}{{else}}- OS:
- Browser:
- Version:{{end}}`,
		Priority: global.PriorityHigh,
		Tags:     []string{"bug"},
		Fields:   []string{"title", "summary", "environment"},
	},
	TemplateFeatureRequest: {
		ID:         TemplateFeatureRequest,
		Summary:    "Feature request with user story and acceptance criteria",
		NameFormat: "Feature: {{.title}}",
		Body: `## Feature Description
{{with .summary}}{{.}}{{else}}Brief description of the feature{{end}}

## User Story
As a [user type], I want [goal] so that [benefit].

## Acceptance Criteria
- [ ] Criterion 1
- [ ] Criterion 2
- [ ] Criterion 3

## Technical Notes
Implementation considerations`,
		Priority: global.PriorityNormal,
		Tags:     []string{"feature"},
		Fields:   []string{"title", "summary"},
	},
	TemplateCodeReview: {
		ID:         TemplateCodeReview,
		Summary:    "Code review checklist for a pull request",
		NameFormat: "Code Review: {{.title}}",
		Body: `## PR Link
{{with .pr_link}}{{.}}{{else}}[Link to pull request]{{end}}

## Changes Summary
Brief summary of changes

## Review Checklist
- [ ] Code follows style guidelines
- [ ] Tests are included
- [ ] Documentation is updated
- [ ] No console errors`,
		Priority: global.PriorityHigh,
		Tags:     []string{"review"},
		Fields:   []string{"title", "pr_link"},
	},
}

// ListTaskTemplates returns the built-in templates sorted by ID
func ListTaskTemplates() []TaskTemplate {
	out := make([]TaskTemplate, 0, len(builtin))
	for _, t := range builtin {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetTaskTemplate looks up a built-in template by ID
func GetTaskTemplate(id string) (TaskTemplate, bool) {
	t, ok := builtin[id]
	return t, ok
}

// TaskTemplateIDs returns the built-in template IDs, sorted
func TaskTemplateIDs() []string {
	ids := make([]string, 0, len(builtin))
	for id := range builtin {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RenderTask applies customizations to the template with the given ID.
// A title is required unless name is supplied. description, priority and tags
// override the template's values.
func (v *Validator) RenderTask(id string, customizations map[string]interface{}) (*RenderedTask, error) {
	tmpl, ok := GetTaskTemplate(id)
	if !ok {
		return nil, fmt.Errorf("unknown template %q (available: %s)", id, strings.Join(TaskTemplateIDs(), ", "))
	}
	if customizations == nil {
		customizations = map[string]interface{}{}
	}

	result, err := v.ValidateArguments("template:customizations", jsonSchema(CustomizationSchema), customizations)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid customizations: %s", result.Error())
	}

	rendered := &RenderedTask{
		Template: id,
		Priority: tmpl.Priority,
		Tags:     append([]string(nil), tmpl.Tags...),
	}

	if name, ok := customizations["name"].(string); ok {
		rendered.Name = name
	} else {
		if _, ok := customizations["title"].(string); !ok {
			return nil, fmt.Errorf("customizations must include a title")
		}
		if rendered.Name, err = v.PopulateTemplate(tmpl.NameFormat, customizations); err != nil {
			return nil, fmt.Errorf("failed to render name: %w", err)
		}
	}

	if desc, ok := customizations["description"].(string); ok {
		rendered.Description = desc
	} else if rendered.Description, err = v.PopulateTemplate(tmpl.Body, customizations); err != nil {
		return nil, fmt.Errorf("failed to render description: %w", err)
	}

	// JSON numbers arrive as float64; the schema already guarantees an integer
	if p, ok := customizations["priority"].(float64); ok {
		rendered.Priority = int(p)
	} else if p, ok := customizations["priority"].(int); ok {
		rendered.Priority = p
	}

	if tags, ok := customizations["tags"]; ok {
		rendered.Tags = toStrings(tags)
	}

	v.logger.Debugf("Rendered template %s as %q", id, rendered.Name)
	return rendered, nil
}

// jsonSchema wraps a schema string so it encodes as raw JSON
type jsonSchema string

// MarshalJSON returns the schema verbatim
func (s jsonSchema) MarshalJSON() ([]byte, error) {
	return []byte(s), nil
}

func toStrings(v interface{}) []string {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
