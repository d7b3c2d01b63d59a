/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTaskTemplates(t *testing.T) {
	list := ListTaskTemplates()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"bug_report", "code_review", "feature_request"}, TaskTemplateIDs())
	for i, tmpl := range list {
		assert.Equal(t, TaskTemplateIDs()[i], tmpl.ID)
		assert.NotEmpty(t, tmpl.Summary)
		assert.NotEmpty(t, tmpl.Tags)
	}
}

func TestRenderTaskDefaults(t *testing.T) {
	v := New(nil)

	tests := []struct {
		id       string
		wantName string
		priority int
		tags     []string
		section  string
	}{
		{TemplateBugReport, "Bug Report: Login fails", 2, []string{"bug"}, "## Steps to Reproduce"},
		{TemplateFeatureRequest, "Feature: Login fails", 3, []string{"feature"}, "As a [user type], I want [goal] so that [benefit]."},
		{TemplateCodeReview, "Code Review: Login fails", 2, []string{"review"}, "- [ ] Tests are included"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := v.RenderTask(tt.id, map[string]interface{}{"title": "Login fails"})
			require.NoError(t, err)
			assert.Equal(t, tt.id, got.Template)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.priority, got.Priority)
			assert.Equal(t, tt.tags, got.Tags)
			assert.Contains(t, got.Description, tt.section)
			assert.NotContains(t, got.Description, "<no value>")
		})
	}
}

func TestRenderTaskCustomizations(t *testing.T) {
	v := New(nil)

	got, err := v.RenderTask(TemplateBugReport, map[string]interface{}{
		"title":    "Crash",
		"priority": 1.0,
		"tags":     []interface{}{"bug", "urgent"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Priority)
	assert.Equal(t, []string{"bug", "urgent"}, got.Tags)

	got, err = v.RenderTask(TemplateCodeReview, map[string]interface{}{
		"title":   "PR 42",
		"pr_link": "https://github.com/x/y/pull/42",
	})
	require.NoError(t, err)
	assert.Contains(t, got.Description, "https://github.com/x/y/pull/42")

	got, err = v.RenderTask(TemplateFeatureRequest, map[string]interface{}{
		"name":        "Custom name",
		"description": "Just this",
	})
	require.NoError(t, err)
	assert.Equal(t, "Custom name", got.Name)
	assert.Equal(t, "Just this", got.Description)
}

func TestRenderTaskDoesNotShareTags(t *testing.T) {
	v := New(nil)
	got, err := v.RenderTask(TemplateBugReport, map[string]interface{}{"title": "x"})
	require.NoError(t, err)
	got.Tags[0] = "mutated"

	tmpl, ok := GetTaskTemplate(TemplateBugReport)
	require.True(t, ok)
	assert.Equal(t, []string{"bug"}, tmpl.Tags)
}

func TestRenderTaskErrors(t *testing.T) {
	v := New(nil)

	_, err := v.RenderTask("nope", map[string]interface{}{"title": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bug_report, code_review, feature_request")

	_, err = v.RenderTask(TemplateBugReport, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")

	_, err = v.RenderTask(TemplateBugReport, map[string]interface{}{"title": "x", "priority": 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid customizations")

	_, err = v.RenderTask(TemplateBugReport, map[string]interface{}{"title": 7})
	require.Error(t, err)
}
