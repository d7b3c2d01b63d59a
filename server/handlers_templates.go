/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/global"
	"github.com/PivotLLM/clickup-mcp/templates"
)

// Template Handlers

// taskSummary is the short form of a created task
type taskSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

func summarize(task *clickup.Task) taskSummary {
	task = taskWithURL(task)
	return taskSummary{ID: task.ID, Name: task.Name, URL: task.URL}
}

func (s *Server) handleTemplateList(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logToolCall(global.ToolTemplateList, nil)

	list := templates.ListTaskTemplates()
	return createJSONResult(map[string]interface{}{
		"templates": list,
		"count":     len(list),
	})
}

func (s *Server) handleTaskFromTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templateID := mcp.ParseString(request, "template", "")
	listID := mcp.ParseString(request, "list_id", "")
	customizations := parseObject(request, "customizations")

	cid := s.logToolCall(global.ToolTaskFromTemplate, map[string]string{"template": templateID, "list_id": listID})

	if templateID == "" {
		return s.paramError(cid, "template parameter is required"), nil
	}
	if listID == "" {
		return s.paramError(cid, "list_id parameter is required"), nil
	}

	rendered, err := s.validator.RenderTask(templateID, customizations)
	if err != nil {
		return s.paramError(cid, err.Error()), nil
	}

	priority := rendered.Priority
	task, err := s.client.CreateTask(ctx, listID, &clickup.CreateTaskRequest{
		Name:        rendered.Name,
		Description: rendered.Description,
		Priority:    &priority,
		Tags:        rendered.Tags,
	})
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	s.logger.Infof("Created task %s from template %s [%s]", task.ID, templateID, cid)

	summary := summarize(task)
	return createJSONResult(map[string]interface{}{
		"id":       summary.ID,
		"name":     summary.Name,
		"url":      summary.URL,
		"template": templateID,
	})
}

// chainStep is one requested task of a chain
type chainStep struct {
	Title        string
	Description  string
	TimeEstimate *int64
}

func parseChainSteps(request mcp.CallToolRequest) ([]chainStep, error) {
	raw, ok := request.GetArguments()["tasks"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("tasks must list at least one task")
	}
	steps := make([]chainStep, 0, len(raw))
	for i, item := range raw {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("tasks[%d] must be an object", i)
		}
		step := chainStep{}
		step.Title, _ = obj["title"].(string)
		step.Title = strings.TrimSpace(step.Title)
		if step.Title == "" {
			return nil, fmt.Errorf("tasks[%d] needs a title", i)
		}
		step.Description, _ = obj["description"].(string)
		if est, _ := obj["time_estimate"].(string); strings.TrimSpace(est) != "" {
			ms, err := global.ParseDuration(est)
			if err != nil {
				return nil, fmt.Errorf("tasks[%d].time_estimate: %w", i, err)
			}
			step.TimeEstimate = &ms
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func (s *Server) handleTaskChainCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listID := mcp.ParseString(request, "list_id", "")
	autoLink := mcp.ParseBoolean(request, "auto_link", true)

	cid := s.logToolCall(global.ToolTaskChainCreate, map[string]string{"list_id": listID, "auto_link": strconv.FormatBool(autoLink)})

	if listID == "" {
		return s.paramError(cid, "list_id parameter is required"), nil
	}
	steps, err := parseChainSteps(request)
	if err != nil {
		return s.paramError(cid, err.Error()), nil
	}

	created := make([]taskSummary, 0, len(steps))
	previous := ""
	for i, step := range steps {
		req := &clickup.CreateTaskRequest{
			Name:         step.Title,
			Description:  step.Description,
			TimeEstimate: step.TimeEstimate,
		}
		if autoLink {
			req.LinksTo = previous
		}
		task, err := s.client.CreateTask(ctx, listID, req)
		if err != nil {
			// Tasks already created stay; report them with the failure
			return s.chainFailure(cid, i, created, err), nil
		}
		created = append(created, summarize(task))
		previous = task.ID
	}

	linked := 0
	if autoLink && len(created) > 1 {
		linked = len(created) - 1
	}
	s.logger.Infof("Created chain of %d tasks in list %s [%s]", len(created), listID, cid)

	return createJSONResult(map[string]interface{}{
		"created": len(created),
		"tasks":   created,
		"linked":  linked,
	})
}

// chainFailure reports a chain that stopped at index failedAt
func (s *Server) chainFailure(cid string, failedAt int, created []taskSummary, err error) *mcp.CallToolResult {
	s.logger.Warnf("Task chain [%s] stopped at step %d after creating %d tasks: %v", cid, failedAt, len(created), err)
	body := map[string]interface{}{
		"error":          fmt.Sprintf("step %d failed: %v", failedAt, err),
		"kind":           clickup.KindOf(err),
		"type":           errorType(err),
		"correlation_id": cid,
		"failed_at":      failedAt,
		"created":        len(created),
		"tasks":          created,
	}
	data, mErr := json.Marshal(body)
	if mErr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(data))
}
