/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/global"
)

// Comment, status and assignee handlers

func (s *Server) handleCommentList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := mcp.ParseString(request, "task_id", "")

	cid := s.logToolCall(global.ToolCommentList, map[string]string{"task_id": ref})

	if ref == "" {
		return s.paramError(cid, "task_id parameter is required"), nil
	}

	resolved, err := s.resolveTask(ctx, ref)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	comments, err := s.client.ListTaskComments(ctx, resolved.RawID)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	if comments == nil {
		comments = []clickup.Comment{}
	}

	return createJSONResult(map[string]interface{}{
		"task_id":  resolved.RawID,
		"comments": comments,
		"count":    len(comments),
	})
}

func (s *Server) handleCommentCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := mcp.ParseString(request, "task_id", "")
	text := mcp.ParseString(request, "comment_text", "")

	cid := s.logToolCall(global.ToolCommentCreate, map[string]string{"task_id": ref})

	if ref == "" {
		return s.paramError(cid, "task_id parameter is required"), nil
	}
	if strings.TrimSpace(text) == "" {
		return s.paramError(cid, "comment_text parameter is required"), nil
	}

	resolved, err := s.resolveTask(ctx, ref)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	created, err := s.client.CreateTaskComment(ctx, resolved.RawID, &clickup.CreateCommentRequest{
		CommentText: text,
		Assignee:    int64(mcp.ParseFloat64(request, "assignee", 0)),
		NotifyAll:   mcp.ParseBoolean(request, "notify_all", false),
	})
	if err != nil {
		return s.errorResult(cid, err), nil
	}

	return createJSONResult(map[string]interface{}{
		"task_id": resolved.RawID,
		"comment": created,
	})
}

func (s *Server) handleTaskStatusGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := mcp.ParseString(request, "task_id", "")

	cid := s.logToolCall(global.ToolTaskStatusGet, map[string]string{"task_id": ref})

	if ref == "" {
		return s.paramError(cid, "task_id parameter is required"), nil
	}

	resolved, err := s.resolveTask(ctx, ref)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	task, err := s.client.GetTask(ctx, resolved.RawID, nil)
	if err != nil {
		return s.errorResult(cid, err), nil
	}

	return createJSONResult(map[string]interface{}{
		"task_id": task.ID,
		"name":    task.Name,
		"status":  task.Status,
		"closed":  task.Status.IsClosed(),
	})
}

func (s *Server) handleTaskStatusUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := mcp.ParseString(request, "task_id", "")
	status := strings.TrimSpace(mcp.ParseString(request, "status", ""))

	cid := s.logToolCall(global.ToolTaskStatusUpdate, map[string]string{"task_id": ref, "status": status})

	if ref == "" {
		return s.paramError(cid, "task_id parameter is required"), nil
	}
	if status == "" {
		return s.paramError(cid, "status parameter is required"), nil
	}

	resolved, err := s.resolveTask(ctx, ref)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	task, err := s.client.UpdateTask(ctx, resolved.RawID, &clickup.UpdateTaskRequest{Status: &status})
	if err != nil {
		return s.errorResult(cid, err), nil
	}

	return createJSONResult(map[string]interface{}{
		"task_id": task.ID,
		"status":  task.Status,
	})
}

func (s *Server) handleAssigneesGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := mcp.ParseString(request, "task_id", "")

	cid := s.logToolCall(global.ToolAssigneesGet, map[string]string{"task_id": ref})

	if ref == "" {
		return s.paramError(cid, "task_id parameter is required"), nil
	}

	resolved, err := s.resolveTask(ctx, ref)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	task, err := s.client.GetTask(ctx, resolved.RawID, nil)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	assignees := task.Assignees
	if assignees == nil {
		assignees = []clickup.User{}
	}

	return createJSONResult(map[string]interface{}{
		"task_id":   task.ID,
		"assignees": assignees,
		"count":     len(assignees),
	})
}

func (s *Server) handleTaskAssign(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := mcp.ParseString(request, "task_id", "")

	cid := s.logToolCall(global.ToolTaskAssign, map[string]string{"task_id": ref})

	if ref == "" {
		return s.paramError(cid, "task_id parameter is required"), nil
	}
	add, err := parseIDSlice(request, "add")
	if err != nil {
		return s.paramError(cid, err.Error()), nil
	}
	remove, err := parseIDSlice(request, "remove")
	if err != nil {
		return s.paramError(cid, err.Error()), nil
	}
	if len(add) == 0 && len(remove) == 0 {
		return s.paramError(cid, "add or remove must list at least one user ID"), nil
	}

	resolved, err := s.resolveTask(ctx, ref)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	task, err := s.client.UpdateTask(ctx, resolved.RawID, &clickup.UpdateTaskRequest{
		Assignees: &clickup.AssigneesUpdate{Add: add, Rem: remove},
	})
	if err != nil {
		return s.errorResult(cid, err), nil
	}

	return createJSONResult(map[string]interface{}{
		"task_id":   task.ID,
		"assignees": task.Assignees,
		"added":     len(add),
		"removed":   len(remove),
	})
}
