/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"context"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/PivotLLM/clickup-mcp/bulk"
	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/global"
	"github.com/PivotLLM/clickup-mcp/resolver"
)

// Bulk Handlers

// bulkItem is one entry of a bulk response, at the same index as its input
type bulkItem struct {
	Index     int          `json:"index"`
	Reference string       `json:"reference"`
	TaskID    string       `json:"task_id,omitempty"`
	Success   bool         `json:"success"`
	Error     string       `json:"error,omitempty"`
	Kind      clickup.Kind `json:"kind,omitempty"`
	Data      interface{}  `json:"data,omitempty"`
}

// bulkResponse is the body of every bulk tool result
type bulkResponse struct {
	OperationID string     `json:"operation_id"`
	Total       int        `json:"total"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	Results     []bulkItem `json:"results"`
}

func toBulkResponse[T any](operationID string, result bulk.Result[T]) bulkResponse {
	resp := bulkResponse{
		OperationID: operationID,
		Total:       len(result.Items),
		Succeeded:   result.Succeeded,
		Failed:      result.Failed,
		Results:     make([]bulkItem, len(result.Items)),
	}
	for i, item := range result.Items {
		out := bulkItem{
			Index:     item.Index,
			Reference: item.Reference,
			TaskID:    item.RawID,
			Success:   item.OK(),
		}
		if item.OK() {
			out.Data = item.Value
		} else {
			out.Error = item.Err.Error()
			out.Kind = clickup.KindOf(item.Err)
		}
		resp.Results[i] = out
	}
	return resp
}

// bulkTeam builds the team context for a batch. A failed workspace lookup is
// not fatal: only the items that need a team fail.
func (s *Server) bulkTeam(ctx context.Context, cid string, refs []string) *resolver.TeamContext {
	team, err := s.teamContext(ctx, refs...)
	if err != nil {
		s.logger.Warnf("Bulk [%s]: workspace lookup failed, custom and hash references will fail: %v", cid, err)
	}
	return team
}

// runBulk dispatches op over refs and wraps the outcome as a tool result
func runBulk[T any](ctx context.Context, s *Server, cid, toolName string, refs []string, op bulk.Op[T]) (*mcp.CallToolResult, error) {
	team := s.bulkTeam(ctx, cid, refs)
	result := bulk.Dispatch(ctx, s.dispatcher, refs, team, op)
	s.logger.Infof("%s [%s]: %d succeeded, %d failed", toolName, cid, result.Succeeded, result.Failed)
	return createJSONResult(toBulkResponse(cid, result))
}

func (s *Server) handleBulkUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refs := parseRefs(request, "task_ids")
	updates := parseObject(request, "updates")

	cid := s.logToolCall(global.ToolBulkUpdate, map[string]string{"count": strconv.Itoa(len(refs))})

	if len(refs) == 0 {
		return s.paramError(cid, "task_ids must list at least one task"), nil
	}
	if updates == nil {
		return s.paramError(cid, "updates parameter is required"), nil
	}

	// Reuse the single-task parsing on the nested object
	update, err := taskUpdateFromArgs(mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: updates}})
	if err != nil {
		return s.paramError(cid, "updates: "+err.Error()), nil
	}
	if update.IsEmpty() {
		return s.paramError(cid, "updates must set at least one field"), nil
	}

	return runBulk(ctx, s, cid, global.ToolBulkUpdate, refs, func(ctx context.Context, rawID string) (*clickup.Task, error) {
		task, err := s.client.UpdateTask(ctx, rawID, update)
		return taskWithURL(task), err
	})
}

func (s *Server) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refs := parseRefs(request, "task_ids")
	listID := mcp.ParseString(request, "list_id", "")

	cid := s.logToolCall(global.ToolBulkMove, map[string]string{"count": strconv.Itoa(len(refs)), "list_id": listID})

	if len(refs) == 0 {
		return s.paramError(cid, "task_ids must list at least one task"), nil
	}
	if listID == "" {
		return s.paramError(cid, "list_id parameter is required"), nil
	}

	return runBulk(ctx, s, cid, global.ToolBulkMove, refs, func(ctx context.Context, rawID string) (*clickup.Task, error) {
		task, err := s.client.MoveTask(ctx, rawID, listID)
		return taskWithURL(task), err
	})
}

func (s *Server) handleBulkDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refs := parseRefs(request, "task_ids")

	cid := s.logToolCall(global.ToolBulkDelete, map[string]string{"count": strconv.Itoa(len(refs))})

	if len(refs) == 0 {
		return s.paramError(cid, "task_ids must list at least one task"), nil
	}

	return runBulk(ctx, s, cid, global.ToolBulkDelete, refs, func(ctx context.Context, rawID string) (map[string]bool, error) {
		if err := s.client.DeleteTask(ctx, rawID); err != nil {
			return nil, err
		}
		return map[string]bool{"deleted": true}, nil
	})
}
