/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/global"
)

// Time Tracking Handlers

func (s *Server) handleTimeTracked(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := mcp.ParseString(request, "task_id", "")
	startArg := mcp.ParseString(request, "start_date", "")
	endArg := mcp.ParseString(request, "end_date", "")
	days := int(mcp.ParseFloat64(request, "days", global.DefaultTimeTrackedDays))
	assignee := mcp.ParseString(request, "assignee", "")
	workspace := mcp.ParseString(request, "workspace_id", "")

	cid := s.logToolCall(global.ToolTimeTracked, map[string]string{
		"task_id": ref, "start_date": startArg, "end_date": endArg, "assignee": assignee,
	})

	if days < 1 {
		return s.paramError(cid, "days must be at least 1"), nil
	}

	end := s.now()
	if endArg != "" {
		t, err := global.ParseISOTime(endArg, time.UTC)
		if err != nil {
			return s.paramError(cid, "end_date: "+err.Error()), nil
		}
		end = t
	}
	start := end.AddDate(0, 0, -days)
	if startArg != "" {
		t, err := global.ParseISOTime(startArg, time.UTC)
		if err != nil {
			return s.paramError(cid, "start_date: "+err.Error()), nil
		}
		start = t
	}
	if !start.Before(end) {
		return s.paramError(cid, "start_date must be before end_date"), nil
	}

	q := &clickup.TimeEntryQuery{
		StartDate: start.UnixMilli(),
		EndDate:   end.UnixMilli(),
		Assignee:  assignee,
	}
	if ref != "" {
		resolved, err := s.resolveTask(ctx, ref)
		if err != nil {
			return s.errorResult(cid, err), nil
		}
		q.TaskID = resolved.RawID
	}

	teamID, err := s.workspaceID(ctx, workspace)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	entries, err := s.client.ListTimeEntries(ctx, teamID, q)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	if entries == nil {
		entries = []clickup.TimeEntry{}
	}

	var total int64
	for _, e := range entries {
		// running timers report negative durations
		if d := e.DurationMillis(); d > 0 {
			total += d
		}
	}

	return createJSONResult(map[string]interface{}{
		"entries":           entries,
		"count":             len(entries),
		"start":             start.UTC().Format(time.RFC3339),
		"end":               end.UTC().Format(time.RFC3339),
		"total_duration_ms": total,
		"total_duration":    global.FormatDuration(total),
	})
}

func (s *Server) handleTimeLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := mcp.ParseString(request, "task_id", "")
	durationArg := strings.TrimSpace(mcp.ParseString(request, "duration", ""))
	startArg := mcp.ParseString(request, "start", "")

	cid := s.logToolCall(global.ToolTimeLog, map[string]string{"task_id": ref, "duration": durationArg, "start": startArg})

	if ref == "" {
		return s.paramError(cid, "task_id parameter is required"), nil
	}
	duration, err := global.ParseDuration(durationArg)
	if err != nil {
		return s.paramError(cid, err.Error()), nil
	}
	if duration == 0 {
		return s.paramError(cid, "duration must be greater than zero"), nil
	}

	start := s.now().Add(-time.Duration(duration) * time.Millisecond)
	if startArg != "" {
		t, err := global.ParseISOTime(startArg, time.UTC)
		if err != nil {
			return s.paramError(cid, "start: "+err.Error()), nil
		}
		start = t
	}

	resolved, err := s.resolveTask(ctx, ref)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	teamID, err := s.workspaceID(ctx, "")
	if err != nil {
		return s.errorResult(cid, err), nil
	}

	entry, err := s.client.CreateTimeEntry(ctx, teamID, &clickup.CreateTimeEntryRequest{
		TaskID:      resolved.RawID,
		Description: mcp.ParseString(request, "description", ""),
		Start:       start.UnixMilli(),
		Duration:    duration,
		Billable:    mcp.ParseBoolean(request, "billable", false),
	})
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	s.logger.Infof("Logged %s on task %s [%s]", global.FormatDuration(duration), resolved.RawID, cid)

	return createJSONResult(map[string]interface{}{
		"task_id":  resolved.RawID,
		"entry":    entry,
		"duration": global.FormatDuration(duration),
	})
}
