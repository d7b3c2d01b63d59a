/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"context"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/global"
)

// analyticsMaxPages caps the search pages read for one analytics report
const analyticsMaxPages = 20

// analyticsPageSize is the page size of the ClickUp task search endpoint
const analyticsPageSize = 100

// Analytics Handlers

// renderReport returns markdown as text and anything else as JSON
func (s *Server) renderReport(cid string, report interface{}, format string) (*mcp.CallToolResult, error) {
	switch format {
	case "", global.ResponseFormatJSON:
		return createJSONResult(report)
	case global.ResponseFormatMarkdown:
		text, err := s.reporter.Render(report, format)
		if err != nil {
			return s.errorResult(cid, err), nil
		}
		return mcp.NewToolResultText(text), nil
	default:
		return s.paramError(cid, "response_format must be json or markdown"), nil
	}
}

func (s *Server) handleTeamWorkload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spaceID := mcp.ParseString(request, "space_id", "")
	includeCompleted := mcp.ParseBoolean(request, "include_completed", false)
	format := mcp.ParseString(request, "response_format", global.ResponseFormatJSON)

	cid := s.logToolCall(global.ToolTeamWorkload, map[string]string{
		"space_id": spaceID, "include_completed": strconv.FormatBool(includeCompleted), "response_format": format,
	})

	if spaceID == "" {
		return s.paramError(cid, "space_id parameter is required"), nil
	}

	lists, err := s.client.ListSpaceLists(ctx, spaceID)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	tasks, failures, err := s.client.ListTasksInLists(ctx, lists, &clickup.TaskQuery{IncludeClosed: includeCompleted})
	if err != nil {
		return s.errorResult(cid, err), nil
	}

	report := s.reporter.BuildWorkload(spaceID, tasks, includeCompleted)
	report.FailedLists = failures
	return s.renderReport(cid, report, format)
}

func (s *Server) handleTaskAnalytics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spaceID := mcp.ParseString(request, "space_id", "")
	periodDays := int(mcp.ParseFloat64(request, "period_days", global.DefaultAnalyticsDays))
	workspace := mcp.ParseString(request, "workspace_id", "")
	format := mcp.ParseString(request, "response_format", global.ResponseFormatJSON)

	cid := s.logToolCall(global.ToolTaskAnalytics, map[string]string{
		"space_id": spaceID, "period_days": strconv.Itoa(periodDays), "response_format": format,
	})

	if spaceID == "" {
		return s.paramError(cid, "space_id parameter is required"), nil
	}
	from, to, err := s.reporter.AnalyticsWindow(periodDays)
	if err != nil {
		return s.paramError(cid, err.Error()), nil
	}

	teamID, err := s.workspaceID(ctx, workspace)
	if err != nil {
		return s.errorResult(cid, err), nil
	}

	var tasks []clickup.Task
	for page := 0; page < analyticsMaxPages; page++ {
		batch, err := s.client.SearchTasks(ctx, teamID, &clickup.SearchQuery{
			Page:          page,
			SpaceIDs:      []string{spaceID},
			IncludeClosed: true,
			Subtasks:      true,
			DateCreatedGt: from.UnixMilli(),
			DateCreatedLt: to.UnixMilli(),
		})
		if err != nil {
			return s.errorResult(cid, err), nil
		}
		tasks = append(tasks, batch...)
		if len(batch) < analyticsPageSize {
			break
		}
		if page == analyticsMaxPages-1 {
			s.logger.Warnf("Analytics [%s]: stopped after %d pages, report is partial", cid, analyticsMaxPages)
		}
	}

	report, err := s.reporter.BuildAnalytics(spaceID, tasks, periodDays)
	if err != nil {
		return s.paramError(cid, err.Error()), nil
	}
	return s.renderReport(cid, report, format)
}
