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

// User Handlers

func (s *Server) handleUserList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspace := mcp.ParseString(request, "workspace_id", "")

	cid := s.logToolCall(global.ToolUserList, map[string]string{"workspace_id": workspace})

	teamID, err := s.workspaceID(ctx, workspace)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	users, err := s.client.ListWorkspaceMembers(ctx, teamID)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return createJSONResult(map[string]interface{}{
		"workspace_id": teamID,
		"users":        users,
		"count":        len(users),
	})
}

func (s *Server) handleUserCurrent(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cid := s.logToolCall(global.ToolUserCurrent, nil)

	user, err := s.client.GetCurrentUser(ctx)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return createJSONResult(user)
}

func (s *Server) handleUserFindByName(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(mcp.ParseString(request, "name", ""))
	workspace := mcp.ParseString(request, "workspace_id", "")

	cid := s.logToolCall(global.ToolUserFindByName, map[string]string{"name": name, "workspace_id": workspace})

	if name == "" {
		return s.paramError(cid, "name parameter is required"), nil
	}

	teamID, err := s.workspaceID(ctx, workspace)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	users, err := s.client.ListWorkspaceMembers(ctx, teamID)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	matches := clickup.MatchUsers(users, name)
	if matches == nil {
		matches = []clickup.User{}
	}
	return createJSONResult(map[string]interface{}{
		"query":   name,
		"matches": matches,
		"count":   len(matches),
		"found":   len(matches) > 0,
	})
}

// System Handlers

func (s *Server) handleHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	check := mcp.ParseBoolean(request, "check_connection", false)

	cid := s.logToolCall(global.ToolHealth, nil)

	result := map[string]interface{}{
		"status":          "ok",
		"version":         global.Version,
		"uptime":          s.now().Sub(s.startedAt).Round(time.Second).String(),
		"tools":           len(s.toolOrder),
		"team_configured": s.config.TeamID() != "",
		"import_enabled":  s.importer.Enabled(),
	}

	if check {
		user, err := s.client.GetCurrentUser(ctx)
		if err != nil {
			s.logger.Warnf("Health check [%s]: connection failed: %v", cid, err)
			result["status"] = "degraded"
			result["connection"] = map[string]interface{}{
				"ok":    false,
				"error": err.Error(),
				"kind":  clickup.KindOf(err),
			}
		} else {
			result["connection"] = map[string]interface{}{
				"ok":       true,
				"user_id":  user.ID,
				"username": user.Username,
			}
		}
	}

	return createJSONResult(result)
}
