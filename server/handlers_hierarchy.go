/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"context"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/PivotLLM/clickup-mcp/global"
)

// Hierarchy handlers: workspaces, spaces, folders and lists

func (s *Server) handleWorkspaceList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cid := s.logToolCall(global.ToolWorkspaceList, nil)

	workspaces, err := s.client.ListWorkspaces(ctx)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return createJSONResult(map[string]interface{}{
		"workspaces": workspaces,
		"count":      len(workspaces),
	})
}

func (s *Server) handleSpaceList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspace := mcp.ParseString(request, "workspace_id", "")
	archived := mcp.ParseBoolean(request, "archived", false)

	cid := s.logToolCall(global.ToolSpaceList, map[string]string{"workspace_id": workspace, "archived": strconv.FormatBool(archived)})

	teamID, err := s.workspaceID(ctx, workspace)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	spaces, err := s.client.ListSpaces(ctx, teamID, archived)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return createJSONResult(map[string]interface{}{
		"workspace_id": teamID,
		"spaces":       spaces,
		"count":        len(spaces),
	})
}

func (s *Server) handleFolderList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spaceID := mcp.ParseString(request, "space_id", "")
	archived := mcp.ParseBoolean(request, "archived", false)

	cid := s.logToolCall(global.ToolFolderList, map[string]string{"space_id": spaceID})

	if spaceID == "" {
		return s.paramError(cid, "space_id parameter is required"), nil
	}

	folders, err := s.client.ListFolders(ctx, spaceID, archived)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return createJSONResult(map[string]interface{}{
		"space_id": spaceID,
		"folders":  folders,
		"count":    len(folders),
	})
}

func (s *Server) handleListList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folderID := mcp.ParseString(request, "folder_id", "")
	spaceID := mcp.ParseString(request, "space_id", "")
	archived := mcp.ParseBoolean(request, "archived", false)

	cid := s.logToolCall(global.ToolListList, map[string]string{"folder_id": folderID, "space_id": spaceID})

	if (folderID == "") == (spaceID == "") {
		return s.paramError(cid, "exactly one of folder_id or space_id is required"), nil
	}

	result := map[string]interface{}{}
	var err error
	if folderID != "" {
		lists, lerr := s.client.ListFolderLists(ctx, folderID, archived)
		err = lerr
		result["folder_id"] = folderID
		result["lists"] = lists
		result["count"] = len(lists)
	} else {
		lists, lerr := s.client.ListFolderlessLists(ctx, spaceID, archived)
		err = lerr
		result["space_id"] = spaceID
		result["lists"] = lists
		result["count"] = len(lists)
	}
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return createJSONResult(result)
}

func (s *Server) handleListFindByName(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(mcp.ParseString(request, "name", ""))
	spaceID := mcp.ParseString(request, "space_id", "")
	workspace := mcp.ParseString(request, "workspace_id", "")

	cid := s.logToolCall(global.ToolListFindByName, map[string]string{"name": name, "space_id": spaceID})

	if name == "" {
		return s.paramError(cid, "name parameter is required"), nil
	}

	var teamID string
	if spaceID == "" {
		var err error
		if teamID, err = s.workspaceID(ctx, workspace); err != nil {
			return s.errorResult(cid, err), nil
		}
	}
	list, err := s.client.FindListByName(ctx, teamID, spaceID, name)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return createJSONResult(list)
}
