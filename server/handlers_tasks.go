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

	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/global"
)

// Task Handlers

// taskWithURL fills in the task URL when the API left it empty
func taskWithURL(task *clickup.Task) *clickup.Task {
	if task != nil && task.URL == "" && task.ID != "" {
		task.URL = clickup.FormatTaskURL(task.ID)
	}
	return task
}

// taskUpdateFromArgs builds an update from the optional fields in args
func taskUpdateFromArgs(request mcp.CallToolRequest) (*clickup.UpdateTaskRequest, error) {
	update := &clickup.UpdateTaskRequest{}
	for key, field := range map[string]**string{
		"name":        &update.Name,
		"description": &update.Description,
		"status":      &update.Status,
	} {
		if hasArg(request, key) {
			v := mcp.ParseString(request, key, "")
			*field = &v
		}
	}

	priority, err := parsePriority(request, "priority")
	if err != nil {
		return nil, err
	}
	update.Priority = priority

	if update.DueDate, err = parseDueDate(request, "due_date"); err != nil {
		return nil, err
	}
	if update.TimeEstimate, err = parseEstimate(request, "time_estimate"); err != nil {
		return nil, err
	}
	return update, nil
}

func (s *Server) handleTaskCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(mcp.ParseString(request, "name", ""))
	listID := mcp.ParseString(request, "list_id", "")
	listName := mcp.ParseString(request, "list_name", "")
	parent := mcp.ParseString(request, "parent", "")

	cid := s.logToolCall(global.ToolTaskCreate, map[string]string{"name": name, "list_id": listID, "list_name": listName, "parent": parent})

	if name == "" {
		return s.paramError(cid, "name parameter is required"), nil
	}
	if listID == "" && listName == "" {
		return s.paramError(cid, "list_id or list_name is required"), nil
	}

	req := &clickup.CreateTaskRequest{
		Name:        name,
		Description: mcp.ParseString(request, "description", ""),
		Status:      mcp.ParseString(request, "status", ""),
		Tags:        parseStringSlice(request, "tags"),
	}
	var err error
	if req.Priority, err = parsePriority(request, "priority"); err != nil {
		return s.paramError(cid, err.Error()), nil
	}
	if req.Assignees, err = parseIDSlice(request, "assignees"); err != nil {
		return s.paramError(cid, err.Error()), nil
	}
	if req.DueDate, err = parseDueDate(request, "due_date"); err != nil {
		return s.paramError(cid, err.Error()), nil
	}
	if req.TimeEstimate, err = parseEstimate(request, "time_estimate"); err != nil {
		return s.paramError(cid, err.Error()), nil
	}

	if parent != "" {
		resolved, err := s.resolveTask(ctx, parent)
		if err != nil {
			return s.errorResult(cid, err), nil
		}
		req.Parent = resolved.RawID
	}

	if listID == "" {
		teamID, err := s.workspaceID(ctx, "")
		if err != nil {
			return s.errorResult(cid, err), nil
		}
		list, err := s.client.FindListByName(ctx, teamID, "", listName)
		if err != nil {
			return s.errorResult(cid, err), nil
		}
		listID = list.ID
	}

	task, err := s.client.CreateTask(ctx, listID, req)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	s.logger.Infof("Created task %s in list %s [%s]", task.ID, listID, cid)
	return createJSONResult(taskWithURL(task))
}

func (s *Server) handleTaskGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := mcp.ParseString(request, "task_id", "")
	includeSubtasks := mcp.ParseBoolean(request, "include_subtasks", false)

	cid := s.logToolCall(global.ToolTaskGet, map[string]string{"task_id": ref, "include_subtasks": strconv.FormatBool(includeSubtasks)})

	if ref == "" {
		return s.paramError(cid, "task_id parameter is required"), nil
	}

	resolved, err := s.resolveTask(ctx, ref)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	task, err := s.client.GetTask(ctx, resolved.RawID, &clickup.GetTaskOptions{IncludeSubtasks: includeSubtasks})
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return createJSONResult(taskWithURL(task))
}

func (s *Server) handleTaskUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := mcp.ParseString(request, "task_id", "")

	cid := s.logToolCall(global.ToolTaskUpdate, map[string]string{"task_id": ref})

	if ref == "" {
		return s.paramError(cid, "task_id parameter is required"), nil
	}
	update, err := taskUpdateFromArgs(request)
	if err != nil {
		return s.paramError(cid, err.Error()), nil
	}
	if update.IsEmpty() {
		return s.paramError(cid, "no fields to update"), nil
	}

	resolved, err := s.resolveTask(ctx, ref)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	task, err := s.client.UpdateTask(ctx, resolved.RawID, update)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return createJSONResult(taskWithURL(task))
}

func (s *Server) handleTaskDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := mcp.ParseString(request, "task_id", "")

	cid := s.logToolCall(global.ToolTaskDelete, map[string]string{"task_id": ref})

	if ref == "" {
		return s.paramError(cid, "task_id parameter is required"), nil
	}

	resolved, err := s.resolveTask(ctx, ref)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	if err := s.client.DeleteTask(ctx, resolved.RawID); err != nil {
		return s.errorResult(cid, err), nil
	}
	s.logger.Infof("Deleted task %s [%s]", resolved.RawID, cid)
	return createJSONResult(map[string]interface{}{
		"deleted": true,
		"task_id": resolved.RawID,
	})
}

func (s *Server) handleTaskList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listID := mcp.ParseString(request, "list_id", "")
	folderID := mcp.ParseString(request, "folder_id", "")
	spaceID := mcp.ParseString(request, "space_id", "")

	cid := s.logToolCall(global.ToolTaskList, map[string]string{"list_id": listID, "folder_id": folderID, "space_id": spaceID})

	given := 0
	for _, v := range []string{listID, folderID, spaceID} {
		if v != "" {
			given++
		}
	}
	if given != 1 {
		return s.paramError(cid, "exactly one of list_id, folder_id or space_id is required"), nil
	}

	q := &clickup.TaskQuery{
		Archived:      mcp.ParseBoolean(request, "archived", false),
		Page:          int(mcp.ParseFloat64(request, "page", 0)),
		OrderBy:       mcp.ParseString(request, "order_by", ""),
		Subtasks:      mcp.ParseBoolean(request, "subtasks", false),
		IncludeClosed: mcp.ParseBoolean(request, "include_closed", false),
		Statuses:      parseStringSlice(request, "statuses"),
		Assignees:     parseStringSlice(request, "assignees"),
		Tags:          parseStringSlice(request, "tags"),
	}

	var (
		tasks    []clickup.Task
		failures []clickup.ListFailure
		err      error
	)
	switch {
	case listID != "":
		tasks, err = s.client.ListTasks(ctx, listID, q)
	case folderID != "":
		var lists []clickup.List
		if lists, err = s.client.ListFolderLists(ctx, folderID, false); err == nil {
			tasks, failures, err = s.client.ListTasksInLists(ctx, lists, q)
		}
	default:
		var lists []clickup.List
		if lists, err = s.client.ListSpaceLists(ctx, spaceID); err == nil {
			tasks, failures, err = s.client.ListTasksInLists(ctx, lists, q)
		}
	}
	if err != nil {
		return s.errorResult(cid, err), nil
	}

	result := map[string]interface{}{
		"tasks": nonNilTasks(tasks),
		"count": len(tasks),
		"page":  q.Page,
	}
	if len(failures) > 0 {
		s.logger.Warnf("%s [%s]: %d list(s) could not be read", global.ToolTaskList, cid, len(failures))
		result["partial"] = true
		result["failed_lists"] = failures
	}
	return createJSONResult(result)
}

func (s *Server) handleTaskSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(mcp.ParseString(request, "query", ""))
	workspace := mcp.ParseString(request, "workspace_id", "")

	cid := s.logToolCall(global.ToolTaskSearch, map[string]string{"query": query, "workspace_id": workspace})

	teamID, err := s.workspaceID(ctx, workspace)
	if err != nil {
		return s.errorResult(cid, err), nil
	}

	tasks, err := s.client.SearchTasks(ctx, teamID, &clickup.SearchQuery{
		Page:          int(mcp.ParseFloat64(request, "page", 0)),
		SpaceIDs:      parseStringSlice(request, "space_ids"),
		ListIDs:       parseStringSlice(request, "list_ids"),
		Statuses:      parseStringSlice(request, "statuses"),
		Assignees:     parseStringSlice(request, "assignees"),
		Tags:          parseStringSlice(request, "tags"),
		IncludeClosed: mcp.ParseBoolean(request, "include_closed", false),
	})
	if err != nil {
		return s.errorResult(cid, err), nil
	}

	matched := filterTasks(tasks, query)
	return createJSONResult(map[string]interface{}{
		"tasks":        nonNilTasks(matched),
		"count":        len(matched),
		"query":        query,
		"workspace_id": teamID,
	})
}

// filterTasks keeps tasks whose name or description contains query, case-insensitively
func filterTasks(tasks []clickup.Task, query string) []clickup.Task {
	q := strings.ToLower(query)
	if q == "" {
		return tasks
	}
	var out []clickup.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Description), q) ||
			strings.Contains(strings.ToLower(t.TextContent), q) {
			out = append(out, t)
		}
	}
	return out
}

func nonNilTasks(tasks []clickup.Task) []clickup.Task {
	if tasks == nil {
		return []clickup.Task{}
	}
	return tasks
}

func (s *Server) handleSubtasksGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := mcp.ParseString(request, "task_id", "")

	cid := s.logToolCall(global.ToolSubtasksGet, map[string]string{"task_id": ref})

	if ref == "" {
		return s.paramError(cid, "task_id parameter is required"), nil
	}

	resolved, err := s.resolveTask(ctx, ref)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	teamID, err := s.workspaceID(ctx, "")
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	subtasks, err := s.client.GetSubtasks(ctx, teamID, resolved.RawID)
	if err != nil {
		return s.errorResult(cid, err), nil
	}

	return createJSONResult(map[string]interface{}{
		"parent_id": resolved.RawID,
		"subtasks":  nonNilTasks(subtasks),
		"count":     len(subtasks),
	})
}

func (s *Server) handleTaskResolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := mcp.ParseString(request, "reference", "")

	cid := s.logToolCall(global.ToolTaskResolve, map[string]string{"reference": ref})

	if ref == "" {
		return s.paramError(cid, "reference parameter is required"), nil
	}

	resolved, err := s.resolveTask(ctx, ref)
	if err != nil {
		return s.errorResult(cid, err), nil
	}
	return createJSONResult(resolved)
}
