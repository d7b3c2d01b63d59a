/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/PivotLLM/clickup-mcp/global"
	"github.com/PivotLLM/clickup-mcp/templates"
)

// toolKind selects the MCP annotations for a tool
type toolKind int

const (
	kindReadOnly toolKind = iota
	kindWrite
	kindDestructive
)

// toolDescriptor is one entry of the static tool table
type toolDescriptor struct {
	kind    toolKind
	name    string
	options []mcp.ToolOption
	handler server.ToolHandlerFunc
}

const taskRefHelp = "Task reference: raw ID (86abc123), custom ID (gh-123), hash form (#123, uses default_id_prefix), or task URL"

func taskIDParam() mcp.ToolOption {
	return mcp.WithString("task_id",
		mcp.Description(taskRefHelp),
		mcp.Required(),
	)
}

func taskIDsParam() mcp.ToolOption {
	return mcp.WithArray("task_ids",
		mcp.Description("Task references, processed independently. "+taskRefHelp),
		mcp.WithStringItems(),
		mcp.Required(),
	)
}

func workspaceParam() mcp.ToolOption {
	return mcp.WithString("workspace_id",
		mcp.Description("Workspace (team) ID. Defaults to the configured workspace, else the first one available"),
	)
}

func priorityParam() mcp.ToolOption {
	return mcp.WithNumber("priority",
		mcp.Description("Priority: 1=urgent, 2=high, 3=normal, 4=low"),
		mcp.Min(1),
		mcp.Max(4),
	)
}

func formatParam() mcp.ToolOption {
	return mcp.WithString("response_format",
		mcp.Description("Output format (default: json)"),
		mcp.Enum(global.ResponseFormatJSON, global.ResponseFormatMarkdown),
	)
}

func userIDsParam(name, description string) mcp.ToolOption {
	return mcp.WithArray(name,
		mcp.Description(description),
		mcp.Items(map[string]any{"type": "integer"}),
	)
}

// updateProperties is the shape shared by update_task and bulk_update_tasks
func updateProperties() map[string]any {
	return map[string]any{
		"name":          map[string]any{"type": "string", "description": "New task name"},
		"description":   map[string]any{"type": "string", "description": "New description (markdown)"},
		"status":        map[string]any{"type": "string", "description": "New status name"},
		"priority":      map[string]any{"type": "integer", "minimum": 1, "maximum": 4, "description": "1=urgent, 2=high, 3=normal, 4=low"},
		"due_date":      map[string]any{"type": "string", "description": "Due date, ISO 8601"},
		"time_estimate": map[string]any{"type": "string", "description": "Estimate such as '2h' or '1h 30m'"},
	}
}

// toolDescriptors is the static table of every tool the server exposes
func (s *Server) toolDescriptors() []toolDescriptor {
	return []toolDescriptor{
		// Tasks
		{kindWrite, global.ToolTaskCreate, []mcp.ToolOption{
			mcp.WithDescription("Create a task in a list. Give list_id, or list_name to search every space and folder by name."),
			mcp.WithString("name", mcp.Description("Task name"), mcp.Required()),
			mcp.WithString("list_id", mcp.Description("List ID")),
			mcp.WithString("list_name", mcp.Description("List name, matched case-insensitively when list_id is not given")),
			mcp.WithString("description", mcp.Description("Task description (markdown)")),
			priorityParam(),
			mcp.WithString("status", mcp.Description("Initial status name")),
			userIDsParam("assignees", "User IDs to assign"),
			mcp.WithArray("tags", mcp.Description("Tag names"), mcp.WithStringItems()),
			mcp.WithString("due_date", mcp.Description("Due date, ISO 8601 (2026-05-01 or 2026-05-01T17:00:00Z)")),
			mcp.WithString("time_estimate", mcp.Description("Estimate such as '2h' or '1h 30m'")),
			mcp.WithString("parent", mcp.Description("Parent task reference, to create a subtask")),
		}, s.handleTaskCreate},

		{kindReadOnly, global.ToolTaskGet, []mcp.ToolOption{
			mcp.WithDescription("Get a task by raw ID, custom ID, hash form or URL."),
			taskIDParam(),
			mcp.WithBoolean("include_subtasks", mcp.Description("Include subtasks (default: false)")),
		}, s.handleTaskGet},

		{kindWrite, global.ToolTaskUpdate, []mcp.ToolOption{
			mcp.WithDescription("Update fields of a task. Only the fields given are changed."),
			taskIDParam(),
			mcp.WithString("name", mcp.Description("New task name")),
			mcp.WithString("description", mcp.Description("New description (markdown)")),
			mcp.WithString("status", mcp.Description("New status name")),
			priorityParam(),
			mcp.WithString("due_date", mcp.Description("Due date, ISO 8601")),
			mcp.WithString("time_estimate", mcp.Description("Estimate such as '2h' or '1h 30m'")),
		}, s.handleTaskUpdate},

		{kindDestructive, global.ToolTaskDelete, []mcp.ToolOption{
			mcp.WithDescription("Delete a task permanently."),
			taskIDParam(),
		}, s.handleTaskDelete},

		{kindReadOnly, global.ToolTaskList, []mcp.ToolOption{
			mcp.WithDescription("List tasks in a list, in every list of a folder, or in every list of a space. Exactly one of list_id, folder_id, space_id is required."),
			mcp.WithString("list_id", mcp.Description("List ID")),
			mcp.WithString("folder_id", mcp.Description("Folder ID")),
			mcp.WithString("space_id", mcp.Description("Space ID")),
			mcp.WithBoolean("include_closed", mcp.Description("Include closed tasks (default: false)")),
			mcp.WithBoolean("archived", mcp.Description("Return archived tasks (default: false)")),
			mcp.WithBoolean("subtasks", mcp.Description("Include subtasks (default: false)")),
			mcp.WithNumber("page", mcp.Description("Page number, from 0"), mcp.Min(0)),
			mcp.WithString("order_by", mcp.Description("Sort field"), mcp.Enum("id", "created", "updated", "due_date")),
			mcp.WithArray("statuses", mcp.Description("Only these statuses"), mcp.WithStringItems()),
			mcp.WithArray("assignees", mcp.Description("Only these assignee user IDs"), mcp.WithStringItems()),
			mcp.WithArray("tags", mcp.Description("Only these tags"), mcp.WithStringItems()),
		}, s.handleTaskList},

		{kindReadOnly, global.ToolTaskSearch, []mcp.ToolOption{
			mcp.WithDescription("Search tasks across a workspace. query matches task names and descriptions."),
			mcp.WithString("query", mcp.Description("Text to look for in names and descriptions")),
			workspaceParam(),
			mcp.WithArray("space_ids", mcp.Description("Limit to these spaces"), mcp.WithStringItems()),
			mcp.WithArray("list_ids", mcp.Description("Limit to these lists"), mcp.WithStringItems()),
			mcp.WithArray("statuses", mcp.Description("Only these statuses"), mcp.WithStringItems()),
			mcp.WithArray("assignees", mcp.Description("Only these assignee user IDs"), mcp.WithStringItems()),
			mcp.WithArray("tags", mcp.Description("Only these tags"), mcp.WithStringItems()),
			mcp.WithBoolean("include_closed", mcp.Description("Include closed tasks (default: false)")),
			mcp.WithNumber("page", mcp.Description("Page number, from 0"), mcp.Min(0)),
		}, s.handleTaskSearch},

		{kindReadOnly, global.ToolSubtasksGet, []mcp.ToolOption{
			mcp.WithDescription("List the subtasks of a task, including closed ones."),
			taskIDParam(),
		}, s.handleSubtasksGet},

		{kindReadOnly, global.ToolTaskResolve, []mcp.ToolOption{
			mcp.WithDescription("Resolve a task reference to its raw ID without fetching the task."),
			mcp.WithString("reference", mcp.Description(taskRefHelp), mcp.Required()),
		}, s.handleTaskResolve},

		// Comments, status and assignees
		{kindReadOnly, global.ToolCommentList, []mcp.ToolOption{
			mcp.WithDescription("List the comments on a task."),
			taskIDParam(),
		}, s.handleCommentList},

		{kindWrite, global.ToolCommentCreate, []mcp.ToolOption{
			mcp.WithDescription("Add a comment to a task."),
			taskIDParam(),
			mcp.WithString("comment_text", mcp.Description("Comment text"), mcp.Required()),
			mcp.WithNumber("assignee", mcp.Description("User ID to assign the comment to")),
			mcp.WithBoolean("notify_all", mcp.Description("Notify everyone watching the task (default: false)")),
		}, s.handleCommentCreate},

		{kindReadOnly, global.ToolTaskStatusGet, []mcp.ToolOption{
			mcp.WithDescription("Get the status of a task."),
			taskIDParam(),
		}, s.handleTaskStatusGet},

		{kindWrite, global.ToolTaskStatusUpdate, []mcp.ToolOption{
			mcp.WithDescription("Set the status of a task."),
			taskIDParam(),
			mcp.WithString("status", mcp.Description("Status name, as configured on the task's list"), mcp.Required()),
		}, s.handleTaskStatusUpdate},

		{kindReadOnly, global.ToolAssigneesGet, []mcp.ToolOption{
			mcp.WithDescription("List the users assigned to a task."),
			taskIDParam(),
		}, s.handleAssigneesGet},

		{kindWrite, global.ToolTaskAssign, []mcp.ToolOption{
			mcp.WithDescription("Add and remove assignees on a task."),
			taskIDParam(),
			userIDsParam("add", "User IDs to add"),
			userIDsParam("remove", "User IDs to remove"),
		}, s.handleTaskAssign},

		// Hierarchy
		{kindReadOnly, global.ToolWorkspaceList, []mcp.ToolOption{
			mcp.WithDescription("List the workspaces (teams) the API key can access."),
		}, s.handleWorkspaceList},

		{kindReadOnly, global.ToolSpaceList, []mcp.ToolOption{
			mcp.WithDescription("List the spaces in a workspace."),
			workspaceParam(),
			mcp.WithBoolean("archived", mcp.Description("Return archived spaces (default: false)")),
		}, s.handleSpaceList},

		{kindReadOnly, global.ToolFolderList, []mcp.ToolOption{
			mcp.WithDescription("List the folders in a space."),
			mcp.WithString("space_id", mcp.Description("Space ID"), mcp.Required()),
			mcp.WithBoolean("archived", mcp.Description("Return archived folders (default: false)")),
		}, s.handleFolderList},

		{kindReadOnly, global.ToolListList, []mcp.ToolOption{
			mcp.WithDescription("List the lists in a folder, or the folderless lists of a space."),
			mcp.WithString("folder_id", mcp.Description("Folder ID")),
			mcp.WithString("space_id", mcp.Description("Space ID (folderless lists)")),
			mcp.WithBoolean("archived", mcp.Description("Return archived lists (default: false)")),
		}, s.handleListList},

		{kindReadOnly, global.ToolListFindByName, []mcp.ToolOption{
			mcp.WithDescription("Find a list by name, case-insensitively, across every space and folder."),
			mcp.WithString("name", mcp.Description("List name"), mcp.Required()),
			mcp.WithString("space_id", mcp.Description("Limit the search to one space")),
			workspaceParam(),
		}, s.handleListFindByName},

		// Docs
		{kindWrite, global.ToolDocCreate, []mcp.ToolOption{
			mcp.WithDescription("Create a doc in a folder."),
			mcp.WithString("folder_id", mcp.Description("Folder ID"), mcp.Required()),
			mcp.WithString("name", mcp.Description("Doc name"), mcp.Required()),
			mcp.WithString("content", mcp.Description("Doc content (markdown)")),
		}, s.handleDocCreate},

		{kindWrite, global.ToolDocCreateFromFile, []mcp.ToolOption{
			mcp.WithDescription("Create a doc from a local file in the configured import directory. Office documents, PDF and HTML are converted to markdown."),
			mcp.WithString("folder_id", mcp.Description("Folder ID"), mcp.Required()),
			mcp.WithString("path", mcp.Description("File path, relative to the import directory"), mcp.Required()),
			mcp.WithString("name", mcp.Description("Doc name (default: the file name without extension)")),
		}, s.handleDocCreateFromFile},

		{kindReadOnly, global.ToolDocGet, []mcp.ToolOption{
			mcp.WithDescription("Get a doc and its content."),
			mcp.WithString("doc_id", mcp.Description("Doc ID"), mcp.Required()),
		}, s.handleDocGet},

		{kindWrite, global.ToolDocUpdate, []mcp.ToolOption{
			mcp.WithDescription("Update the name or content of a doc."),
			mcp.WithString("doc_id", mcp.Description("Doc ID"), mcp.Required()),
			mcp.WithString("name", mcp.Description("New name")),
			mcp.WithString("content", mcp.Description("New content (markdown)")),
		}, s.handleDocUpdate},

		{kindReadOnly, global.ToolDocList, []mcp.ToolOption{
			mcp.WithDescription("List the docs in a workspace."),
			workspaceParam(),
		}, s.handleDocList},

		{kindReadOnly, global.ToolDocSearch, []mcp.ToolOption{
			mcp.WithDescription("Search the docs in a workspace."),
			mcp.WithString("query", mcp.Description("Search text"), mcp.Required()),
			workspaceParam(),
		}, s.handleDocSearch},

		// Bulk
		{kindWrite, global.ToolBulkUpdate, []mcp.ToolOption{
			mcp.WithDescription("Apply the same update to many tasks. Each task succeeds or fails on its own; results keep the input order."),
			taskIDsParam(),
			mcp.WithObject("updates",
				mcp.Description("Fields to set on every task"),
				mcp.Properties(updateProperties()),
				mcp.Required(),
			),
		}, s.handleBulkUpdate},

		{kindWrite, global.ToolBulkMove, []mcp.ToolOption{
			mcp.WithDescription("Move many tasks to a list. Each task succeeds or fails on its own; results keep the input order."),
			taskIDsParam(),
			mcp.WithString("list_id", mcp.Description("Target list ID"), mcp.Required()),
		}, s.handleBulkMove},

		{kindDestructive, global.ToolBulkDelete, []mcp.ToolOption{
			mcp.WithDescription("Delete many tasks. Each task succeeds or fails on its own; results keep the input order."),
			taskIDsParam(),
		}, s.handleBulkDelete},

		// Time tracking
		{kindReadOnly, global.ToolTimeTracked, []mcp.ToolOption{
			mcp.WithDescription("List time entries, by default for the last 7 days."),
			mcp.WithString("task_id", mcp.Description("Only entries for this task. "+taskRefHelp)),
			mcp.WithString("start_date", mcp.Description("Start, ISO 8601 (default: days ago)")),
			mcp.WithString("end_date", mcp.Description("End, ISO 8601 (default: now)")),
			mcp.WithNumber("days", mcp.Description("Look-back window when start_date is not given (default: 7)"), mcp.Min(1)),
			mcp.WithString("assignee", mcp.Description("Only entries for this user ID")),
			workspaceParam(),
		}, s.handleTimeTracked},

		{kindWrite, global.ToolTimeLog, []mcp.ToolOption{
			mcp.WithDescription("Log time against a task."),
			taskIDParam(),
			mcp.WithString("duration", mcp.Description("Duration such as '45m', '2h' or '1h 30m'; a bare number is minutes"), mcp.Required()),
			mcp.WithString("description", mcp.Description("What the time was spent on")),
			mcp.WithString("start", mcp.Description("Start, ISO 8601 (default: now minus duration)")),
			mcp.WithBoolean("billable", mcp.Description("Billable time (default: false)")),
		}, s.handleTimeLog},

		// Templates
		{kindReadOnly, global.ToolTemplateList, []mcp.ToolOption{
			mcp.WithDescription("List the built-in task templates."),
		}, s.handleTemplateList},

		{kindWrite, global.ToolTaskFromTemplate, []mcp.ToolOption{
			mcp.WithDescription("Create a task from a built-in template. customizations must include title; description, priority, tags and name override the template."),
			mcp.WithString("template", mcp.Description("Template ID"), mcp.Enum(templates.TaskTemplateIDs()...), mcp.Required()),
			mcp.WithString("list_id", mcp.Description("List ID"), mcp.Required()),
			mcp.WithObject("customizations",
				mcp.Description("Template values, e.g. {\"title\": \"Login fails\", \"priority\": 1}"),
				mcp.Required(),
			),
		}, s.handleTaskFromTemplate},

		{kindWrite, global.ToolTaskChainCreate, []mcp.ToolOption{
			mcp.WithDescription("Create a sequence of tasks in a list, each linked to the previous one."),
			mcp.WithString("list_id", mcp.Description("List ID"), mcp.Required()),
			mcp.WithArray("tasks",
				mcp.Description("Tasks in order"),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":         map[string]any{"type": "string", "minLength": 1},
						"description":   map[string]any{"type": "string"},
						"time_estimate": map[string]any{"type": "string"},
					},
					"required": []string{"title"},
				}),
				mcp.Required(),
			),
			mcp.WithBoolean("auto_link", mcp.Description("Link each task to the previous one (default: true)")),
		}, s.handleTaskChainCreate},

		// Analytics
		{kindReadOnly, global.ToolTeamWorkload, []mcp.ToolOption{
			mcp.WithDescription("Summarise open work per assignee across every list of a space."),
			mcp.WithString("space_id", mcp.Description("Space ID"), mcp.Required()),
			mcp.WithBoolean("include_completed", mcp.Description("Count closed tasks too (default: false)")),
			formatParam(),
		}, s.handleTeamWorkload},

		{kindReadOnly, global.ToolTaskAnalytics, []mcp.ToolOption{
			mcp.WithDescription("Creation and completion metrics for tasks created in a space over a period."),
			mcp.WithString("space_id", mcp.Description("Space ID"), mcp.Required()),
			mcp.WithNumber("period_days", mcp.Description("Days to look back (default: 30, max: 365)"), mcp.Min(1), mcp.Max(global.MaxAnalyticsDays)),
			workspaceParam(),
			formatParam(),
		}, s.handleTaskAnalytics},

		// Users
		{kindReadOnly, global.ToolUserList, []mcp.ToolOption{
			mcp.WithDescription("List the members of a workspace."),
			workspaceParam(),
		}, s.handleUserList},

		{kindReadOnly, global.ToolUserCurrent, []mcp.ToolOption{
			mcp.WithDescription("Get the user that owns the API key."),
		}, s.handleUserCurrent},

		{kindReadOnly, global.ToolUserFindByName, []mcp.ToolOption{
			mcp.WithDescription("Find workspace members by username or email. Exact matches are listed first."),
			mcp.WithString("name", mcp.Description("Name or email to look for"), mcp.Required()),
			workspaceParam(),
		}, s.handleUserFindByName},

		// Server
		{kindReadOnly, global.ToolHealth, []mcp.ToolOption{
			mcp.WithDescription("Report server status. With check_connection, also verifies the API key against ClickUp."),
			mcp.WithBoolean("check_connection", mcp.Description("Call ClickUp to verify the API key (default: false)")),
		}, s.handleHealth},
	}
}
