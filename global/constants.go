/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package global

import "fmt"

//goland:noinspection GoCommentStart,GoUnusedConst,GoUnusedConst,GoUnusedConst
const (
	// Configuration constants
	ConfigEnvVar          = "CLICKUP_MCP_CONFIG"
	EnvPrefix             = "CLICKUP_MCP"
	APIKeyEnvVar          = "CLICKUP_MCP_API_KEY"
	ConfigDirName         = "clickup-mcp"
	DefaultConfigFileName = "config.json"
	LegacyConfigDir       = "~/.clickup-mcp"
	LockSuffix            = ".lock"

	// ClickUp endpoints
	DefaultAPIBaseURL   = "https://api.clickup.com/api/v2"
	DefaultAPIV3BaseURL = "https://api.clickup.com/api/v3"
	TaskURLPrefix       = "https://app.clickup.com/t/"

	// MCP Tool Names - Tasks
	ToolTaskCreate  = "create_task"
	ToolTaskGet     = "get_task"
	ToolTaskUpdate  = "update_task"
	ToolTaskDelete  = "delete_task"
	ToolTaskList    = "list_tasks"
	ToolTaskSearch  = "search_tasks"
	ToolSubtasksGet = "get_subtasks"
	ToolTaskResolve = "resolve_task_reference"

	// MCP Tool Names - Comments, status and assignees
	ToolCommentList      = "get_task_comments"
	ToolCommentCreate    = "create_task_comment"
	ToolTaskStatusGet    = "get_task_status"
	ToolTaskStatusUpdate = "update_task_status"
	ToolAssigneesGet     = "get_assignees"
	ToolTaskAssign       = "assign_task"

	// MCP Tool Names - Hierarchy
	ToolWorkspaceList  = "list_workspaces"
	ToolSpaceList      = "list_spaces"
	ToolFolderList     = "list_folders"
	ToolListList       = "list_lists"
	ToolListFindByName = "find_list_by_name"

	// MCP Tool Names - Docs
	ToolDocCreate         = "create_doc"
	ToolDocCreateFromFile = "create_doc_from_file"
	ToolDocGet            = "get_doc"
	ToolDocUpdate         = "update_doc"
	ToolDocList           = "list_docs"
	ToolDocSearch         = "search_docs"

	// MCP Tool Names - Bulk
	ToolBulkUpdate = "bulk_update_tasks"
	ToolBulkMove   = "bulk_move_tasks"
	ToolBulkDelete = "bulk_delete_tasks"

	// MCP Tool Names - Time tracking
	ToolTimeTracked = "get_time_tracked"
	ToolTimeLog     = "log_time"

	// MCP Tool Names - Templates
	ToolTemplateList     = "list_task_templates"
	ToolTaskFromTemplate = "create_task_from_template"
	ToolTaskChainCreate  = "create_task_chain"

	// MCP Tool Names - Analytics
	ToolTeamWorkload  = "get_team_workload"
	ToolTaskAnalytics = "get_task_analytics"

	// MCP Tool Names - Users
	ToolUserList       = "list_users"
	ToolUserCurrent    = "get_current_user"
	ToolUserFindByName = "find_user_by_name"

	// MCP Tool Names - System
	ToolHealth = "health"

	// Tool error types
	ErrorTypeAPI        = "api_error"
	ErrorTypeInternal   = "internal_error"
	ErrorTypeValidation = "validation_error"

	// Response Format Constants
	ResponseFormatJSON     = "json"
	ResponseFormatMarkdown = "markdown"

	// Task priorities
	PriorityUrgent = 1
	PriorityHigh   = 2
	PriorityNormal = 3
	PriorityLow    = 4

	// Status types reported by ClickUp
	StatusTypeClosed = "closed"
	StatusTypeDone   = "done"

	// Default Values
	DefaultRequestTimeout   = 30 // seconds
	MinRequestTimeout       = 1  // seconds
	MaxRequestTimeout       = 300
	DefaultBulkConcurrency  = 4
	MaxBulkConcurrency      = 32
	DefaultTimeTrackedDays  = 7
	DefaultAnalyticsDays    = 30
	MaxAnalyticsDays        = 365
	MinAPIKeyLength         = 10
	DefaultHTTPAddr         = ":8080"
	DefaultHTTPEndpointPath = "/mcp"

	// Log Levels
	LogLevelDebug = "DEBUG"
	LogLevelInfo  = "INFO"
	LogLevelWarn  = "WARN"
	LogLevelError = "ERROR"
	LogLevelFatal = "FATAL"
)

// DefaultIDPatterns returns the custom ID prefixes known out of the box
func DefaultIDPatterns() map[string]string {
	return map[string]string{
		"gh": "GitHub Issues",
		"GH": "GitHub Issues",
	}
}

// ValidateRequestTimeout validates and normalizes a request timeout in seconds.
// If timeout is 0, returns DefaultRequestTimeout.
func ValidateRequestTimeout(timeout int) (int, error) {
	if timeout == 0 {
		return DefaultRequestTimeout, nil
	}
	if timeout < MinRequestTimeout {
		return 0, fmt.Errorf("request timeout must be at least %d seconds", MinRequestTimeout)
	}
	if timeout > MaxRequestTimeout {
		return 0, fmt.Errorf("request timeout must be at most %d seconds", MaxRequestTimeout)
	}
	return timeout, nil
}

// ValidateBulkConcurrency validates and normalizes the bulk fan-out width.
// If value is 0, returns DefaultBulkConcurrency.
func ValidateBulkConcurrency(n int) (int, error) {
	if n == 0 {
		return DefaultBulkConcurrency, nil
	}
	if n < 1 {
		return 0, fmt.Errorf("bulk concurrency must be at least 1")
	}
	if n > MaxBulkConcurrency {
		return 0, fmt.Errorf("bulk concurrency must be at most %d", MaxBulkConcurrency)
	}
	return n, nil
}

// ValidatePriority checks a ClickUp priority value (1=urgent .. 4=low)
func ValidatePriority(p int) error {
	if p < PriorityUrgent || p > PriorityLow {
		return fmt.Errorf("priority must be between %d (urgent) and %d (low), got %d", PriorityUrgent, PriorityLow, p)
	}
	return nil
}

// ValidateLogLevel checks that level is one of the supported log levels
func ValidateLogLevel(level string) error {
	switch level {
	case "", LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelFatal:
		return nil
	}
	return fmt.Errorf("invalid log level %q (expected DEBUG, INFO, WARN, ERROR or FATAL)", level)
}
