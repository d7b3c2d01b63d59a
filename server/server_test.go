/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/clickup/clickuptest"
	"github.com/PivotLLM/clickup-mcp/config"
	"github.com/PivotLLM/clickup-mcp/global"
	"github.com/PivotLLM/clickup-mcp/logging"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// clearEnv blanks every variable config.Load reads
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		global.ConfigEnvVar,
		"CLICKUP_MCP_API_KEY",
		"CLICKUP_MCP_DEFAULT_WORKSPACE_ID",
		"CLICKUP_MCP_DEFAULT_TEAM_ID",
		"CLICKUP_MCP_DEFAULT_ID_PREFIX",
		"CLICKUP_MCP_REQUEST_TIMEOUT",
		"CLICKUP_MCP_BULK_CONCURRENCY",
		"CLICKUP_MCP_IMPORT_DIR",
		"CLICKUP_MCP_LOG_FILE",
		"CLICKUP_MCP_LOG_LEVEL",
		"CLICKUP_MCP_HTTP_ADDR",
	} {
		// Setenv restores the original value at cleanup
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

// newTestServer builds a server against a fresh fake. settings are merged
// into the config file.
func newTestServer(t *testing.T, settings map[string]interface{}) (*Server, *clickuptest.Server) {
	t.Helper()
	clearEnv(t)

	dir := t.TempDir()
	data := map[string]interface{}{"api_key": clickuptest.Token}
	for k, v := range settings {
		data[k] = v
	}
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, global.DefaultConfigFileName), raw, 0600))

	cfg := config.New(config.WithSearchDirs(dir))
	require.NoError(t, cfg.Load())

	fake := clickuptest.New(t)
	srv, err := New(cfg, logging.Discard(),
		WithClient(fake.Client()),
		WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	return srv, fake
}

// seedHierarchy adds workspace 9001 with space s1, folder f1 and lists l1 (folderless) and l2 (in f1)
func seedHierarchy(fake *clickuptest.Server) {
	fake.AddWorkspace("9001", "Acme")
	fake.AddSpace("9001", "s1", "Engineering")
	fake.AddFolder("s1", "f1", "Sprints")
	fake.AddList("s1", "", "l1", "Backlog")
	fake.AddList("s1", "f1", "l2", "Sprint 1")
}

var teamSettings = map[string]interface{}{
	"default_team_id":   "9001",
	"default_id_prefix": "gh",
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	res, err := s.CallTool(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

// callJSON calls a tool that must succeed and decodes its JSON body
func callJSON(t *testing.T, s *Server, name string, args map[string]interface{}) map[string]interface{} {
	t.Helper()
	res := callTool(t, s, name, args)
	require.False(t, res.IsError, "tool %s failed: %s", name, resultText(t, res))
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	return out
}

// callError calls a tool that must fail and decodes its error body
func callError(t *testing.T, s *Server, name string, args map[string]interface{}) toolError {
	t.Helper()
	res := callTool(t, s, name, args)
	require.True(t, res.IsError, "tool %s should have failed: %s", name, resultText(t, res))
	var out toolError
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.NotEmpty(t, out.CorrelationID)
	return out
}

func TestToolTable(t *testing.T) {
	s, _ := newTestServer(t, nil)

	names := s.ToolNames()
	assert.Len(t, names, len(s.toolDescriptors()))
	for _, name := range []string{
		global.ToolTaskCreate, global.ToolTaskGet, global.ToolTaskResolve,
		global.ToolBulkUpdate, global.ToolBulkMove, global.ToolBulkDelete,
		global.ToolDocCreateFromFile, global.ToolTaskChainCreate, global.ToolHealth,
	} {
		assert.Contains(t, names, name)
	}

	del := s.tools[global.ToolTaskDelete].tool
	require.NotNil(t, del.Annotations.DestructiveHint)
	assert.True(t, *del.Annotations.DestructiveHint)

	get := s.tools[global.ToolTaskGet].tool
	require.NotNil(t, get.Annotations.ReadOnlyHint)
	assert.True(t, *get.Annotations.ReadOnlyHint)

	_, err := s.CallTool(context.Background(), mcp.CallToolRequest{Params: mcp.CallToolParams{Name: "nope"}})
	assert.Error(t, err)
}

func TestMarkNonDestructive(t *testing.T) {
	s, _ := newTestServer(t, map[string]interface{}{"mark_non_destructive": true})
	del := s.tools[global.ToolBulkDelete].tool
	require.NotNil(t, del.Annotations.DestructiveHint)
	assert.False(t, *del.Annotations.DestructiveHint)
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)
	fake.AddUser(clickup.User{ID: 7, Username: "alice"})

	created := callJSON(t, s, global.ToolTaskCreate, map[string]interface{}{
		"list_id":       "l1",
		"name":          "Fix login",
		"description":   "Users cannot sign in",
		"priority":      2,
		"status":        "in progress",
		"assignees":     []interface{}{7},
		"tags":          []interface{}{"auth"},
		"due_date":      "2026-05-01",
		"time_estimate": "1h 30m",
	})
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, clickup.FormatTaskURL(id), created["url"])

	got := callJSON(t, s, global.ToolTaskGet, map[string]interface{}{"task_id": id})
	assert.Equal(t, id, got["id"])
	assert.Equal(t, "Fix login", got["name"])
	assert.Equal(t, "Users cannot sign in", got["description"])

	stored, ok := fake.Task(id)
	require.True(t, ok)
	assert.Equal(t, 2, stored.PriorityLevel())
	assert.Equal(t, "in progress", stored.Status.Status)
	assert.Equal(t, []string{"auth"}, clickup.TagNames(stored.Tags))
	require.Len(t, stored.Assignees, 1)
	assert.Equal(t, int64(7), stored.Assignees[0].ID)
	assert.Equal(t, int64(1777593600000), stored.DueDate.Millis())
	require.NotNil(t, stored.TimeEstimate)
	assert.Equal(t, int64(90*60*1000), *stored.TimeEstimate)
}

func TestCreateTaskByListName(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)

	created := callJSON(t, s, global.ToolTaskCreate, map[string]interface{}{
		"list_name": "sprint 1",
		"name":      "Plan sprint",
	})
	stored, ok := fake.Task(created["id"].(string))
	require.True(t, ok)
	assert.Equal(t, "l2", stored.List.ID)

	e := callError(t, s, global.ToolTaskCreate, map[string]interface{}{"list_name": "missing", "name": "x"})
	assert.Equal(t, clickup.KindNotFound, e.Kind)

	e = callError(t, s, global.ToolTaskCreate, map[string]interface{}{"name": "x"})
	assert.Equal(t, global.ErrorTypeValidation, e.Type)
}

func TestGetTaskReferenceForms(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)
	id := fake.AddTask(clickup.Task{Name: "Tracked", CustomID: "gh-42", List: clickup.Ref{ID: "l1"}})

	for _, ref := range []string{id, "gh-42", "#42", clickup.FormatTaskURL(id), "https://app.clickup.com/t/9001/gh-42"} {
		got := callJSON(t, s, global.ToolTaskGet, map[string]interface{}{"task_id": ref})
		assert.Equal(t, id, got["id"], ref)
	}

	// raw IDs go straight to the task with no lookup
	fake.ResetRequests()
	callJSON(t, s, global.ToolTaskGet, map[string]interface{}{"task_id": id})
	requests := fake.Requests()
	require.Len(t, requests, 1)
	assert.Empty(t, requests[0].Query.Get("custom_task_ids"))
}

func TestResolveTaskReference(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	id := fake.AddTask(clickup.Task{Name: "Tracked", CustomID: "gh-7"})

	got := callJSON(t, s, global.ToolTaskResolve, map[string]interface{}{"reference": "#7"})
	assert.Equal(t, id, got["raw_id"])
	assert.Equal(t, "hash", got["kind"])
	assert.Equal(t, "gh-7", got["custom_id"])
	assert.Equal(t, true, got["custom_lookup"])
	assert.Equal(t, "GitHub Issues", got["source"])
}

func TestGetTaskErrors(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)

	fake.ResetRequests()
	e := callError(t, s, global.ToolTaskGet, map[string]interface{}{"task_id": "gh-999"})
	assert.Equal(t, clickup.KindNotFound, e.Kind)
	assert.Equal(t, global.ErrorTypeAPI, e.Type)
	assert.Equal(t, 1, len(fake.Requests()), "a failed lookup must not be followed by more calls")

	fake.ResetRequests()
	e = callError(t, s, global.ToolTaskGet, map[string]interface{}{"task_id": "not a task!"})
	assert.Equal(t, clickup.KindInvalidReference, e.Kind)
	assert.Equal(t, global.ErrorTypeValidation, e.Type)
	assert.Empty(t, fake.Requests())
}

func TestArgumentValidation(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)

	e := callError(t, s, global.ToolTaskGet, map[string]interface{}{})
	assert.Equal(t, global.ErrorTypeValidation, e.Type)
	assert.Contains(t, e.Error, "invalid arguments")

	e = callError(t, s, global.ToolTaskUpdate, map[string]interface{}{"task_id": "abc", "priority": 9})
	assert.Equal(t, global.ErrorTypeValidation, e.Type)

	e = callError(t, s, global.ToolTaskUpdate, map[string]interface{}{"task_id": "abc"})
	assert.Contains(t, e.Error, "no fields to update")

	e = callError(t, s, global.ToolTaskList, map[string]interface{}{"list_id": "l1", "space_id": "s1"})
	assert.Contains(t, e.Error, "exactly one")

	assert.Empty(t, fake.Requests())
}

func TestUpdateStatusAndAssignees(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)
	fake.AddUser(clickup.User{ID: 7, Username: "alice"})
	id := fake.AddTask(clickup.Task{Name: "Work", List: clickup.Ref{ID: "l1"}})

	callJSON(t, s, global.ToolTaskStatusUpdate, map[string]interface{}{"task_id": id, "status": "complete"})
	status := callJSON(t, s, global.ToolTaskStatusGet, map[string]interface{}{"task_id": id})
	assert.Equal(t, true, status["closed"])

	callJSON(t, s, global.ToolTaskAssign, map[string]interface{}{"task_id": id, "add": []interface{}{7}})
	got := callJSON(t, s, global.ToolAssigneesGet, map[string]interface{}{"task_id": id})
	assert.Equal(t, float64(1), got["count"])

	callJSON(t, s, global.ToolTaskAssign, map[string]interface{}{"task_id": id, "remove": []interface{}{7}})
	got = callJSON(t, s, global.ToolAssigneesGet, map[string]interface{}{"task_id": id})
	assert.Equal(t, float64(0), got["count"])
}

func TestComments(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	id := fake.AddTask(clickup.Task{Name: "Discuss"})

	callJSON(t, s, global.ToolCommentCreate, map[string]interface{}{"task_id": id, "comment_text": "first"})
	callJSON(t, s, global.ToolCommentCreate, map[string]interface{}{"task_id": id, "comment_text": "second"})

	got := callJSON(t, s, global.ToolCommentList, map[string]interface{}{"task_id": id})
	assert.Equal(t, float64(2), got["count"])
}

func TestListAndSearchTasks(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)
	fake.AddTask(clickup.Task{Name: "Login page", List: clickup.Ref{ID: "l1"}})
	fake.AddTask(clickup.Task{Name: "Billing", Description: "login audit", List: clickup.Ref{ID: "l2"}})
	fake.AddTask(clickup.Task{Name: "Done thing", List: clickup.Ref{ID: "l2"}, Status: clickup.TaskStatus{Status: "complete", Type: "closed"}})

	got := callJSON(t, s, global.ToolTaskList, map[string]interface{}{"list_id": "l2"})
	assert.Equal(t, float64(1), got["count"])

	got = callJSON(t, s, global.ToolTaskList, map[string]interface{}{"space_id": "s1", "include_closed": true})
	assert.Equal(t, float64(3), got["count"])

	got = callJSON(t, s, global.ToolTaskList, map[string]interface{}{"folder_id": "f1"})
	assert.Equal(t, float64(1), got["count"])

	got = callJSON(t, s, global.ToolTaskSearch, map[string]interface{}{"query": "LOGIN"})
	assert.Equal(t, float64(2), got["count"])
	assert.Equal(t, "9001", got["workspace_id"])
}

func TestListTasksReportsFailedLists(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)
	fake.AddTask(clickup.Task{Name: "kept", List: clickup.Ref{ID: "l2"}})
	fake.Fail("GET", "/list/l1/task", 500, "", "boom")

	got := callJSON(t, s, global.ToolTaskList, map[string]interface{}{"space_id": "s1"})
	assert.Equal(t, float64(1), got["count"])
	assert.Equal(t, true, got["partial"])
	failed := got["failed_lists"].([]interface{})
	require.Len(t, failed, 1)
	entry := failed[0].(map[string]interface{})
	assert.Equal(t, "l1", entry["list_id"])
	assert.Equal(t, string(clickup.KindRemoteError), entry["kind"])

	got = callJSON(t, s, global.ToolTaskList, map[string]interface{}{"folder_id": "f1"})
	assert.NotContains(t, got, "failed_lists")
}

func TestListTasksUnauthorizedList(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)
	fake.Fail("GET", "/list/l1/task", 401, "OAUTH_019", "Oauth token not found")
	fake.Fail("GET", "/list/l2/task", 401, "OAUTH_019", "Oauth token not found")

	e := callError(t, s, global.ToolTaskList, map[string]interface{}{"space_id": "s1"})
	assert.Equal(t, string(clickup.KindUnauthorized), string(e.Kind))
}

func TestListTasksAllListsFailed(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)
	fake.Fail("GET", "/list/l1/task", 500, "", "boom")
	fake.Fail("GET", "/list/l2/task", 500, "", "boom")

	e := callError(t, s, global.ToolTaskList, map[string]interface{}{"space_id": "s1"})
	assert.Equal(t, string(clickup.KindRemoteError), string(e.Kind))
}

func TestSubtasks(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)

	parent := callJSON(t, s, global.ToolTaskCreate, map[string]interface{}{"list_id": "l1", "name": "Epic"})
	parentID := parent["id"].(string)
	callJSON(t, s, global.ToolTaskCreate, map[string]interface{}{"list_id": "l1", "name": "Child", "parent": parentID})

	got := callJSON(t, s, global.ToolSubtasksGet, map[string]interface{}{"task_id": parentID})
	assert.Equal(t, float64(1), got["count"])
}

func TestBulkUpdatePreservesOrder(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)
	first := fake.AddTask(clickup.Task{Name: "one", List: clickup.Ref{ID: "l1"}})
	second := fake.AddTask(clickup.Task{Name: "two", List: clickup.Ref{ID: "l1"}, CustomID: "gh-2"})

	refs := []interface{}{first, "gh-404", "bad ref!", "gh-2"}
	got := callJSON(t, s, global.ToolBulkUpdate, map[string]interface{}{
		"task_ids": refs,
		"updates":  map[string]interface{}{"status": "in progress", "priority": 1},
	})

	assert.NotEmpty(t, got["operation_id"])
	assert.Equal(t, float64(4), got["total"])
	assert.Equal(t, float64(2), got["succeeded"])
	assert.Equal(t, float64(2), got["failed"])

	results := got["results"].([]interface{})
	require.Len(t, results, 4)
	for i, r := range results {
		item := r.(map[string]interface{})
		assert.Equal(t, float64(i), item["index"])
		assert.Equal(t, refs[i], item["reference"])
	}
	assert.Equal(t, true, results[0].(map[string]interface{})["success"])
	assert.Equal(t, string(clickup.KindNotFound), results[1].(map[string]interface{})["kind"])
	assert.Equal(t, string(clickup.KindInvalidReference), results[2].(map[string]interface{})["kind"])
	assert.Equal(t, second, results[3].(map[string]interface{})["task_id"])

	for _, id := range []string{first, second} {
		task, _ := fake.Task(id)
		assert.Equal(t, "in progress", task.Status.Status)
		assert.Equal(t, 1, task.PriorityLevel())
	}
}

func TestBulkKeepsBlankEntriesInPlace(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)
	a := fake.AddTask(clickup.Task{Name: "a", List: clickup.Ref{ID: "l1"}})
	b := fake.AddTask(clickup.Task{Name: "b", List: clickup.Ref{ID: "l1"}})

	got := callJSON(t, s, global.ToolBulkUpdate, map[string]interface{}{
		"task_ids": []interface{}{a, "", "  ", b},
		"updates":  map[string]interface{}{"status": "in progress"},
	})
	assert.Equal(t, float64(4), got["total"])
	assert.Equal(t, float64(2), got["succeeded"])
	assert.Equal(t, float64(2), got["failed"])

	results := got["results"].([]interface{})
	require.Len(t, results, 4)
	for i, kind := range []string{"", string(clickup.KindInvalidReference), string(clickup.KindInvalidReference), ""} {
		item := results[i].(map[string]interface{})
		assert.Equal(t, float64(i), item["index"])
		if kind == "" {
			assert.Equal(t, true, item["success"])
		} else {
			assert.Equal(t, kind, item["kind"])
		}
	}
	assert.Equal(t, b, results[3].(map[string]interface{})["task_id"])
}

func TestParseRefs(t *testing.T) {
	req := func(v interface{}) mcp.CallToolRequest {
		return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: map[string]interface{}{"task_ids": v}}}
	}
	assert.Equal(t, []string{"86a", "", "gh-1", "123"}, parseRefs(req([]interface{}{" 86a ", "", "gh-1", float64(123)}), "task_ids"))
	assert.Equal(t, []string{"86a", "", "#4"}, parseRefs(req("86a,,#4"), "task_ids"))
	assert.Nil(t, parseRefs(req(nil), "task_ids"))
}

func TestBulkWithoutWorkspace(t *testing.T) {
	s, fake := newTestServer(t, nil)
	id := fake.AddTask(clickup.Task{Name: "one"})

	got := callJSON(t, s, global.ToolBulkDelete, map[string]interface{}{"task_ids": []interface{}{"#5", id}})
	results := got["results"].([]interface{})
	require.Len(t, results, 2)
	assert.Equal(t, string(clickup.KindAmbiguousReference), results[0].(map[string]interface{})["kind"])
	assert.Equal(t, true, results[1].(map[string]interface{})["success"])

	_, exists := fake.Task(id)
	assert.False(t, exists)
}

func TestBulkMove(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)
	a := fake.AddTask(clickup.Task{Name: "a", List: clickup.Ref{ID: "l1"}})
	b := fake.AddTask(clickup.Task{Name: "b", List: clickup.Ref{ID: "l1"}})

	got := callJSON(t, s, global.ToolBulkMove, map[string]interface{}{"task_ids": []interface{}{a, b}, "list_id": "l2"})
	assert.Equal(t, float64(2), got["succeeded"])
	for _, id := range []string{a, b} {
		task, _ := fake.Task(id)
		assert.Equal(t, "l2", task.List.ID)
	}

	e := callError(t, s, global.ToolBulkMove, map[string]interface{}{"task_ids": []interface{}{}, "list_id": "l2"})
	assert.Equal(t, global.ErrorTypeValidation, e.Type)
}

func TestTaskFromTemplate(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)

	got := callJSON(t, s, global.ToolTaskFromTemplate, map[string]interface{}{
		"template":       "bug_report",
		"list_id":        "l1",
		"customizations": map[string]interface{}{"title": "Login fails", "priority": 1},
	})
	assert.Equal(t, "Bug Report: Login fails", got["name"])
	assert.Equal(t, "bug_report", got["template"])

	task, ok := fake.Task(got["id"].(string))
	require.True(t, ok)
	assert.Equal(t, 1, task.PriorityLevel())
	assert.Equal(t, []string{"bug"}, clickup.TagNames(task.Tags))

	e := callError(t, s, global.ToolTaskFromTemplate, map[string]interface{}{
		"template":       "bug_report",
		"list_id":        "l1",
		"customizations": map[string]interface{}{},
	})
	assert.Contains(t, e.Error, "title")

	list := callJSON(t, s, global.ToolTemplateList, nil)
	assert.Equal(t, float64(3), list["count"])
}

func TestTaskChain(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)

	got := callJSON(t, s, global.ToolTaskChainCreate, map[string]interface{}{
		"list_id": "l1",
		"tasks": []interface{}{
			map[string]interface{}{"title": "Design"},
			map[string]interface{}{"title": "Build", "time_estimate": "2h"},
			map[string]interface{}{"title": "Ship", "description": "release"},
		},
	})
	assert.Equal(t, float64(3), got["created"])
	assert.Equal(t, float64(2), got["linked"])

	tasks := got["tasks"].([]interface{})
	require.Len(t, tasks, 3)
	build, ok := fake.Task(tasks[1].(map[string]interface{})["id"].(string))
	require.True(t, ok)
	assert.Equal(t, "Build", build.Name)
	require.NotNil(t, build.TimeEstimate)
	assert.Equal(t, int64(2*60*60*1000), *build.TimeEstimate)
}

func TestTaskChainStopsOnFailure(t *testing.T) {
	s, _ := newTestServer(t, teamSettings)

	res := callTool(t, s, global.ToolTaskChainCreate, map[string]interface{}{
		"list_id": "missing",
		"tasks":   []interface{}{map[string]interface{}{"title": "A"}, map[string]interface{}{"title": "B"}},
	})
	require.True(t, res.IsError)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &body))
	assert.Equal(t, float64(0), body["failed_at"])
	assert.Equal(t, float64(0), body["created"])
	assert.Equal(t, string(clickup.KindNotFound), body["kind"])
}

func TestTeamWorkload(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	alice := clickup.User{ID: 7, Username: "alice"}
	fake.AddUser(alice)
	seedHierarchy(fake)
	fake.AddTask(clickup.Task{Name: "a", List: clickup.Ref{ID: "l1"}, Assignees: []clickup.User{alice}})
	fake.AddTask(clickup.Task{Name: "b", List: clickup.Ref{ID: "l2"}, Assignees: []clickup.User{alice}})
	fake.AddTask(clickup.Task{Name: "c", List: clickup.Ref{ID: "l2"}})

	got := callJSON(t, s, global.ToolTeamWorkload, map[string]interface{}{"space_id": "s1"})
	assert.Equal(t, float64(3), got["total_tasks"])
	assert.Equal(t, float64(1), got["unassigned_tasks"])
	members := got["workload"].([]interface{})
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].(map[string]interface{})["username"])

	res := callTool(t, s, global.ToolTeamWorkload, map[string]interface{}{"space_id": "s1", "response_format": "markdown"})
	require.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "alice")
}

func TestTeamWorkloadReportsFailedLists(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)
	fake.AddTask(clickup.Task{Name: "a", List: clickup.Ref{ID: "l1"}})
	fake.Fail("GET", "/list/l2/task", 500, "", "boom")

	got := callJSON(t, s, global.ToolTeamWorkload, map[string]interface{}{"space_id": "s1"})
	assert.Equal(t, float64(1), got["total_tasks"])
	require.Len(t, got["failed_lists"], 1)

	res := callTool(t, s, global.ToolTeamWorkload, map[string]interface{}{"space_id": "s1", "response_format": "markdown"})
	require.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "- l2 (RemoteError)")
}

func TestTaskAnalytics(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	seedHierarchy(fake)
	created := clickup.Timestamp("1772884800000") // 2026-03-07T12:00:00Z
	fake.AddTask(clickup.Task{Name: "open", List: clickup.Ref{ID: "l1"}, DateCreated: created})
	fake.AddTask(clickup.Task{
		Name:        "done",
		List:        clickup.Ref{ID: "l1"},
		DateCreated: created,
		DateClosed:  clickup.Timestamp("1772892000000"), // two hours later
		Status:      clickup.TaskStatus{Status: "complete", Type: "closed"},
	})

	got := callJSON(t, s, global.ToolTaskAnalytics, map[string]interface{}{"space_id": "s1", "period_days": 7})
	metrics := got["metrics"].(map[string]interface{})
	assert.Equal(t, float64(2), metrics["total_tasks_created"])
	assert.Equal(t, float64(1), metrics["completed_tasks"])
	assert.Equal(t, float64(50), metrics["completion_rate"])
	assert.Equal(t, float64(2), metrics["avg_completion_hours"])

	e := callError(t, s, global.ToolTaskAnalytics, map[string]interface{}{"space_id": "s1", "period_days": 400})
	assert.Equal(t, global.ErrorTypeValidation, e.Type)
}

func TestTimeTracking(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	id := fake.AddTask(clickup.Task{Name: "Work", CustomID: "gh-3"})

	logged := callJSON(t, s, global.ToolTimeLog, map[string]interface{}{"task_id": "gh-3", "duration": "1h 30m", "billable": true})
	assert.Equal(t, id, logged["task_id"])
	assert.Equal(t, "1h 30m", logged["duration"])

	got := callJSON(t, s, global.ToolTimeTracked, map[string]interface{}{"task_id": id})
	assert.Equal(t, float64(1), got["count"])
	assert.Equal(t, float64(90*60*1000), got["total_duration_ms"])
	assert.Equal(t, "1h 30m", got["total_duration"])

	e := callError(t, s, global.ToolTimeLog, map[string]interface{}{"task_id": id, "duration": "soon"})
	assert.Equal(t, global.ErrorTypeValidation, e.Type)

	e = callError(t, s, global.ToolTimeTracked, map[string]interface{}{"start_date": "2026-03-10", "end_date": "2026-03-01"})
	assert.Contains(t, e.Error, "before")
}

func TestHierarchyTools(t *testing.T) {
	s, fake := newTestServer(t, nil)
	seedHierarchy(fake)

	got := callJSON(t, s, global.ToolWorkspaceList, nil)
	assert.Equal(t, float64(1), got["count"])

	got = callJSON(t, s, global.ToolSpaceList, nil)
	assert.Equal(t, "9001", got["workspace_id"], "first workspace is used when none is configured")
	assert.Equal(t, float64(1), got["count"])

	got = callJSON(t, s, global.ToolFolderList, map[string]interface{}{"space_id": "s1"})
	assert.Equal(t, float64(1), got["count"])

	got = callJSON(t, s, global.ToolListList, map[string]interface{}{"folder_id": "f1"})
	assert.Equal(t, float64(1), got["count"])

	got = callJSON(t, s, global.ToolListList, map[string]interface{}{"space_id": "s1"})
	assert.Equal(t, float64(1), got["count"])

	got = callJSON(t, s, global.ToolListFindByName, map[string]interface{}{"name": "BACKLOG"})
	assert.Equal(t, "l1", got["id"])
}

func TestDocs(t *testing.T) {
	importDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "runbook.md"), []byte("# Runbook\n"), 0644))

	s, fake := newTestServer(t, map[string]interface{}{"default_team_id": "9001", "import_dir": importDir})
	seedHierarchy(fake)

	doc := callJSON(t, s, global.ToolDocCreate, map[string]interface{}{"folder_id": "f1", "name": "Notes", "content": "hello"})
	docID := doc["id"].(string)

	callJSON(t, s, global.ToolDocUpdate, map[string]interface{}{"doc_id": docID, "content": "updated"})
	got := callJSON(t, s, global.ToolDocGet, map[string]interface{}{"doc_id": docID})
	assert.Equal(t, "updated", got["content"])

	fromFile := callJSON(t, s, global.ToolDocCreateFromFile, map[string]interface{}{"folder_id": "f1", "path": "runbook.md"})
	created := fromFile["doc"].(map[string]interface{})
	assert.Equal(t, "runbook", created["name"])

	got = callJSON(t, s, global.ToolDocList, nil)
	assert.Equal(t, float64(2), got["count"])

	got = callJSON(t, s, global.ToolDocSearch, map[string]interface{}{"query": "run"})
	assert.Equal(t, float64(1), got["count"])

	e := callError(t, s, global.ToolDocCreateFromFile, map[string]interface{}{"folder_id": "f1", "path": "../etc/passwd"})
	assert.Equal(t, global.ErrorTypeValidation, e.Type)
}

func TestDocFromFileDisabled(t *testing.T) {
	s, _ := newTestServer(t, teamSettings)
	e := callError(t, s, global.ToolDocCreateFromFile, map[string]interface{}{"folder_id": "f1", "path": "a.md"})
	assert.Contains(t, e.Error, "import is disabled")
}

func TestUsers(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)
	fake.AddUser(clickup.User{ID: 7, Username: "alice", Email: "alice@example.com"})
	fake.AddUser(clickup.User{ID: 8, Username: "alicia"})
	seedHierarchy(fake)

	got := callJSON(t, s, global.ToolUserList, nil)
	assert.Equal(t, float64(3), got["count"])

	got = callJSON(t, s, global.ToolUserFindByName, map[string]interface{}{"name": "alice"})
	assert.Equal(t, true, got["found"])
	matches := got["matches"].([]interface{})
	require.Len(t, matches, 1)

	got = callJSON(t, s, global.ToolUserFindByName, map[string]interface{}{"name": "ali"})
	assert.Equal(t, float64(2), got["count"])

	me := callJSON(t, s, global.ToolUserCurrent, nil)
	assert.Equal(t, fake.Me().Username, me["username"])
}

func TestHealth(t *testing.T) {
	s, fake := newTestServer(t, teamSettings)

	got := callJSON(t, s, global.ToolHealth, nil)
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, global.Version, got["version"])
	assert.Equal(t, true, got["team_configured"])
	assert.Equal(t, float64(len(s.ToolNames())), got["tools"])
	assert.Nil(t, got["connection"])

	got = callJSON(t, s, global.ToolHealth, map[string]interface{}{"check_connection": true})
	conn := got["connection"].(map[string]interface{})
	assert.Equal(t, true, conn["ok"])

	fake.Fail("GET", "/user", 401, "OAUTH_019", "Oauth token not found")
	got = callJSON(t, s, global.ToolHealth, map[string]interface{}{"check_connection": true})
	assert.Equal(t, "degraded", got["status"])
	conn = got["connection"].(map[string]interface{})
	assert.Equal(t, string(clickup.KindUnauthorized), conn["kind"])
}
