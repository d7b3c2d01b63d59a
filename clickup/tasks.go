/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package clickup

import (
	"context"
	"net/url"
)

type tasksEnvelope struct {
	Tasks    []Task `json:"tasks"`
	LastPage bool   `json:"last_page"`
}

// GetTaskOptions tunes GetTask
type GetTaskOptions struct {
	IncludeSubtasks bool
	// CustomTaskIDs treats the ID as a custom ID scoped to TeamID
	CustomTaskIDs bool
	TeamID        string
}

// CreateTask creates a task in a list
func (c *Client) CreateTask(ctx context.Context, listID string, req *CreateTaskRequest) (*Task, error) {
	var task Task
	if err := c.post(ctx, "/list/"+pathEscape(listID)+"/task", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask fetches one task
func (c *Client) GetTask(ctx context.Context, taskID string, opts *GetTaskOptions) (*Task, error) {
	q := url.Values{}
	if opts != nil {
		if opts.IncludeSubtasks {
			q.Set("include_subtasks", "true")
		}
		if opts.CustomTaskIDs {
			q.Set("custom_task_ids", "true")
			if opts.TeamID != "" {
				q.Set("team_id", opts.TeamID)
			}
		}
	}

	var task Task
	if err := c.get(ctx, "/task/"+pathEscape(taskID), q, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// LookupCustomID maps a custom task ID to the task's raw ID with one read-only request
func (c *Client) LookupCustomID(ctx context.Context, customID, teamID string) (string, error) {
	task, err := c.GetTask(ctx, customID, &GetTaskOptions{CustomTaskIDs: true, TeamID: teamID})
	if err != nil {
		return "", err
	}
	if task.ID == "" {
		return "", NewError(KindNotFound, "no task with custom ID %s", customID)
	}
	return task.ID, nil
}

// UpdateTask applies a partial update
func (c *Client) UpdateTask(ctx context.Context, taskID string, req *UpdateTaskRequest) (*Task, error) {
	var task Task
	if err := c.put(ctx, "/task/"+pathEscape(taskID), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// MoveTask moves a task to another list
func (c *Client) MoveTask(ctx context.Context, taskID, listID string) (*Task, error) {
	var task Task
	body := map[string]string{"list": listID}
	if err := c.put(ctx, "/task/"+pathEscape(taskID), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask permanently deletes a task
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.delete(ctx, "/task/"+pathEscape(taskID))
}

// ListTasks returns one page of tasks in a list
func (c *Client) ListTasks(ctx context.Context, listID string, q *TaskQuery) ([]Task, error) {
	var env tasksEnvelope
	if err := c.get(ctx, "/list/"+pathEscape(listID)+"/task", q.values(), &env); err != nil {
		return nil, err
	}
	return env.Tasks, nil
}

// ListFailure records a list whose tasks could not be fetched
type ListFailure struct {
	ListID string `json:"list_id"`
	Kind   Kind   `json:"kind"`
	Error  string `json:"error"`
}

// ListTasksInLists fetches tasks from each list in turn. A list that fails is
// skipped and reported in the returned failures. Unauthorized and context
// errors stop the walk, and if every list fails the first error is returned.
// Aggregate: one request per list.
func (c *Client) ListTasksInLists(ctx context.Context, lists []List, q *TaskQuery) ([]Task, []ListFailure, error) {
	var (
		all      []Task
		failures []ListFailure
		firstErr error
	)
	for _, l := range lists {
		tasks, err := c.ListTasks(ctx, l.ID, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, errorFromTransport(ctx.Err())
			}
			if KindOf(err) == KindUnauthorized {
				return nil, nil, err
			}
			c.logger.Warnf("Failed to get tasks from list %s: %v", l.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			failures = append(failures, ListFailure{ListID: l.ID, Kind: KindOf(err), Error: err.Error()})
			continue
		}
		all = append(all, tasks...)
	}
	if len(failures) > 0 && len(failures) == len(lists) {
		return nil, failures, firstErr
	}
	return all, failures, nil
}

// SearchTasks runs a filtered task query across a workspace
func (c *Client) SearchTasks(ctx context.Context, teamID string, q *SearchQuery) ([]Task, error) {
	var env tasksEnvelope
	if err := c.get(ctx, "/team/"+pathEscape(teamID)+"/task", q.values(), &env); err != nil {
		return nil, err
	}
	return env.Tasks, nil
}

// GetSubtasks returns the direct children of a task, including closed ones
func (c *Client) GetSubtasks(ctx context.Context, teamID, parentID string) ([]Task, error) {
	return c.SearchTasks(ctx, teamID, &SearchQuery{
		Parent:        parentID,
		Subtasks:      true,
		IncludeClosed: true,
	})
}
