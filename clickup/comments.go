/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package clickup

import "context"

// ListTaskComments returns the comments on a task, newest first
func (c *Client) ListTaskComments(ctx context.Context, taskID string) ([]Comment, error) {
	var env struct {
		Comments []Comment `json:"comments"`
	}
	if err := c.get(ctx, "/task/"+pathEscape(taskID)+"/comment", nil, &env); err != nil {
		return nil, err
	}
	return env.Comments, nil
}

// CreateTaskComment adds a comment to a task
func (c *Client) CreateTaskComment(ctx context.Context, taskID string, req *CreateCommentRequest) (*CommentRef, error) {
	var ref CommentRef
	if err := c.post(ctx, "/task/"+pathEscape(taskID)+"/comment", req, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}
