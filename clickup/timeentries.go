/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package clickup

import "context"

// ListTimeEntries returns time entries in a workspace matching q
func (c *Client) ListTimeEntries(ctx context.Context, teamID string, q *TimeEntryQuery) ([]TimeEntry, error) {
	var env struct {
		Data []TimeEntry `json:"data"`
	}
	if err := c.get(ctx, "/team/"+pathEscape(teamID)+"/time_entries", q.values(), &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateTimeEntry records a completed interval against a task
func (c *Client) CreateTimeEntry(ctx context.Context, teamID string, req *CreateTimeEntryRequest) (*TimeEntry, error) {
	var env struct {
		Data TimeEntry `json:"data"`
	}
	if err := c.post(ctx, "/team/"+pathEscape(teamID)+"/time_entries", req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}
