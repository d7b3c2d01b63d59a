/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package clickup

import (
	"net/url"
	"strconv"
)

// CreateTaskRequest is the body of POST /list/{id}/task
type CreateTaskRequest struct {
	Name          string                   `json:"name"`
	Description   string                   `json:"description,omitempty"`
	Assignees     []int64                  `json:"assignees,omitempty"`
	Tags          []string                 `json:"tags,omitempty"`
	Status        string                   `json:"status,omitempty"`
	Priority      *int                     `json:"priority,omitempty"`
	DueDate       *int64                   `json:"due_date,omitempty"`
	DueDateTime   bool                     `json:"due_date_time,omitempty"`
	StartDate     *int64                   `json:"start_date,omitempty"`
	StartDateTime bool                     `json:"start_date_time,omitempty"`
	TimeEstimate  *int64                   `json:"time_estimate,omitempty"`
	NotifyAll     bool                     `json:"notify_all,omitempty"`
	Parent        string                   `json:"parent,omitempty"`
	LinksTo       string                   `json:"links_to,omitempty"`
	CustomFields  []map[string]interface{} `json:"custom_fields,omitempty"`
}

// AssigneesUpdate adds and removes assignees in one update
type AssigneesUpdate struct {
	Add []int64 `json:"add,omitempty"`
	Rem []int64 `json:"rem,omitempty"`
}

// UpdateTaskRequest is the body of PUT /task/{id}. Nil fields are left unchanged.
type UpdateTaskRequest struct {
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Status       *string          `json:"status,omitempty"`
	Priority     *int             `json:"priority,omitempty"`
	DueDate      *int64           `json:"due_date,omitempty"`
	DueDateTime  *bool            `json:"due_date_time,omitempty"`
	StartDate    *int64           `json:"start_date,omitempty"`
	TimeEstimate *int64           `json:"time_estimate,omitempty"`
	Archived     *bool            `json:"archived,omitempty"`
	Parent       *string          `json:"parent,omitempty"`
	Assignees    *AssigneesUpdate `json:"assignees,omitempty"`
}

// IsEmpty reports whether the update would change nothing
func (u *UpdateTaskRequest) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Status == nil &&
		u.Priority == nil && u.DueDate == nil && u.StartDate == nil &&
		u.TimeEstimate == nil && u.Archived == nil && u.Parent == nil &&
		(u.Assignees == nil || (len(u.Assignees.Add) == 0 && len(u.Assignees.Rem) == 0))
}

// TaskQuery filters GET /list/{id}/task
type TaskQuery struct {
	Archived      bool
	Page          int
	OrderBy       string
	Reverse       bool
	Subtasks      bool
	IncludeClosed bool
	Statuses      []string
	Assignees     []string
	Tags          []string
}

func (q *TaskQuery) values() url.Values {
	v := url.Values{}
	if q == nil {
		return v
	}
	v.Set("archived", strconv.FormatBool(q.Archived))
	v.Set("page", strconv.Itoa(q.Page))
	if q.OrderBy != "" {
		v.Set("order_by", q.OrderBy)
	}
	if q.Reverse {
		v.Set("reverse", "true")
	}
	if q.Subtasks {
		v.Set("subtasks", "true")
	}
	v.Set("include_closed", strconv.FormatBool(q.IncludeClosed))
	addAll(v, "statuses[]", q.Statuses)
	addAll(v, "assignees[]", q.Assignees)
	addAll(v, "tags[]", q.Tags)
	return v
}

// SearchQuery filters GET /team/{id}/task
type SearchQuery struct {
	Query         string
	Page          int
	Statuses      []string
	Assignees     []string
	Tags          []string
	ListIDs       []string
	SpaceIDs      []string
	Parent        string
	Subtasks      bool
	IncludeClosed bool
	DateCreatedGt int64
	DateCreatedLt int64
	DateUpdatedGt int64
	DateUpdatedLt int64
	DueDateGt     int64
	DueDateLt     int64
}

func (q *SearchQuery) values() url.Values {
	v := url.Values{}
	if q == nil {
		return v
	}
	if q.Query != "" {
		v.Set("query", q.Query)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	addAll(v, "statuses[]", q.Statuses)
	addAll(v, "assignees[]", q.Assignees)
	addAll(v, "tags[]", q.Tags)
	addAll(v, "list_ids[]", q.ListIDs)
	addAll(v, "space_ids[]", q.SpaceIDs)
	if q.Parent != "" {
		v.Set("parent", q.Parent)
	}
	if q.Subtasks {
		v.Set("subtasks", "true")
	}
	if q.IncludeClosed {
		v.Set("include_closed", "true")
	}
	addMillis(v, "date_created_gt", q.DateCreatedGt)
	addMillis(v, "date_created_lt", q.DateCreatedLt)
	addMillis(v, "date_updated_gt", q.DateUpdatedGt)
	addMillis(v, "date_updated_lt", q.DateUpdatedLt)
	addMillis(v, "due_date_gt", q.DueDateGt)
	addMillis(v, "due_date_lt", q.DueDateLt)
	return v
}

// TimeEntryQuery filters GET /team/{id}/time_entries
type TimeEntryQuery struct {
	StartDate int64
	EndDate   int64
	Assignee  string
	TaskID    string
}

func (q *TimeEntryQuery) values() url.Values {
	v := url.Values{}
	if q == nil {
		return v
	}
	addMillis(v, "start_date", q.StartDate)
	addMillis(v, "end_date", q.EndDate)
	if q.Assignee != "" {
		v.Set("assignee", q.Assignee)
	}
	if q.TaskID != "" {
		v.Set("task_id", q.TaskID)
	}
	return v
}

// CreateTimeEntryRequest is the body of POST /team/{id}/time_entries
type CreateTimeEntryRequest struct {
	TaskID      string `json:"tid"`
	Description string `json:"description,omitempty"`
	Start       int64  `json:"start"`
	Duration    int64  `json:"duration"`
	Billable    bool   `json:"billable"`
	Assignee    int64  `json:"assignee,omitempty"`
}

// CreateCommentRequest is the body of POST /task/{id}/comment
type CreateCommentRequest struct {
	CommentText string `json:"comment_text"`
	Assignee    int64  `json:"assignee,omitempty"`
	NotifyAll   bool   `json:"notify_all"`
}

// DocRequest creates or updates a doc. Empty fields are left unchanged on update.
type DocRequest struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`
}

func addAll(v url.Values, key string, items []string) {
	for _, item := range items {
		v.Add(key, item)
	}
}

func addMillis(v url.Values, key string, ms int64) {
	if ms > 0 {
		v.Set(key, strconv.FormatInt(ms, 10))
	}
}
