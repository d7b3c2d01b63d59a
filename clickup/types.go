/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package clickup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PivotLLM/clickup-mcp/global"
)

// Timestamp is a millisecond epoch as ClickUp sends it: a string, a number or null
type Timestamp string

// UnmarshalJSON accepts "1567780450202", 1567780450202 or null
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s, err := flexString(b)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*t = Timestamp(s)
	return nil
}

// Millis returns the epoch milliseconds, or 0 when unset or malformed
func (t Timestamp) Millis() int64 {
	ms, err := strconv.ParseInt(string(t), 10, 64)
	if err != nil {
		return 0
	}
	return ms
}

// Time returns the timestamp as a time, or nil when unset
func (t Timestamp) Time() *time.Time {
	ms := t.Millis()
	if ms == 0 {
		return nil
	}
	v := time.UnixMilli(ms).UTC()
	return &v
}

// FlexString decodes a JSON string or number into its text form
type FlexString string

// UnmarshalJSON accepts a string, a number or null
func (f *FlexString) UnmarshalJSON(b []byte) error {
	s, err := flexString(b)
	if err != nil {
		return err
	}
	*f = FlexString(s)
	return nil
}

func flexString(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", string(b))
	}
	return n.String(), nil
}

// Priority is a task priority, 1 (urgent) to 4 (low)
type Priority struct {
	Level int    `json:"level"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

var priorityNames = map[string]int{
	"urgent": global.PriorityUrgent,
	"high":   global.PriorityHigh,
	"normal": global.PriorityNormal,
	"low":    global.PriorityLow,
}

// PriorityName returns the ClickUp label for a level
func PriorityName(level int) string {
	for name, l := range priorityNames {
		if l == level {
			return name
		}
	}
	return ""
}

// UnmarshalJSON accepts an integer, a digit string, or {"id":"2","priority":"high"}
func (p *Priority) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '{' {
		var obj struct {
			ID       FlexString `json:"id"`
			Priority string     `json:"priority"`
			Color    string     `json:"color"`
			Level    int        `json:"level"`
			Name     string     `json:"name"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return fmt.Errorf("priority: %w", err)
		}
		// Our own encoding round-trips too
		if obj.Level != 0 {
			*p = Priority{Level: obj.Level, Name: obj.Name, Color: obj.Color}
			return nil
		}
		name := strings.ToLower(obj.Priority)
		level, ok := priorityNames[name]
		if !ok {
			n, err := strconv.Atoi(string(obj.ID))
			if err != nil {
				return fmt.Errorf("priority: unrecognised value %s", string(b))
			}
			level = n
			name = PriorityName(n)
		}
		*p = Priority{Level: level, Name: name, Color: obj.Color}
		return nil
	}

	s, err := flexString(b)
	if err != nil {
		return fmt.Errorf("priority: %w", err)
	}
	level, err := strconv.Atoi(s)
	if err != nil {
		if l, ok := priorityNames[strings.ToLower(s)]; ok {
			level = l
		} else {
			return fmt.Errorf("priority: unrecognised value %q", s)
		}
	}
	*p = Priority{Level: level, Name: PriorityName(level)}
	return nil
}

// Tag is a task tag
type Tag struct {
	Name string `json:"name"`
	Fg   string `json:"tag_fg,omitempty"`
	Bg   string `json:"tag_bg,omitempty"`
}

// UnmarshalJSON accepts a plain string or a tag object
func (t *Tag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &t.Name)
	}
	type plain Tag
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("tag: %w", err)
	}
	*t = Tag(v)
	return nil
}

// TagNames returns the tag names in order
func TagNames(tags []Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

// User is a ClickUp user
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username,omitempty"`
	Email          string `json:"email,omitempty"`
	Color          string `json:"color,omitempty"`
	Initials       string `json:"initials,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Member is a workspace membership. ClickUp nests the user under "user";
// some older responses put the user fields at the top level.
type Member struct {
	User User `json:"user"`
}

// UnmarshalJSON accepts nested and flat member shapes
func (m *Member) UnmarshalJSON(b []byte) error {
	var nested struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(b, &nested); err != nil {
		return fmt.Errorf("member: %w", err)
	}
	if nested.User != nil {
		m.User = *nested.User
		return nil
	}
	return json.Unmarshal(b, &m.User)
}

// Workspace is a ClickUp workspace (called a team in API v2)
type Workspace struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Color   string   `json:"color,omitempty"`
	Avatar  string   `json:"avatar,omitempty"`
	Members []Member `json:"members,omitempty"`
}

// Group is a user group in a workspace
type Group struct {
	ID      string `json:"id"`
	TeamID  string `json:"team_id,omitempty"`
	Name    string `json:"name"`
	Members []User `json:"members,omitempty"`
}

// Ref is the short form of a list, folder or space embedded in other records
type Ref struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
	Access bool   `json:"access,omitempty"`
}

// TaskStatus is a workflow status
type TaskStatus struct {
	ID         string `json:"id,omitempty"`
	Status     string `json:"status"`
	Color      string `json:"color,omitempty"`
	OrderIndex int    `json:"orderindex"`
	Type       string `json:"type,omitempty"`
}

// IsClosed reports whether the status counts as finished
func (s TaskStatus) IsClosed() bool {
	return s.Type == global.StatusTypeClosed || s.Type == global.StatusTypeDone
}

// Space is a top-level container in a workspace
type Space struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Private           bool         `json:"private"`
	Color             string       `json:"color,omitempty"`
	Archived          bool         `json:"archived"`
	MultipleAssignees bool         `json:"multiple_assignees"`
	Statuses          []TaskStatus `json:"statuses,omitempty"`
}

// Folder groups lists inside a space
type Folder struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Hidden    bool       `json:"hidden"`
	Archived  bool       `json:"archived"`
	TaskCount FlexString `json:"task_count,omitempty"`
	Space     Ref        `json:"space"`
	Lists     []List     `json:"lists,omitempty"`
}

// List holds tasks
type List struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Content   string       `json:"content,omitempty"`
	TaskCount FlexString   `json:"task_count,omitempty"`
	DueDate   Timestamp    `json:"due_date,omitempty"`
	StartDate Timestamp    `json:"start_date,omitempty"`
	Archived  bool         `json:"archived"`
	Folder    *Ref         `json:"folder,omitempty"`
	Space     *Ref         `json:"space,omitempty"`
	Statuses  []TaskStatus `json:"statuses,omitempty"`
}

// Task is a ClickUp task
type Task struct {
	ID           string     `json:"id"`
	CustomID     string     `json:"custom_id,omitempty"`
	Name         string     `json:"name"`
	TextContent  string     `json:"text_content,omitempty"`
	Description  string     `json:"description,omitempty"`
	Status       TaskStatus `json:"status"`
	OrderIndex   FlexString `json:"orderindex,omitempty"`
	DateCreated  Timestamp  `json:"date_created,omitempty"`
	DateUpdated  Timestamp  `json:"date_updated,omitempty"`
	DateClosed   Timestamp  `json:"date_closed,omitempty"`
	DateDone     Timestamp  `json:"date_done,omitempty"`
	Archived     bool       `json:"archived"`
	Creator      User       `json:"creator"`
	Assignees    []User     `json:"assignees"`
	Tags         []Tag      `json:"tags"`
	Parent       string     `json:"parent,omitempty"`
	Priority     *Priority  `json:"priority,omitempty"`
	DueDate      Timestamp  `json:"due_date,omitempty"`
	StartDate    Timestamp  `json:"start_date,omitempty"`
	TimeEstimate *int64     `json:"time_estimate,omitempty"`
	TimeSpent    *int64     `json:"time_spent,omitempty"`
	TeamID       string     `json:"team_id,omitempty"`
	URL          string     `json:"url,omitempty"`
	List         Ref        `json:"list"`
	Folder       Ref        `json:"folder"`
	Space        Ref        `json:"space"`
	Subtasks     []Task     `json:"subtasks,omitempty"`
}

// PriorityLevel returns the priority level, or 0 when unset
func (t *Task) PriorityLevel() int {
	if t.Priority == nil {
		return 0
	}
	return t.Priority.Level
}

// Comment is a task comment
type Comment struct {
	ID          FlexString `json:"id"`
	CommentText string     `json:"comment_text"`
	User        User       `json:"user"`
	Date        Timestamp  `json:"date"`
	Resolved    bool       `json:"resolved"`
	Assignee    *User      `json:"assignee,omitempty"`
}

// CommentRef is returned when a comment is created
type CommentRef struct {
	ID     FlexString `json:"id"`
	HistID string     `json:"hist_id,omitempty"`
	Date   Timestamp  `json:"date"`
}

// TimeEntryTask identifies the task a time entry belongs to
type TimeEntryTask struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	CustomID string `json:"custom_id,omitempty"`
}

// TimeEntry is a tracked interval
type TimeEntry struct {
	ID          FlexString     `json:"id"`
	Task        *TimeEntryTask `json:"task,omitempty"`
	User        User           `json:"user"`
	Billable    bool           `json:"billable"`
	Start       Timestamp      `json:"start"`
	End         Timestamp      `json:"end,omitempty"`
	Duration    FlexString     `json:"duration"`
	Description string         `json:"description,omitempty"`
	Tags        []Tag          `json:"tags,omitempty"`
}

// DurationMillis returns the entry duration. Running timers report a negative value.
func (e TimeEntry) DurationMillis() int64 {
	ms, err := strconv.ParseInt(string(e.Duration), 10, 64)
	if err != nil {
		return 0
	}
	return ms
}

// DocParent locates a doc in the hierarchy
type DocParent struct {
	ID   FlexString `json:"id"`
	Type int        `json:"type"`
}

// Doc is a ClickUp document
type Doc struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Content     string     `json:"content,omitempty"`
	DateCreated Timestamp  `json:"date_created,omitempty"`
	WorkspaceID FlexString `json:"workspace_id,omitempty"`
	Parent      *DocParent `json:"parent,omitempty"`
	Folder      *Ref       `json:"folder,omitempty"`
	Space       *Ref       `json:"space,omitempty"`
	URL         string     `json:"url,omitempty"`
	Deleted     bool       `json:"deleted,omitempty"`
}
