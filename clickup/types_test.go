/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package clickup_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PivotLLM/clickup-mcp/clickup"
)

func TestPriorityDecoding(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLevel int
		wantName  string
		wantErr   bool
	}{
		{"integer", `1`, 1, "urgent", false},
		{"digit string", `"3"`, 3, "normal", false},
		{"object by name", `{"id":"2","priority":"high","color":"#ffcc00"}`, 2, "high", false},
		{"object by id", `{"id":"4","priority":""}`, 4, "low", false},
		{"name string", `"Urgent"`, 1, "urgent", false},
		{"own encoding", `{"level":3,"name":"normal"}`, 3, "normal", false},
		{"garbage", `"soon"`, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p clickup.Priority
			err := json.Unmarshal([]byte(tt.input), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, p.Level)
			assert.Equal(t, tt.wantName, p.Name)
		})
	}
}

func TestNullPriorityLeavesNil(t *testing.T) {
	var task clickup.Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","name":"n","priority":null}`), &task))
	assert.Nil(t, task.Priority)
	assert.Equal(t, 0, task.PriorityLevel())
}

func TestTagDecoding(t *testing.T) {
	var tags []clickup.Tag
	require.NoError(t, json.Unmarshal([]byte(`["bug", {"name":"ui","tag_fg":"#fff","tag_bg":"#000"}]`), &tags))
	assert.Equal(t, []string{"bug", "ui"}, clickup.TagNames(tags))
	assert.Equal(t, "#000", tags[1].Bg)
}

func TestTimestampDecoding(t *testing.T) {
	var v struct {
		A clickup.Timestamp `json:"a"`
		B clickup.Timestamp `json:"b"`
		C clickup.Timestamp `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"1567780450202","b":1567780450202,"c":null}`), &v))

	assert.Equal(t, int64(1567780450202), v.A.Millis())
	assert.Equal(t, v.A, v.B)
	assert.Nil(t, v.C.Time())
	require.NotNil(t, v.A.Time())
	assert.Equal(t, time.UnixMilli(1567780450202).UTC(), *v.A.Time())
}

func TestMemberShapes(t *testing.T) {
	var members []clickup.Member
	require.NoError(t, json.Unmarshal([]byte(`[{"user":{"id":1,"username":"nested"}},{"id":2,"username":"flat"}]`), &members))
	require.Len(t, members, 2)
	assert.Equal(t, "nested", members[0].User.Username)
	assert.Equal(t, int64(2), members[1].User.ID)
}

func TestTaskStatusIsClosed(t *testing.T) {
	assert.True(t, clickup.TaskStatus{Type: "closed"}.IsClosed())
	assert.True(t, clickup.TaskStatus{Type: "done"}.IsClosed())
	assert.False(t, clickup.TaskStatus{Type: "custom"}.IsClosed())
}

func TestMatchUsers(t *testing.T) {
	users := []clickup.User{
		{ID: 1, Username: "Annabel", Email: "annabel@example.com"},
		{ID: 2, Username: "Ann", Email: "ann@example.com"},
		{ID: 3, Username: "Bob", Email: "bob@example.com"},
	}
	got := clickup.MatchUsers(users, "ann")
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Empty(t, clickup.MatchUsers(users, "  "))
}

func TestUpdateRequestIsEmpty(t *testing.T) {
	assert.True(t, (&clickup.UpdateTaskRequest{}).IsEmpty())
	assert.True(t, (&clickup.UpdateTaskRequest{Assignees: &clickup.AssigneesUpdate{}}).IsEmpty())
	name := "x"
	assert.False(t, (&clickup.UpdateTaskRequest{Name: &name}).IsEmpty())
}
