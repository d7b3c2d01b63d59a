/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package clickuptest provides an in-memory ClickUp API for tests.
// It serves the v2 and v3 endpoints used by the clickup package and records
// every request it receives.
package clickuptest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PivotLLM/clickup-mcp/clickup"
)

// Token is the API key the fake accepts
const Token = "pk_test_0123456789"

// Request is a recorded request
type Request struct {
	Method string
	Path   string
	Query  url.Values
}

type failure struct {
	status int
	ecode  string
	msg    string
}

// Server is a fake ClickUp API backed by maps
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	now         func() time.Time
	nextID      int
	me          clickup.User
	users       []clickup.User
	workspaces  []clickup.Workspace
	groups      []clickup.Group
	spaces      map[string][]clickup.Space // by workspace
	folders     map[string][]clickup.Folder
	spaceLists  map[string][]clickup.List // folderless, by space
	folderLists map[string][]clickup.List
	tasks       map[string]*clickup.Task
	taskOrder   []string
	comments    map[string][]clickup.Comment
	entries     []clickup.TimeEntry
	docs        map[string]*clickup.Doc
	docOrder    []string
	failures    map[string]failure
	requests    []Request
}

// New starts a fake server that is closed when the test ends
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		now:         time.Now,
		me:          clickup.User{ID: 1, Username: "Test User", Email: "test@example.com", Initials: "TU"},
		spaces:      make(map[string][]clickup.Space),
		folders:     make(map[string][]clickup.Folder),
		spaceLists:  make(map[string][]clickup.List),
		folderLists: make(map[string][]clickup.List),
		tasks:       make(map[string]*clickup.Task),
		comments:    make(map[string][]clickup.Comment),
		docs:        make(map[string]*clickup.Doc),
		failures:    make(map[string]failure),
	}
	s.users = []clickup.User{s.me}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// V2URL is the base URL for API v2
func (s *Server) V2URL() string { return s.URL + "/api/v2" }

// V3URL is the base URL for API v3
func (s *Server) V3URL() string { return s.URL + "/api/v3" }

// Client returns a clickup.Client pointed at the fake
func (s *Server) Client(opts ...clickup.Option) *clickup.Client {
	base := []clickup.Option{clickup.WithBaseURL(s.V2URL()), clickup.WithV3BaseURL(s.V3URL())}
	return clickup.New(Token, append(base, opts...)...)
}

// SetClock fixes the time used for created dates and time entries
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Me returns the authenticated user
func (s *Server) Me() clickup.User { return s.me }

// AddUser registers a workspace user
func (s *Server) AddUser(u clickup.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
	for i := range s.workspaces {
		s.workspaces[i].Members = append(s.workspaces[i].Members, clickup.Member{User: u})
	}
}

// AddWorkspace registers a workspace; current users become its members
func (s *Server) AddWorkspace(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws := clickup.Workspace{ID: id, Name: name}
	for _, u := range s.users {
		ws.Members = append(ws.Members, clickup.Member{User: u})
	}
	s.workspaces = append(s.workspaces, ws)
}

// AddGroup registers a user group
func (s *Server) AddGroup(g clickup.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, g)
}

// AddSpace registers a space in a workspace
func (s *Server) AddSpace(teamID, id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spaces[teamID] = append(s.spaces[teamID], clickup.Space{
		ID:   id,
		Name: name,
		Statuses: []clickup.TaskStatus{
			{Status: "to do", Type: "open"},
			{Status: "in progress", Type: "custom", OrderIndex: 1},
			{Status: "complete", Type: "closed", OrderIndex: 2},
		},
	})
}

// AddFolder registers a folder in a space
func (s *Server) AddFolder(spaceID, id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[spaceID] = append(s.folders[spaceID], clickup.Folder{ID: id, Name: name, Space: clickup.Ref{ID: spaceID}})
}

// AddList registers a list in a folder, or directly under the space when folderID is empty
func (s *Server) AddList(spaceID, folderID, id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := clickup.List{ID: id, Name: name, Space: &clickup.Ref{ID: spaceID}}
	if folderID == "" {
		s.spaceLists[spaceID] = append(s.spaceLists[spaceID], l)
		return
	}
	l.Folder = &clickup.Ref{ID: folderID}
	s.folderLists[folderID] = append(s.folderLists[folderID], l)
}

// AddTask stores a task directly and returns its ID. An empty ID is generated.
func (s *Server) AddTask(task clickup.Task) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.ID == "" {
		task.ID = s.newID("86")
	}
	if task.Status.Status == "" {
		task.Status = clickup.TaskStatus{Status: "to do", Type: "open"}
	}
	if task.DateCreated == "" {
		task.DateCreated = millis(s.now())
	}
	if task.URL == "" {
		task.URL = clickup.FormatTaskURL(task.ID)
	}
	if task.Assignees == nil {
		task.Assignees = []clickup.User{}
	}
	if task.Tags == nil {
		task.Tags = []clickup.Tag{}
	}
	t := task
	s.tasks[t.ID] = &t
	s.taskOrder = append(s.taskOrder, t.ID)
	return t.ID
}

// Task returns a stored task
func (s *Server) Task(id string) (clickup.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return clickup.Task{}, false
	}
	return *t, true
}

// AddTimeEntry stores a time entry
func (s *Server) AddTimeEntry(e clickup.TimeEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = clickup.FlexString(s.newID("te"))
	}
	s.entries = append(s.entries, e)
}

// AddDoc stores a doc and returns its ID
func (s *Server) AddDoc(d clickup.Doc) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = s.newID("doc")
	}
	doc := d
	s.docs[doc.ID] = &doc
	s.docOrder = append(s.docOrder, doc.ID)
	return doc.ID
}

// Fail makes every request to method+path fail with status, ECODE and message
func (s *Server) Fail(method, path string, status int, ecode, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, ecode: ecode, msg: msg}
}

// Requests returns a copy of the recorded requests
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests matched method and a path prefix (API version stripped)
func (s *Server) Count(method, pathPrefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			n++
		}
	}
	return n
}

// ResetRequests clears the request log
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s%05d", prefix, s.nextID)
}

func millis(t time.Time) clickup.Timestamp {
	return clickup.Timestamp(strconv.FormatInt(t.UnixMilli(), 10))
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v2/user", s.getUser)
	mux.HandleFunc("GET /api/v2/team", s.listTeams)
	mux.HandleFunc("GET /api/v2/team/{id}", s.getTeam)
	mux.HandleFunc("GET /api/v2/group", s.listGroups)
	mux.HandleFunc("GET /api/v2/team/{id}/space", s.listSpaces)
	mux.HandleFunc("GET /api/v2/space/{id}", s.getSpace)
	mux.HandleFunc("GET /api/v2/space/{id}/folder", s.listFolders)
	mux.HandleFunc("GET /api/v2/space/{id}/list", s.listSpaceLists)
	mux.HandleFunc("GET /api/v2/folder/{id}", s.getFolder)
	mux.HandleFunc("GET /api/v2/folder/{id}/list", s.listFolderLists)
	mux.HandleFunc("GET /api/v2/list/{id}", s.getList)
	mux.HandleFunc("GET /api/v2/list/{id}/task", s.listTasks)
	mux.HandleFunc("POST /api/v2/list/{id}/task", s.createTask)
	mux.HandleFunc("GET /api/v2/task/{id}", s.getTask)
	mux.HandleFunc("PUT /api/v2/task/{id}", s.updateTask)
	mux.HandleFunc("DELETE /api/v2/task/{id}", s.deleteTask)
	mux.HandleFunc("GET /api/v2/team/{id}/task", s.searchTasks)
	mux.HandleFunc("GET /api/v2/task/{id}/comment", s.listComments)
	mux.HandleFunc("POST /api/v2/task/{id}/comment", s.createComment)
	mux.HandleFunc("GET /api/v2/team/{id}/time_entries", s.listTimeEntries)
	mux.HandleFunc("POST /api/v2/team/{id}/time_entries", s.createTimeEntry)
	mux.HandleFunc("POST /api/v2/folder/{id}/doc", s.createDoc)
	mux.HandleFunc("GET /api/v2/doc/{id}", s.getDoc)
	mux.HandleFunc("PUT /api/v2/doc/{id}", s.updateDoc)
	mux.HandleFunc("GET /api/v3/workspaces/{id}/docs", s.listDocs)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/v2"), "/api/v3")

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: path, Query: r.URL.Query()})
		f, failing := s.failures[r.Method+" "+path]
		s.mu.Unlock()

		if r.Header.Get("Authorization") != Token {
			writeError(w, http.StatusUnauthorized, "OAUTH_025", "Token invalid")
			return
		}
		if failing {
			writeError(w, f.status, f.ecode, f.msg)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, ecode, msg string) {
	writeJSON(w, status, map[string]string{"err": msg, "ECODE": ecode})
}

// wireTask renders a task with ClickUp's priority object shape
func wireTask(t *clickup.Task) map[string]interface{} {
	data, _ := json.Marshal(t)
	var m map[string]interface{}
	_ = json.Unmarshal(data, &m)
	if t.Priority != nil {
		m["priority"] = map[string]string{
			"id":       strconv.Itoa(t.Priority.Level),
			"priority": clickup.PriorityName(t.Priority.Level),
			"color":    "#6fddff",
		}
	} else {
		m["priority"] = nil
	}
	return m
}

func (s *Server) getUser(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": s.me})
}

func (s *Server) listTeams(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"teams": s.workspaces})
}

func (s *Server) getTeam(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ws := range s.workspaces {
		if ws.ID == r.PathValue("id") {
			writeJSON(w, http.StatusOK, map[string]interface{}{"team": ws})
			return
		}
	}
	writeError(w, http.StatusNotFound, "TEAM_015", "Team not found")
}

func (s *Server) listGroups(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := s.groups
	if groups == nil {
		groups = []clickup.Group{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

func (s *Server) listSpaces(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"spaces": nonNil(s.spaces[r.PathValue("id")])})
}

func (s *Server) getSpace(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, spaces := range s.spaces {
		for _, sp := range spaces {
			if sp.ID == r.PathValue("id") {
				writeJSON(w, http.StatusOK, sp)
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "PROJ_003", "Space not found")
}

func (s *Server) listFolders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"folders": nonNil(s.folders[r.PathValue("id")])})
}

func (s *Server) getFolder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, folders := range s.folders {
		for _, f := range folders {
			if f.ID == r.PathValue("id") {
				f.Lists = s.folderLists[f.ID]
				writeJSON(w, http.StatusOK, f)
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "CAT_003", "Folder not found")
}

func (s *Server) listSpaceLists(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"lists": nonNil(s.spaceLists[r.PathValue("id")])})
}

func (s *Server) listFolderLists(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"lists": nonNil(s.folderLists[r.PathValue("id")])})
}

func (s *Server) findList(id string) (clickup.List, bool) {
	for _, lists := range []map[string][]clickup.List{s.spaceLists, s.folderLists} {
		for _, ls := range lists {
			for _, l := range ls {
				if l.ID == id {
					return l, true
				}
			}
		}
	}
	return clickup.List{}, false
}

func (s *Server) getList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.findList(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "SUBCAT_016", "List not found")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func statusFor(name string) clickup.TaskStatus {
	if name == "" {
		name = "to do"
	}
	st := clickup.TaskStatus{Status: strings.ToLower(name), Type: "custom"}
	switch st.Status {
	case "to do", "open":
		st.Type = "open"
	case "complete", "closed", "done":
		st.Type = "closed"
	}
	return st
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req clickup.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INPUT_001", "invalid body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "INPUT_005", "Task name invalid")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.findList(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "SUBCAT_016", "List not found")
		return
	}

	t := &clickup.Task{
		ID:           s.newID("86"),
		Name:         req.Name,
		Description:  req.Description,
		TextContent:  req.Description,
		Status:       statusFor(req.Status),
		DateCreated:  millis(s.now()),
		DateUpdated:  millis(s.now()),
		Creator:      s.me,
		Assignees:    s.usersByID(req.Assignees),
		Tags:         []clickup.Tag{},
		Parent:       req.Parent,
		TimeEstimate: req.TimeEstimate,
		List:         clickup.Ref{ID: l.ID, Name: l.Name},
		Space:        clickup.Ref{ID: l.Space.ID},
	}
	if l.Folder != nil {
		t.Folder = clickup.Ref{ID: l.Folder.ID}
	}
	for _, tag := range req.Tags {
		t.Tags = append(t.Tags, clickup.Tag{Name: tag})
	}
	if req.Priority != nil {
		t.Priority = &clickup.Priority{Level: *req.Priority}
	}
	if req.DueDate != nil {
		t.DueDate = clickup.Timestamp(strconv.FormatInt(*req.DueDate, 10))
	}
	if req.StartDate != nil {
		t.StartDate = clickup.Timestamp(strconv.FormatInt(*req.StartDate, 10))
	}
	t.URL = clickup.FormatTaskURL(t.ID)
	s.tasks[t.ID] = t
	s.taskOrder = append(s.taskOrder, t.ID)

	writeJSON(w, http.StatusOK, wireTask(t))
}

func (s *Server) usersByID(ids []int64) []clickup.User {
	out := []clickup.User{}
	for _, id := range ids {
		for _, u := range s.users {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out
}

func (s *Server) lookupTask(r *http.Request) (*clickup.Task, *failure) {
	id := r.PathValue("id")
	if r.URL.Query().Get("custom_task_ids") == "true" {
		if r.URL.Query().Get("team_id") == "" {
			return nil, &failure{status: http.StatusBadRequest, ecode: "OAUTH_042", msg: "Team ID is required when using custom task ids"}
		}
		for _, tid := range s.taskOrder {
			if t := s.tasks[tid]; t != nil && strings.EqualFold(t.CustomID, id) {
				return t, nil
			}
		}
		return nil, &failure{status: http.StatusUnauthorized, ecode: "ITEM_013", msg: "Task not found, deleted"}
	}
	t, ok := s.tasks[id]
	if !ok {
		return nil, &failure{status: http.StatusNotFound, ecode: "ITEM_015", msg: "Task not found"}
	}
	return t, nil
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, f := s.lookupTask(r)
	if f != nil {
		writeError(w, f.status, f.ecode, f.msg)
		return
	}
	out := wireTask(t)
	if r.URL.Query().Get("include_subtasks") == "true" {
		var subs []map[string]interface{}
		for _, id := range s.taskOrder {
			if st := s.tasks[id]; st != nil && st.Parent == t.ID {
				subs = append(subs, wireTask(st))
			}
		}
		out["subtasks"] = subs
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		clickup.UpdateTaskRequest
		List string `json:"list"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INPUT_001", "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, f := s.lookupTask(r)
	if f != nil {
		writeError(w, f.status, f.ecode, f.msg)
		return
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
		t.TextContent = *req.Description
	}
	if req.Status != nil {
		t.Status = statusFor(*req.Status)
		if t.Status.IsClosed() {
			t.DateClosed = millis(s.now())
			t.DateDone = t.DateClosed
		}
	}
	if req.Priority != nil {
		t.Priority = &clickup.Priority{Level: *req.Priority}
	}
	if req.DueDate != nil {
		t.DueDate = clickup.Timestamp(strconv.FormatInt(*req.DueDate, 10))
	}
	if req.StartDate != nil {
		t.StartDate = clickup.Timestamp(strconv.FormatInt(*req.StartDate, 10))
	}
	if req.TimeEstimate != nil {
		t.TimeEstimate = req.TimeEstimate
	}
	if req.Archived != nil {
		t.Archived = *req.Archived
	}
	if req.Parent != nil {
		t.Parent = *req.Parent
	}
	if req.Assignees != nil {
		t.Assignees = append(t.Assignees, s.usersByID(req.Assignees.Add)...)
		kept := t.Assignees[:0]
		for _, u := range t.Assignees {
			removed := false
			for _, id := range req.Assignees.Rem {
				if u.ID == id {
					removed = true
				}
			}
			if !removed {
				kept = append(kept, u)
			}
		}
		t.Assignees = kept
	}
	if req.List != "" {
		l, ok := s.findList(req.List)
		if !ok {
			writeError(w, http.StatusNotFound, "SUBCAT_016", "List not found")
			return
		}
		t.List = clickup.Ref{ID: l.ID, Name: l.Name}
	}
	t.DateUpdated = millis(s.now())

	writeJSON(w, http.StatusOK, wireTask(t))
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, f := s.lookupTask(r)
	if f != nil {
		writeError(w, f.status, f.ecode, f.msg)
		return
	}
	delete(s.tasks, t.ID)
	w.WriteHeader(http.StatusNoContent)
}

func contains(items []string, v string) bool {
	for _, item := range items {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

// taskMatches applies the filters shared by list and team task queries
func taskMatches(t *clickup.Task, q url.Values) bool {
	if q.Get("include_closed") != "true" && t.Status.IsClosed() {
		return false
	}
	if st := q["statuses[]"]; len(st) > 0 && !contains(st, t.Status.Status) {
		return false
	}
	if as := q["assignees[]"]; len(as) > 0 {
		found := false
		for _, u := range t.Assignees {
			if contains(as, strconv.FormatInt(u.ID, 10)) {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if tags := q["tags[]"]; len(tags) > 0 {
		found := false
		for _, tag := range t.Tags {
			if contains(tags, tag.Name) {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if gt, _ := strconv.ParseInt(q.Get("date_created_gt"), 10, 64); gt > 0 && t.DateCreated.Millis() <= gt {
		return false
	}
	if lt, _ := strconv.ParseInt(q.Get("date_created_lt"), 10, 64); lt > 0 && t.DateCreated.Millis() >= lt {
		return false
	}
	return true
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.findList(r.PathValue("id")); !ok {
		writeError(w, http.StatusNotFound, "SUBCAT_016", "List not found")
		return
	}
	q := r.URL.Query()
	tasks := []map[string]interface{}{}
	for _, id := range s.taskOrder {
		t := s.tasks[id]
		if t == nil || t.List.ID != r.PathValue("id") {
			continue
		}
		if t.Parent != "" && q.Get("subtasks") != "true" {
			continue
		}
		if t.Archived != (q.Get("archived") == "true") {
			continue
		}
		if taskMatches(t, q) {
			tasks = append(tasks, wireTask(t))
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks, "last_page": true})
}

func (s *Server) searchTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := r.URL.Query()
	parent := q.Get("parent")
	tasks := []map[string]interface{}{}
	for _, id := range s.taskOrder {
		t := s.tasks[id]
		if t == nil {
			continue
		}
		if parent != "" && t.Parent != parent {
			continue
		}
		if parent == "" && t.Parent != "" && q.Get("subtasks") != "true" {
			continue
		}
		if ids := q["list_ids[]"]; len(ids) > 0 && !contains(ids, t.List.ID) {
			continue
		}
		if taskMatches(t, q) {
			tasks = append(tasks, wireTask(t))
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks, "last_page": true})
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, f := s.lookupTask(r)
	if f != nil {
		writeError(w, f.status, f.ecode, f.msg)
		return
	}
	comments := s.comments[t.ID]
	out := make([]clickup.Comment, len(comments))
	for i := range comments {
		out[len(comments)-1-i] = comments[i]
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": out})
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var req clickup.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CommentText == "" {
		writeError(w, http.StatusBadRequest, "INPUT_002", "Comment text required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, f := s.lookupTask(r)
	if f != nil {
		writeError(w, f.status, f.ecode, f.msg)
		return
	}
	s.nextID++
	id := s.nextID
	now := s.now().UnixMilli()
	s.comments[t.ID] = append(s.comments[t.ID], clickup.Comment{
		ID:          clickup.FlexString(strconv.Itoa(id)),
		CommentText: req.CommentText,
		User:        s.me,
		Date:        clickup.Timestamp(strconv.FormatInt(now, 10)),
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "hist_id": fmt.Sprintf("hist-%d", id), "date": now})
}

func (s *Server) listTimeEntries(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := r.URL.Query()
	start, _ := strconv.ParseInt(q.Get("start_date"), 10, 64)
	end, _ := strconv.ParseInt(q.Get("end_date"), 10, 64)
	out := []clickup.TimeEntry{}
	for _, e := range s.entries {
		if start > 0 && e.Start.Millis() < start {
			continue
		}
		if end > 0 && e.Start.Millis() > end {
			continue
		}
		if a := q.Get("assignee"); a != "" && !contains(strings.Split(a, ","), strconv.FormatInt(e.User.ID, 10)) {
			continue
		}
		if tid := q.Get("task_id"); tid != "" && (e.Task == nil || e.Task.ID != tid) {
			continue
		}
		out = append(out, e)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}

func (s *Server) createTimeEntry(w http.ResponseWriter, r *http.Request) {
	var req clickup.CreateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INPUT_001", "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[req.TaskID]
	if !ok {
		writeError(w, http.StatusNotFound, "ITEM_015", "Task not found")
		return
	}
	user := s.me
	if req.Assignee != 0 {
		if users := s.usersByID([]int64{req.Assignee}); len(users) == 1 {
			user = users[0]
		}
	}
	e := clickup.TimeEntry{
		ID:          clickup.FlexString(s.newID("te")),
		Task:        &clickup.TimeEntryTask{ID: t.ID, Name: t.Name, CustomID: t.CustomID},
		User:        user,
		Billable:    req.Billable,
		Start:       clickup.Timestamp(strconv.FormatInt(req.Start, 10)),
		End:         clickup.Timestamp(strconv.FormatInt(req.Start+req.Duration, 10)),
		Duration:    clickup.FlexString(strconv.FormatInt(req.Duration, 10)),
		Description: req.Description,
	}
	s.entries = append(s.entries, e)
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": e})
}

func (s *Server) createDoc(w http.ResponseWriter, r *http.Request) {
	var req clickup.DocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "INPUT_001", "Doc name required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &clickup.Doc{
		ID:          s.newID("doc"),
		Name:        req.Name,
		Content:     req.Content,
		DateCreated: millis(s.now()),
		Folder:      &clickup.Ref{ID: r.PathValue("id")},
	}
	if len(s.workspaces) > 0 {
		d.WorkspaceID = clickup.FlexString(s.workspaces[0].ID)
	}
	s.docs[d.ID] = d
	s.docOrder = append(s.docOrder, d.ID)
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) getDoc(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "DOC_004", "Doc not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) updateDoc(w http.ResponseWriter, r *http.Request) {
	var req clickup.DocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INPUT_001", "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "DOC_004", "Doc not found")
		return
	}
	if req.Name != "" {
		d.Name = req.Name
	}
	if req.Content != "" {
		d.Content = req.Content
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) listDocs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	search := strings.ToLower(r.URL.Query().Get("search"))
	out := []clickup.Doc{}
	for _, id := range s.docOrder {
		d := s.docs[id]
		if d == nil {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(d.Name), search) {
			continue
		}
		summary := *d
		summary.Content = ""
		out = append(out, summary)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateCreated.Millis() > out[j].DateCreated.Millis() })
	writeJSON(w, http.StatusOK, map[string]interface{}{"docs": out})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
