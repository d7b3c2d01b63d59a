/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package reporting builds workload and analytics reports from task lists.
package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/global"
	"github.com/PivotLLM/clickup-mcp/logging"
)

// PriorityNone is the by_priority key for tasks without a priority
const PriorityNone = "none"

// Reporter generates reports from tasks
type Reporter struct {
	logger *logging.Logger
	now    func() time.Time
}

// Option configures a Reporter
type Option func(*Reporter)

// WithClock sets the time source used for report periods and timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a new Reporter
func New(logger *logging.Logger, opts ...Option) *Reporter {
	r := &Reporter{
		logger: logger,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WorkloadReport summarises open work per assignee in a space
type WorkloadReport struct {
	SpaceID          string                `json:"space_id"`
	GeneratedAt      time.Time             `json:"generated_at"`
	IncludeCompleted bool                  `json:"include_completed"`
	Members          []MemberWorkload      `json:"workload"`
	UnassignedTasks  int                   `json:"unassigned_tasks"`
	TotalTasks       int                   `json:"total_tasks"`
	FailedLists      []clickup.ListFailure `json:"failed_lists,omitempty"` // lists skipped after an error
}

// MemberWorkload is one assignee's share of the work
type MemberWorkload struct {
	UserID             int64          `json:"user_id"`
	Username           string         `json:"username"`
	TaskCount          int            `json:"task_count"`
	TotalTimeEstimate  int64          `json:"total_time_estimate"`
	TotalHoursEstimate float64        `json:"total_hours_estimate"`
	ByPriority         map[string]int `json:"by_priority"`
}

// AnalyticsReport summarises task throughput over a period
type AnalyticsReport struct {
	SpaceID     string           `json:"space_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	PeriodDays  int              `json:"period_days"`
	From        time.Time        `json:"from"`
	To          time.Time        `json:"to"`
	Metrics     AnalyticsMetrics `json:"metrics"`
	ByPriority  map[string]int   `json:"by_priority"`
}

// AnalyticsMetrics are the headline numbers of an AnalyticsReport
type AnalyticsMetrics struct {
	TotalTasksCreated  int     `json:"total_tasks_created"`
	CompletedTasks     int     `json:"completed_tasks"`
	CompletionRate     float64 `json:"completion_rate"`
	AvgCompletionHours float64 `json:"avg_completion_hours"`
	TasksPerDay        float64 `json:"tasks_per_day"`
}

func newPriorityCounts() map[string]int {
	return map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, PriorityNone: 0}
}

func priorityKey(t *clickup.Task) string {
	level := t.PriorityLevel()
	if level < global.PriorityUrgent || level > global.PriorityLow {
		return PriorityNone
	}
	return strconv.Itoa(level)
}

// BuildWorkload groups tasks by assignee. Closed tasks are skipped unless
// includeCompleted is set. A task with several assignees counts for each.
func (r *Reporter) BuildWorkload(spaceID string, tasks []clickup.Task, includeCompleted bool) *WorkloadReport {
	report := &WorkloadReport{
		SpaceID:          spaceID,
		GeneratedAt:      r.now().UTC(),
		IncludeCompleted: includeCompleted,
		Members:          []MemberWorkload{},
	}

	byUser := make(map[int64]*MemberWorkload)
	for i := range tasks {
		task := &tasks[i]
		if !includeCompleted && task.Status.IsClosed() {
			continue
		}
		report.TotalTasks++

		if len(task.Assignees) == 0 {
			report.UnassignedTasks++
			continue
		}

		for _, assignee := range task.Assignees {
			m, ok := byUser[assignee.ID]
			if !ok {
				m = &MemberWorkload{
					UserID:     assignee.ID,
					Username:   assignee.Username,
					ByPriority: newPriorityCounts(),
				}
				byUser[assignee.ID] = m
			}
			m.TaskCount++
			if task.TimeEstimate != nil {
				m.TotalTimeEstimate += *task.TimeEstimate
			}
			m.ByPriority[priorityKey(task)]++
		}
	}

	for _, m := range byUser {
		m.TotalHoursEstimate = round2(float64(m.TotalTimeEstimate) / float64(time.Hour/time.Millisecond))
		report.Members = append(report.Members, *m)
	}

	// Busiest first, then by name for a stable order
	sort.Slice(report.Members, func(i, j int) bool {
		a, b := report.Members[i], report.Members[j]
		if a.TaskCount != b.TaskCount {
			return a.TaskCount > b.TaskCount
		}
		if a.Username != b.Username {
			return a.Username < b.Username
		}
		return a.UserID < b.UserID
	})

	if r.logger != nil {
		r.logger.Debugf("Workload for space %s: %d tasks, %d assignees, %d unassigned",
			spaceID, report.TotalTasks, len(report.Members), report.UnassignedTasks)
	}
	return report
}

// AnalyticsWindow returns the period covered by an analytics report ending now
func (r *Reporter) AnalyticsWindow(periodDays int) (from, to time.Time, err error) {
	if periodDays < 1 || periodDays > global.MaxAnalyticsDays {
		return time.Time{}, time.Time{}, fmt.Errorf("period_days must be between 1 and %d, got %d", global.MaxAnalyticsDays, periodDays)
	}
	to = r.now().UTC()
	from = to.Add(-time.Duration(periodDays) * 24 * time.Hour)
	return from, to, nil
}

// BuildAnalytics computes creation and completion metrics for tasks created
// in the last periodDays days. Tasks created outside the window are ignored.
func (r *Reporter) BuildAnalytics(spaceID string, tasks []clickup.Task, periodDays int) (*AnalyticsReport, error) {
	from, to, err := r.AnalyticsWindow(periodDays)
	if err != nil {
		return nil, err
	}

	report := &AnalyticsReport{
		SpaceID:     spaceID,
		GeneratedAt: to,
		PeriodDays:  periodDays,
		From:        from,
		To:          to,
		ByPriority:  newPriorityCounts(),
	}

	var completionHours []float64
	for i := range tasks {
		task := &tasks[i]
		created := task.DateCreated.Time()
		if created == nil || created.Before(from) || created.After(to) {
			continue
		}
		report.Metrics.TotalTasksCreated++
		report.ByPriority[priorityKey(task)]++

		if !task.Status.IsClosed() {
			continue
		}
		report.Metrics.CompletedTasks++

		closed := task.DateClosed.Time()
		if closed == nil {
			closed = task.DateDone.Time()
		}
		if closed != nil && !closed.Before(*created) {
			completionHours = append(completionHours, closed.Sub(*created).Hours())
		}
	}

	if report.Metrics.TotalTasksCreated > 0 {
		report.Metrics.CompletionRate = round2(float64(report.Metrics.CompletedTasks) / float64(report.Metrics.TotalTasksCreated) * 100)
	}
	if len(completionHours) > 0 {
		var sum float64
		for _, h := range completionHours {
			sum += h
		}
		report.Metrics.AvgCompletionHours = round2(sum / float64(len(completionHours)))
	}
	report.Metrics.TasksPerDay = round2(float64(report.Metrics.TotalTasksCreated) / float64(periodDays))

	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// templateFuncs returns custom template functions
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"priority": func(key string) string {
			level, err := strconv.Atoi(key)
			if err != nil {
				return key
			}
			if name := clickup.PriorityName(level); name != "" {
				return name
			}
			return key
		},
		"hours": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 2, 64)
		},
		"sortedKeys": func(m map[string]int) []string {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return keys
		},
		"json": func(v interface{}) string {
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return fmt.Sprintf("error: %v", err)
			}
			return string(data)
		},
	}
}

const workloadTemplate = `# Team Workload: {{.SpaceID}}

**Generated**: {{.GeneratedAt.Format "2006-01-02 15:04:05"}} UTC
**Includes completed tasks**: {{.IncludeCompleted}}

## Summary

| Metric | Count |
|--------|-------|
| Total Tasks | {{.TotalTasks}} |
| Assignees | {{len .Members}} |
| Unassigned | {{.UnassignedTasks}} |
{{if .Members}}
## By Assignee

| User | Tasks | Estimate (h) | Urgent | High | Normal | Low | None |
|------|-------|--------------|--------|------|--------|-----|------|
{{range .Members}}| {{.Username}} ({{.UserID}}) | {{.TaskCount}} | {{hours .TotalHoursEstimate}} | {{index .ByPriority "1"}} | {{index .ByPriority "2"}} | {{index .ByPriority "3"}} | {{index .ByPriority "4"}} | {{index .ByPriority "none"}} |
{{end}}{{end}}{{if .FailedLists}}
## Incomplete

These lists could not be read and are not counted:
{{range .FailedLists}}
- {{.ListID}} ({{.Kind}}): {{.Error}}{{end}}
{{end}}`

const analyticsTemplate = `# Task Analytics: {{.SpaceID}}

**Period**: {{.From.Format "2006-01-02"}} to {{.To.Format "2006-01-02"}} ({{.PeriodDays}} days)

## Metrics

| Metric | Value |
|--------|-------|
| Tasks Created | {{.Metrics.TotalTasksCreated}} |
| Completed | {{.Metrics.CompletedTasks}} |
| Completion Rate | {{hours .Metrics.CompletionRate}}% |
| Avg Completion (h) | {{hours .Metrics.AvgCompletionHours}} |
| Tasks per Day | {{hours .Metrics.TasksPerDay}} |

## By Priority

| Priority | Count |
|----------|-------|
{{range $k := sortedKeys .ByPriority}}| {{priority $k}} | {{index $.ByPriority $k}} |
{{end}}`

// GenerateMarkdown renders a WorkloadReport or AnalyticsReport as markdown
func (r *Reporter) GenerateMarkdown(report interface{}) (string, error) {
	var tmpl string
	switch report.(type) {
	case *WorkloadReport:
		tmpl = workloadTemplate
	case *AnalyticsReport:
		tmpl = analyticsTemplate
	default:
		return "", fmt.Errorf("unsupported report type %T", report)
	}

	t, err := template.New("report").Funcs(templateFuncs()).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, report); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// GenerateJSON generates a JSON report
func (r *Reporter) GenerateJSON(report interface{}) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

// Render produces the report in the requested format ("json" or "markdown")
func (r *Reporter) Render(report interface{}, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", global.ResponseFormatJSON:
		return r.GenerateJSON(report)
	case global.ResponseFormatMarkdown, "md":
		return r.GenerateMarkdown(report)
	default:
		return "", fmt.Errorf("unsupported format %q (use %s or %s)", format, global.ResponseFormatJSON, global.ResponseFormatMarkdown)
	}
}
