/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/global"
	"github.com/PivotLLM/clickup-mcp/resolver"
)

// Helper function to create JSON tool results safely
func createJSONResult(data interface{}) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError("Failed to create JSON result"), nil
	}
	return result, nil
}

func newCorrelationID() string {
	return uuid.NewString()
}

// logToolCall logs an MCP tool invocation at INFO level and returns the
// correlation ID that ties later log lines and errors to this call
func (s *Server) logToolCall(toolName string, params map[string]string) string {
	cid := newCorrelationID()

	var parts []string
	for k, v := range params {
		if v != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", k, v))
		}
	}
	if len(parts) == 0 {
		s.logger.Infof("Tool %s called [%s]", toolName, cid)
	} else {
		sort.Strings(parts)
		s.logger.Infof("Tool %s called [%s]: %s", toolName, cid, strings.Join(parts, ", "))
	}
	return cid
}

// toolError is the JSON body of every failed tool call
type toolError struct {
	Error         string       `json:"error"`
	Kind          clickup.Kind `json:"kind,omitempty"`
	Type          string       `json:"type"`
	CorrelationID string       `json:"correlation_id"`
}

// errorType maps an error to the tool error type
func errorType(err error) string {
	switch clickup.KindOf(err) {
	case "":
		return global.ErrorTypeInternal
	case clickup.KindInvalidReference, clickup.KindAmbiguousReference:
		return global.ErrorTypeValidation
	default:
		return global.ErrorTypeAPI
	}
}

func (s *Server) errorBody(body toolError) *mcp.CallToolResult {
	data, err := json.Marshal(body)
	if err != nil {
		return mcp.NewToolResultError(body.Error)
	}
	return mcp.NewToolResultError(string(data))
}

// errorResult converts err into a tool error result
func (s *Server) errorResult(cid string, err error) *mcp.CallToolResult {
	body := toolError{
		Error:         err.Error(),
		Kind:          clickup.KindOf(err),
		Type:          errorType(err),
		CorrelationID: cid,
	}
	s.logger.Warnf("Tool call [%s] failed (%s): %v", cid, body.Type, err)
	return s.errorBody(body)
}

// paramError reports a caller mistake in the arguments
func (s *Server) paramError(cid, message string) *mcp.CallToolResult {
	s.logger.Debugf("Tool call [%s] rejected: %s", cid, message)
	return s.errorBody(toolError{
		Error:         message,
		Type:          global.ErrorTypeValidation,
		CorrelationID: cid,
	})
}

// workspaceID returns explicit when set, else the configured team, else the
// first workspace visible to the token. The discovered ID is cached.
func (s *Server) workspaceID(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if id := s.config.TeamID(); id != "" {
		return id, nil
	}

	s.teamMu.Lock()
	defer s.teamMu.Unlock()
	if s.teamID != "" {
		return s.teamID, nil
	}
	id, err := s.client.FirstWorkspaceID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to determine workspace: %w", err)
	}
	s.teamID = id
	s.logger.Infof("Using workspace %s (first available)", id)
	return id, nil
}

// teamContext builds the resolver context. The workspace is only looked up
// when one of refs needs it.
func (s *Server) teamContext(ctx context.Context, refs ...string) (*resolver.TeamContext, error) {
	team := &resolver.TeamContext{
		TeamID: s.config.TeamID(),
		Prefix: s.config.DefaultIDPrefix(),
	}
	if team.TeamID != "" {
		return team, nil
	}

	for _, ref := range refs {
		c, err := resolver.Classify(ref)
		if err != nil || !c.NeedsTeam() {
			continue
		}
		id, err := s.workspaceID(ctx, "")
		if err != nil {
			return team, err
		}
		team.TeamID = id
		break
	}
	return team, nil
}

// resolveTask turns a task reference into a raw ID
func (s *Server) resolveTask(ctx context.Context, ref string) (resolver.Resolved, error) {
	team, err := s.teamContext(ctx, ref)
	if err != nil {
		return resolver.Resolved{}, err
	}
	return s.resolver.Resolve(ctx, ref, team)
}

// Argument helpers

func hasArg(request mcp.CallToolRequest, key string) bool {
	_, ok := request.GetArguments()[key]
	return ok
}

// parseStringSlice reads an array of strings. A single string is split on commas.
func parseStringSlice(request mcp.CallToolRequest, key string) []string {
	raw, ok := request.GetArguments()[key]
	if !ok || raw == nil {
		return nil
	}
	var out []string
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			switch t := item.(type) {
			case string:
				if s := strings.TrimSpace(t); s != "" {
					out = append(out, s)
				}
			case float64:
				out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
			}
		}
	case []string:
		for _, item := range v {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, item := range strings.Split(v, ",") {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// parseRefs reads task references for a bulk call. Every element is kept,
// blank ones included, so results stay aligned with the input by index.
func parseRefs(request mcp.CallToolRequest, key string) []string {
	raw, ok := request.GetArguments()[key]
	if !ok || raw == nil {
		return nil
	}
	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case []string:
		for _, item := range v {
			items = append(items, item)
		}
	case string:
		for _, item := range strings.Split(v, ",") {
			items = append(items, item)
		}
	default:
		return nil
	}

	refs := make([]string, len(items))
	for i, item := range items {
		switch t := item.(type) {
		case string:
			refs[i] = strings.TrimSpace(t)
		case float64:
			refs[i] = strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return refs
}

// parseIDSlice reads an array of numeric user IDs
func parseIDSlice(request mcp.CallToolRequest, key string) ([]int64, error) {
	raw, ok := request.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case []int64:
		return v, nil
	case []int:
		out := make([]int64, len(v))
		for i, n := range v {
			out[i] = int64(n)
		}
		return out, nil
	default:
		items = []interface{}{v}
	}

	out := make([]int64, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case float64:
			if t != math.Trunc(t) {
				return nil, fmt.Errorf("%s: %v is not a user ID", key, t)
			}
			out = append(out, int64(t))
		case int:
			out = append(out, int64(t))
		case int64:
			out = append(out, t)
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a user ID", key, t)
			}
			out = append(out, n)
		default:
			return nil, fmt.Errorf("%s: unsupported value %v", key, t)
		}
	}
	return out, nil
}

// parsePriority reads an optional priority and validates its range
func parsePriority(request mcp.CallToolRequest, key string) (*int, error) {
	if !hasArg(request, key) {
		return nil, nil
	}
	p := int(mcp.ParseFloat64(request, key, 0))
	if err := global.ValidatePriority(p); err != nil {
		return nil, err
	}
	return &p, nil
}

// parseDueDate reads an optional ISO-8601 date into epoch milliseconds
func parseDueDate(request mcp.CallToolRequest, key string) (*int64, error) {
	value := strings.TrimSpace(mcp.ParseString(request, key, ""))
	if value == "" {
		return nil, nil
	}
	ms, err := global.ParseISOMillis(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &ms, nil
}

// parseEstimate reads an optional duration such as "1h 30m" into milliseconds
func parseEstimate(request mcp.CallToolRequest, key string) (*int64, error) {
	value := strings.TrimSpace(mcp.ParseString(request, key, ""))
	if value == "" {
		return nil, nil
	}
	ms, err := global.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &ms, nil
}

// parseObject reads an object argument
func parseObject(request mcp.CallToolRequest, key string) map[string]interface{} {
	if m, ok := request.GetArguments()[key].(map[string]interface{}); ok {
		return m
	}
	return nil
}
