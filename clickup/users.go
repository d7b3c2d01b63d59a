/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package clickup

import (
	"context"
	"net/url"
	"strings"
)

// GetCurrentUser returns the user the token belongs to
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var env struct {
		User User `json:"user"`
	}
	if err := c.get(ctx, "/user", nil, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}

// ListGroups returns the user groups of a workspace
func (c *Client) ListGroups(ctx context.Context, teamID string) ([]Group, error) {
	var q url.Values
	if teamID != "" {
		q = url.Values{"team_id": {teamID}}
	}
	var env struct {
		Groups []Group `json:"groups"`
	}
	if err := c.get(ctx, "/group", q, &env); err != nil {
		return nil, err
	}
	return env.Groups, nil
}

// ListWorkspaceMembers returns the members of a workspace. The group
// endpoint is tried first, then the workspace record, then the current
// user alone. Only an authorization failure stops the chain.
func (c *Client) ListWorkspaceMembers(ctx context.Context, teamID string) ([]User, error) {
	groups, err := c.ListGroups(ctx, teamID)
	switch {
	case err == nil:
		if members := uniqueGroupMembers(groups); len(members) > 0 {
			return members, nil
		}
	case KindOf(err) == KindUnauthorized || ctx.Err() != nil:
		return nil, err
	default:
		c.logger.Warnf("Groups endpoint failed, trying workspace members: %v", err)
	}

	ws, err := c.GetWorkspace(ctx, teamID)
	switch {
	case err == nil:
		if len(ws.Members) > 0 {
			users := make([]User, 0, len(ws.Members))
			for _, m := range ws.Members {
				users = append(users, m.User)
			}
			return users, nil
		}
	case KindOf(err) == KindUnauthorized || ctx.Err() != nil:
		return nil, err
	default:
		c.logger.Warnf("Workspace endpoint failed, falling back to current user: %v", err)
	}

	me, err := c.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return []User{*me}, nil
}

func uniqueGroupMembers(groups []Group) []User {
	seen := make(map[int64]bool)
	var users []User
	for _, g := range groups {
		for _, m := range g.Members {
			if m.ID == 0 || seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			users = append(users, m)
		}
	}
	return users
}

// MatchUsers returns users whose username or email contains query, case-insensitively.
// Exact username matches come first.
func MatchUsers(users []User, query string) []User {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var exact, partial []User
	for _, u := range users {
		name := strings.ToLower(u.Username)
		switch {
		case name == q || strings.ToLower(u.Email) == q:
			exact = append(exact, u)
		case strings.Contains(name, q) || strings.Contains(strings.ToLower(u.Email), q):
			partial = append(partial, u)
		}
	}
	return append(exact, partial...)
}
