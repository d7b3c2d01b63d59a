/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package resolver turns the ways people write a task reference into a raw ClickUp task ID.
//
// Accepted forms, checked in this order:
//
//	https://app.clickup.com/t/86abc123       task URL (no remote call)
//	https://app.clickup.com/t/9001/gh-123    shared link with team (one lookup)
//	#123                                     hash form, needs a team (one lookup)
//	gh-123                                   custom ID, needs a team (one lookup)
//	86abc123, 12345                          raw ID (no remote call)
package resolver

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PivotLLM/clickup-mcp/clickup"
)

// Kind is the detected reference form
type Kind string

const (
	KindRaw    Kind = "raw"
	KindURL    Kind = "url"
	KindHash   Kind = "hash"
	KindCustom Kind = "custom"
)

var (
	customPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)-[A-Za-z0-9]+$`)
	hashPattern   = regexp.MustCompile(`^#([0-9]+)$`)
	rawPattern    = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// Lookup maps a custom task ID to a raw ID with one read-only call.
// *clickup.Client satisfies it.
type Lookup interface {
	LookupCustomID(ctx context.Context, customID, teamID string) (string, error)
}

// TeamContext scopes custom ID lookups
type TeamContext struct {
	TeamID string
	// Prefix expands #123 to Prefix-123; empty means the digits are looked up as-is
	Prefix string
}

// Resolved is the outcome of a successful resolution
type Resolved struct {
	RawID        string `json:"raw_id"`
	Kind         Kind   `json:"kind"`
	Input        string `json:"input"`
	CustomID     string `json:"custom_id,omitempty"`
	CustomLookup bool   `json:"custom_lookup"`
	Source       string `json:"source,omitempty"`
}

// Resolver resolves task references
type Resolver struct {
	lookup   Lookup
	patterns map[string]string
}

// Option is a functional option for configuring Resolver
type Option func(*Resolver)

// WithPatterns sets the custom ID prefix labels reported as Source
func WithPatterns(patterns map[string]string) Option {
	return func(r *Resolver) {
		r.patterns = patterns
	}
}

// New creates a resolver that uses lookup for custom IDs
func New(lookup Lookup, opts ...Option) *Resolver {
	r := &Resolver{lookup: lookup}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classification describes a reference without resolving it
type Classification struct {
	Kind Kind
	// Input is the trimmed reference
	Input string
	// Value is the raw ID for KindRaw and KindURL, the custom ID for
	// KindCustom and shared links, or the digits of a hash form
	Value string
	// TeamID is set when a shared link carries its own team
	TeamID string
	// Custom is true when Value must be looked up as a custom ID
	Custom bool
}

// NeedsTeam reports whether resolving requires a team context from the caller
func (c Classification) NeedsTeam() bool {
	switch c.Kind {
	case KindHash:
		return true
	case KindCustom, KindURL:
		return c.Custom && c.TeamID == ""
	}
	return false
}

// Classify detects the reference form without side effects
func Classify(reference string) (Classification, error) {
	input := strings.TrimSpace(reference)
	if input == "" {
		return Classification{}, clickup.NewError(clickup.KindInvalidReference, "task reference is empty")
	}

	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return classifyURL(input)
	}

	if strings.ContainsAny(input, " \t\r\n") {
		return Classification{}, clickup.NewError(clickup.KindInvalidReference, "task reference %q contains whitespace", input)
	}

	if m := hashPattern.FindStringSubmatch(input); m != nil {
		return Classification{Kind: KindHash, Input: input, Value: m[1]}, nil
	}
	if customPattern.MatchString(input) {
		return Classification{Kind: KindCustom, Input: input, Value: input, Custom: true}, nil
	}
	if rawPattern.MatchString(input) {
		return Classification{Kind: KindRaw, Input: input, Value: input}, nil
	}
	return Classification{}, clickup.NewError(clickup.KindInvalidReference, "unrecognised task reference %q", input)
}

// classifyURL extracts the ID from /t/<id> or /t/<team>/<custom-id>
func classifyURL(input string) (Classification, error) {
	u, err := url.Parse(input)
	if err != nil || u.Host == "" {
		return Classification{}, clickup.NewError(clickup.KindInvalidReference, "malformed task URL %q", input)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg != "t" || i+1 >= len(segments) {
			continue
		}
		rest := segments[i+1:]
		if len(rest) >= 2 && rest[1] != "" {
			team, custom := rest[0], rest[1]
			if rawPattern.MatchString(team) && customPattern.MatchString(custom) {
				return Classification{Kind: KindURL, Input: input, Value: custom, TeamID: team, Custom: true}, nil
			}
			if rawPattern.MatchString(team) && rawPattern.MatchString(custom) {
				return Classification{Kind: KindURL, Input: input, Value: custom}, nil
			}
			break
		}
		if rawPattern.MatchString(rest[0]) {
			return Classification{Kind: KindURL, Input: input, Value: rest[0]}, nil
		}
		break
	}
	return Classification{}, clickup.NewError(clickup.KindInvalidReference, "URL %q does not contain a task path (/t/<id>)", input)
}

// Resolve returns the raw task ID for reference. At most one remote lookup is made.
func (r *Resolver) Resolve(ctx context.Context, reference string, team *TeamContext) (Resolved, error) {
	c, err := Classify(reference)
	if err != nil {
		return Resolved{}, err
	}

	if c.Kind == KindRaw || (c.Kind == KindURL && !c.Custom) {
		return Resolved{RawID: c.Value, Kind: c.Kind, Input: c.Input}, nil
	}

	switch c.Kind {
	case KindHash:
		if team == nil || team.TeamID == "" {
			return Resolved{}, clickup.NewError(clickup.KindAmbiguousReference,
				"%s needs a workspace to look up; configure default_team_id or use the full custom ID", c.Input)
		}
		custom := c.Value
		if team.Prefix != "" {
			custom = team.Prefix + "-" + c.Value
		}
		return r.lookupCustom(ctx, c, custom, team.TeamID)

	case KindCustom, KindURL:
		teamID := c.TeamID
		if teamID == "" && team != nil {
			teamID = team.TeamID
		}
		if teamID == "" {
			return Resolved{}, clickup.NewError(clickup.KindAmbiguousReference,
				"custom ID %s needs a workspace to look up; configure default_team_id", c.Value)
		}
		return r.lookupCustom(ctx, c, c.Value, teamID)
	}

	return Resolved{}, clickup.NewError(clickup.KindInvalidReference, "unrecognised task reference %q", c.Input)
}

func (r *Resolver) lookupCustom(ctx context.Context, c Classification, customID, teamID string) (Resolved, error) {
	if r.lookup == nil {
		return Resolved{}, clickup.NewError(clickup.KindAmbiguousReference, "custom ID %s cannot be resolved without an API client", customID)
	}

	rawID, err := r.lookup.LookupCustomID(ctx, customID, teamID)
	if err != nil {
		if clickup.IsNotFound(err) {
			return Resolved{}, &clickup.Error{
				Kind:    clickup.KindNotFound,
				Message: "no task with custom ID " + customID,
				Err:     err,
			}
		}
		return Resolved{}, err
	}

	return Resolved{
		RawID:        rawID,
		Kind:         c.Kind,
		Input:        c.Input,
		CustomID:     customID,
		CustomLookup: true,
		Source:       r.source(customID),
	}, nil
}

// source returns the configured label for the prefix of customID
func (r *Resolver) source(customID string) string {
	m := customPattern.FindStringSubmatch(customID)
	if m == nil {
		return ""
	}
	if label, ok := r.patterns[m[1]]; ok {
		return label
	}
	for prefix, label := range r.patterns {
		if strings.EqualFold(prefix, m[1]) {
			return label
		}
	}
	return ""
}
