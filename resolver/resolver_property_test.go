/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package resolver

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genRawID produces IDs of letters, digits and underscores (never custom-shaped, since there is no hyphen)
func genRawID() gopter.Gen {
	return gen.OneGenOf(
		gen.Identifier(),
		gen.NumString().SuchThat(func(s string) bool { return s != "" }),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }).
			Map(func(s string) string { return "86" + strings.ToLower(s) }),
	)
}

func TestPropertyRawPassthrough(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("raw IDs resolve to themselves with zero lookups", prop.ForAll(
		func(id string, withTeam bool) bool {
			lookup := &fakeLookup{}
			var team *TeamContext
			if withTeam {
				team = &TeamContext{TeamID: "9001", Prefix: "gh"}
			}
			res, err := New(lookup).Resolve(context.Background(), id, team)
			return err == nil && res.RawID == id && res.Kind == KindRaw && !res.CustomLookup && lookup.count() == 0
		},
		genRawID(),
		gen.Bool(),
	))

	properties.Property("surrounding whitespace is ignored", prop.ForAll(
		func(id string, pad string) bool {
			res, err := New(nil).Resolve(context.Background(), pad+id+pad, nil)
			return err == nil && res.RawID == id
		},
		genRawID(),
		gen.OneConstOf("", " ", "\t", "\n", "  "),
	))

	properties.TestingRun(t)
}

func TestPropertyURLExtraction(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("task URLs yield the trailing ID with zero lookups", prop.ForAll(
		func(id, scheme, host, suffix string) bool {
			lookup := &fakeLookup{}
			ref := scheme + "://" + host + "/t/" + id + suffix
			res, err := New(lookup).Resolve(context.Background(), ref, nil)
			return err == nil && res.RawID == id && res.Kind == KindURL && lookup.count() == 0
		},
		genRawID(),
		gen.OneConstOf("https", "http", "HTTPS"),
		gen.OneConstOf("app.clickup.com", "sharing.clickup.com", "app.clickup.com:443"),
		gen.OneConstOf("", "/", "?comment=1", "#details"),
	))

	properties.TestingRun(t)
}

func TestPropertyHashNeedsTeam(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("hash forms resolve with exactly one lookup when a team is known", prop.ForAll(
		func(n uint32, prefix string) bool {
			digits := strconv.FormatUint(uint64(n), 10)
			ref := "#" + digits
			custom := digits
			if prefix != "" {
				custom = prefix + "-" + digits
			}
			lookup := &fakeLookup{ids: map[string]string{custom: "raw" + digits}}

			if _, err := New(lookup).Resolve(context.Background(), ref, nil); err == nil || lookup.count() != 0 {
				return false
			}
			res, err := New(lookup).Resolve(context.Background(), ref, &TeamContext{TeamID: "1", Prefix: prefix})
			return err == nil && res.RawID == "raw"+digits && res.CustomID == custom && lookup.count() == 1
		},
		gen.UInt32(),
		gen.OneConstOf("", "gh", "DEV"),
	))

	properties.TestingRun(t)
}
