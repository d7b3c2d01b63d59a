/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package bulk

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/resolver"
)

// mapLookup resolves custom IDs from a map
type mapLookup struct {
	mu    sync.Mutex
	ids   map[string]string
	calls int
}

func (m *mapLookup) LookupCustomID(_ context.Context, customID, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if id, ok := m.ids[customID]; ok {
		return id, nil
	}
	return "", clickup.NewError(clickup.KindNotFound, "no task with custom ID %s", customID)
}

func newDispatcher(n int) (*Dispatcher, *mapLookup) {
	lookup := &mapLookup{ids: map[string]string{"gh-1": "86one", "gh-2": "86two"}}
	return New(resolver.New(lookup), WithMaxConcurrency(n)), lookup
}

func TestDispatchPreservesOrderAndPositions(t *testing.T) {
	d, _ := newDispatcher(4)
	refs := []string{"86a", "gh-1", "bad ref", "gh-404", "#5", "86b"}
	team := &resolver.TeamContext{TeamID: "9001"}

	var opCalls int32
	res := Dispatch(context.Background(), d, refs, team, func(_ context.Context, rawID string) (string, error) {
		atomic.AddInt32(&opCalls, 1)
		if rawID == "86b" {
			return "", errors.New("remote said no")
		}
		return "done:" + rawID, nil
	})

	require.Len(t, res.Items, len(refs))
	for i, item := range res.Items {
		assert.Equal(t, i, item.Index)
		assert.Equal(t, refs[i], item.Reference)
	}

	assert.Equal(t, "done:86a", res.Items[0].Value)
	assert.Equal(t, "done:86one", res.Items[1].Value)
	assert.Equal(t, clickup.KindInvalidReference, clickup.KindOf(res.Items[2].Err))
	assert.Equal(t, clickup.KindNotFound, clickup.KindOf(res.Items[3].Err))
	assert.Equal(t, clickup.KindNotFound, clickup.KindOf(res.Items[4].Err))
	assert.EqualError(t, res.Items[5].Err, "remote said no")
	assert.Equal(t, "86b", res.Items[5].RawID)

	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 4, res.Failed)
	assert.Equal(t, int32(3), atomic.LoadInt32(&opCalls), "op runs only for resolved items")
}

func TestDispatchWithoutTeam(t *testing.T) {
	d, lookup := newDispatcher(2)
	res := Dispatch(context.Background(), d, []string{"gh-1", "86a"}, nil, func(_ context.Context, rawID string) (bool, error) {
		return true, nil
	})

	assert.Equal(t, clickup.KindAmbiguousReference, clickup.KindOf(res.Items[0].Err))
	assert.True(t, res.Items[1].OK())
	assert.Zero(t, lookup.calls)
}

func TestDispatchRecoversPanics(t *testing.T) {
	d, _ := newDispatcher(3)
	res := Dispatch(context.Background(), d, []string{"86a", "86boom", "86c"}, nil, func(_ context.Context, rawID string) (int, error) {
		if strings.Contains(rawID, "boom") {
			panic("kaboom")
		}
		return len(rawID), nil
	})

	require.Len(t, res.Items, 3)
	assert.True(t, res.Items[0].OK())
	require.Error(t, res.Items[1].Err)
	assert.Contains(t, res.Items[1].Err.Error(), "kaboom")
	assert.True(t, res.Items[2].OK())
}

func TestDispatchBoundsConcurrency(t *testing.T) {
	const limit = 3
	d, _ := newDispatcher(limit)

	var inFlight, peak int32
	refs := make([]string, 20)
	for i := range refs {
		refs[i] = "86task" + string(rune('a'+i))
	}
	res := Dispatch(context.Background(), d, refs, nil, func(_ context.Context, _ string) (struct{}, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}, nil
	})

	assert.Equal(t, 20, res.Succeeded)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(limit))
}

func TestDispatchSequential(t *testing.T) {
	d, _ := newDispatcher(1)
	var order []string
	res := Dispatch(context.Background(), d, []string{"86a", "86b", "86c"}, nil, func(_ context.Context, rawID string) (string, error) {
		order = append(order, rawID)
		return rawID, nil
	})
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, []string{"86a", "86b", "86c"}, order)
}

func TestDispatchCancelledContext(t *testing.T) {
	d, _ := newDispatcher(1)
	ctx, cancel := context.WithCancel(context.Background())

	res := Dispatch(ctx, d, []string{"86a", "86b", "86c"}, nil, func(_ context.Context, rawID string) (string, error) {
		if rawID == "86a" {
			cancel()
		}
		return rawID, nil
	})

	require.Len(t, res.Items, 3)
	assert.True(t, res.Items[0].OK())
	assert.ErrorIs(t, res.Items[1].Err, context.Canceled)
	assert.ErrorIs(t, res.Items[2].Err, context.Canceled)
	assert.Equal(t, clickup.KindRemoteError, clickup.KindOf(res.Items[1].Err))
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
}

func TestDispatchDeadlineIsTimeout(t *testing.T) {
	d, _ := newDispatcher(2)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	res := Dispatch(ctx, d, []string{"86a", "gh-1"}, nil, func(_ context.Context, rawID string) (string, error) {
		return rawID, nil
	})

	require.Len(t, res.Items, 2)
	for _, item := range res.Items {
		assert.Equal(t, clickup.KindTimeout, clickup.KindOf(item.Err))
		assert.ErrorIs(t, item.Err, context.DeadlineExceeded)
	}
	assert.Equal(t, 2, res.Failed)
}

func TestDispatchEmpty(t *testing.T) {
	d, _ := newDispatcher(4)
	res := Dispatch(context.Background(), d, nil, nil, func(_ context.Context, _ string) (int, error) { return 0, nil })
	assert.Empty(t, res.Items)
	assert.Zero(t, res.Succeeded+res.Failed)
}

func TestNewDefaults(t *testing.T) {
	d := New(nil, WithMaxConcurrency(0))
	assert.Equal(t, 4, d.MaxConcurrency())
}

func TestPropertyLengthAndOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("one item per input, in input order, failures in place", prop.ForAll(
		func(refs []string, workers int) bool {
			d := New(resolver.New(nil), WithMaxConcurrency(workers))
			res := Dispatch(context.Background(), d, refs, nil, func(_ context.Context, rawID string) (string, error) {
				if strings.HasSuffix(rawID, "x") {
					return "", errors.New("rejected")
				}
				return rawID, nil
			})
			if len(res.Items) != len(refs) || res.Succeeded+res.Failed != len(refs) {
				return false
			}
			for i, item := range res.Items {
				if item.Index != i || item.Reference != refs[i] {
					return false
				}
				wantFail := strings.HasSuffix(strings.TrimSpace(refs[i]), "x") || strings.TrimSpace(refs[i]) == ""
				if wantFail == item.OK() {
					return false
				}
				if item.OK() && item.Value != refs[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.OneGenOf(gen.Identifier(), gen.Const(""))),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}
