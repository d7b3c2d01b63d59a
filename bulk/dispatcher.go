/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package bulk applies one operation to many task references.
// Each reference is resolved and operated on independently; results keep the
// input order and one failure never stops the others.
package bulk

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/iter"
	"github.com/sourcegraph/conc/panics"

	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/global"
	"github.com/PivotLLM/clickup-mcp/logging"
	"github.com/PivotLLM/clickup-mcp/resolver"
)

// Resolver is the part of resolver.Resolver the dispatcher needs
type Resolver interface {
	Resolve(ctx context.Context, reference string, team *resolver.TeamContext) (resolver.Resolved, error)
}

// Op is applied to each resolved task ID
type Op[T any] func(ctx context.Context, rawID string) (T, error)

// Item is the outcome for one input reference
type Item[T any] struct {
	Index     int
	Reference string
	RawID     string
	Value     T
	Err       error
}

// OK reports whether the item succeeded
func (i Item[T]) OK() bool {
	return i.Err == nil
}

// Result holds one Item per input, in input order
type Result[T any] struct {
	Items     []Item[T]
	Succeeded int
	Failed    int
}

// Dispatcher runs bulk operations with bounded concurrency
type Dispatcher struct {
	resolver       Resolver
	maxConcurrency int
	logger         *logging.Logger
}

// Option is a functional option for configuring Dispatcher
type Option func(*Dispatcher)

// WithMaxConcurrency bounds the number of items in flight. 1 runs items sequentially.
func WithMaxConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxConcurrency = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// New creates a dispatcher resolving references with r
func New(r Resolver, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver:       r,
		maxConcurrency: global.DefaultBulkConcurrency,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MaxConcurrency returns the configured fan-out width
func (d *Dispatcher) MaxConcurrency() int {
	return d.maxConcurrency
}

// Dispatch resolves every reference and applies op to each resolved ID.
// Items that fail to resolve are recorded without calling op. A panic in op
// is recorded as that item's error. Once ctx is done, items not yet started
// fail with the context error mapped to a clickup.Error.
func Dispatch[T any](ctx context.Context, d *Dispatcher, refs []string, team *resolver.TeamContext, op Op[T]) Result[T] {
	items := make([]Item[T], len(refs))
	for i, ref := range refs {
		items[i] = Item[T]{Index: i, Reference: ref}
	}

	workers := d.maxConcurrency
	if workers > len(items) {
		workers = len(items)
	}
	if workers < 1 {
		workers = 1
	}

	mapper := iter.Mapper[Item[T], Item[T]]{MaxGoroutines: workers}
	items = mapper.Map(items, func(item *Item[T]) Item[T] {
		return runOne(ctx, d, *item, team, op)
	})

	result := Result[T]{Items: items}
	for _, item := range items {
		if item.OK() {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	d.logger.Debugf("Bulk dispatch finished: %d items, %d succeeded, %d failed", len(items), result.Succeeded, result.Failed)
	return result
}

func runOne[T any](ctx context.Context, d *Dispatcher, item Item[T], team *resolver.TeamContext, op Op[T]) Item[T] {
	if err := ctx.Err(); err != nil {
		item.Err = clickup.ContextError(err)
		return item
	}

	var pc panics.Catcher
	pc.Try(func() {
		resolved, err := d.resolver.Resolve(ctx, item.Reference, team)
		if err != nil {
			item.Err = err
			return
		}
		item.RawID = resolved.RawID

		if err := ctx.Err(); err != nil {
			item.Err = clickup.ContextError(err)
			return
		}
		item.Value, item.Err = op(ctx, resolved.RawID)
	})

	if r := pc.Recovered(); r != nil {
		d.logger.Errorf("Bulk item %d (%s) panicked: %v", item.Index, item.Reference, r.Value)
		item.Err = fmt.Errorf("operation panicked: %w", r.AsError())
	}
	return item
}
