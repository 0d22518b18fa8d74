package concurrent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrPanic wraps a value recovered from a panicking action.
var ErrPanic = errors.New("panic in concurrent action")

// JoinAll starts action for every element before waiting for any of them and
// returns once all have finished. Every error, including recovered panics, is
// kept: the result is errors.Join of them in input order.
func JoinAll[T any](items []T, action func(T) error) error {
	switch len(items) {
	case 0:
		return nil
	case 1:
		return guard(items[0], action)
	}

	errs := make([]error, len(items))
	var wg sync.WaitGroup
	wg.Add(len(items))
	for idx, item := range items {
		go func(i int, v T) {
			defer wg.Done()
			errs[i] = guard(v, action)
		}(idx, item)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Group runs long-lived tasks that share one context. The first task to fail
// cancels the others and its error is returned from Wait.
type Group struct {
	g   *errgroup.Group
	ctx context.Context
}

func NewGroup(ctx context.Context) *Group {
	g, gctx := errgroup.WithContext(ctx)
	return &Group{g: g, ctx: gctx}
}

// Context is cancelled when a task fails or the parent context is done.
func (g *Group) Context() context.Context { return g.ctx }

func (g *Group) Go(task func(ctx context.Context) error) {
	g.g.Go(func() error { return task(g.ctx) })
}

func (g *Group) Wait() error { return g.g.Wait() }

func guard[T any](v T, action func(T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return action(v)
}
