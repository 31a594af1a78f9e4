// Package dependents loads a record together with the records that depend on
// it, and deletes the record only when nothing depends on it anymore.
package dependents

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// State is where a delete ended up.
type State string

const (
	StateChecking  State = "checking"
	StateDeletable State = "deletable"
	StateDeleted   State = "deleted"
	StateBlocked   State = "blocked"
	StateFailed    State = "failed"
)

// Result is a parent loaded alongside its dependents.
type Result[P, C any] struct {
	Parent   *P
	Children []*C
}

// Outcome is the result of Guard.Delete. When the state is StateBlocked,
// Parent and Children are what the confirmation page shows.
type Outcome[P, C any] struct {
	State    State
	Parent   *P
	Children []*C
}

// Guard ties a parent fetch, a children fetch, and a removal together. Only
// callers that go through Delete are protected; anything writing to the store
// directly can still orphan children.
type Guard[P, C any] struct {
	Parent   func(ctx context.Context) (*P, error)
	Children func(ctx context.Context) ([]*C, error)
	Remove   func(ctx context.Context) error
}

// Check runs both fetches concurrently and waits for both. If either fails
// the whole check fails and nothing partial is returned. Errors from the
// fetches are returned unwrapped so callers can match not-found errors.
func (g Guard[P, C]) Check(ctx context.Context) (*Result[P, C], error) {
	var parent *P
	var children []*C

	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		p, err := g.Parent(ctx)
		if err != nil {
			return err
		}
		parent = p
		return nil
	})
	gg.Go(func() error {
		c, err := g.Children(ctx)
		if err != nil {
			return err
		}
		children = c
		return nil
	})

	if err := gg.Wait(); err != nil {
		return nil, err
	}

	return &Result[P, C]{Parent: parent, Children: children}, nil
}

// Delete checks for dependents and removes the parent only when there are
// none. Remove is called at most once.
func (g Guard[P, C]) Delete(ctx context.Context) (*Outcome[P, C], error) {
	outcome := &Outcome[P, C]{State: StateChecking}

	res, err := g.Check(ctx)
	if err != nil {
		outcome.State = StateFailed
		return outcome, err
	}
	outcome.Parent = res.Parent
	outcome.Children = res.Children

	if len(res.Children) > 0 {
		outcome.State = StateBlocked
		return outcome, nil
	}

	outcome.State = StateDeletable
	if err := g.Remove(ctx); err != nil {
		outcome.State = StateFailed
		return outcome, errors.WithStack(err)
	}

	outcome.State = StateDeleted
	return outcome, nil
}
