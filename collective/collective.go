/*
Package collective implements the synchronous reduce-and-broadcast step that
keeps every compute worker's copy of the scent field consistent.

A Group gathers one same-shaped contribution per party, folds them
element-wise, and hands the combined result back to every party before any of
them continues. The fold is pluggable so the combine strategy (maximum for
the scent field, summation elsewhere) stays swappable and testable in
isolation from the worker topology.
*/
package collective

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrShapeMismatch  = errors.New("contribution shape does not match the group")
	ErrGroupClosed    = errors.New("collective group closed")
	ErrTooManyParties = errors.New("all group ranks already joined")
	ErrInvalidGroup   = errors.New("group needs at least one party and a positive shape")
)

// Fold combines src into dst element-wise. Both slices have the group shape.
type Fold func(dst, src []float64)

// MaxFold keeps the element-wise maximum. Merging scent deposits this way
// saturates a cell at the strongest single contribution instead of
// multiplying the signal when several workers deposit on the same cell.
func MaxFold(dst, src []float64) {
	for k, v := range src {
		if v > dst[k] {
			dst[k] = v
		}
	}
}

// SumFold accumulates the element-wise sum.
func SumFold(dst, src []float64) {
	for k, v := range src {
		dst[k] += v
	}
}

// round is one generation of the collective. The last arriving party closes
// done; acc is read-only afterwards.
type round struct {
	acc   []float64
	count int
	done  chan struct{}
}

// Group coordinates a fixed set of parties through repeated all-reduce
// rounds. All parties of a group must make the same sequence of calls.
type Group struct {
	parties int
	shape   int
	fold    Fold

	mu     sync.Mutex
	cur    *round
	joined int

	closeOnce sync.Once
	closed    chan struct{}
}

// NewGroup creates a group for the given number of parties and contribution
// length.
func NewGroup(parties, shape int, fold Fold) (*Group, error) {
	if parties <= 0 || shape <= 0 || fold == nil {
		return nil, ErrInvalidGroup
	}
	return &Group{
		parties: parties,
		shape:   shape,
		fold:    fold,
		closed:  make(chan struct{}),
	}, nil
}

// Join hands out the next free rank of the group.
func (g *Group) Join() (*Party, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.joined == g.parties {
		return nil, ErrTooManyParties
	}
	p := &Party{g: g, rank: g.joined}
	g.joined++
	return p, nil
}

// Close tears the group down. Parties blocked in a round and all later calls
// fail with ErrGroupClosed. Closing twice is harmless.
func (g *Group) Close() {
	g.closeOnce.Do(func() { close(g.closed) })
}

// Party is one participant's handle into the group.
type Party struct {
	g    *Group
	rank int
}

// Rank returns the party's rank within the group.
func (p *Party) Rank() int {
	return p.rank
}

// AllReduce contributes values to the current round and blocks until every
// party has contributed, then replaces values with the folded result. Every
// party receives the identical result.
//
// A contribution of the wrong length is unrecoverable mid-collective: the
// other parties are already blocked on it, so the group is closed and every
// participant fails rather than retrying.
func (p *Party) AllReduce(ctx context.Context, values []float64) error {
	g := p.g

	select {
	case <-g.closed:
		return ErrGroupClosed
	default:
	}

	if len(values) != g.shape {
		g.Close()
		return ErrShapeMismatch
	}

	g.mu.Lock()
	if g.cur == nil {
		g.cur = &round{acc: make([]float64, g.shape), done: make(chan struct{})}
	}
	r := g.cur
	if r.count == 0 {
		copy(r.acc, values)
	} else {
		g.fold(r.acc, values)
	}
	r.count++
	if r.count == g.parties {
		g.cur = nil
		close(r.done)
	}
	g.mu.Unlock()

	select {
	case <-r.done:
		copy(values, r.acc)
		return nil
	case <-g.closed:
		return ErrGroupClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
