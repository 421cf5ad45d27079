// Package intensity tracks a sparse piecewise-constant intensity function
// over a continuous float64 axis. Mutations maintain a canonical breakpoint
// sequence inside a balanced ordered map; queries read it back as pairs,
// point samples, or constant spans.
package intensity

import (
	"errors"
	"fmt"

	"github.com/manan/range-list/pkg/avltree"
)

// Breakpoint is one position/intensity pair of the canonical breakpoint
// sequence. The intensity holds from Position up to the next breakpoint;
// before the first breakpoint the function is implicitly zero.
type Breakpoint struct {
	Position  float64 `json:"position"`
	Intensity float64 `json:"intensity"`
}

// Validation errors returned by Segments.Validate.
var (
	ErrLeadingZero       = errors.New("first breakpoint carries zero intensity")
	ErrEqualAdjacent     = errors.New("adjacent breakpoints carry equal intensity")
	ErrUnsortedPositions = errors.New("breakpoint positions do not strictly increase")
)

// Segments encapsulates a balanced ordered map of intensity breakpoints and
// a lazily rebuilt interval index over them. Users are not supposed to
// create Segments directly; instead, they should call New().
// NewFromBreakpoints() is the special constructor which restores a snapshot.
//
// Add() and Set() mutate the function on half-open ranges and restore the
// canonical form afterwards.
//
// String() formats the sequence and Validate() checks its integrity.
type Segments struct {
	tree  *avltree.Tree
	index *rangeIndex
	hib   *hibernatedColumns
}

// New initializes an empty accumulator: the intensity is zero everywhere.
func New() *Segments {
	return &Segments{tree: avltree.New(), index: newRangeIndex()}
}

// NewFromBreakpoints restores an accumulator from a breakpoint snapshot.
// Positions must strictly increase; the values are taken as-is, so a
// non-canonical snapshot is accepted and can be flagged with Validate().
func NewFromBreakpoints(points []Breakpoint) *Segments {
	keys := make([]float64, len(points))
	values := make([]float64, len(points))

	for i, bp := range points {
		keys[i] = bp.Position
		values[i] = bp.Intensity
	}

	return &Segments{tree: avltree.NewFromSorted(keys, values), index: newRangeIndex()}
}

// Add raises the intensity by amount on the half-open range [from, to).
// Calls with from >= to or a zero amount change nothing.
//
// The code inside Add, Set and cleanup is the most important one throughout
// the package. It is extensively covered with tests. If you find a bug,
// please add the corresponding case in segments_test.go.
func (s *Segments) Add(from, to, amount float64) {
	s.ensureUsable()

	if from >= to || amount == 0 {
		return
	}

	s.ensureBoundary(from)
	s.ensureBoundary(to)
	s.raiseInterior(from, to, amount)
	s.cleanup()
	s.index.invalidate()
}

// Set forces the intensity to amount on the half-open range [from, to),
// discarding whatever structure the range held before. The value in effect
// at to is preserved beyond the range. Calls with from >= to change
// nothing; a zero amount is meaningful and clears the range.
func (s *Segments) Set(from, to, amount float64) {
	s.ensureUsable()

	if from >= to {
		return
	}

	// The value the function resumes with at to, captured before any mutation.
	tail := s.valueAt(to)

	s.ensureBoundary(from)
	s.ensureBoundary(to)
	s.clearInterior(from, to)
	s.tree.Update(from, amount)
	s.tree.Update(to, tail)
	s.cleanup()
	s.index.invalidate()
}

// At reports the effective intensity at pos: the value of the nearest
// breakpoint at or before pos, or zero when pos precedes every breakpoint.
func (s *Segments) At(pos float64) float64 {
	s.ensureUsable()

	return s.valueAt(pos)
}

// ToArray exports the canonical breakpoint sequence as [position, intensity]
// pairs in ascending position order.
func (s *Segments) ToArray() [][2]float64 {
	s.ensureUsable()

	points := s.snapshot()
	pairs := make([][2]float64, len(points))

	for i, bp := range points {
		pairs[i] = [2]float64{bp.Position, bp.Intensity}
	}

	return pairs
}

// Breakpoints exports the canonical breakpoint sequence in ascending
// position order.
func (s *Segments) Breakpoints() []Breakpoint {
	s.ensureUsable()

	return s.snapshot()
}

// Len returns the number of breakpoints.
func (s *Segments) Len() int {
	s.ensureUsable()

	return s.tree.Len()
}

// Walk visits each breakpoint in ascending position order until fn returns
// false.
func (s *Segments) Walk(fn func(pos, intensity float64) bool) {
	s.ensureUsable()
	s.tree.Walk(fn)
}

// Clone returns an independent deep copy of the accumulator.
func (s *Segments) Clone() *Segments {
	s.ensureUsable()

	return NewFromBreakpoints(s.snapshot())
}

// String formats the breakpoint sequence in the compact pair form, e.g.
// [[10 1] [30 0]]. Useful for error messages and debugging.
func (s *Segments) String() string {
	return fmt.Sprintf("%v", s.ToArray())
}

// Validate checks the canonical-form invariants of the breakpoint sequence.
// The checks are as follows:
//
// 1. Positions must strictly increase.
//
// 2. The first breakpoint must not carry zero intensity. A zero prefix is
// indistinguishable from the implicit zero before it.
//
// 3. Adjacent breakpoints must carry distinct intensities.
//
// The underlying tree structure is checked as well and panics on corruption.
func (s *Segments) Validate() error {
	s.ensureUsable()
	s.tree.Validate()

	points := s.snapshot()
	if len(points) == 0 {
		return nil
	}

	if points[0].Intensity == 0 {
		return fmt.Errorf("%w: position %v", ErrLeadingZero, points[0].Position)
	}

	for i := 1; i < len(points); i++ {
		if points[i].Position <= points[i-1].Position {
			return fmt.Errorf("%w: position %v", ErrUnsortedPositions, points[i].Position)
		}

		if points[i].Intensity == points[i-1].Intensity {
			return fmt.Errorf("%w: position %v", ErrEqualAdjacent, points[i].Position)
		}
	}

	return nil
}

// Internal definitions.

// ensureUsable panics when the accumulator is hibernated.
func (s *Segments) ensureUsable() {
	if s.hib != nil {
		panic("hibernated segments cannot be used")
	}
}

// valueAt samples the function without the hibernation guard.
func (s *Segments) valueAt(pos float64) float64 {
	node := s.tree.FindLE(pos)
	if node == nil {
		return 0
	}

	return node.Value()
}

// ensureBoundary materializes a breakpoint at pos carrying the value the
// function already has there, so the later phases can mutate it in place
// without disturbing the function beyond pos.
func (s *Segments) ensureBoundary(pos float64) {
	if s.tree.Find(pos) != nil {
		return
	}

	s.tree.Insert(pos, s.valueAt(pos))
}

// raiseInterior shifts every breakpoint in [from, to) by amount. The
// boundary at to keeps its value: it terminates the affected range.
func (s *Segments) raiseInterior(from, to, amount float64) {
	for _, key := range s.tree.KeysInRange(from, to) {
		if key == to {
			continue
		}

		s.tree.Update(key, s.tree.Find(key).Value()+amount)
	}
}

// clearInterior removes every breakpoint strictly between from and to.
func (s *Segments) clearInterior(from, to float64) {
	for _, key := range s.tree.KeysInRange(from, to) {
		if key == from || key == to {
			continue
		}

		s.tree.Remove(key)
	}
}

// cleanup restores the canonical form after a mutation. The breakpoint
// sequence is snapshotted first; all removal decisions consult the
// snapshot, never the shrinking tree:
//
// 1. A zero-valued first breakpoint is removed.
//
// 2. Scanning from the last breakpoint down to the second, every breakpoint
// whose value equals its snapshot predecessor's is removed.
//
// One pass suffices: surviving neighbors always differ, and the surviving
// first breakpoint is always non-zero.
func (s *Segments) cleanup() {
	points := s.snapshot()
	if len(points) == 0 {
		return
	}

	if points[0].Intensity == 0 {
		s.tree.Remove(points[0].Position)
	}

	for i := len(points) - 1; i >= 1; i-- {
		if points[i].Intensity == points[i-1].Intensity {
			s.tree.Remove(points[i].Position)
		}
	}
}

// snapshot collects the breakpoint sequence in ascending position order.
func (s *Segments) snapshot() []Breakpoint {
	points := make([]Breakpoint, 0, s.tree.Len())

	s.tree.Walk(func(pos, intensity float64) bool {
		points = append(points, Breakpoint{Position: pos, Intensity: intensity})

		return true
	})

	return points
}
