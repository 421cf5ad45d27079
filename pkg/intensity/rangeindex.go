package intensity

import (
	"math"

	"github.com/manan/range-list/pkg/alg/interval"
)

// Span is one maximal constant-intensity stretch of the function, covering
// the half-open range [Start, End).
type Span struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Intensity float64 `json:"intensity"`
}

// QueryRange returns the non-zero constant spans overlapping the half-open
// window [from, to), clipped to it, in ascending start order. Zero-intensity
// stretches are omitted. The interval index behind the query is rebuilt
// lazily on the first query after a mutation; queries between mutations
// reuse it.
func (s *Segments) QueryRange(from, to float64) []Span {
	s.ensureUsable()

	if from >= to {
		return nil
	}

	if s.index.dirty {
		s.index.rebuild(s.snapshot())
	}

	overlaps := s.index.tree.QueryOverlap(from, to)
	spans := make([]Span, 0, len(overlaps))

	for _, iv := range overlaps {
		// The tree stores closed intervals; drop the half-open misses where
		// the span only touches the window edge.
		if iv.Low >= to || iv.High <= from {
			continue
		}

		spans = append(spans, Span{
			Start:     max(iv.Low, from),
			End:       min(iv.High, to),
			Intensity: iv.Value,
		})
	}

	if len(spans) == 0 {
		return nil
	}

	return spans
}

// rangeIndex is the lazily rebuilt interval view over the breakpoint
// sequence. Mutations only flip the dirty flag; the tree is rebuilt when
// the next query arrives.
type rangeIndex struct {
	tree  *interval.Tree[float64, float64]
	dirty bool
}

func newRangeIndex() *rangeIndex {
	return &rangeIndex{tree: interval.New[float64, float64](), dirty: true}
}

func (ix *rangeIndex) invalidate() {
	ix.dirty = true
}

// rebuild reconstructs the index from a breakpoint snapshot. Every non-zero
// breakpoint becomes one interval reaching the next breakpoint; the last
// one reaches positive infinity.
func (ix *rangeIndex) rebuild(points []Breakpoint) {
	ix.tree.Clear()

	for i, bp := range points {
		if bp.Intensity == 0 {
			continue
		}

		end := math.Inf(1)
		if i+1 < len(points) {
			end = points[i+1].Position
		}

		ix.tree.Insert(bp.Position, end, bp.Intensity)
	}

	ix.dirty = false
}
