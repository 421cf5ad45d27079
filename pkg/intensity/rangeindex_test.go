package intensity_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manan/range-list/pkg/intensity"
)

// Query window constants.
const (
	windowLo  = 0.0
	windowHi  = 100.0
	farWindow = 1000.0
)

// TestQueryRange_Basic verifies a single segment comes back as one span.
func TestQueryRange_Basic(t *testing.T) {
	t.Parallel()

	seg := intensity.New()
	seg.Add(pos10, pos30, amt1)

	spans := seg.QueryRange(windowLo, windowHi)
	require.Len(t, spans, 1)
	assert.Equal(t, intensity.Span{Start: pos10, End: pos30, Intensity: amt1}, spans[0])
}

// TestQueryRange_Clipping verifies spans are clipped to the query window.
func TestQueryRange_Clipping(t *testing.T) {
	t.Parallel()

	seg := intensity.New()
	seg.Add(pos10, pos30, amt1)

	spans := seg.QueryRange(15, 25)
	require.Len(t, spans, 1)
	assert.Equal(t, intensity.Span{Start: 15, End: 25, Intensity: amt1}, spans[0])
}

// TestQueryRange_HalfOpenEdges verifies windows touching a span only at an
// edge return nothing.
func TestQueryRange_HalfOpenEdges(t *testing.T) {
	t.Parallel()

	seg := intensity.New()
	seg.Add(pos10, pos30, amt1)

	// Window starts where the function drops back to zero.
	assert.Empty(t, seg.QueryRange(pos30, pos40))

	// Window ends exactly where the span starts.
	assert.Empty(t, seg.QueryRange(windowLo, pos10))
}

// TestQueryRange_MultipleSpans verifies stacked segments come back in
// ascending start order.
func TestQueryRange_MultipleSpans(t *testing.T) {
	t.Parallel()

	seg := intensity.New()
	seg.Add(pos10, pos30, amt1)
	seg.Add(pos20, pos40, amt1)

	spans := seg.QueryRange(windowLo, windowHi)
	assert.Equal(t, []intensity.Span{
		{Start: pos10, End: pos20, Intensity: amt1},
		{Start: pos20, End: pos30, Intensity: amt2},
		{Start: pos30, End: pos40, Intensity: amt1},
	}, spans)
}

// TestQueryRange_ZeroGapOmitted verifies zero-intensity stretches never
// produce spans.
func TestQueryRange_ZeroGapOmitted(t *testing.T) {
	t.Parallel()

	seg := intensity.New()
	seg.Add(pos10, pos20, amt1)
	seg.Add(pos30, pos40, amt2)

	spans := seg.QueryRange(windowLo, windowHi)
	assert.Equal(t, []intensity.Span{
		{Start: pos10, End: pos20, Intensity: amt1},
		{Start: pos30, End: pos40, Intensity: amt2},
	}, spans)
}

// TestQueryRange_TailSpan verifies a final non-zero breakpoint extends to
// the query edge.
func TestQueryRange_TailSpan(t *testing.T) {
	t.Parallel()

	seg := intensity.NewFromBreakpoints([]intensity.Breakpoint{
		{Position: pos10, Intensity: amt5},
	})

	spans := seg.QueryRange(windowLo, farWindow)
	require.Len(t, spans, 1)
	assert.Equal(t, intensity.Span{Start: pos10, End: farWindow, Intensity: amt5}, spans[0])
}

// TestQueryRange_EmptyWindow verifies inverted and empty windows return nil.
func TestQueryRange_EmptyWindow(t *testing.T) {
	t.Parallel()

	seg := intensity.New()
	seg.Add(pos10, pos30, amt1)

	assert.Nil(t, seg.QueryRange(pos20, pos20))
	assert.Nil(t, seg.QueryRange(pos30, pos10))
}

// TestQueryRange_RebuildAfterMutation verifies the lazy index reflects every
// mutation.
func TestQueryRange_RebuildAfterMutation(t *testing.T) {
	t.Parallel()

	seg := intensity.New()
	seg.Add(pos10, pos30, amt1)

	spans := seg.QueryRange(windowLo, windowHi)
	require.Len(t, spans, 1)

	seg.Set(pos10, pos30, amt5)

	spans = seg.QueryRange(windowLo, windowHi)
	require.Len(t, spans, 1)
	assert.InDelta(t, amt5, spans[0].Intensity, 0)

	// Repeated query with no mutation in between returns the same result.
	assert.Equal(t, spans, seg.QueryRange(windowLo, windowHi))
}

// TestQueryRange_Oracle cross-checks spans against a ToArray-derived oracle
// over a random op stream.
func TestQueryRange_Oracle(t *testing.T) {
	t.Parallel()

	rng := newOpRNG(oracleSeed + 1)
	seg := intensity.New()

	for range oracleOps {
		from := float64(rng.next() % oracleGridSize)
		to := float64(rng.next() % oracleGridSize)
		amount := float64(int(rng.next()%oracleAmounts)) - float64(oracleAmounts/2)

		if rng.next()%4 == 0 {
			seg.Set(from, to, amount)
		} else {
			seg.Add(from, to, amount)
		}

		qFrom := float64(rng.next() % oracleGridSize)
		qTo := qFrom + float64(rng.next()%oracleGridSize)

		assert.Equal(t, spansFromPairs(seg.ToArray(), qFrom, qTo), seg.QueryRange(qFrom, qTo),
			"window [%v, %v)", qFrom, qTo)
	}
}

// spansFromPairs derives the expected spans for a window directly from the
// exported pair sequence.
func spansFromPairs(pairs [][2]float64, from, to float64) []intensity.Span {
	if from >= to {
		return nil
	}

	var spans []intensity.Span

	for i, pair := range pairs {
		if pair[1] == 0 {
			continue
		}

		end := math.Inf(1)
		if i+1 < len(pairs) {
			end = pairs[i+1][0]
		}

		if pair[0] >= to || end <= from {
			continue
		}

		spans = append(spans, intensity.Span{
			Start:     math.Max(pair[0], from),
			End:       math.Min(end, to),
			Intensity: pair[1],
		})
	}

	return spans
}
