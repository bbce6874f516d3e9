package tsr

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// denseFromCounts builds a dense track from per-position counts; every
// fragment is given length fragLen.
func denseFromCounts(t *testing.T, counts []uint32, fragLen uint64) DenseTrack {
	track := SignalTrack{Chrom: "chr1", Strand: StrandFwd}
	for pos, c := range counts {
		if c != 0 {
			track.Signal = append(track.Signal, PositionSignal{Pos: PosType(pos), Count: c, LengthSum: uint64(c) * fragLen})
		}
	}
	dense, _, err := FillGaps(track, PosType(len(counts)), false)
	require.NoError(t, err)
	return dense
}

func windowOpts(windowSize, minReads, minAvgFragLen int) *Opts {
	opts := DefaultOpts
	opts.WindowSize = windowSize
	opts.MinReads = minReads
	opts.MinAvgFragLen = minAvgFragLen
	return &opts
}

func TestAggregateWindowsScenario(t *testing.T) {
	// TSS positions 10, 10, 10, 15, 15, 20.
	part := Partition{Chrom: "chr1", Strand: StrandFwd}
	for _, start := range []PosType{10, 10, 10, 15, 15, 20} {
		part.Fragments = append(part.Fragments, Fragment{start, start + 30})
	}
	track, err := BuildSignal(part)
	require.NoError(t, err)
	dense, _, err := FillGaps(track, 100, false)
	require.NoError(t, err)

	cands, err := AggregateWindows(context.Background(), dense, windowOpts(6, 5, 0))
	require.NoError(t, err)
	require.Len(t, cands, 1)
	c := cands[0]
	assert.Equal(t, PosType(10), c.Left)
	assert.Equal(t, PosType(16), c.Right)
	assert.Equal(t, uint32(5), c.TotalReads)
	assert.Equal(t, PosType(10), c.MaxPos)
	assert.Equal(t, uint32(3), c.MaxPosReads)
	assert.InDelta(t, 30.0, c.AvgFragLen, 1e-12)
	assert.InDelta(t, 12.0, c.WeightedAvgPos, 1e-12)
	assert.InDelta(t, -2.0, c.MaxMinusAvg, 1e-12)
	assert.InDelta(t, math.Sqrt(6), c.Stdev, 1e-12)
}

func TestAggregateWindowsMaxTieBreak(t *testing.T) {
	counts := make([]uint32, 30)
	counts[12] = 4
	counts[13] = 4
	counts[15] = 1
	cands, err := AggregateWindows(context.Background(), denseFromCounts(t, counts, 1), windowOpts(5, 1, 0))
	require.NoError(t, err)
	for _, c := range cands {
		if c.Left <= 12 && c.Right > 13 {
			assert.Equal(t, PosType(12), c.MaxPos, "window [%d, %d)", c.Left, c.Right)
			assert.Equal(t, uint32(4), c.MaxPosReads)
		}
	}
}

func TestAggregateWindowsMinAvgFragLen(t *testing.T) {
	dense, _, err := FillGaps(SignalTrack{
		Chrom:  "chr1",
		Strand: StrandFwd,
		Signal: []PositionSignal{
			{Pos: 5, Count: 2, LengthSum: 40},   // avg 20
			{Pos: 40, Count: 2, LengthSum: 200}, // avg 100
		},
	}, 60, false)
	require.NoError(t, err)
	cands, err := AggregateWindows(context.Background(), dense, windowOpts(3, 2, 50))
	require.NoError(t, err)
	require.Len(t, cands, 3)
	for _, c := range cands {
		assert.Equal(t, PosType(40), c.MaxPos)
		assert.InDelta(t, 100.0, c.AvgFragLen, 1e-12)
	}
}

func TestAggregateWindowsShortTrack(t *testing.T) {
	cands, err := AggregateWindows(context.Background(), denseFromCounts(t, []uint32{5, 5, 5}, 1), windowOpts(4, 1, 0))
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestAggregateWindowsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := AggregateWindows(ctx, denseFromCounts(t, []uint32{1, 2, 3}, 1), windowOpts(2, 1, 0))
	assert.Equal(t, context.Canceled, err)
}

// bruteForceWindow recomputes the statistics of the window ending at p from
// scratch.
func bruteForceWindow(counts []uint32, fragLen uint64, p, w int) (c Candidate, n uint32) {
	left := p - w + 1
	var (
		xs, weights []float64
		maxReads    uint32
		maxPos      = -1
	)
	for pos := left; pos <= p; pos++ {
		n += counts[pos]
		xs = append(xs, float64(pos))
		weights = append(weights, float64(counts[pos]))
		if counts[pos] > maxReads {
			maxReads, maxPos = counts[pos], pos
		}
	}
	if n == 0 {
		return Candidate{}, 0
	}
	mean, std := stat.PopMeanStdDev(xs, weights)
	return Candidate{
		Chrom:          "chr1",
		Strand:         StrandFwd,
		Left:           PosType(left),
		Right:          PosType(p + 1),
		TotalReads:     n,
		AvgFragLen:     float64(fragLen),
		MaxPos:         PosType(maxPos),
		MaxPosReads:    maxReads,
		WeightedAvgPos: mean,
		MaxMinusAvg:    float64(maxPos) - mean,
		Stdev:          std,
	}, n
}

func TestAggregateWindowsBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	const fragLen = 35
	for iter := 0; iter < 30; iter++ {
		length := 50 + r.Intn(500)
		counts := make([]uint32, length)
		for pos := range counts {
			switch r.Intn(4) {
			case 0:
				counts[pos] = uint32(r.Intn(50))
			case 1:
				counts[pos] = uint32(r.Intn(3))
			}
		}
		w := 1 + r.Intn(25)
		minReads := 1 + r.Intn(20)
		cands, err := AggregateWindows(context.Background(), denseFromCounts(t, counts, fragLen), windowOpts(w, minReads, 0))
		require.NoError(t, err)

		var want []Candidate
		for p := w - 1; p < length; p++ {
			if c, n := bruteForceWindow(counts, fragLen, p, w); n >= uint32(minReads) {
				want = append(want, c)
			}
		}
		require.Equal(t, len(want), len(cands), "iter %d", iter)
		for i := range want {
			got, exp := cands[i], want[i]
			assert.Equal(t, exp.Left, got.Left)
			assert.Equal(t, exp.Right, got.Right)
			assert.Equal(t, exp.TotalReads, got.TotalReads)
			assert.Equal(t, exp.MaxPos, got.MaxPos)
			assert.Equal(t, exp.MaxPosReads, got.MaxPosReads)
			assert.InDelta(t, exp.AvgFragLen, got.AvgFragLen, 1e-9)
			assert.InDelta(t, exp.WeightedAvgPos, got.WeightedAvgPos, 1e-9)
			assert.InDelta(t, exp.MaxMinusAvg, got.MaxMinusAvg, 1e-9)
			assert.InDelta(t, exp.Stdev, got.Stdev, 1e-6)
		}
	}
}

func TestAggregateWindowsMonotonicInMinReads(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	counts := make([]uint32, 2000)
	for pos := range counts {
		if r.Intn(5) == 0 {
			counts[pos] = uint32(r.Intn(10))
		}
	}
	dense := denseFromCounts(t, counts, 20)
	prev := math.MaxInt32
	for minReads := 1; minReads < 60; minReads++ {
		cands, err := AggregateWindows(context.Background(), dense, windowOpts(15, minReads, 0))
		require.NoError(t, err)
		assert.True(t, len(cands) <= prev, "minReads=%d: %d > %d", minReads, len(cands), prev)
		prev = len(cands)
	}
}
