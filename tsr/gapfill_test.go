package tsr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillGaps(t *testing.T) {
	track := SignalTrack{
		Chrom:  "chr1",
		Strand: StrandFwd,
		Signal: []PositionSignal{{Pos: 1, Count: 2, LengthSum: 30}, {Pos: 4, Count: 1, LengthSum: 7}},
	}
	dense, nDropped, err := FillGaps(track, 6, false)
	require.NoError(t, err)
	assert.Equal(t, 0, nDropped)
	assert.Equal(t, PosType(6), dense.Length)
	want := []PositionSignal{
		{Pos: 0},
		{Pos: 1, Count: 2, LengthSum: 30},
		{Pos: 2},
		{Pos: 3},
		{Pos: 4, Count: 1, LengthSum: 7},
		{Pos: 5},
	}
	assert.Equal(t, want, dense.Values())

	var scanned []PositionSignal
	s := dense.Scanner()
	for {
		ps, ok := s.Next()
		if !ok {
			break
		}
		scanned = append(scanned, ps)
	}
	assert.Equal(t, want, scanned)
}

func TestFillGapsOutOfRange(t *testing.T) {
	track := SignalTrack{
		Chrom:  "chrM",
		Strand: StrandRev,
		Signal: []PositionSignal{{Pos: 2, Count: 1}, {Pos: 9, Count: 4}, {Pos: 12, Count: 1}},
	}
	_, _, err := FillGaps(track, 9, false)
	require.Error(t, err)
	oor, ok := err.(*OutOfRangeError)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, "chrM", oor.Chrom)
	assert.Equal(t, PosType(12), oor.Pos)
	assert.Equal(t, PosType(9), oor.Length)

	dense, nDropped, err := FillGaps(track, 9, true)
	require.NoError(t, err)
	assert.Equal(t, 2, nDropped)
	values := dense.Values()
	assert.Len(t, values, 9)
	assert.Equal(t, uint32(1), values[2].Count)
}

func TestFillGapsUnsorted(t *testing.T) {
	_, _, err := FillGaps(SignalTrack{
		Chrom:  "chr1",
		Signal: []PositionSignal{{Pos: 3, Count: 1}, {Pos: 3, Count: 1}},
	}, 10, true)
	assert.Error(t, err)
}
