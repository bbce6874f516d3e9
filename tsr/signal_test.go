package tsr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSignalForward(t *testing.T) {
	part := Partition{
		Chrom:  "chr1",
		Strand: StrandFwd,
		Fragments: []Fragment{
			{20, 60}, {10, 40}, {15, 25}, {10, 30}, {15, 45}, {10, 20},
		},
	}
	track, err := BuildSignal(part)
	require.NoError(t, err)
	assert.Equal(t, "chr1", track.Chrom)
	assert.Equal(t, StrandFwd, track.Strand)
	assert.Equal(t, []PositionSignal{
		{Pos: 10, Count: 3, LengthSum: 30 + 20 + 10},
		{Pos: 15, Count: 2, LengthSum: 10 + 30},
		{Pos: 20, Count: 1, LengthSum: 40},
	}, track.Signal)
	// Input is left alone.
	assert.Equal(t, Fragment{20, 60}, part.Fragments[0])
}

func TestBuildSignalReverse(t *testing.T) {
	track, err := BuildSignal(Partition{
		Chrom:  "chr2",
		Strand: StrandRev,
		Fragments: []Fragment{
			{0, 11}, {5, 11}, {3, 8}, {7, 8},
		},
	})
	require.NoError(t, err)
	// The TSS of a reverse-strand fragment is its last base, end-1.
	assert.Equal(t, []PositionSignal{
		{Pos: 7, Count: 2, LengthSum: 5 + 1},
		{Pos: 10, Count: 2, LengthSum: 11 + 6},
	}, track.Signal)
}

func TestBuildSignalErrors(t *testing.T) {
	_, err := BuildSignal(Partition{Chrom: "chr1", Strand: StrandNone, Fragments: []Fragment{{1, 2}}})
	assert.Error(t, err)
	_, err = BuildSignal(Partition{Chrom: "chr1", Strand: StrandFwd, Fragments: []Fragment{{5, 5}}})
	assert.Error(t, err)

	track, err := BuildSignal(Partition{Chrom: "chr1", Strand: StrandFwd})
	require.NoError(t, err)
	assert.Empty(t, track.Signal)
}
