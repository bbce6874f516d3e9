package tsr

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertTracks(t *testing.T) {
	for _, tool := range []string{"true", "false"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available", tool)
		}
	}
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	prefix := filepath.Join(tmpdir, "out")
	opts := DefaultOpts
	require.NoError(t, WriteTracks(ctx, prefix, []Candidate{
		{Chrom: "chr1", Strand: StrandFwd, Left: 0, Right: 20, TotalReads: 5, MaxPos: 3, MaxPosReads: 5, WeightedAvgPos: 3},
	}, &opts))

	opts.BedToBigBed = "procap-no-such-converter"
	opts.BedGraphToBigWig = "procap-no-such-converter-either"
	assert.NoError(t, ConvertTracks(ctx, prefix, "sizes", &opts))

	opts.BedToBigBed = "true"
	opts.BedGraphToBigWig = "true"
	assert.NoError(t, ConvertTracks(ctx, prefix, "sizes", &opts))

	opts.BedGraphToBigWig = "false"
	err := ConvertTracks(ctx, prefix, "sizes", &opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "false")
}

func TestConversions(t *testing.T) {
	opts := DefaultOpts
	convs := conversions("/x/p", &opts)
	require.Len(t, convs, 5)
	assert.Equal(t, conversion{"bedToBigBed", []string{"-type=bed6"}, "/x/p.tsr.bed", "/x/p.tsr.bb"}, convs[0])
	assert.Equal(t, conversion{"bedToBigBed", []string{"-type=bed6"}, "/x/p.maxtss.bed", "/x/p.maxtss.bb"}, convs[1])
	assert.Equal(t, conversion{"bedGraphToBigWig", nil, "/x/p.maxtss_reads.bedgraph", "/x/p.maxtss_reads.bw"}, convs[2])
	assert.Equal(t, "/x/p.stdev.bw", convs[4].out)
}
