package tsr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptsValidate(t *testing.T) {
	opts := DefaultOpts
	assert.NoError(t, opts.validate())

	tests := []struct {
		name   string
		modify func(o *Opts)
	}{
		{"zero min reads", func(o *Opts) { o.MinReads = 0 }},
		{"zero window", func(o *Opts) { o.WindowSize = 0 }},
		{"negative min frag len", func(o *Opts) { o.MinAvgFragLen = -1 }},
		{"negative upstream", func(o *Opts) { o.BufferUpstream = -1 }},
		{"negative downstream", func(o *Opts) { o.BufferDownstream = -1 }},
		{"zero max frag len", func(o *Opts) { o.MaxFragLen = 0 }},
		{"bed and region", func(o *Opts) { o.BedPath = "x.bed"; o.Region = "chr1" }},
		{"negative parallelism", func(o *Opts) { o.Parallelism = -2 }},
	}
	for _, tt := range tests {
		o := DefaultOpts
		tt.modify(&o)
		assert.Error(t, o.validate(), tt.name)
	}
}
