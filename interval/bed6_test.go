package interval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBED6Scanner(t *testing.T) {
	bed := "# comment\n" +
		"track name=procap\n" +
		"chr1\t10\t50\tr1\t0\t+\n" +
		"chr1 12  60 r2 0 -\n" +
		"\n" +
		"chr2\t0\t1\tr3\t.\t.\n"
	s := NewBED6Scanner(strings.NewReader(bed))
	var got []BED6Entry
	var lines []int
	for s.Scan() {
		got = append(got, s.Entry())
		lines = append(lines, s.LineIdx())
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []BED6Entry{
		{"chr1", 10, 50, '+'},
		{"chr1", 12, 60, '-'},
		{"chr2", 0, 1, '.'},
	}, got)
	assert.Equal(t, []int{3, 4, 6}, lines)
}

func TestBED6ScannerErrors(t *testing.T) {
	tests := []struct {
		bed    string
		errSub string
	}{
		{"chr1\t10\t50\tr1\t0\n", "line 1 has 5 token(s)"},
		{"chr1\t10\t5\tr1\t0\t+\n", "invalid coordinate pair"},
		{"chr1\t10\t50\tr1\t0\t+\nchr1\t10\t50\tr1\t0\t++\n", "line 2: invalid strand"},
		{"chr1\t-3\t50\tr1\t0\t+\n", "negative start"},
	}
	for _, tt := range tests {
		s := NewBED6Scanner(strings.NewReader(tt.bed))
		for s.Scan() {
		}
		require.Error(t, s.Err(), tt.bed)
		assert.Contains(t, s.Err().Error(), tt.errSub)
		assert.False(t, s.Scan())
	}
}
