package interval

import (
	"math/rand"
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestUnionTreeInsert(t *testing.T) {
	var u UnionTree
	expect.False(t, u.Contains(0))
	u.Insert(10, 20)
	u.Insert(30, 40)
	expect.EQ(t, u.Endpoints(), []PosType{10, 20, 30, 40})
	// Empty interval is a no-op.
	u.Insert(25, 25)
	expect.EQ(t, u.Len(), 2)
	// Touching on the left merges.
	u.Insert(5, 10)
	expect.EQ(t, u.Endpoints(), []PosType{5, 20, 30, 40})
	// Spanning both merges everything.
	u.Insert(18, 31)
	expect.EQ(t, u.Endpoints(), []PosType{5, 40})
	// Contained interval changes nothing.
	u.Insert(7, 9)
	expect.EQ(t, u.Endpoints(), []PosType{5, 40})
	// Negative coordinates are fine (buffers can extend past position 0).
	u.Insert(-10, -5)
	expect.EQ(t, u.Endpoints(), []PosType{-10, -5, 5, 40})
	expect.True(t, u.Contains(-10))
	expect.False(t, u.Contains(-5))
	expect.True(t, u.Contains(39))
	expect.False(t, u.Contains(40))
}

func TestUnionTreeRandom(t *testing.T) {
	const size = 2000
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 50; iter++ {
		var u UnionTree
		covered := make([]bool, size)
		for i := 0; i < 40; i++ {
			start := r.Intn(size)
			end := start + r.Intn(60)
			if end > size {
				end = size
			}
			u.Insert(PosType(start), PosType(end))
			for pos := start; pos < end; pos++ {
				covered[pos] = true
			}
		}
		for pos := 0; pos < size; pos++ {
			if u.Contains(PosType(pos)) != covered[pos] {
				t.Fatalf("iter %d: mismatch at %d", iter, pos)
			}
		}
		// Endpoints must be strictly increasing: disjoint and non-touching.
		endpoints := u.Endpoints()
		for i := 1; i < len(endpoints); i++ {
			if endpoints[i] <= endpoints[i-1] {
				t.Fatalf("iter %d: endpoints not strictly increasing: %v", iter, endpoints)
			}
		}
	}
}
