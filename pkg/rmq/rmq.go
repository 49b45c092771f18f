// Package rmq answers range-minimum-position queries over a frozen integer
// array in O(1), after an O(n log n) sparse-table build.
package rmq

import (
	"math/bits"

	"github.com/Razdeep/autocomplete/pkg/ids"
)

// Table is a sparse table over an IntList: Table.Query(l, r) returns the
// position (not the value) of the minimum element in vals[l..r] inclusive.
type Table struct {
	vals ids.IntList
	// pos[k][i] is the position of the minimum of vals[i .. i+2^k-1].
	pos [][]int32
	log []int32 // log[n] = floor(log2(n)), 1-indexed by length
}

// Build constructs the sparse table over vals. vals must not be mutated
// afterwards — the table is only valid for the frozen sequence it was built
// over.
func Build(vals ids.IntList) *Table {
	n := vals.Len()
	t := &Table{vals: vals}
	if n == 0 {
		return t
	}

	t.log = make([]int32, n+1)
	for i := 2; i <= n; i++ {
		t.log[i] = t.log[i/2] + 1
	}

	levels := int(t.log[n]) + 1
	t.pos = make([][]int32, levels)

	first := make([]int32, n)
	for i := range first {
		first[i] = int32(i)
	}
	t.pos[0] = first

	for k := 1; k < levels; k++ {
		half := 1 << (k - 1)
		width := n - (1 << k) + 1
		if width <= 0 {
			t.pos[k] = nil
			continue
		}
		level := make([]int32, width)
		prev := t.pos[k-1]
		for i := 0; i < width; i++ {
			left := prev[i]
			right := prev[i+half]
			if vals.Get(int(left)) <= vals.Get(int(right)) {
				level[i] = left
			} else {
				level[i] = right
			}
		}
		t.pos[k] = level
	}
	return t
}

// Query returns the position of the minimum value in vals[l..r] (inclusive).
// l and r must satisfy 0 <= l <= r < vals.Len().
func (t *Table) Query(l, r int) int {
	if l == r {
		return l
	}
	length := r - l + 1
	k := bits.Len(uint(length)) - 1
	left := t.pos[k][l]
	right := t.pos[k][r-(1<<k)+1]
	if t.vals.Get(int(left)) <= t.vals.Get(int(right)) {
		return int(left)
	}
	return int(right)
}
