// Package unsorted implements the UnsortedList: a frozen, unordered integer
// array plus a range-minimum-query table, giving O(1) minimum lookups over
// any contiguous subrange and a best-first traversal that extracts the k
// smallest values from such a subrange without sorting it.
package unsorted

import (
	"container/heap"
	"sort"

	"github.com/Razdeep/autocomplete/pkg/ids"
	"github.com/Razdeep/autocomplete/pkg/rmq"
)

// List is an UnsortedList: the underlying sequence is not sorted, the RMQ
// table is built once at construction and never mutated afterwards.
type List struct {
	vals ids.IntList
	rmq  *rmq.Table
}

// New builds an UnsortedList over vals. vals is immutable for the lifetime
// of the returned List.
func New(vals ids.IntList) *List {
	return &List{vals: vals, rmq: rmq.Build(vals)}
}

// Len returns the number of elements in the underlying sequence.
func (l *List) Len() int { return l.vals.Len() }

// Raw copies out the underlying (unsorted) sequence, for artifact
// serialization. The RMQ table itself is never persisted; it is rebuilt
// from the sequence at load time via New.
func (l *List) Raw() []int {
	out := make([]int, l.vals.Len())
	for i := range out {
		out[i] = l.vals.Get(i)
	}
	return out
}

// scoredRange is a heap entry: a contiguous subrange [lo, hi] together with
// the position and value of its minimum element.
type scoredRange struct {
	lo, hi int
	minPos int
	minVal int
}

type rangeHeap []scoredRange

func (h rangeHeap) Len() int            { return len(h) }
func (h rangeHeap) Less(i, j int) bool  { return h[i].minVal < h[j].minVal }
func (h rangeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *rangeHeap) Push(x any)         { *h = append(*h, x.(scoredRange)) }
func (h *rangeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Topk writes up to min(k, hi-lo) of the smallest values of vals[lo..hi)
// into out, in ascending order, and returns how many were written. When
// unique is set, duplicate values are suppressed and the returned count may
// be smaller than k even when hi-lo >= k.
//
// When the range is at most k wide, it is simply copied and sorted. Larger
// ranges are served by a best-first traversal of the implicit binary tree
// formed by repeated RMQ decomposition: a min-heap of scored
// ranges, seeded with the whole range, repeatedly pops the range whose
// minimum is smallest, emits that value, and splits the popped range around
// the emitted position into up to two child ranges.
func (l *List) Topk(lo, hi, k int, unique bool, out []int) int {
	if k <= 0 || hi <= lo {
		return 0
	}
	width := hi - lo
	if width <= k {
		return l.copySorted(lo, hi, unique, out)
	}

	h := &rangeHeap{}
	heap.Init(h)
	seedPos := l.rmq.Query(lo, hi-1)
	heap.Push(h, scoredRange{lo: lo, hi: hi - 1, minPos: seedPos, minVal: l.vals.Get(seedPos)})

	n := 0
	for h.Len() > 0 && n < k {
		top := heap.Pop(h).(scoredRange)

		if unique && n > 0 && sortedContains(out[:n], top.minVal) {
			l.pushChildren(h, top)
			continue
		}

		out[n] = top.minVal
		n++

		l.pushChildren(h, top)
	}
	return n
}

// pushChildren splits r around its minimum position and pushes the
// resulting non-empty subranges back onto the heap with freshly computed
// RMQs.
func (l *List) pushChildren(h *rangeHeap, r scoredRange) {
	if r.lo <= r.minPos-1 {
		pos := l.rmq.Query(r.lo, r.minPos-1)
		heap.Push(h, scoredRange{lo: r.lo, hi: r.minPos - 1, minPos: pos, minVal: l.vals.Get(pos)})
	}
	if r.minPos+1 <= r.hi {
		pos := l.rmq.Query(r.minPos+1, r.hi)
		heap.Push(h, scoredRange{lo: r.minPos + 1, hi: r.hi, minPos: pos, minVal: l.vals.Get(pos)})
	}
}

// copySorted is the small-range fallback: copy vals[lo..hi) and stable-sort
// ascending, deduplicating if requested.
func (l *List) copySorted(lo, hi int, unique bool, out []int) int {
	width := hi - lo
	buf := make([]int, width)
	for i := 0; i < width; i++ {
		buf[i] = l.vals.Get(lo + i)
	}
	sort.Stable(sort.IntSlice(buf))
	if !unique {
		n := copy(out, buf)
		return n
	}
	n := 0
	for i, v := range buf {
		if i > 0 && buf[i-1] == v {
			continue
		}
		out[n] = v
		n++
	}
	return n
}

// sortedContains reports whether v is present in the ascending slice s,
// via binary search. Emission order is ascending min_val (the heap
// invariant), so the already-emitted prefix is always sorted.
func sortedContains(s []int, v int) bool {
	i := sort.SearchInts(s, v)
	return i < len(s) && s[i] == v
}
