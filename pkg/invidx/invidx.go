// Package invidx is the inverted index: one ascending, duplicate-free
// posting list of doc ids per term id, plus iterators over a single list
// and over the intersection of several.
package invidx

import "sort"

// Index holds one posting list per term id. Lists are 0-indexed by
// term_id-1 (term id 0, the sentinel, never has a posting list).
type Index struct {
	postings [][]int32
}

// New builds an Index from already-sorted, deduplicated posting lists,
// postings[i] being the list for term id i+1.
func New(postings [][]int32) *Index {
	return &Index{postings: postings}
}

// Iterator walks one posting list in ascending order.
type Iterator struct {
	list []int32
	pos  int
}

// Raw exposes the per-term posting lists, for artifact serialization.
func (idx *Index) Raw() [][]int32 { return idx.postings }

// Iterator returns a fresh Iterator over the posting list of termID.
// termID must be in [1, len(postings)].
func (idx *Index) Iterator(termID int) *Iterator {
	return &Iterator{list: idx.postings[termID-1]}
}

// HasNext reports whether Advance would move to a further element.
func (it *Iterator) HasNext() bool { return it.pos < len(it.list) }

// Current returns the doc id the iterator is positioned at. Valid only
// after a successful Advance (or on a freshly built, non-empty iterator
// before the first Advance, mirroring a 0-based cursor at the first
// entry); callers follow the usual has_next/advance/current loop.
func (it *Iterator) Current() int32 { return it.list[it.pos] }

// Advance moves the cursor to the next doc id and reports whether one
// exists.
func (it *Iterator) Advance() bool {
	if it.pos >= len(it.list) {
		return false
	}
	it.pos++
	return it.pos < len(it.list)
}

// IntersectionIterator yields, in ascending order, the doc ids present in
// every one of a set of posting lists. It is a leader-based gallop merge:
// the shortest list drives candidates, every other list is probed by
// binary search for each candidate and advanced past mismatches.
type IntersectionIterator struct {
	leader  *Iterator
	others  []*Iterator
	current int32
	valid   bool
}

// IntersectionIterator builds an IntersectionIterator over the posting
// lists of termIDs, deduplicated first. An empty input yields an empty
// intersection; a single-element input after dedup degrades to iterating
// that one list directly.
func (idx *Index) IntersectionIterator(termIDs []int) *IntersectionIterator {
	uniq := dedup(termIDs)
	if len(uniq) == 0 {
		return &IntersectionIterator{}
	}

	iters := make([]*Iterator, len(uniq))
	leaderIdx := 0
	for i, t := range uniq {
		iters[i] = idx.Iterator(t)
		if len(iters[i].list) < len(iters[leaderIdx].list) {
			leaderIdx = i
		}
	}

	leader := iters[leaderIdx]
	others := make([]*Iterator, 0, len(iters)-1)
	for i, it := range iters {
		if i != leaderIdx {
			others = append(others, it)
		}
	}

	ii := &IntersectionIterator{leader: leader, others: others}
	ii.advanceToMatch()
	return ii
}

// HasNext reports whether the intersection has a current valid doc id.
func (ii *IntersectionIterator) HasNext() bool { return ii.valid }

// Current returns the current matching doc id.
func (ii *IntersectionIterator) Current() int32 { return ii.current }

// Advance moves past the current match and finds the next one, returning
// whether one exists.
func (ii *IntersectionIterator) Advance() bool {
	if !ii.valid {
		return false
	}
	if !ii.leader.Advance() {
		ii.valid = false
		return false
	}
	ii.advanceToMatch()
	return ii.valid
}

// advanceToMatch walks the leader forward (starting from its current
// position) until every other list contains the leader's current
// candidate, galloping each other list forward via binary search over its
// remaining suffix. It stops and reports no-match once the leader is
// exhausted.
func (ii *IntersectionIterator) advanceToMatch() {
	for {
		if ii.leader.pos >= len(ii.leader.list) {
			ii.valid = false
			return
		}
		candidate := ii.leader.list[ii.leader.pos]

		allMatch := true
		for _, o := range ii.others {
			found, newPos := gallop(o.list, o.pos, candidate)
			o.pos = newPos
			if !found {
				allMatch = false
				break
			}
		}

		if allMatch {
			ii.current = candidate
			ii.valid = true
			return
		}

		if !ii.leader.Advance() {
			ii.valid = false
			return
		}
	}
}

// gallop searches list[from:] for target, returning (true, index of
// target) on a hit or (false, index of the first element > target) on a
// miss — the position the caller should resume probing from next time,
// since posting lists only move forward within one intersection scan.
func gallop(list []int32, from int, target int32) (bool, int) {
	rest := list[from:]
	i := sort.Search(len(rest), func(i int) bool { return rest[i] >= target })
	pos := from + i
	if pos < len(list) && list[pos] == target {
		return true, pos
	}
	return false, pos
}

// dedup returns termIDs with duplicates removed, order-preserved by first
// occurrence.
func dedup(termIDs []int) []int {
	seen := make(map[int]bool, len(termIDs))
	out := make([]int, 0, len(termIDs))
	for _, t := range termIDs {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
