// Package completions stores the frozen corpus as term-id sequences sorted
// lexicographically by that sequence, and answers the structured range
// lookup the engine needs: "completions whose first len(prefix) term ids
// equal prefix, and whose next term id falls in a given range."
package completions

import "sort"

// Store is the frozen, lex-id-ordered sequence of completions. Completion
// lex_id i (0-based) is terms[offsets[i]:offsets[i+1]].
type Store struct {
	flat    []int32
	offsets []int32 // len(offsets) == n+1
}

// Build sorts completions (each a sequence of term ids, length >= 1) by
// lexicographic order of the sequence and returns the Store plus the
// permutation mapping original index -> lex_id, so callers (the offline
// builder) can derive docid->lexid alongside it.
func Build(completions [][]int32) (store *Store, lexIDOf []int) {
	n := len(completions)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return lessSeq(completions[order[a]], completions[order[b]])
	})

	flat := make([]int32, 0, n*2)
	offsets := make([]int32, n+1)
	for lexID, origIdx := range order {
		offsets[lexID] = int32(len(flat))
		flat = append(flat, completions[origIdx]...)
	}
	offsets[n] = int32(len(flat))

	lexIDOf = make([]int, n)
	for lexID, origIdx := range order {
		lexIDOf[origIdx] = lexID
	}

	return &Store{flat: flat, offsets: offsets}, lexIDOf
}

func lessSeq(a, b []int32) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Len returns the number of completions (N).
func (s *Store) Len() int { return len(s.offsets) - 1 }

// Raw exposes the store's flat term-id array and lex_id offsets, for
// artifact serialization.
func (s *Store) Raw() (flat, offsets []int32) { return s.flat, s.offsets }

// FromRaw reconstructs a Store from a flat array and offsets previously
// obtained from Raw, as loaded back from an artifact.
func FromRaw(flat, offsets []int32) *Store {
	return &Store{flat: flat, offsets: offsets}
}

// Extract writes the term-id sequence of lex_id lexID into out and returns
// its length. out must have capacity for the longest completion in the
// store.
func (s *Store) Extract(lexID int, out []int32) int {
	lo, hi := s.offsets[lexID], s.offsets[lexID+1]
	return copy(out, s.flat[lo:hi])
}

// sequenceAt returns the term-id sequence of lex_id lexID as a slice view
// (no copy) for internal comparisons.
func (s *Store) sequenceAt(lexID int) []int32 {
	return s.flat[s.offsets[lexID]:s.offsets[lexID+1]]
}

// LocatePrefix returns the half-open lex_id range [lexLo, lexHi) of
// completions whose first len(prefix) term ids equal prefix and whose
// (len(prefix)+1)-th term id lies in [suffixLo, suffixHi). An empty prefix
// means every completion qualifies on the prefix test. ok is false when no
// completion matches.
func (s *Store) LocatePrefix(prefix []int32, suffixLo, suffixHi int32) (lexLo, lexHi int, ok bool) {
	n := s.Len()
	if n == 0 || suffixLo >= suffixHi {
		return 0, 0, false
	}

	depth := len(prefix)

	// atLeast(i, bound) reports whether the i-th sequence sorts at or after
	// the key (prefix..., bound). A sequence shorter than the prefix can
	// still sort after it when it diverges upward at some earlier position,
	// so the prefix comparison runs before any length test; a sequence that
	// IS a (proper or exact) prefix of the key sorts before it, since the
	// missing next term is the sentinel 0, below every real bound.
	atLeast := func(i int, bound int32) bool {
		seq := s.sequenceAt(i)
		m := depth
		if len(seq) < m {
			m = len(seq)
		}
		for j := 0; j < m; j++ {
			if seq[j] != prefix[j] {
				return seq[j] > prefix[j]
			}
		}
		if len(seq) <= depth {
			return false
		}
		return seq[depth] >= bound
	}

	lo := sort.Search(n, func(i int) bool { return atLeast(i, suffixLo) })
	hi := sort.Search(n, func(i int) bool { return atLeast(i, suffixHi) })

	if lo >= hi {
		return 0, 0, false
	}
	// Verify the lo boundary actually satisfies the prefix test (sort.Search
	// only guarantees the monotonic predicate crossed; if every completion
	// sorts before the target prefix, lo==n and the loop above already
	// rejects via lo>=hi, but a non-matching prefix that is "between"
	// entries also needs an explicit check).
	seq := s.sequenceAt(lo)
	if len(seq) < depth {
		return 0, 0, false
	}
	for j := 0; j < depth; j++ {
		if seq[j] != prefix[j] {
			return 0, 0, false
		}
	}
	return lo, hi, true
}
