// Package dictionary maps term text to term ids and back over a frozen
// vocabulary.
//
// Term ids are assigned in lexicographic order of term text at build time
// (term id 0 is reserved as the "no term / end of sequence" sentinel, real
// terms start at 1), so any textual prefix maps to a contiguous half-open
// range of term ids. Exact whole-token lookups (the query parser's
// non-final tokens) are served by a patricia trie; prefix-range lookups
// need a contiguous *id* range rather than a set of matching keys, so
// those are served by binary search over the frozen sorted term array.
package dictionary

import (
	"sort"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Dictionary is a frozen, lexicographically sorted term vocabulary.
type Dictionary struct {
	// terms[i] is the text of term id i+1 (term id 0 is the sentinel and
	// has no entry here).
	terms []string
	trie  *patricia.Trie
}

// New builds a Dictionary from a set of distinct term strings. The terms
// need not be pre-sorted; New sorts them and assigns ids 1..len(terms) in
// lexicographic order.
func New(vocabulary []string) *Dictionary {
	terms := append([]string(nil), vocabulary...)
	sort.Strings(terms)

	trie := patricia.NewTrie()
	for i, term := range terms {
		trie.Insert(patricia.Prefix(term), i+1)
	}

	return &Dictionary{terms: terms, trie: trie}
}

// Len returns the number of real terms (term ids 1..Len()).
func (d *Dictionary) Len() int { return len(d.terms) }

// Raw exposes the sorted term text array, for artifact serialization.
// Terms are already in the order New would sort them into.
func (d *Dictionary) Raw() []string { return d.terms }

// Lookup returns the term id for an exact, whole term, or (0, false) if the
// term is not in the dictionary. This backs the query parser's rule that
// every non-final token must be a known whole term.
func (d *Dictionary) Lookup(term string) (int, bool) {
	item := d.trie.Get(patricia.Prefix(term))
	if item == nil {
		return 0, false
	}
	return item.(int), true
}

// Extract writes the text of term id id into out and returns the number of
// bytes written. id must be in [1, Len()].
func (d *Dictionary) Extract(id int, out []byte) int {
	term := d.terms[id-1]
	return copy(out, term)
}

// Term returns the text of term id id directly, without copying through a
// caller-provided buffer. id must be in [1, Len()].
func (d *Dictionary) Term(id int) string {
	return d.terms[id-1]
}

// LocatePrefix returns the inclusive term-id range [lo, hi] of terms whose
// text begins with prefix. ok is false when no term matches (including
// when the dictionary is empty). An empty prefix locates the whole
// dictionary range, [1, Len()].
//
// Callers that need the completions-store's 1-based, half-open convention
// convert with [lo, hi+1).
func (d *Dictionary) LocatePrefix(prefix string) (lo, hi int, ok bool) {
	n := len(d.terms)
	if n == 0 {
		return 0, 0, false
	}
	if prefix == "" {
		return 1, n, true
	}

	first := sort.Search(n, func(i int) bool {
		return d.terms[i] >= prefix
	})
	if first == n || !strings.HasPrefix(d.terms[first], prefix) {
		return 0, 0, false
	}

	upper := prefixUpperBound(prefix)
	last := sort.Search(n, func(i int) bool {
		return d.terms[i] >= upper
	})
	return first + 1, last, true
}

// prefixUpperBound returns the least string that is strictly greater than
// every string having prefix p as a prefix, used to find the end of a
// prefix's sorted range via a single binary search. It increments the last
// byte of p; since a valid term never contains the 0xFF byte as a UTF-8
// continuation ambiguity in practice, this also degrades gracefully by
// falling back to stripping trailing 0xFF bytes.
func prefixUpperBound(p string) string {
	b := []byte(p)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0xFF {
			b[i]++
			return string(b[:i+1])
		}
	}
	// p is all 0xFF bytes: every string is either <= p or has it as a
	// prefix, so there is no finite upper bound string shorter than
	// infinity; returning a very large sentinel value is sufficient since
	// no real term text can exceed it under the search below.
	return string(b) + "\xff"
}
