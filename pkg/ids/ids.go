// Package ids defines the random-access integer sequence slot that the rest
// of the engine is built on top of.
//
// The retrieval core never cares how a sequence of ids is physically laid
// out — a plain slice, a bit-packed array, an Elias-Fano encoding — only
// that it supports O(1) indexed reads. Keeping that behind an interface lets
// an alternative, more compact ListType be swapped in later without
// touching pkg/rmq, pkg/unsorted, pkg/dictionary, pkg/completions or
// pkg/invidx.
package ids

// IntList is a frozen, random-access sequence of ints.
type IntList interface {
	Len() int
	Get(i int) int
}

// PlainList is the straightforward slice-backed IntList. It is the only
// ListType implementation shipped here; compressed encodings (Elias-Fano,
// bit-packed) are a build-time/storage concern outside the core.
type PlainList []int

// Len returns the number of elements in the list.
func (l PlainList) Len() int { return len(l) }

// Get returns the element at position i.
func (l PlainList) Get(i int) int { return l[i] }
