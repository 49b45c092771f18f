// Package artifact (de)serializes the frozen index into a single opaque,
// versioned binary, little-endian throughout. Components are visited in a
// fixed declared order: completions store, full doc-id UnsortedList,
// minimal-doc-ids UnsortedList, dictionary, inverted index, docid->lexid
// map. Each section implements visit(v), reading or writing its sub-fields
// in that same order.
package artifact

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Razdeep/autocomplete/pkg/completions"
	"github.com/Razdeep/autocomplete/pkg/dictionary"
	"github.com/Razdeep/autocomplete/pkg/docid"
	"github.com/Razdeep/autocomplete/pkg/ids"
	"github.com/Razdeep/autocomplete/pkg/invidx"
	"github.com/Razdeep/autocomplete/pkg/unsorted"
)

const (
	magic uint32 = 0x57445358 // "WDSX"

	// FormatVersion is the artifact format version this build writes and
	// expects to read. get_stats reports it so a client can tell which
	// build produced the loaded index.
	FormatVersion uint32 = 1
)

// Index is the fully loaded, immutable query-time index.
type Index struct {
	Completions *completions.Store
	FullDocs    *unsorted.List
	MinimalDocs *unsorted.List
	Dictionary  *dictionary.Dictionary
	InvIdx      *invidx.Index
	DocToLex    *docid.Map
}

// visitor abstracts the primitive read/write operations a section needs;
// writer and reader below implement it in opposite directions so the same
// visit method on a section works for both saving and loading.
type visitor interface {
	int32s(s *[]int32) error
	uint64s(s *[]uint64) error
	strings(s *[]string) error
	ints(s *[]int) error
	uintVal(v *uint) error
	intVal(v *int) error
	err() error
}

// Save writes idx to w as a versioned artifact.
func Save(w io.Writer, idx *Index) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, magic); err != nil {
		return fmt.Errorf("artifact: write magic: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, FormatVersion); err != nil {
		return fmt.Errorf("artifact: write version: %w", err)
	}

	wv := &writer{w: bw}
	visitSections(wv, idx)
	if wv.e != nil {
		return fmt.Errorf("artifact: write section: %w", wv.e)
	}
	return bw.Flush()
}

// Load reads a versioned artifact from r and reconstructs the index.
// A malformed or version-mismatched artifact is a CorruptArtifact
// condition: callers treat a non-nil error here as fatal, there is no
// recovery path mid-load.
func Load(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)

	var gotMagic, gotVersion uint32
	if err := binary.Read(br, binary.LittleEndian, &gotMagic); err != nil {
		return nil, fmt.Errorf("artifact: read magic: %w", err)
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("artifact: bad magic %#x, want %#x", gotMagic, magic)
	}
	if err := binary.Read(br, binary.LittleEndian, &gotVersion); err != nil {
		return nil, fmt.Errorf("artifact: read version: %w", err)
	}
	if gotVersion != FormatVersion {
		return nil, fmt.Errorf("artifact: unsupported version %d, want %d", gotVersion, FormatVersion)
	}

	rv := &reader{r: br}
	idx := &Index{}
	visitSections(rv, idx)
	if rv.e != nil {
		return nil, fmt.Errorf("artifact: read section: %w", rv.e)
	}
	return idx, nil
}

// visitSections walks every component, in the declared order, through v.
// When v is a writer the Index fields are already populated by the caller
// of Save; when v is a reader, each section's fields are filled in and
// the reconstructed component is assigned back into idx.
func visitSections(v visitor, idx *Index) {
	visitCompletions(v, idx)
	visitUnsortedList(v, &idx.FullDocs)
	visitUnsortedList(v, &idx.MinimalDocs)
	visitDictionary(v, idx)
	visitInvidx(v, idx)
	visitDocid(v, idx)
}

func visitCompletions(v visitor, idx *Index) {
	var flat, offsets []int32
	if idx.Completions != nil {
		flat, offsets = idx.Completions.Raw()
	}
	v.int32s(&flat)
	v.int32s(&offsets)
	if v.err() != nil {
		return
	}
	if idx.Completions == nil {
		idx.Completions = completions.FromRaw(flat, offsets)
	}
}

func visitUnsortedList(v visitor, out **unsorted.List) {
	var vals []int
	if *out != nil {
		vals = (*out).Raw()
	}
	v.ints(&vals)
	if v.err() != nil {
		return
	}
	if *out == nil {
		*out = unsorted.New(ids.PlainList(vals))
	}
}

func visitDictionary(v visitor, idx *Index) {
	var terms []string
	if idx.Dictionary != nil {
		terms = idx.Dictionary.Raw()
	}
	v.strings(&terms)
	if v.err() != nil {
		return
	}
	if idx.Dictionary == nil {
		idx.Dictionary = dictionary.New(terms)
	}
}

func visitInvidx(v visitor, idx *Index) {
	var numLists int
	var postings [][]int32
	if idx.InvIdx != nil {
		postings = idx.InvIdx.Raw()
		numLists = len(postings)
	}
	v.intVal(&numLists)
	if v.err() != nil {
		return
	}
	if idx.InvIdx == nil {
		postings = make([][]int32, numLists)
	}
	for i := range postings {
		v.int32s(&postings[i])
		if v.err() != nil {
			return
		}
	}
	if idx.InvIdx == nil {
		idx.InvIdx = invidx.New(postings)
	}
}

func visitDocid(v visitor, idx *Index) {
	var words []uint64
	var bitWidth uint
	var n int
	if idx.DocToLex != nil {
		words, bitWidth, n = idx.DocToLex.Raw()
	}
	v.uint64s(&words)
	v.uintVal(&bitWidth)
	v.intVal(&n)
	if v.err() != nil {
		return
	}
	if idx.DocToLex == nil {
		idx.DocToLex = docid.FromRaw(words, bitWidth, n)
	}
}

