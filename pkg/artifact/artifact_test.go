package artifact

import (
	"bytes"
	"testing"

	"github.com/Razdeep/autocomplete/pkg/completions"
	"github.com/Razdeep/autocomplete/pkg/dictionary"
	"github.com/Razdeep/autocomplete/pkg/docid"
	"github.com/Razdeep/autocomplete/pkg/ids"
	"github.com/Razdeep/autocomplete/pkg/invidx"
	"github.com/Razdeep/autocomplete/pkg/unsorted"
)

func buildToyIndex() *Index {
	// cat=1, dog=2, fast=3, food=4, ran=5, sat=6, the=7
	dict := dictionary.New([]string{"cat", "dog", "fast", "food", "ran", "sat", "the"})

	toyCorpus := [][]int32{
		{7, 1, 6},
		{7, 1, 5},
		{7, 2},
		{7, 2, 5, 3},
		{1, 4},
	}
	store, lexIDOf := completions.Build(toyCorpus)

	n := len(lexIDOf)
	// FullDocs is indexed by lex_id, holding doc_id (the inverse of
	// lexIDOf), since prefix_topk ranges over lex_id and needs the
	// smallest doc_id within that range.
	lexidToDocid := make([]int, n)
	for docID, lexID := range lexIDOf {
		lexidToDocid[lexID] = docID
	}

	postings := make([][]int32, dict.Len())
	for term := 1; term <= dict.Len(); term++ {
		var list []int32
		for docID, seq := range toyCorpus {
			for _, t := range seq {
				if int(t) == term {
					list = append(list, int32(docID))
					break
				}
			}
		}
		postings[term-1] = list
	}

	// MinimalDocs concatenates every term's posting list, in term_id order.
	var minimalDocs []int
	for _, list := range postings {
		for _, docID := range list {
			minimalDocs = append(minimalDocs, int(docID))
		}
	}

	docToLex := docid.Build(lexIDOf)

	return &Index{
		Completions: store,
		FullDocs:    unsorted.New(ids.PlainList(lexidToDocid)),
		MinimalDocs: unsorted.New(ids.PlainList(minimalDocs)),
		Dictionary:  dict,
		InvIdx:      invidx.New(postings),
		DocToLex:    docToLex,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	want := buildToyIndex()

	var buf bytes.Buffer
	if err := Save(&buf, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Completions.Len() != want.Completions.Len() {
		t.Fatalf("completions len mismatch: got %d want %d", got.Completions.Len(), want.Completions.Len())
	}
	for lex := 0; lex < want.Completions.Len(); lex++ {
		wantOut := make([]int32, 8)
		gotOut := make([]int32, 8)
		wn := want.Completions.Extract(lex, wantOut)
		gn := got.Completions.Extract(lex, gotOut)
		if wn != gn {
			t.Fatalf("lex %d length mismatch: got %d want %d", lex, gn, wn)
		}
		for i := 0; i < wn; i++ {
			if wantOut[i] != gotOut[i] {
				t.Fatalf("lex %d term %d mismatch: got %d want %d", lex, i, gotOut[i], wantOut[i])
			}
		}
	}

	if got.Dictionary.Len() != want.Dictionary.Len() {
		t.Fatalf("dictionary len mismatch")
	}
	for id := 1; id <= want.Dictionary.Len(); id++ {
		if got.Dictionary.Term(id) != want.Dictionary.Term(id) {
			t.Fatalf("term %d mismatch: got %q want %q", id, got.Dictionary.Term(id), want.Dictionary.Term(id))
		}
	}

	if got.DocToLex.Len() != want.DocToLex.Len() {
		t.Fatalf("docid map len mismatch")
	}
	for docID := 0; docID < want.DocToLex.Len(); docID++ {
		if got.DocToLex.Get(docID) != want.DocToLex.Get(docID) {
			t.Fatalf("docid %d mismatch", docID)
		}
	}

	gotPostings := got.InvIdx.Raw()
	wantPostings := want.InvIdx.Raw()
	if len(gotPostings) != len(wantPostings) {
		t.Fatalf("posting list count mismatch")
	}
	for i := range wantPostings {
		if len(gotPostings[i]) != len(wantPostings[i]) {
			t.Fatalf("posting list %d length mismatch", i)
		}
		for j := range wantPostings[i] {
			if gotPostings[i][j] != wantPostings[i][j] {
				t.Fatalf("posting list %d entry %d mismatch", i, j)
			}
		}
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 0, 1, 0, 0, 0})
	if _, err := Load(buf); err == nil {
		t.Fatalf("expected error for bad magic")
	}
}

func TestLoadRejectsTruncated(t *testing.T) {
	want := buildToyIndex()
	var buf bytes.Buffer
	if err := Save(&buf, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()/2])
	if _, err := Load(truncated); err == nil {
		t.Fatalf("expected error for truncated artifact")
	}
}
