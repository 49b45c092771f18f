// Package build implements the offline builder: it reads pre-sorted
// "<score> <completion text>" lines and freezes every structure the
// query-time engine needs — the completions store, both RMQ-backed
// UnsortedLists, the dictionary, the inverted index, and the docid->lexid
// permutation.
package build

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Razdeep/autocomplete/pkg/artifact"
	"github.com/Razdeep/autocomplete/pkg/completions"
	"github.com/Razdeep/autocomplete/pkg/dictionary"
	"github.com/Razdeep/autocomplete/pkg/docid"
	"github.com/Razdeep/autocomplete/pkg/ids"
	"github.com/Razdeep/autocomplete/pkg/invidx"
	"github.com/Razdeep/autocomplete/pkg/unsorted"
)

// rawCompletion is one input line, already split into its score (kept only
// for ordering diagnostics, since doc_id itself is the implicit score) and
// its whitespace-separated term texts.
type rawCompletion struct {
	score int64
	words []string
}

// Build reads r line by line, each line "<score> <completion text>",
// pre-sorted ascending by score, and freezes the full index. doc_id is
// assigned as the 0-based line number, matching the pre-sorted input order
// directly: rank by ascending score.
func Build(r io.Reader) (*artifact.Index, error) {
	raws, err := parseLines(r)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	vocab := collectVocabulary(raws)
	dict := dictionary.New(vocab)

	sequences := make([][]int32, len(raws))
	for docID, rc := range raws {
		seq := make([]int32, len(rc.words))
		for i, w := range rc.words {
			termID, ok := dict.Lookup(w)
			if !ok {
				return nil, fmt.Errorf("build: doc %d: term %q not in built vocabulary", docID, w)
			}
			seq[i] = int32(termID)
		}
		sequences[docID] = seq
	}

	store, lexIDOf := completions.Build(sequences)
	n := len(sequences)

	lexidToDocid := make([]int, n)
	for docID, lexID := range lexIDOf {
		lexidToDocid[lexID] = docID
	}

	docToLex := docid.Build(lexIDOf)

	postings := buildPostings(dict.Len(), sequences)
	minimalDocs := flattenPostings(postings)

	return &artifact.Index{
		Completions: store,
		FullDocs:    unsorted.New(ids.PlainList(lexidToDocid)),
		MinimalDocs: unsorted.New(ids.PlainList(minimalDocs)),
		Dictionary:  dict,
		InvIdx:      invidx.New(postings),
		DocToLex:    docToLex,
	}, nil
}

// flattenPostings concatenates every term's posting list, in term_id order,
// into one flat sequence. The single-term query path (pkg/engine) addresses
// a contiguous sub-range of this sequence via offsets derived from the same
// per-term lengths, letting one RMQ top-k span several dictionary terms at
// once when a partial final word matches more than one of them.
func flattenPostings(postings [][]int32) []int {
	var total int
	for _, list := range postings {
		total += len(list)
	}
	out := make([]int, 0, total)
	for _, list := range postings {
		for _, docID := range list {
			out = append(out, int(docID))
		}
	}
	return out
}

// buildPostings returns, for each term id 1..numTerms, the strictly
// ascending, duplicate-free list of doc ids whose completion contains that
// term. Doc ids are visited in ascending order, so
// each per-term list comes out sorted for free; a completion repeating the
// same term twice contributes its doc_id only once.
func buildPostings(numTerms int, sequences [][]int32) [][]int32 {
	postings := make([][]int32, numTerms)
	for docID, seq := range sequences {
		seen := make(map[int32]bool, len(seq))
		for _, termID := range seq {
			if seen[termID] {
				continue
			}
			seen[termID] = true
			postings[termID-1] = append(postings[termID-1], int32(docID))
		}
	}
	return postings
}

func collectVocabulary(raws []rawCompletion) []string {
	seen := make(map[string]bool)
	var vocab []string
	for _, rc := range raws {
		for _, w := range rc.words {
			if !seen[w] {
				seen[w] = true
				vocab = append(vocab, w)
			}
		}
	}
	return vocab
}

func parseLines(r io.Reader) ([]rawCompletion, error) {
	scanner := bufio.NewScanner(r)
	var raws []rawCompletion
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected \"<score> <completion text>\", got %q", lineNo, line)
		}
		score, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad score %q: %w", lineNo, fields[0], err)
		}
		if len(raws) > 0 && score < raws[len(raws)-1].score {
			log.Warnf("build: line %d: score %d is not ascending after %d", lineNo, score, raws[len(raws)-1].score)
		}
		raws = append(raws, rawCompletion{score: score, words: fields[1:]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return raws, nil
}
