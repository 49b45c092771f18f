// Package engine implements the top-k completion engine: query parsing and
// the three retrieval pipelines (prefix, conjunctive, hybrid) over a frozen
// artifact.Index.
package engine

import (
	"errors"
	"strings"

	"github.com/Razdeep/autocomplete/internal/utils"
	"github.com/Razdeep/autocomplete/pkg/artifact"
)

// ErrEmptyResult signals a normal "no suggestions" outcome — an unknown
// non-final term, or a suffix/prefix that locates no range. It is never
// returned from an exported entry point; callers instead see a nil, empty
// result slice with a nil error.
var ErrEmptyResult = errors.New("engine: empty result")

// ErrPreconditionViolated marks a caller bug (k > MaxK, query longer than
// MaxNumCharsPerQuery, more tokens than MaxNumTermsPerQuery). k=0 is not
// one of these; it simply returns an empty result. The engine does not
// attempt recovery; the caller is responsible for clamping before calling
// in.
var ErrPreconditionViolated = errors.New("engine: precondition violated")

// maxTermsPerCompletion bounds the scratch buffer used to extract a single
// completion's term-id sequence. No completion in a built artifact can
// exceed it; Build would have to be fed a pathologically long line first.
const maxTermsPerCompletion = 64

// Limits are the compile-time-ish bounds a deployment configures once
// and every query is validated against.
type Limits struct {
	MaxK                int
	MaxNumCharsPerQuery int
	MaxNumTermsPerQuery int
}

// Result is one materialized completion: its text (space-joined term
// texts) and its doc_id (= score rank, smaller is better).
type Result struct {
	Text  string
	DocID int
}

// Stats is a snapshot of the loaded artifact's dimensions, for the
// get_stats query surface.
type Stats struct {
	NumCompletions  int    // N
	NumTerms        int    // T
	ArtifactVersion uint32
}

// Engine is immutable after construction; all state it needs per query
// lives in a caller-owned Scratch.
type Engine struct {
	idx    *artifact.Index
	limits Limits
	n      int // total completions

	// minimalOffsets[t] is the start index, within idx.MinimalDocs, of term
	// t's posting list; minimalOffsets[t+1] is its end. It mirrors the
	// per-term lengths already implicit in idx.InvIdx, recomputed once here
	// so the single-term query path can address a [termLo, termHi] range as
	// one flat [lo, hi) slice without re-deriving it per query.
	minimalOffsets []int
}

// New builds an Engine over a loaded artifact.Index.
func New(idx *artifact.Index, limits Limits) *Engine {
	postings := idx.InvIdx.Raw()
	offsets := make([]int, len(postings)+2)
	for t := 1; t <= len(postings); t++ {
		offsets[t+1] = offsets[t] + len(postings[t-1])
	}
	return &Engine{idx: idx, limits: limits, n: idx.Completions.Len(), minimalOffsets: offsets}
}

// Stats reports N (completion count), T (term count) and the loaded
// artifact's format version. The index is immutable after load, so there
// is nothing to mutate at runtime, only to report on.
func (e *Engine) Stats() Stats {
	return Stats{
		NumCompletions:  e.n,
		NumTerms:        e.idx.Dictionary.Len(),
		ArtifactVersion: artifact.FormatVersion,
	}
}

// Scratch holds per-query mutable state: a goroutine must own its own
// Scratch, never share one across concurrent queries.
type Scratch struct {
	docIDs  []int
	termBuf []int32
	builder strings.Builder
}

// NewScratch allocates a Scratch sized for limits.
func NewScratch(limits Limits) *Scratch {
	return &Scratch{
		docIDs:  make([]int, limits.MaxK),
		termBuf: make([]int32, maxTermsPerCompletion),
	}
}

// postingIterator is satisfied by both *invidx.Iterator and
// *invidx.IntersectionIterator.
type postingIterator interface {
	HasNext() bool
	Current() int32
	Advance() bool
}

// PrefixTopk runs the prefix-only pipeline: every result completes the
// query's final token as a prefix.
func (e *Engine) PrefixTopk(query string, k int, scratch *Scratch) ([]Result, error) {
	if err := e.validate(query, k); err != nil {
		return nil, err
	}
	prefixIDs, suffixText, err := e.parse(query)
	if err == ErrEmptyResult {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e.prefixTopkFrom(prefixIDs, suffixText, k, scratch), nil
}

func (e *Engine) prefixTopkFrom(prefixIDs []int32, suffixText string, k int, scratch *Scratch) []Result {
	dictLo, dictHi, ok := e.idx.Dictionary.LocatePrefix(suffixText)
	if !ok {
		return nil
	}
	suffixLo, suffixHi := int32(dictLo), int32(dictHi+1)

	lexLo, lexHi, ok := e.idx.Completions.LocatePrefix(prefixIDs, suffixLo, suffixHi)
	if !ok {
		return nil
	}

	n := e.idx.FullDocs.Topk(lexLo, lexHi, k, false, scratch.docIDs)
	return e.materialize(scratch.docIDs[:n], scratch)
}

// ConjunctiveTopk runs the conjunctive pipeline: every result must contain
// every query term, with the final token matched as a prefix.
func (e *Engine) ConjunctiveTopk(query string, k int, scratch *Scratch) ([]Result, error) {
	if err := e.validate(query, k); err != nil {
		return nil, err
	}
	prefixIDs, suffixText, err := e.parse(query)
	if err == ErrEmptyResult {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(prefixIDs) == 0 && suffixText == "" {
		return nil, nil
	}
	return e.conjunctiveTopkFrom(prefixIDs, suffixText, k, scratch), nil
}

func (e *Engine) conjunctiveTopkFrom(prefixIDs []int32, suffixText string, k int, scratch *Scratch) []Result {
	dictLo, dictHi, ok := e.idx.Dictionary.LocatePrefix(suffixText)
	if !ok {
		return nil
	}

	if len(prefixIDs) == 0 {
		return e.singleTermConjunctive(dictLo, dictHi, k, scratch)
	}

	dedup := dedupTermIDs(prefixIDs)
	var it postingIterator
	if len(dedup) == 1 {
		it = e.idx.InvIdx.Iterator(int(dedup[0]))
	} else {
		termIDs := make([]int, len(dedup))
		for i, id := range dedup {
			termIDs[i] = int(id)
		}
		it = e.idx.InvIdx.IntersectionIterator(termIDs)
	}

	var out []Result
	for it.HasNext() && len(out) < k {
		docID := int(it.Current())
		lexID := e.idx.DocToLex.Get(docID)
		n := e.idx.Completions.Extract(lexID, scratch.termBuf)
		if anyTermInRange(scratch.termBuf[:n], dictLo, dictHi) {
			out = append(out, Result{Text: e.joinTerms(scratch.termBuf[:n], scratch), DocID: docID})
		}
		if !it.Advance() {
			break
		}
	}
	return out
}

// singleTermConjunctive is the num_terms==1 special case: the prefix is
// empty, so the suffix's dictionary term range alone drives the query. The
// term range [dictLo, dictHi] is translated into a flat index range over
// idx.MinimalDocs (the concatenation of every matching term's posting
// list), and a single RMQ top-k with unique=true extracts the best k doc
// ids across all of them — deduplicated, since a completion containing two
// terms in range would otherwise surface once per term.
func (e *Engine) singleTermConjunctive(dictLo, dictHi, k int, scratch *Scratch) []Result {
	lo, hi := e.minimalOffsets[dictLo], e.minimalOffsets[dictHi+1]
	n := e.idx.MinimalDocs.Topk(lo, hi, k, true, scratch.docIDs)
	return e.materialize(scratch.docIDs[:n], scratch)
}

// Topk runs the hybrid pipeline: prefix first, conjunctive replaces it
// (never merges) when the prefix path under-fills.
func (e *Engine) Topk(query string, k int, scratch *Scratch) ([]Result, error) {
	results, err := e.PrefixTopk(query, k, scratch)
	if err != nil {
		return nil, err
	}
	if len(results) >= k {
		return results, nil
	}
	return e.ConjunctiveTopk(query, k, scratch)
}

// TopkMerged is the union variant the hybrid pipeline deliberately skips,
// left to external callers: prefix and conjunctive results combined,
// deduplicated by completion text, capped at k.
func (e *Engine) TopkMerged(query string, k int, scratch *Scratch) ([]Result, error) {
	prefixResults, err := e.PrefixTopk(query, k, scratch)
	if err != nil {
		return nil, err
	}
	conjResults, err := e.ConjunctiveTopk(query, k, scratch)
	if err != nil {
		return nil, err
	}

	filter := utils.NewSuggestionFilter("")
	merged := make([]Result, 0, k)
	for _, sets := range [][]Result{prefixResults, conjResults} {
		for _, r := range sets {
			if len(merged) >= k {
				return merged, nil
			}
			if filter.ShouldInclude(r.Text) {
				merged = append(merged, r)
			}
		}
	}
	return merged, nil
}

func (e *Engine) materialize(docIDs []int, scratch *Scratch) []Result {
	out := make([]Result, 0, len(docIDs))
	for _, docID := range docIDs {
		lexID := e.idx.DocToLex.Get(docID)
		n := e.idx.Completions.Extract(lexID, scratch.termBuf)
		out = append(out, Result{Text: e.joinTerms(scratch.termBuf[:n], scratch), DocID: docID})
	}
	return out
}

func (e *Engine) joinTerms(termIDs []int32, scratch *Scratch) string {
	scratch.builder.Reset()
	for i, id := range termIDs {
		if i > 0 {
			scratch.builder.WriteByte(' ')
		}
		scratch.builder.WriteString(e.idx.Dictionary.Term(int(id)))
	}
	return scratch.builder.String()
}

func (e *Engine) validate(query string, k int) error {
	// k=0 is a handled edge case, not a precondition violation; only k
	// exceeding the configured ceiling is a caller bug.
	if k > e.limits.MaxK {
		return ErrPreconditionViolated
	}
	if len(query) > e.limits.MaxNumCharsPerQuery {
		return ErrPreconditionViolated
	}
	return nil
}

// parse splits query on ASCII whitespace. Every non-final token must be a
// known whole term (an unknown one yields ErrEmptyResult);
// the final token is returned raw as suffixText. A query with trailing
// whitespace has an empty final token, so suffixText is "" and every field
// becomes a completed prefix term.
func (e *Engine) parse(query string) (prefixIDs []int32, suffixText string, err error) {
	fields := strings.Fields(query)
	if len(fields) > e.limits.MaxNumTermsPerQuery {
		return nil, "", ErrPreconditionViolated
	}
	if len(fields) == 0 {
		return nil, "", nil
	}

	trailingSpace := isASCIISpace(query[len(query)-1])
	prefixWords := fields
	if !trailingSpace {
		prefixWords = fields[:len(fields)-1]
		suffixText = fields[len(fields)-1]
	}

	prefixIDs = make([]int32, 0, len(prefixWords))
	for _, w := range prefixWords {
		id, ok := e.idx.Dictionary.Lookup(w)
		if !ok {
			return nil, "", ErrEmptyResult
		}
		prefixIDs = append(prefixIDs, int32(id))
	}
	return prefixIDs, suffixText, nil
}

func isASCIISpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

func anyTermInRange(seq []int32, lo, hi int) bool {
	for _, t := range seq {
		if int(t) >= lo && int(t) <= hi {
			return true
		}
	}
	return false
}

func dedupTermIDs(ids []int32) []int32 {
	seen := make(map[int32]bool, len(ids))
	out := make([]int32, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
