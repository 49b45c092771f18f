package engine

import (
	"strings"
	"testing"

	"github.com/Razdeep/autocomplete/pkg/artifact"
	"github.com/Razdeep/autocomplete/pkg/build"
)

const toyInput = `1 the cat sat
2 the cat ran
3 the dog
4 the dog ran fast
5 cat food
`

func newToyEngine(t *testing.T) *Engine {
	t.Helper()
	idx, err := build.Build(strings.NewReader(toyInput))
	if err != nil {
		t.Fatalf("build.Build: %v", err)
	}
	limits := Limits{MaxK: 10, MaxNumCharsPerQuery: 256, MaxNumTermsPerQuery: 8}
	return New(idx, limits)
}

func texts(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Text
	}
	return out
}

func docIDs(results []Result) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.DocID
	}
	return out
}

func assertEqualStrings(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func assertAscending(t *testing.T, ids []int) {
	t.Helper()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("doc ids not strictly ascending: %v", ids)
		}
	}
}

func TestPrefixTopkCompletedTermAndPartialSuffix(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	results, err := e.PrefixTopk("the c", 2, scratch)
	if err != nil {
		t.Fatalf("PrefixTopk: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(results), results)
	}
	if !strings.HasPrefix(results[0].Text, "the cat ") {
		t.Fatalf("first result %q does not start with %q", results[0].Text, "the cat ")
	}
	assertAscending(t, docIDs(results))
}

func TestPrefixTopkPartialFirstTerm(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	results, err := e.PrefixTopk("the", 3, scratch)
	if err != nil {
		t.Fatalf("PrefixTopk: %v", err)
	}
	assertEqualStrings(t, texts(results), []string{"the cat sat", "the cat ran", "the dog"})
	assertAscending(t, docIDs(results))
}

func TestConjunctiveTopkTwoTerms(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	results, err := e.ConjunctiveTopk("ran the", 2, scratch)
	if err != nil {
		t.Fatalf("ConjunctiveTopk: %v", err)
	}
	assertEqualStrings(t, texts(results), []string{"the cat ran", "the dog ran fast"})
	assertAscending(t, docIDs(results))
}

func TestConjunctiveTopkSingleTermSpecialCase(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	results, err := e.ConjunctiveTopk("dog", 5, scratch)
	if err != nil {
		t.Fatalf("ConjunctiveTopk: %v", err)
	}
	assertEqualStrings(t, texts(results), []string{"the dog", "the dog ran fast"})
	assertAscending(t, docIDs(results))

	seen := make(map[int]bool)
	for _, d := range docIDs(results) {
		if seen[d] {
			t.Fatalf("duplicate doc id %d in unique result set", d)
		}
		seen[d] = true
	}
}

func TestTopkUnknownFinalTermIsEmpty(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	results, err := e.Topk("the x", 2, scratch)
	if err != nil {
		t.Fatalf("Topk: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0: %v", len(results), results)
	}
}

func TestPrefixTopkEmptyQueryReturnsAll(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	results, err := e.PrefixTopk("", 10, scratch)
	if err != nil {
		t.Fatalf("PrefixTopk: %v", err)
	}
	assertEqualStrings(t, texts(results), []string{
		"the cat sat", "the cat ran", "the dog", "the dog ran fast", "cat food",
	})
	assertAscending(t, docIDs(results))
}

func TestPrefixTopkSingletonK1(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	results, err := e.PrefixTopk("the dog", 1, scratch)
	if err != nil {
		t.Fatalf("PrefixTopk: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1: %v", len(results), results)
	}
	if results[0].Text != "the dog" {
		t.Fatalf("got %q, want %q", results[0].Text, "the dog")
	}
}

func TestPrefixTopkKExceedsRangeReturnsWholeRangeSorted(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	// k = MaxK (10) exceeds the 4-completion range for "the".
	results, err := e.PrefixTopk("the", e.limits.MaxK, scratch)
	if err != nil {
		t.Fatalf("PrefixTopk: %v", err)
	}
	assertEqualStrings(t, texts(results), []string{"the cat sat", "the cat ran", "the dog", "the dog ran fast"})
	assertAscending(t, docIDs(results))
}

func TestConjunctiveTopkUnknownTermReturnsEmptyNotError(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	results, err := e.ConjunctiveTopk("zzz the", 5, scratch)
	if err != nil {
		t.Fatalf("ConjunctiveTopk: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0: %v", len(results), results)
	}
}

func TestPreconditionViolatedOnKExceedsMax(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	if _, err := e.PrefixTopk("the", e.limits.MaxK+1, scratch); err != ErrPreconditionViolated {
		t.Fatalf("got %v, want ErrPreconditionViolated", err)
	}
}

func TestKZeroReturnsEmptyWithoutError(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	results, err := e.PrefixTopk("the", 0, scratch)
	if err != nil {
		t.Fatalf("PrefixTopk: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0: %v", len(results), results)
	}

	results, err = e.ConjunctiveTopk("dog", 0, scratch)
	if err != nil {
		t.Fatalf("ConjunctiveTopk: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0: %v", len(results), results)
	}
}

func TestTopkFallsBackToConjunctive(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	// No completion begins with "ran", so the prefix pipeline under-fills
	// and the conjunctive pipeline replaces it entirely.
	results, err := e.Topk("ran the", 2, scratch)
	if err != nil {
		t.Fatalf("Topk: %v", err)
	}
	assertEqualStrings(t, texts(results), []string{"the cat ran", "the dog ran fast"})
}

func TestTopkKeepsPrefixResultsWhenFull(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	results, err := e.Topk("the c", 2, scratch)
	if err != nil {
		t.Fatalf("Topk: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(results), results)
	}
	for _, r := range results {
		if !strings.HasPrefix(r.Text, "the c") {
			t.Fatalf("result %q does not complete the prefix path", r.Text)
		}
	}
}

func TestTopkMergedDeduplicatesByText(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	// Both pipelines return "the dog" completions; the merged variant must
	// not repeat a completion string.
	results, err := e.TopkMerged("the dog", 5, scratch)
	if err != nil {
		t.Fatalf("TopkMerged: %v", err)
	}
	seen := make(map[string]bool)
	for _, r := range results {
		if seen[r.Text] {
			t.Fatalf("duplicate text %q in merged results", r.Text)
		}
		seen[r.Text] = true
	}
	if len(results) == 0 {
		t.Fatalf("expected merged results")
	}
}

func TestStatsReportsCorpusDimensions(t *testing.T) {
	e := newToyEngine(t)

	stats := e.Stats()
	if stats.NumCompletions != 5 {
		t.Fatalf("got NumCompletions %d, want 5", stats.NumCompletions)
	}
	if stats.NumTerms != 7 {
		t.Fatalf("got NumTerms %d, want 7", stats.NumTerms)
	}
	if stats.ArtifactVersion != artifact.FormatVersion {
		t.Fatalf("got ArtifactVersion %d, want %d", stats.ArtifactVersion, artifact.FormatVersion)
	}
}

func TestExtractRoundTripsToOriginalText(t *testing.T) {
	e := newToyEngine(t)
	scratch := NewScratch(e.limits)

	results, err := e.PrefixTopk("", 10, scratch)
	if err != nil {
		t.Fatalf("PrefixTopk: %v", err)
	}
	want := map[int]string{
		0: "the cat sat",
		1: "the cat ran",
		2: "the dog",
		3: "the dog ran fast",
		4: "cat food",
	}
	for _, r := range results {
		if r.Text != want[r.DocID] {
			t.Fatalf("doc %d extracted as %q, want %q", r.DocID, r.Text, want[r.DocID])
		}
	}
}
