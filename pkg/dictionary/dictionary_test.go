package dictionary

import "testing"

func TestLocatePrefixAndExtract(t *testing.T) {
	d := New([]string{"cat", "dog", "fast", "food", "ran", "sat", "the"})

	if d.Len() != 7 {
		t.Fatalf("len = %d, want 7", d.Len())
	}

	for id, want := range map[int]string{1: "cat", 2: "dog", 7: "the"} {
		if got := d.Term(id); got != want {
			t.Fatalf("Term(%d) = %q, want %q", id, got, want)
		}
	}

	lo, hi, ok := d.LocatePrefix("")
	if !ok || lo != 1 || hi != 7 {
		t.Fatalf("empty prefix: lo=%d hi=%d ok=%v", lo, hi, ok)
	}

	lo, hi, ok = d.LocatePrefix("f")
	if !ok || d.Term(lo) != "fast" || d.Term(hi) != "food" {
		t.Fatalf("prefix f: lo=%d(%s) hi=%d(%s) ok=%v", lo, d.Term(lo), hi, d.Term(hi), ok)
	}

	lo, hi, ok = d.LocatePrefix("the")
	if !ok || lo != hi || d.Term(lo) != "the" {
		t.Fatalf("prefix the: lo=%d hi=%d ok=%v", lo, hi, ok)
	}

	if _, _, ok := d.LocatePrefix("zzz"); ok {
		t.Fatalf("prefix zzz should not match")
	}
}

func TestLookupExactTerm(t *testing.T) {
	d := New([]string{"cat", "dog"})

	if id, ok := d.Lookup("dog"); !ok || id != 2 {
		t.Fatalf("Lookup(dog) = %d, %v", id, ok)
	}
	if _, ok := d.Lookup("do"); ok {
		t.Fatalf("Lookup(do) should not match (not a whole term)")
	}
	if _, ok := d.Lookup("zzz"); ok {
		t.Fatalf("Lookup(zzz) should not match")
	}
}

func TestLocatePrefixEmptyDictionary(t *testing.T) {
	d := New(nil)
	if _, _, ok := d.LocatePrefix(""); ok {
		t.Fatalf("empty dictionary should not match")
	}
}
