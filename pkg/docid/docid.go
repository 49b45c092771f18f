// Package docid stores the docid->lexid permutation as a fixed-width
// bit-packed array: N entries of ceil(log2(N+1)) bits each, enough to
// represent every value in [0, N] (one bit more than [0, N) needs when N is
// a power of two).
package docid

import "math/bits"

// Map is the frozen docid->lexid permutation.
type Map struct {
	words    []uint64
	bitWidth uint
	n        int
}

// Width returns the bit width ceil(log2(n+1)) used to store values in
// [0, n). bits.Len(n) computes exactly this: floor(log2(n))+1
// for n>0, which equals ceil(log2(n+1)) for every n (n a power of two
// included), and 0 for n=0, the correct width for an empty map.
func Width(n int) uint {
	return uint(bits.Len(uint(n)))
}

// Build packs a permutation of [0, n) (lexIDs[docID] = lexID) into a Map.
func Build(lexIDs []int) *Map {
	n := len(lexIDs)
	w := Width(n)
	totalBits := uint(n) * w
	words := make([]uint64, (totalBits+63)/64)

	m := &Map{words: words, bitWidth: w, n: n}
	for docID, lexID := range lexIDs {
		m.set(docID, uint64(lexID))
	}
	return m
}

// Len returns N.
func (m *Map) Len() int { return m.n }

// Raw exposes the packed word array, bit width and entry count, for
// artifact serialization.
func (m *Map) Raw() (words []uint64, bitWidth uint, n int) {
	return m.words, m.bitWidth, m.n
}

// FromRaw reconstructs a Map from values previously obtained from Raw.
func FromRaw(words []uint64, bitWidth uint, n int) *Map {
	return &Map{words: words, bitWidth: bitWidth, n: n}
}

// Get returns the lex_id for docID.
func (m *Map) Get(docID int) int {
	bitPos := uint(docID) * m.bitWidth
	wordIdx := bitPos / 64
	bitOff := bitPos % 64

	v := m.words[wordIdx] >> bitOff
	if bitOff+m.bitWidth > 64 {
		remaining := bitOff + m.bitWidth - 64
		v |= m.words[wordIdx+1] << (m.bitWidth - remaining)
	}
	mask := uint64(1)<<m.bitWidth - 1
	return int(v & mask)
}

func (m *Map) set(docID int, lexID uint64) {
	bitPos := uint(docID) * m.bitWidth
	wordIdx := bitPos / 64
	bitOff := bitPos % 64

	mask := uint64(1)<<m.bitWidth - 1
	m.words[wordIdx] |= (lexID & mask) << bitOff
	if bitOff+m.bitWidth > 64 {
		remaining := bitOff + m.bitWidth - 64
		m.words[wordIdx+1] |= (lexID & mask) >> (m.bitWidth - remaining)
	}
}
