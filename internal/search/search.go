// Package search provides case-insensitive substring search over value
// labels, backed by a trigram bitmap index.
package search

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/text/cases"
)

const gramSize = 3

// Index is an immutable trigram index over a list of labels. Positions
// returned by Search refer to the order labels were given to NewIndex.
// It is safe for concurrent use.
type Index struct {
	folded []string
	grams  map[string]*roaring.Bitmap
	all    *roaring.Bitmap
}

// NewIndex builds an index over labels.
func NewIndex(labels []string) *Index {
	ix := &Index{
		folded: make([]string, len(labels)),
		grams:  make(map[string]*roaring.Bitmap),
		all:    roaring.New(),
	}
	for i, label := range labels {
		f := Fold(label)
		ix.folded[i] = f
		ix.all.Add(uint32(i))
		for _, g := range trigrams(f) {
			bm, ok := ix.grams[g]
			if !ok {
				bm = roaring.New()
				ix.grams[g] = bm
			}
			bm.Add(uint32(i))
		}
	}
	for _, bm := range ix.grams {
		bm.RunOptimize()
	}
	return ix
}

// Len returns the number of indexed labels.
func (ix *Index) Len() int {
	return len(ix.folded)
}

// Search returns the ascending positions of labels containing query,
// ignoring case. An empty query matches everything.
func (ix *Index) Search(query string) []int {
	q := Fold(query)
	if q == "" {
		return toInts(ix.all)
	}

	candidates := ix.candidates(q)
	out := make([]int, 0, candidates.GetCardinality())
	it := candidates.Iterator()
	for it.HasNext() {
		pos := it.Next()
		// Trigram hits are necessary but not sufficient.
		if strings.Contains(ix.folded[pos], q) {
			out = append(out, int(pos))
		}
	}
	return out
}

func (ix *Index) candidates(q string) *roaring.Bitmap {
	grams := trigrams(q)
	if len(grams) == 0 {
		return ix.all
	}
	result := ix.all.Clone()
	for _, g := range grams {
		bm, ok := ix.grams[g]
		if !ok {
			return roaring.New()
		}
		result = roaring.And(result, bm)
		if result.IsEmpty() {
			return result
		}
	}
	return result
}

// Fold returns the case-folded form of s used for matching.
func Fold(s string) string {
	return cases.Fold().String(s)
}

func trigrams(s string) []string {
	runes := []rune(s)
	if len(runes) < gramSize {
		return nil
	}
	seen := make(map[string]struct{}, len(runes))
	out := make([]string, 0, len(runes)-gramSize+1)
	for i := 0; i+gramSize <= len(runes); i++ {
		g := string(runes[i : i+gramSize])
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

func toInts(bm *roaring.Bitmap) []int {
	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
