// Package dedup finds near-duplicate documents with MinHash signatures and
// LSH banding, scaling similarity detection sub-quadratically, and selects
// the lowest-indexed survivor of each near-duplicate cluster.
package dedup

import (
	"crypto/sha1"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Params are the MinHash+LSH parameters. Defaults matches the design's fixed
// constants (H=50, B=10, K=3, θ=0.80).
type Params struct {
	NumHashes       int
	NumBands        int
	NgramLength     int
	JaccardThreshold float64
}

// DefaultParams returns the design's fixed constants.
func DefaultParams() Params {
	return Params{
		NumHashes:        50,
		NumBands:         10,
		NgramLength:      3,
		JaccardThreshold: 0.80,
	}
}

// Dedup returns the sublist of texts that survive near-duplicate removal,
// in input order, with θ+-similar higher-indexed documents removed. Ties
// within a cluster always keep the lowest index.
func Dedup(texts []string, params Params) []string {
	if len(texts) == 0 {
		return nil
	}

	kept := SurvivingIndices(texts, params)
	survivors := make([]string, 0, len(kept))
	for _, i := range kept {
		survivors = append(survivors, texts[i])
	}
	return survivors
}

// SurvivingIndices runs the same algorithm as Dedup but returns the original
// indices of the survivors instead of their text, letting a caller map
// results back to whatever each text was derived from (e.g. a database row).
func SurvivingIndices(texts []string, params Params) []int {
	if len(texts) == 0 {
		return nil
	}

	ngramSets := make([]map[string]struct{}, len(texts))
	for i, text := range texts {
		ngramSets[i] = ngramSet(normalize(text), params.NgramLength)
	}

	signatures := make([][]*big.Int, len(texts))
	for i, set := range ngramSets {
		signatures[i] = minhash(set, params.NumHashes)
	}

	bands := lshBands(signatures, params.NumBands)

	candidates := make(map[[2]int]struct{})
	for _, docIDs := range bands {
		if len(docIDs) < 2 {
			continue
		}
		for a := 0; a < len(docIDs); a++ {
			for b := a + 1; b < len(docIDs); b++ {
				i, j := docIDs[a], docIDs[b]
				if i > j {
					i, j = j, i
				}
				candidates[[2]int{i, j}] = struct{}{}
			}
		}
	}

	toRemove := make(map[int]struct{})
	for pair := range candidates {
		i, j := pair[0], pair[1]
		if jaccard(ngramSets[i], ngramSets[j]) >= params.JaccardThreshold {
			toRemove[j] = struct{}{}
		}
	}

	kept := make([]int, 0, len(texts))
	for i := range texts {
		if _, removed := toRemove[i]; !removed {
			kept = append(kept, i)
		}
	}
	return kept
}

// nonWordPattern matches anything that is neither a word character nor
// whitespace, mirroring Python's `[^\w\s]`.
var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
var whitespacePattern = regexp.MustCompile(`\s+`)

// normalize lowercases, collapses whitespace, strips punctuation, and
// applies canonical decomposition with combining marks dropped -- the Go
// equivalent of Python's unicodedata.normalize('NFD', text) plus a
// category(c) != 'Mn' filter.
func normalize(text string) string {
	text = strings.ToLower(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = nonWordPattern.ReplaceAllString(text, "")

	decomposed := norm.NFD.String(text)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if isCombiningMark(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isCombiningMark reports whether r is a Unicode nonspacing mark (Mn),
// the category NFD decomposition splits accents into.
func isCombiningMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

func tokenize(text string) []string {
	return strings.Fields(text)
}

// ngramSet returns the set of contiguous n-token grams in text, represented
// as a space-joined canonical string per gram.
func ngramSet(text string, n int) map[string]struct{} {
	tokens := tokenize(text)
	set := make(map[string]struct{})
	if len(tokens) < n {
		// A too-short document yields no n-grams; matches the source's
		// "empty n-gram set" degenerate case.
		return set
	}
	for i := 0; i+n <= len(tokens); i++ {
		set[strings.Join(tokens[i:i+n], " ")] = struct{}{}
	}
	return set
}

// minhash computes an H-vector signature where sig[h] is the minimum, over
// every n-gram in set, of SHA1(h || ngram) interpreted as an integer. Both
// the hash index h and the n-gram are canonical text, so results reproduce
// across runs and platforms.
func minhash(set map[string]struct{}, numHashes int) []*big.Int {
	sig := make([]*big.Int, numHashes)
	for h := 0; h < numHashes; h++ {
		var min *big.Int
		for ngram := range set {
			sum := sha1.Sum([]byte(fmt.Sprintf("%d%s", h, ngram)))
			val := new(big.Int).SetBytes(sum[:])
			if min == nil || val.Cmp(min) < 0 {
				min = val
			}
		}
		if min == nil {
			// Empty n-gram set: signature of all max values. 2^160-1 is the
			// maximum SHA1 integer.
			min = maxSHA1Value()
		}
		sig[h] = min
	}
	return sig
}

func maxSHA1Value() *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), 160)
	return max.Sub(max, big.NewInt(1))
}

// lshBands partitions each signature into numBands contiguous bands and
// groups document indices sharing an identical band tuple.
func lshBands(signatures [][]*big.Int, numBands int) map[string][]int {
	bands := make(map[string][]int)
	if len(signatures) == 0 || numBands <= 0 {
		return bands
	}

	rowsPerBand := len(signatures[0]) / numBands

	for docID, sig := range signatures {
		for band := 0; band < numBands; band++ {
			start := band * rowsPerBand
			end := start + rowsPerBand
			if end > len(sig) {
				end = len(sig)
			}
			key := bandKey(band, sig[start:end])
			bands[key] = append(bands[key], docID)
		}
	}
	return bands
}

func bandKey(band int, rows []*big.Int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:", band)
	for _, r := range rows {
		b.WriteString(r.String())
		b.WriteByte('|')
	}
	return b.String()
}

// jaccard computes the true Jaccard similarity of two n-gram sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for ngram := range a {
		if _, ok := b[ngram]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
