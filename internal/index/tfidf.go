package index

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"
)

// ErrNotFitted is returned by Transform before a successful Fit.
var ErrNotFitted = errors.New("vectorizer is not fitted")

// ErrEmptyCorpus is returned when fitting yields no vocabulary at all
// (every document empty or stop words only). Callers treat it as a
// recoverable vocabulary collapse and re-fit on the next write.
var ErrEmptyCorpus = errors.New("no terms to build a vocabulary from")

const defaultMaxFeatures = 5000

// Vectorizer is a two-phase TF-IDF transformer: Fit learns a vocabulary
// and per-term idf weights from a corpus, Transform projects further
// documents into that fixed space. Vectors are L2-normalized so cosine
// similarity reduces to a dot product of unit vectors.
//
// Terms are lowercase unigrams and adjacent bigrams with English stop
// words removed. Not safe for concurrent use; the owning store serializes
// access.
type Vectorizer struct {
	maxFeatures int
	vocabulary  map[string]int
	idf         []float64
	fitted      bool
}

// NewVectorizer builds an unfitted vectorizer with a feature cap.
func NewVectorizer(maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = defaultMaxFeatures
	}
	return &Vectorizer{maxFeatures: maxFeatures}
}

// Fitted reports whether a vocabulary has been learned.
func (v *Vectorizer) Fitted() bool {
	return v.fitted
}

// Dimensions returns the width of produced vectors (0 when unfitted).
func (v *Vectorizer) Dimensions() int {
	return len(v.vocabulary)
}

// Reset drops the learned vocabulary, returning to the unfit state.
func (v *Vectorizer) Reset() {
	v.vocabulary = nil
	v.idf = nil
	v.fitted = false
}

// Fit learns the vocabulary and idf weights from the corpus. The
// vocabulary keeps the maxFeatures most frequent terms; idf is smoothed
// (ln((1+n)/(1+df)) + 1) so unseen terms never divide by zero.
func (v *Vectorizer) Fit(docs []string) error {
	termTotals := map[string]int{}
	docFreq := map[string]int{}
	total := 0

	for _, doc := range docs {
		counts := termCounts(doc)
		if len(counts) == 0 {
			continue
		}
		total++
		for term, n := range counts {
			termTotals[term] += n
			docFreq[term]++
		}
	}

	if len(termTotals) == 0 {
		return ErrEmptyCorpus
	}

	terms := make([]string, 0, len(termTotals))
	for term := range termTotals {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if termTotals[terms[i]] != termTotals[terms[j]] {
			return termTotals[terms[i]] > termTotals[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > v.maxFeatures {
		terms = terms[:v.maxFeatures]
	}

	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log(float64(1+total)/float64(1+docFreq[term])) + 1
	}
	v.fitted = true
	return nil
}

// Transform projects one document into the fitted space. A document with
// no in-vocabulary terms yields a zero vector, which scoring treats as
// "no signal" rather than an error.
func (v *Vectorizer) Transform(doc string) ([]float64, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}
	if len(v.vocabulary) == 0 {
		return nil, ErrEmptyCorpus
	}

	vec := make([]float64, len(v.vocabulary))
	for term, n := range termCounts(doc) {
		if col, ok := v.vocabulary[term]; ok {
			vec[col] = float64(n) * v.idf[col]
		}
	}

	normalize(vec)
	return vec, nil
}

// Cosine returns the cosine similarity of two vectors, 0 when either has
// zero norm or the shapes disagree.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Mean averages a non-empty set of equal-length vectors.
func Mean(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}

	mean := make([]float64, len(vectors[0]))
	for _, vec := range vectors {
		if len(vec) != len(mean) {
			continue
		}
		for i, x := range vec {
			mean[i] += x
		}
	}
	for i := range mean {
		mean[i] /= float64(len(vectors))
	}
	return mean
}

func normalize(vec []float64) {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

// termCounts tokenizes a document into stop-word-free unigrams and
// adjacent bigrams with occurrence counts.
func termCounts(doc string) map[string]int {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(doc)) {
		field = strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if field == "" || stopWords[field] {
			continue
		}
		tokens = append(tokens, field)
	}

	counts := make(map[string]int, len(tokens)*2)
	for i, tok := range tokens {
		counts[tok]++
		if i > 0 {
			counts[tokens[i-1]+" "+tok]++
		}
	}
	return counts
}

var stopWords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true,
	"all": true, "also": true, "am": true, "an": true, "and": true,
	"any": true, "are": true, "as": true, "at": true, "be": true,
	"because": true, "been": true, "before": true, "being": true,
	"below": true, "between": true, "both": true, "but": true, "by": true,
	"can": true, "could": true, "did": true, "do": true, "does": true,
	"doing": true, "down": true, "during": true, "each": true, "few": true,
	"for": true, "from": true, "further": true, "had": true, "has": true,
	"have": true, "having": true, "he": true, "her": true, "here": true,
	"hers": true, "him": true, "his": true, "how": true, "i": true,
	"if": true, "in": true, "into": true, "is": true, "it": true,
	"its": true, "just": true, "me": true, "more": true, "most": true,
	"my": true, "no": true, "nor": true, "not": true, "now": true,
	"of": true, "off": true, "on": true, "once": true, "only": true,
	"or": true, "other": true, "our": true, "out": true, "over": true,
	"own": true, "same": true, "she": true, "should": true, "so": true,
	"some": true, "such": true, "than": true, "that": true, "the": true,
	"their": true, "them": true, "then": true, "there": true,
	"these": true, "they": true, "this": true, "those": true,
	"through": true, "to": true, "too": true, "under": true, "until": true,
	"up": true, "very": true, "was": true, "we": true, "were": true,
	"what": true, "when": true, "where": true, "which": true,
	"while": true, "who": true, "whom": true, "why": true, "will": true,
	"with": true, "would": true, "you": true, "your": true, "yours": true,
}
