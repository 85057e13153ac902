package recengine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/harborview-labs/concierge/internal/types"
)

// ActivityEmbeddings holds one fixed-length vector per activity row:
// the TF-IDF vector of the row's category text concatenated with the
// min-max scaled rating and time-spent. Vectors is parallel to the
// activity table's rows; embeddings are per row, not per activity name.
type ActivityEmbeddings struct {
	Vocabulary []string
	Vectors    [][]float64
}

// Dim is the shared dimensionality of every embedding in this run:
// vocabulary size plus the two numeric features.
func (e *ActivityEmbeddings) Dim() int {
	return len(e.Vocabulary) + 2
}

// EmbedActivities builds the vector space over the category column of
// every row and attaches one embedding per row. An empty table is fatal:
// there is nothing to recommend from, so the caller gets
// types.ErrEmptyActivities.
func EmbedActivities(acts types.ActivityTable) (*ActivityEmbeddings, error) {
	if len(acts.Rows) == 0 {
		return nil, fmt.Errorf("embed activities: %w", types.ErrEmptyActivities)
	}

	docs := make([][]string, len(acts.Rows))
	for i, row := range acts.Rows {
		docs[i] = tokenize(row.Category)
	}
	vocab, idf := fitTFIDF(docs)

	var ratingScaler, timeScaler MinMaxScaler
	ratings := make([]float64, len(acts.Rows))
	times := make([]float64, len(acts.Rows))
	for i, row := range acts.Rows {
		ratings[i] = float64(row.Rating)
		times[i] = float64(row.TimeSpent)
	}
	ratings = ratingScaler.FitTransform(ratings)
	times = timeScaler.FitTransform(times)

	emb := &ActivityEmbeddings{
		Vocabulary: vocab,
		Vectors:    make([][]float64, len(acts.Rows)),
	}
	index := make(map[string]int, len(vocab))
	for i, tok := range vocab {
		index[tok] = i
	}
	for i, doc := range docs {
		vec := make([]float64, len(vocab)+2)
		for _, tok := range doc {
			if j, ok := index[tok]; ok {
				vec[j] += idf[j] // term frequency accumulates per occurrence
			}
		}
		l2Normalize(vec[:len(vocab)])
		vec[len(vocab)] = ratings[i]
		vec[len(vocab)+1] = times[i]
		emb.Vectors[i] = vec
	}
	return emb, nil
}

// tokenize lowercases and splits on non-alphanumeric runs, dropping
// single-character tokens.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// fitTFIDF returns the sorted vocabulary and the smoothed inverse
// document frequency ln((1+n)/(1+df))+1 per token.
func fitTFIDF(docs [][]string) ([]string, []float64) {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				df[tok]++
			}
		}
	}
	vocab := make([]string, 0, len(df))
	for tok := range df {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for i, tok := range vocab {
		idf[i] = math.Log((1+n)/(1+float64(df[tok]))) + 1
	}
	return vocab, idf
}

func l2Normalize(v []float64) {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
}
