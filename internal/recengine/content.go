package recengine

import (
	"sort"

	"github.com/harborview-labs/concierge/internal/types"
)

// ContentScore ranks activity rows the guest has not yet done by cosine
// similarity between the guest's preference vector and each row's
// embedding, highest first. Ties keep the table's row order. An unknown
// guest yields an empty list: no content signal is a condition, not an
// error.
func ContentScore(guestID string, prefs *NormalizedPreferences, acts types.ActivityTable, embeds *ActivityEmbeddings) []types.ScoredActivity {
	guestVec, ok := prefs.Vector(guestID)
	if !ok {
		return nil
	}
	// Align the preference vector with the embedding dimensionality.
	// Padding fills missing dimensions with zeros; truncation drops the
	// trailing ones.
	guestVec = padOrTruncate(guestVec, embeds.Dim())

	completed := acts.CompletedBy(guestID)

	var scored []types.ScoredActivity
	for i, row := range acts.Rows {
		if _, done := completed[row.Activity]; done {
			continue
		}
		scored = append(scored, types.ScoredActivity{
			Activity: row.Activity,
			Score:    CosineSimilarity(guestVec, embeds.Vectors[i]),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
