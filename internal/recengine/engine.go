package recengine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/harborview-labs/concierge/internal/types"
)

const (
	defaultTopN           = 2
	defaultFallbackSample = 3
)

// Engine merges the content-based and collaborative scorers into one
// suggestion. It is stateless per call: every invocation works on the
// snapshot it is handed and computes all derived vectors fresh, so
// concurrent calls over read-only snapshots need no locking.
type Engine struct {
	logger     *slog.Logger
	normalizer *Normalizer
	rng        *rand.Rand

	// TopN is how many merged names make the suggestion sentence.
	TopN int
	// FallbackSample is how many discovery names the fallback draws.
	FallbackSample int
}

// NewEngine creates an engine. The random source only feeds the
// discovery fallback; pass a seeded one in tests to pin its output, or
// nil for a time-seeded default.
func NewEngine(logger *slog.Logger, rng *rand.Rand) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		logger:         logger,
		normalizer:     NewNormalizer(),
		rng:            rng,
		TopN:           defaultTopN,
		FallbackSample: defaultFallbackSample,
	}
}

// Recommend runs the full pipeline for one guest over one table
// snapshot. The only possible failure is an empty activity table
// (types.ErrEmptyActivities); a guest unknown to every table gets the
// discovery fallback, not an error.
func (e *Engine) Recommend(ctx context.Context, guestID string, snap types.TableSnapshot) (*types.Recommendation, error) {
	l := e.logger.With(slog.String("method", "Recommend"), slog.String("guestID", guestID))

	embeds, err := EmbedActivities(snap.Activities)
	if err != nil {
		l.ErrorContext(ctx, "Failed to embed activities", slog.Any("error", err))
		return nil, fmt.Errorf("recommend for guest %s: %w", guestID, err)
	}

	prefs, _ := e.normalizer.Normalize(snap.Preferences, snap.Interactions)

	contentRecs := ContentScore(guestID, prefs, snap.Activities, embeds)
	collabRecs := CollaborativeScore(guestID, snap.Activities)
	l.DebugContext(ctx, "Scorers finished",
		slog.Int("content_count", len(contentRecs)),
		slog.Int("collab_count", len(collabRecs)),
	)

	merged := mergeRecommendations(contentRecs, collabRecs)
	top := merged
	if len(top) > e.TopN {
		top = top[:e.TopN]
	}

	rec := &types.Recommendation{GuestID: guestID, Items: merged}
	if len(top) > 0 {
		names := make([]string, len(top))
		for i, item := range top {
			names[i] = item.Activity
		}
		rec.Message = fmt.Sprintf("Hey, would you like to try our %s?", strings.Join(names, ", "))
		return rec, nil
	}

	rec.Fallback = true
	rec.Message = e.fallbackMessage(snap.Activities)
	l.InfoContext(ctx, "No guest-specific signal, using discovery fallback")
	return rec, nil
}

// mergeRecommendations starts from the content-scored list and inserts
// every collaborative-only name with score 0: known-relevant, but with
// no computed similarity. Content entries outrank them unless their own
// similarity is <= 0.
func mergeRecommendations(content []types.ScoredActivity, collab []string) []types.ScoredActivity {
	present := make(map[string]struct{}, len(content))
	merged := make([]types.ScoredActivity, 0, len(content)+len(collab))
	for _, item := range content {
		if _, ok := present[item.Activity]; ok {
			continue
		}
		present[item.Activity] = struct{}{}
		merged = append(merged, item)
	}
	for _, name := range collab {
		if _, ok := present[name]; ok {
			continue
		}
		present[name] = struct{}{}
		merged = append(merged, types.ScoredActivity{Activity: name, Score: 0})
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}

// fallbackMessage samples up to FallbackSample distinct activity names
// from the full catalog as a discovery prompt.
func (e *Engine) fallbackMessage(acts types.ActivityTable) string {
	seen := make(map[string]struct{})
	var names []string
	for _, row := range acts.Rows {
		if _, ok := seen[row.Activity]; !ok {
			seen[row.Activity] = struct{}{}
			names = append(names, row.Activity)
		}
	}
	e.rng.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})
	if len(names) > e.FallbackSample {
		names = names[:e.FallbackSample]
	}
	if len(names) == 0 {
		return "View our events and activities."
	}
	return fmt.Sprintf("View our events and activities. Guests have been enjoying %s.", strings.Join(names, ", "))
}
