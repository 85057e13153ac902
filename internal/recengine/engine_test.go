package recengine

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-labs/concierge/internal/types"
)

func testSnapshot() types.TableSnapshot {
	return types.TableSnapshot{
		Preferences: prefTable(
			prefRow("G0001", map[string]string{"Dining": "vegan menu", "Wellness": "spa access"}),
			prefRow("G0002", map[string]string{"Sports": "tennis courts"}),
			prefRow("G0003", map[string]string{"Wellness": "sauna"}),
		),
		Activities: types.ActivityTable{Rows: []types.ActivityRow{
			activityRow("G0001", "yoga", "Wellness", 4, 60),
			activityRow("G0002", "yoga", "Wellness", 5, 30),
			activityRow("G0002", "tennis", "Sports", 4, 60),
			activityRow("G0003", "spa", "Wellness", 5, 90),
			activityRow("G0003", "yoga", "Wellness", 4, 45),
			activityRow("G0003", "meditation", "Wellness", 5, 30),
		}},
	}
}

func TestEngineRecommend(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("FormatsTopTwoSuggestion", func(t *testing.T) {
		engine := NewEngine(logger, rand.New(rand.NewSource(1)))
		rec, err := engine.Recommend(ctx, "G0001", testSnapshot())
		require.NoError(t, err)

		assert.Equal(t, "G0001", rec.GuestID)
		assert.False(t, rec.Fallback)
		assert.True(t, strings.HasPrefix(rec.Message, "Hey, would you like to try our "))
		assert.True(t, strings.HasSuffix(rec.Message, "?"))
		assert.NotEmpty(t, rec.Items)
		// yoga is already done by G0001 and must never be suggested.
		for _, item := range rec.Items {
			assert.NotEqual(t, "yoga", item.Activity)
		}
	})

	t.Run("DeterministicForSameInputs", func(t *testing.T) {
		engine := NewEngine(logger, rand.New(rand.NewSource(1)))
		first, err := engine.Recommend(ctx, "G0001", testSnapshot())
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			again, err := engine.Recommend(ctx, "G0001", testSnapshot())
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("MergedListRankedDescending", func(t *testing.T) {
		engine := NewEngine(logger, rand.New(rand.NewSource(1)))
		rec, err := engine.Recommend(ctx, "G0001", testSnapshot())
		require.NoError(t, err)
		for i := 1; i < len(rec.Items); i++ {
			assert.GreaterOrEqual(t, rec.Items[i-1].Score, rec.Items[i].Score)
		}
	})

	t.Run("UnknownGuestFallsBack", func(t *testing.T) {
		engine := NewEngine(logger, rand.New(rand.NewSource(42)))
		rec, err := engine.Recommend(ctx, "G9999", testSnapshot())
		require.NoError(t, err)

		assert.True(t, rec.Fallback)
		assert.Empty(t, rec.Items)
		assert.Contains(t, rec.Message, "View our events and activities")
	})

	t.Run("FallbackIsSeedDeterministic", func(t *testing.T) {
		a, err := NewEngine(logger, rand.New(rand.NewSource(7))).Recommend(ctx, "G9999", testSnapshot())
		require.NoError(t, err)
		b, err := NewEngine(logger, rand.New(rand.NewSource(7))).Recommend(ctx, "G9999", testSnapshot())
		require.NoError(t, err)
		assert.Equal(t, a.Message, b.Message)
	})

	t.Run("EmptyActivityTableFails", func(t *testing.T) {
		engine := NewEngine(logger, rand.New(rand.NewSource(1)))
		snap := testSnapshot()
		snap.Activities = types.ActivityTable{}
		_, err := engine.Recommend(ctx, "G0001", snap)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrEmptyActivities)
	})

	t.Run("CollaborativeOnlyNamesCarryScoreZero", func(t *testing.T) {
		// A guest with activity rows but no preference row gets no
		// content signal; everything it receives comes from neighbors at
		// score 0.
		snap := testSnapshot()
		snap.Preferences = prefTable(
			prefRow("G0002", map[string]string{"Sports": "tennis courts"}),
		)
		engine := NewEngine(logger, rand.New(rand.NewSource(1)))
		rec, err := engine.Recommend(ctx, "G0001", snap)
		require.NoError(t, err)
		for _, item := range rec.Items {
			assert.Equal(t, 0.0, item.Score)
		}
	})
}
