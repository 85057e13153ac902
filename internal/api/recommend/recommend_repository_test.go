package recommend

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPostgresRepositoryGetPreferences(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		rows := pgxmock.NewRows([]string{"guest_id", "dining", "sports", "wellness", "room_preference", "pricing"}).
			AddRow("G0001", strPtr("vegan menu"), nil, strPtr("spa access"), nil, strPtr("premium")).
			AddRow("G0002", strPtr("No Preference"), strPtr("tennis"), nil, strPtr("sea view"), nil)
		mockPool.ExpectQuery("SELECT guest_id, dining, sports, wellness, room_preference, pricing").
			WillReturnRows(rows)

		repo := NewPostgresRepository(mockPool, slog.Default(), 0)
		table, err := repo.GetPreferences(context.Background())

		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, PreferenceColumns, table.Columns)
		assert.Equal(t, "G0001", table.Rows[0].GuestID)
		assert.Equal(t, "vegan menu", table.Rows[0].Values["Dining"])
		// NULL cells stay absent; the normalizer encodes them as 0.
		_, ok := table.Rows[0].Values["Sports"]
		assert.False(t, ok)
		assert.Equal(t, "No Preference", table.Rows[1].Values["Dining"])
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("QueryError", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery("SELECT guest_id, dining").
			WillReturnError(errors.New("connection refused"))

		repo := NewPostgresRepository(mockPool, slog.Default(), 0)
		_, err = repo.GetPreferences(context.Background())
		assert.Error(t, err)
	})
}

func TestPostgresRepositoryGetActivities(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		date := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		rows := pgxmock.NewRows([]string{"guest_id", "activity", "category", "rating", "time_spent", "date", "time_of_day"}).
			AddRow("G0001", "yoga", "Wellness", 4, 60, &date, strPtr("morning")).
			AddRow("G0002", "spa", "Wellness", 5, 90, nil, nil)
		mockPool.ExpectQuery("SELECT guest_id, activity, category, rating, time_spent, date, time_of_day").
			WillReturnRows(rows)

		repo := NewPostgresRepository(mockPool, slog.Default(), 0)
		table, err := repo.GetActivities(context.Background())

		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "yoga", table.Rows[0].Activity)
		assert.Equal(t, date, table.Rows[0].Date)
		assert.Equal(t, "morning", table.Rows[0].TimeOfDay)
		assert.True(t, table.Rows[1].Date.IsZero())
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresRepositoryGetInteractions(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		rating := 4
		timeSpent := 30
		ts := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
		rows := pgxmock.NewRows([]string{"guest_id", "activity", "rating", "time_spent", "ts"}).
			AddRow("G0001", "Spa Kit", &rating, &timeSpent, ts).
			AddRow("G0002", "Adventure Package", nil, nil, ts)
		mockPool.ExpectQuery("SELECT guest_id, activity, rating, time_spent, ts").
			WillReturnRows(rows)

		repo := NewPostgresRepository(mockPool, slog.Default(), 0)
		table, err := repo.GetInteractions(context.Background())

		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		require.NotNil(t, table.Rows[0].Rating)
		assert.Equal(t, 4, *table.Rows[0].Rating)
		assert.Nil(t, table.Rows[1].Rating)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresRepositorySnapshotCache(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	rows := pgxmock.NewRows([]string{"guest_id", "dining", "sports", "wellness", "room_preference", "pricing"}).
		AddRow("G0001", strPtr("buffet"), nil, nil, nil, nil)
	// A single query expectation: the second read must come from cache.
	mockPool.ExpectQuery("SELECT guest_id, dining").WillReturnRows(rows)

	repo := NewPostgresRepository(mockPool, slog.Default(), time.Minute)
	first, err := repo.GetPreferences(context.Background())
	require.NoError(t, err)
	second, err := repo.GetPreferences(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
