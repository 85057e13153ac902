package recommend

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/harborview-labs/concierge/internal/types"
)

var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepository reads the guest tables from a local SQLite snapshot
// (the hotel database file the surrounding application maintains).
// Useful for development and for running the engine against an exported
// copy of production tables.
type SQLiteRepository struct {
	logger *slog.Logger
	db     *sql.DB
}

// OpenSQLiteRepository opens the database file and verifies the
// connection. The caller should Close the repository when done.
func OpenSQLiteRepository(path string, logger *slog.Logger) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database %s: %w", path, err)
	}
	return &SQLiteRepository{logger: logger, db: db}, nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) GetPreferences(ctx context.Context) (types.PreferenceTable, error) {
	l := r.logger.With(slog.String("method", "GetPreferences"))

	query := `
		SELECT Guest_ID, Dining, Sports, Wellness, Room_Preference, Pricing
		FROM Preferences
		ORDER BY Guest_ID
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query preferences", slog.Any("error", err))
		return types.PreferenceTable{}, fmt.Errorf("sqlite error fetching preferences: %w", err)
	}
	defer rows.Close()

	table := types.PreferenceTable{Columns: PreferenceColumns}
	for rows.Next() {
		var guestID string
		cells := make([]sql.NullString, len(PreferenceColumns))
		dest := make([]any, 0, len(PreferenceColumns)+1)
		dest = append(dest, &guestID)
		for i := range cells {
			dest = append(dest, &cells[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return types.PreferenceTable{}, fmt.Errorf("sqlite error scanning preference row: %w", err)
		}
		row := types.PreferenceRow{GuestID: guestID, Values: make(map[string]string, len(PreferenceColumns))}
		for i, col := range PreferenceColumns {
			if cells[i].Valid {
				row.Values[col] = cells[i].String
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return types.PreferenceTable{}, fmt.Errorf("sqlite error reading preferences: %w", err)
	}
	return table, nil
}

func (r *SQLiteRepository) GetActivities(ctx context.Context) (types.ActivityTable, error) {
	l := r.logger.With(slog.String("method", "GetActivities"))

	query := `
		SELECT Guest_ID, Activity, Category, Rating, Time_Spent, Date, Time_Of_Day
		FROM Activities
		ORDER BY Activity_ID
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query activities", slog.Any("error", err))
		return types.ActivityTable{}, fmt.Errorf("sqlite error fetching activities: %w", err)
	}
	defer rows.Close()

	var table types.ActivityTable
	for rows.Next() {
		var row types.ActivityRow
		var date, timeOfDay sql.NullString
		if err := rows.Scan(&row.GuestID, &row.Activity, &row.Category, &row.Rating, &row.TimeSpent, &date, &timeOfDay); err != nil {
			return types.ActivityTable{}, fmt.Errorf("sqlite error scanning activity row: %w", err)
		}
		if date.Valid {
			// Dates are stored as ISO text in the snapshot file.
			if d, err := time.Parse("2006-01-02", date.String); err == nil {
				row.Date = d
			}
		}
		if timeOfDay.Valid {
			row.TimeOfDay = timeOfDay.String
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return types.ActivityTable{}, fmt.Errorf("sqlite error reading activities: %w", err)
	}
	return table, nil
}

func (r *SQLiteRepository) GetInteractions(ctx context.Context) (types.InteractionTable, error) {
	l := r.logger.With(slog.String("method", "GetInteractions"))

	query := `
		SELECT Guest_ID, Activity, Rating, Time_Spent, Timestamp
		FROM Interactions
		ORDER BY Timestamp
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query interactions", slog.Any("error", err))
		return types.InteractionTable{}, fmt.Errorf("sqlite error fetching interactions: %w", err)
	}
	defer rows.Close()

	var table types.InteractionTable
	for rows.Next() {
		var row types.InteractionRow
		var rating, timeSpent sql.NullInt64
		var ts sql.NullString
		if err := rows.Scan(&row.GuestID, &row.Activity, &rating, &timeSpent, &ts); err != nil {
			return types.InteractionTable{}, fmt.Errorf("sqlite error scanning interaction row: %w", err)
		}
		if rating.Valid {
			v := int(rating.Int64)
			row.Rating = &v
		}
		if timeSpent.Valid {
			v := int(timeSpent.Int64)
			row.TimeSpent = &v
		}
		if ts.Valid {
			if t, err := time.Parse("2006-01-02 15:04:05", ts.String); err == nil {
				row.Timestamp = t
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return types.InteractionTable{}, fmt.Errorf("sqlite error reading interactions: %w", err)
	}
	return table, nil
}
