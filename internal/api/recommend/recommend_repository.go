package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/harborview-labs/concierge/internal/types"
)

// PreferenceColumns is the canonical category column order of the
// preferences table. Every derived vector lays its dimensions out in
// this order.
var PreferenceColumns = []string{"Dining", "Sports", "Wellness", "Room_Preference", "Pricing"}

// Ensure implementation satisfies the interface
var _ Repository = (*PostgresRepository)(nil)

// Repository loads the three raw input tables the engine consumes. The
// engine itself owns no connection; each call reads a fresh snapshot.
type Repository interface {
	GetPreferences(ctx context.Context) (types.PreferenceTable, error)
	GetActivities(ctx context.Context) (types.ActivityTable, error)
	GetInteractions(ctx context.Context) (types.InteractionTable, error)
}

// PGXQuerier is the subset of pgxpool.Pool the repository needs.
type PGXQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository reads the guest tables from Postgres. Raw table
// reads are fronted by a short-TTL cache so bursts of recommendation
// calls do not hammer storage; derived vectors are never cached.
type PostgresRepository struct {
	logger *slog.Logger
	pgpool PGXQuerier
	cache  *gocache.Cache
}

// NewPostgresRepository creates a repository over the given pool.
// ttl = 0 disables the snapshot cache.
func NewPostgresRepository(pgpool PGXQuerier, logger *slog.Logger, ttl time.Duration) *PostgresRepository {
	var c *gocache.Cache
	if ttl > 0 {
		c = gocache.New(ttl, 2*ttl)
	}
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
		cache:  c,
	}
}

func (r *PostgresRepository) GetPreferences(ctx context.Context) (types.PreferenceTable, error) {
	ctx, span := otel.Tracer("RecommendRepo").Start(ctx, "GetPreferences", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "preferences"),
	))
	defer span.End()

	if cached, ok := r.cachedTable("preferences"); ok {
		span.SetStatus(codes.Ok, "Preferences served from snapshot cache")
		return cached.(types.PreferenceTable), nil
	}

	l := r.logger.With(slog.String("method", "GetPreferences"))
	l.DebugContext(ctx, "Fetching preferences table")

	query := `
		SELECT guest_id, dining, sports, wellness, room_preference, pricing
		FROM preferences
		ORDER BY guest_id
	`
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query preferences", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return types.PreferenceTable{}, fmt.Errorf("database error fetching preferences: %w", err)
	}
	defer rows.Close()

	table := types.PreferenceTable{Columns: PreferenceColumns}
	for rows.Next() {
		var guestID string
		cells := make([]*string, len(PreferenceColumns))
		dest := make([]any, 0, len(PreferenceColumns)+1)
		dest = append(dest, &guestID)
		for i := range cells {
			dest = append(dest, &cells[i])
		}
		if err := rows.Scan(dest...); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Row scan failed")
			return types.PreferenceTable{}, fmt.Errorf("database error scanning preference row: %w", err)
		}
		row := types.PreferenceRow{GuestID: guestID, Values: make(map[string]string, len(PreferenceColumns))}
		for i, col := range PreferenceColumns {
			if cells[i] != nil {
				row.Values[col] = *cells[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Row iteration failed")
		return types.PreferenceTable{}, fmt.Errorf("database error reading preferences: %w", err)
	}

	r.storeTable("preferences", table)
	l.DebugContext(ctx, "Preferences fetched", slog.Int("rows", len(table.Rows)))
	span.SetStatus(codes.Ok, "Preferences fetched")
	return table, nil
}

func (r *PostgresRepository) GetActivities(ctx context.Context) (types.ActivityTable, error) {
	ctx, span := otel.Tracer("RecommendRepo").Start(ctx, "GetActivities", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "activities"),
	))
	defer span.End()

	if cached, ok := r.cachedTable("activities"); ok {
		span.SetStatus(codes.Ok, "Activities served from snapshot cache")
		return cached.(types.ActivityTable), nil
	}

	l := r.logger.With(slog.String("method", "GetActivities"))
	l.DebugContext(ctx, "Fetching activities table")

	query := `
		SELECT guest_id, activity, category, rating, time_spent, date, time_of_day
		FROM activities
		ORDER BY activity_id
	`
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query activities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return types.ActivityTable{}, fmt.Errorf("database error fetching activities: %w", err)
	}
	defer rows.Close()

	var table types.ActivityTable
	for rows.Next() {
		var row types.ActivityRow
		var date *time.Time
		var timeOfDay *string
		if err := rows.Scan(&row.GuestID, &row.Activity, &row.Category, &row.Rating, &row.TimeSpent, &date, &timeOfDay); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Row scan failed")
			return types.ActivityTable{}, fmt.Errorf("database error scanning activity row: %w", err)
		}
		if date != nil {
			row.Date = *date
		}
		if timeOfDay != nil {
			row.TimeOfDay = *timeOfDay
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Row iteration failed")
		return types.ActivityTable{}, fmt.Errorf("database error reading activities: %w", err)
	}

	r.storeTable("activities", table)
	l.DebugContext(ctx, "Activities fetched", slog.Int("rows", len(table.Rows)))
	span.SetStatus(codes.Ok, "Activities fetched")
	return table, nil
}

func (r *PostgresRepository) GetInteractions(ctx context.Context) (types.InteractionTable, error) {
	ctx, span := otel.Tracer("RecommendRepo").Start(ctx, "GetInteractions", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "interactions"),
	))
	defer span.End()

	if cached, ok := r.cachedTable("interactions"); ok {
		span.SetStatus(codes.Ok, "Interactions served from snapshot cache")
		return cached.(types.InteractionTable), nil
	}

	l := r.logger.With(slog.String("method", "GetInteractions"))
	l.DebugContext(ctx, "Fetching interactions table")

	query := `
		SELECT guest_id, activity, rating, time_spent, ts
		FROM interactions
		ORDER BY ts
	`
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query interactions", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return types.InteractionTable{}, fmt.Errorf("database error fetching interactions: %w", err)
	}
	defer rows.Close()

	var table types.InteractionTable
	for rows.Next() {
		var row types.InteractionRow
		if err := rows.Scan(&row.GuestID, &row.Activity, &row.Rating, &row.TimeSpent, &row.Timestamp); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Row scan failed")
			return types.InteractionTable{}, fmt.Errorf("database error scanning interaction row: %w", err)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Row iteration failed")
		return types.InteractionTable{}, fmt.Errorf("database error reading interactions: %w", err)
	}

	r.storeTable("interactions", table)
	l.DebugContext(ctx, "Interactions fetched", slog.Int("rows", len(table.Rows)))
	span.SetStatus(codes.Ok, "Interactions fetched")
	return table, nil
}

func (r *PostgresRepository) cachedTable(key string) (any, bool) {
	if r.cache == nil {
		return nil, false
	}
	return r.cache.Get(key)
}

func (r *PostgresRepository) storeTable(key string, table any) {
	if r.cache == nil {
		return
	}
	r.cache.Set(key, table, gocache.DefaultExpiration)
}
