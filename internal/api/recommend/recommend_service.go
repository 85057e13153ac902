package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/harborview-labs/concierge/app/observability/metrics"
	"github.com/harborview-labs/concierge/internal/recengine"
	"github.com/harborview-labs/concierge/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for recommendations.
type Service interface {
	GetRecommendation(ctx context.Context, guestID string) (*types.Recommendation, error)
}

// ServiceImpl loads a fresh table snapshot and runs the scoring engine
// over it. The engine owns no storage; each call threads its own
// snapshot through.
type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	engine *recengine.Engine
}

// NewService creates a new recommendation service instance.
func NewService(repo Repository, engine *recengine.Engine, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		engine: engine,
	}
}

// GetRecommendation produces the ranked suggestion for one guest.
func (s *ServiceImpl) GetRecommendation(ctx context.Context, guestID string) (*types.Recommendation, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "GetRecommendation", trace.WithAttributes(
		attribute.String("guest.id", guestID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetRecommendation"), slog.String("guestID", guestID))
	l.DebugContext(ctx, "Loading table snapshot")

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load table snapshot", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load table snapshot")
		return nil, fmt.Errorf("error loading tables for recommendation: %w", err)
	}

	start := time.Now()
	rec, err := s.engine.Recommend(ctx, guestID, *snap)
	metrics.Get().EngineDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, types.ErrEmptyActivities) {
			l.WarnContext(ctx, "Activity catalog is empty, no recommendation possible")
		} else {
			l.ErrorContext(ctx, "Engine failed", slog.Any("error", err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Engine failed")
		return nil, fmt.Errorf("error computing recommendation: %w", err)
	}

	metrics.Get().RecommendationsTotal.Add(ctx, 1)
	if rec.Fallback {
		metrics.Get().FallbacksTotal.Add(ctx, 1)
	}
	l.InfoContext(ctx, "Recommendation computed",
		slog.Int("items", len(rec.Items)),
		slog.Bool("fallback", rec.Fallback),
	)
	span.SetStatus(codes.Ok, "Recommendation computed")
	return rec, nil
}

// loadSnapshot reads the three tables for one call. Reads are
// sequential; the tables are small and the repository may serve them
// from its snapshot cache anyway.
func (s *ServiceImpl) loadSnapshot(ctx context.Context) (*types.TableSnapshot, error) {
	prefs, err := s.repo.GetPreferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching preferences: %w", err)
	}
	acts, err := s.repo.GetActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching activities: %w", err)
	}
	inters, err := s.repo.GetInteractions(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching interactions: %w", err)
	}
	return &types.TableSnapshot{
		Preferences:  prefs,
		Activities:   acts,
		Interactions: inters,
	}, nil
}
