package pullups

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/fitstats/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/codes"
)

type pullupsRepo interface {
	Increment(ctx context.Context, day time.Time) (*DayCount, error)
	Get(ctx context.Context, day time.Time) (*DayCount, error)
	History(ctx context.Context, from time.Time) ([]DayCount, error)
}

type Service struct {
	repo pullupsRepo
	now  func() time.Time
}

func NewService(repo pullupsRepo) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Increment counts one rep for the given day and returns the new counter.
func (s *Service) Increment(ctx context.Context, day time.Time) (_ *DayCount, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.pullups.increment")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	dc, err := s.repo.Increment(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("increment pullups: %w", err)
	}
	return dc, nil
}

func (s *Service) Today(ctx context.Context) (_ *DayCount, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.pullups.today")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	dc, err := s.repo.Get(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("get today pullups: %w", err)
	}
	return dc, nil
}

func (s *Service) History(ctx context.Context, days int) (_ []DayCount, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.pullups.history")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	from := Day(s.now()).AddDate(0, 0, -(days - 1))
	counts, err := s.repo.History(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("pullups history: %w", err)
	}
	return counts, nil
}

// Stats aggregates the last `days` days of counters. Days without a single
// rep do not exist in the table and thus do not drag the average down.
func (s *Service) Stats(ctx context.Context, days int) (_ *Stats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.pullups.stats")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	counts, err := s.History(ctx, days)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Days: len(counts)}
	for _, dc := range counts {
		stats.TotalReps += dc.Reps
		if dc.Reps > stats.PersonalBest {
			stats.PersonalBest = dc.Reps
		}
	}
	if stats.Days > 0 {
		stats.AvgPerDay = float64(stats.TotalReps) / float64(stats.Days)
	}
	return stats, nil
}
