package pullups

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/fitstats/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Increment atomically bumps the counter for the given day and returns the
// new value. A single upsert statement keeps the increment atomic under
// concurrent callers, and makes at-least-once delivery from the agent safe
// to serve without any coordination.
func (r *Repo) Increment(ctx context.Context, day time.Time) (_ *DayCount, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.pullups.increment")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	dc := &DayCount{}
	err = r.db.QueryRow(ctx, `
		INSERT INTO daily_pullups (day, reps, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (day) DO UPDATE
			SET reps = daily_pullups.reps + 1, updated_at = NOW()
		RETURNING day, reps, updated_at;
	`, Day(day)).Scan(&dc.Day, &dc.Reps, &dc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("reps", dc.Reps))
	return dc, nil
}

// Get returns the counter for the given day; a day without reps yet comes
// back as a zero count, not an error.
func (r *Repo) Get(ctx context.Context, day time.Time) (_ *DayCount, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.pullups.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	dc := &DayCount{}
	err = r.db.QueryRow(ctx, `
		SELECT day, reps, updated_at
		FROM daily_pullups
		WHERE day = $1;
	`, Day(day)).Scan(&dc.Day, &dc.Reps, &dc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &DayCount{Day: Day(day)}, nil
	}
	if err != nil {
		return nil, err
	}
	return dc, nil
}

// History returns the daily counters from the given day on, oldest first.
func (r *Repo) History(ctx context.Context, from time.Time) (_ []DayCount, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.pullups.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("from", from.String()))

	rows, err := r.db.Query(ctx, `
		SELECT day, reps, updated_at
		FROM daily_pullups
		WHERE day >= $1
		ORDER BY day;
	`, Day(from))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := make([]DayCount, 0)
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Reps, &dc.UpdatedAt); err != nil {
			return nil, err
		}
		counts = append(counts, dc)
	}

	return counts, nil
}
