package workouts

import (
	"context"
	"errors"

	"github.com/2beens/fitstats/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrWorkoutNotFound = errors.New("workout not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workouts
				(workout_type, started_at, ended_at, distance_meters, steps, calories, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING id, created_at;`,
		workout.Type, workout.StartedAt, workout.EndedAt, workout.DistanceMeters, workout.Steps, workout.Calories,
	).Scan(&workout.ID, &workout.CreatedAt)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("workout.id", workout.ID))
	return &workout, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var w Workout
	err = r.db.QueryRow(
		ctx,
		`SELECT id, workout_type, started_at, ended_at, distance_meters, steps, calories, created_at
			FROM workouts
			WHERE id = $1;`,
		id,
	).Scan(&w.ID, &w.Type, &w.StartedAt, &w.EndedAt, &w.DistanceMeters, &w.Steps, &w.Calories, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repo) List(ctx context.Context, params ListParams) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `SELECT id, workout_type, started_at, ended_at, distance_meters, steps, calories, created_at
		FROM workouts WHERE TRUE`
	var args []any
	if params.From != nil {
		args = append(args, *params.From)
		query += ` AND started_at >= $1`
	}
	if params.To != nil {
		args = append(args, *params.To)
		if len(args) == 1 {
			query += ` AND started_at <= $1`
		} else {
			query += ` AND started_at <= $2`
		}
	}
	query += ` ORDER BY started_at;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	workouts := make([]Workout, 0)
	for rows.Next() {
		var w Workout
		if err := rows.Scan(
			&w.ID, &w.Type, &w.StartedAt, &w.EndedAt, &w.DistanceMeters, &w.Steps, &w.Calories, &w.CreatedAt,
		); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}

	return workouts, nil
}

func (r *Repo) Update(ctx context.Context, workout *Workout) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", workout.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workouts
			SET workout_type = $1, started_at = $2, ended_at = $3, distance_meters = $4, steps = $5, calories = $6
			WHERE id = $7;`,
		workout.Type, workout.StartedAt, workout.EndedAt, workout.DistanceMeters, workout.Steps, workout.Calories, workout.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workouts WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}
