// Package dependency implements the dependency-edge repository using
// PostgreSQL.
package dependency

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/harwell-homes/schedcast-backend/internal/adapter/postgres"
	"github.com/harwell-homes/schedcast-backend/internal/domain"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides dependency-edge reads backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new dependency repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ListBySchedule returns all dependency edges of a schedule.
func (r *Repo) ListBySchedule(ctx context.Context, scheduleID int64) ([]domain.DependencyEdge, error) {
	query, args, err := qb.Select("predecessor_id", "successor_id", "dependency_type", "lag_days").
		From("activity_dependencies").
		Where(sq.Eq{"schedule_id": scheduleID}).
		OrderBy("predecessor_id", "successor_id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build dependency query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "dependencies for schedule", scheduleID)
	}
	defer rows.Close()

	var edges []domain.DependencyEdge
	for rows.Next() {
		var e domain.DependencyEdge
		if err := rows.Scan(&e.PredecessorID, &e.SuccessorID, &e.Type, &e.LagDays); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
