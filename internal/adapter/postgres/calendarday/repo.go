// Package calendarday implements the workday-calendar repository using
// PostgreSQL.
package calendarday

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/harwell-homes/schedcast-backend/internal/adapter/postgres"
	"github.com/harwell-homes/schedcast-backend/internal/domain"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides calendar-day reads backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new calendar-day repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ListRange returns calendar days with from <= day_date <= to, ordered by
// date.
func (r *Repo) ListRange(ctx context.Context, from, to time.Time) ([]domain.CalendarDay, error) {
	query, args, err := qb.Select("day_date", "is_workday", "description").
		From("calendar_days").
		Where(sq.GtOrEq{"day_date": domain.DateOf(from)}).
		Where(sq.LtOrEq{"day_date": domain.DateOf(to)}).
		OrderBy("day_date").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build calendar query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query calendar days: %w", err)
	}
	defer rows.Close()

	var days []domain.CalendarDay
	for rows.Next() {
		var d domain.CalendarDay
		var desc *string
		if err := rows.Scan(&d.Date, &d.IsWorkday, &desc); err != nil {
			return nil, fmt.Errorf("scan calendar day: %w", err)
		}
		if desc != nil {
			d.Description = *desc
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
