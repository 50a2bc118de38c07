package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yardline/yardline/internal/model"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// filter accumulates WHERE conditions and their positional args.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) add(cond string, args ...any) {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
}

// search adds a case-insensitive substring match over any of cols.
func (f *filter) search(term string, cols ...string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || len(cols) == 0 {
		return
	}
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("contains(lower(%s), ?)", c)
		args[i] = term
	}
	f.add("("+strings.Join(parts, " OR ")+")", args...)
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(f.conds, " AND ")
}

// parseDecimal converts a DECIMAL column cast to VARCHAR.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// notFound maps sql.ErrNoRows onto model.ErrNotFound with context.
func notFound(err error, what string, key any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", what, key, model.ErrNotFound)
	}
	return err
}

// DailyThroughput returns head slaughtered per day and species over the
// last days days, today included, ordered by day then species.
func (s *Store) DailyThroughput(ctx context.Context, days int) ([]model.DailyThroughput, error) {
	if days <= 0 {
		days = model.DefaultThroughputDays
	}
	if days > model.MaxThroughputDays {
		days = model.MaxThroughputDays
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	now := s.now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	rows, err := s.db.QueryContext(ctx, `
		SELECT CAST(date_trunc('day', c.slaughtered_at) AS TIMESTAMP) AS day,
			a.species,
			COUNT(*) AS head
		FROM carcasses c
		JOIN animals a ON a.id = c.animal_id
		WHERE c.slaughtered_at >= ?
		GROUP BY day, a.species
		ORDER BY day, a.species`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.DailyThroughput
	for rows.Next() {
		var d model.DailyThroughput
		if err := rows.Scan(&d.Day, &d.Species, &d.Head); err != nil {
			s.logger.Warn().Err(err).Msg("duckdb scan error (DailyThroughput)")
			continue
		}
		d.Day = d.Day.UTC()
		results = append(results, d)
	}
	return results, rows.Err()
}

// RowCounts returns the number of rows in each domain table.
func (s *Store) RowCounts(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	tables := []string{"suppliers", "animals", "carcasses"}
	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		var count int64
		// Table names are constants, not user input.
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = count
	}
	return counts, nil
}
