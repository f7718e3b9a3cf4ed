package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // registers the "postgres" driver

	"github.com/signalsfoundry/tle-generator/model"
)

// JoinQuery is the single authoritative query: every phase column followed by
// every orbit column, matched on orbit and network identifiers.
const JoinQuery = `SELECT phase.*, orbit.* FROM orbit INNER JOIN phase ON (orbit.orb_id = phase.orb_id) AND (orbit.ntc_id = phase.ntc_id)`

// SQLSource runs a query and keeps the driver's column values untouched.
type SQLSource struct {
	DB    *sql.DB
	Query string
}

// OpenPostgres opens and pings a PostgreSQL database through lib/pq.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewSQLSource returns a source running query, or JoinQuery when empty.
func NewSQLSource(db *sql.DB, query string) *SQLSource {
	if query == "" {
		query = JoinQuery
	}
	return &SQLSource{DB: db, Query: query}
}

// Load implements Source.
func (s *SQLSource) Load(ctx context.Context) (model.Table, error) {
	if s.DB == nil {
		return model.Table{}, fmt.Errorf("sql source has no database handle")
	}
	rows, err := s.DB.QueryContext(ctx, s.Query)
	if err != nil {
		return model.Table{}, fmt.Errorf("query orbital rows: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return model.Table{}, fmt.Errorf("read columns: %w", err)
	}

	table := model.Table{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return model.Table{}, fmt.Errorf("scan row %d: %w", len(table.Rows), err)
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return model.Table{}, fmt.Errorf("iterate rows: %w", err)
	}
	return table, nil
}
