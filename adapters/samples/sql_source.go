package samples

import (
	"context"
	"fmt"
	"regexp"

	"tradestats/domain/comparison"
	"tradestats/domain/core"
	"tradestats/internal"
	"tradestats/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// identifierPattern restricts table and column names, which cannot be bound
// as query parameters.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// OpenDatabase connects to a postgres or sqlite mart and checks the connection.
func OpenDatabase(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	if driver != "postgres" && driver != "sqlite" {
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported database driver %q", driver))
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.SourceError(driver, fmt.Errorf("failed to connect to database: %w", err))
	}
	return db, nil
}

// SQLSource reads samples from a table in a data mart.
type SQLSource struct {
	db     *sqlx.DB
	logger *internal.Logger
}

// NewSQLSource wraps an open connection. The caller owns db.
func NewSQLSource(db *sqlx.DB, logger *internal.Logger) *SQLSource {
	return &SQLSource{db: db, logger: logger}
}

// Name identifies the source in logs and errors.
func (s *SQLSource) Name() string {
	return "sql:" + s.db.DriverName()
}

// LoadSamples selects the value and group columns for both groups in one query.
func (s *SQLSource) LoadSamples(ctx context.Context, query comparison.SampleQuery) (*comparison.SamplePair, error) {
	if err := query.Validate(); err != nil {
		return nil, core.NewInvalidInputError("query", err.Error())
	}
	if query.Table == "" {
		return nil, core.NewInvalidInputError("table", "table is required for SQL sources")
	}
	for field, ident := range map[string]string{
		"table":        query.Table,
		"value_column": query.ValueColumn,
		"group_column": query.GroupColumn,
	} {
		if !identifierPattern.MatchString(ident) {
			return nil, core.NewInvalidInputError(field, fmt.Sprintf("%q is not a valid identifier", ident))
		}
	}

	// Values are cast to text so both engines hand back strings, letting
	// duration columns go through the same parsing as file sources.
	stmt := fmt.Sprintf(
		`SELECT CAST(%[1]s AS TEXT) AS grp, COALESCE(CAST(%[2]s AS TEXT), '') AS val FROM %[3]s WHERE %[1]s IN (?, ?)`,
		query.GroupColumn, query.ValueColumn, query.Table,
	)
	stmt = s.db.Rebind(stmt)

	var rows []struct {
		Group string `db:"grp"`
		Value string `db:"val"`
	}
	if err := s.db.SelectContext(ctx, &rows, stmt, query.GroupA, query.GroupB); err != nil {
		return nil, errors.SourceError(s.db.DriverName(), fmt.Errorf("failed to select samples from %s: %w", query.Table, err))
	}

	records := make([]record, len(rows))
	for i, row := range rows {
		records[i] = record{group: row.Group, value: row.Value}
	}

	pair, err := splitGroups(query, records)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("[SQLSource] %s.%s: %d vs %d values, %d skipped", query.Table, query.ValueColumn, len(pair.GroupA), len(pair.GroupB), pair.Skipped)
	return pair, nil
}
