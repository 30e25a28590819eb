package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/model"
)

const rowNoColumn = "row_no"

// undefined_table
const pqUndefinedTable = "42P01"

// PostgresRepository mirrors tables into PostgreSQL. Every column is stored as
// TEXT exactly as formatted for the CSV export, plus a row_no column that
// preserves row order.
type PostgresRepository struct {
	DB *sql.DB
}

func checkTableName(name string) error {
	if !model.IsKnownTable(name) {
		return appErrors.NewTableNotFound(name)
	}
	return nil
}

// Save replaces the table in a single transaction using COPY.
func (r *PostgresRepository) Save(ctx context.Context, t *model.Table) error {
	if err := checkTableName(t.Name); err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ident := pq.QuoteIdentifier(t.Name)
	defs := []string{pq.QuoteIdentifier(rowNoColumn) + " BIGINT PRIMARY KEY"}
	for _, c := range t.Columns {
		defs = append(defs, pq.QuoteIdentifier(c)+" TEXT")
	}
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", ident, strings.Join(defs, ", "))); err != nil {
		return err
	}

	cols := append([]string{rowNoColumn}, t.Columns...)
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(t.Name, cols...))
	if err != nil {
		return err
	}
	args := make([]any, len(cols))
	for i, row := range t.Rows {
		args[0] = i
		for j, v := range row {
			args[j+1] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			stmt.Close()
			return fmt.Errorf("copy %s row %d: %w", t.Name, i, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PostgresRepository) Load(ctx context.Context, name string) (*model.Table, error) {
	if err := checkTableName(name); err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY %s", pq.QuoteIdentifier(name), pq.QuoteIdentifier(rowNoColumn)))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUndefinedTable {
			return nil, appErrors.NewTableNotFound(name)
		}
		return nil, err
	}
	defer rows.Close()

	all, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	t := &model.Table{Name: name}
	skip := -1
	for i, c := range all {
		if c == rowNoColumn {
			skip = i
			continue
		}
		t.Columns = append(t.Columns, c)
	}

	for rows.Next() {
		vals := make([]sql.NullString, len(all))
		ptrs := make([]any, len(all))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]string, 0, len(t.Columns))
		for i, v := range vals {
			if i != skip {
				row = append(row, v.String)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

var _ TableRepositoryInterface = (*PostgresRepository)(nil)
