package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/lib/pq"
)

var ErrUnknownTable = errors.New("table is not exportable")

// ExportTables lists the primary tables in parent-first order.
var ExportTables = []string{
	"users",
	"games",
	"player_games",
	"teams",
	"team_members",
	"tournaments",
	"tournament_participants",
	"matches",
	"player_stats",
}

// TableScanner reads whole tables as column-to-value documents.
type TableScanner interface {
	ScanTable(ctx context.Context, exec SQLExecutor, table string) ([]models.Document, error)
}

type postgresTableScanner struct {
	executorHolder
}

func NewPostgresTableScanner(db *sql.DB) TableScanner {
	return &postgresTableScanner{executorHolder{db: db}}
}

func IsExportTable(table string) bool {
	for _, t := range ExportTables {
		if t == table {
			return true
		}
	}
	return false
}

func (s *postgresTableScanner) ScanTable(ctx context.Context, exec SQLExecutor, table string) ([]models.Document, error) {
	if !IsExportTable(table) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}

	rows, err := s.getExecutor(exec).QueryContext(ctx, `SELECT * FROM `+pq.QuoteIdentifier(table))
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	docs := make([]models.Document, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}
		docs = append(docs, rowDocument(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows of %s: %w", table, err)
	}
	return docs, nil
}

func rowDocument(columns []string, values []interface{}) models.Document {
	doc := make(models.Document, len(columns))
	for i, col := range columns {
		if b, ok := values[i].([]byte); ok {
			doc[col] = string(b)
			continue
		}
		doc[col] = values[i]
	}
	return doc
}
