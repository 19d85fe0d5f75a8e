package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	"github.com/leapstack-labs/leapchat/pkg/core"
)

// LoadCSV ingests a CSV file through an in-memory DuckDB instance using
// read_csv_auto, which handles delimiter sniffing, quoting, and type
// detection. The connection is private to the call; nothing about the
// source file leaks past the returned dataset.
func LoadCSV(ctx context.Context, path string) (*core.Dataset, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, &core.DatasetLoadError{Source: path, Err: fmt.Errorf("failed to open duckdb: %w", err)}
	}
	defer func() { _ = db.Close() }()

	query := fmt.Sprintf("SELECT * FROM read_csv_auto('%s')", strings.ReplaceAll(path, "'", "''"))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &core.DatasetLoadError{Source: path, Err: err}
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &core.DatasetLoadError{Source: path, Err: err}
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, &core.DatasetLoadError{Source: path, Err: err}
	}

	types := make([]core.ColumnType, len(cols))
	for i, ct := range colTypes {
		types[i] = mapDuckDBType(ct.DatabaseTypeName())
	}

	ds := core.NewDataset(cols, types)
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &core.DatasetLoadError{Source: path, Err: err}
		}
		row := make([]any, len(cols))
		for i, v := range cells {
			row[i] = normalizeCell(v)
		}
		ds.AppendRow(row...)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.DatasetLoadError{Source: path, Err: err}
	}

	return ds, nil
}

// mapDuckDBType maps a DuckDB column type name to the dataset type tags.
func mapDuckDBType(name string) core.ColumnType {
	switch strings.ToUpper(name) {
	case "TINYINT", "SMALLINT", "INTEGER", "BIGINT", "HUGEINT",
		"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT":
		return core.ColumnInt
	case "FLOAT", "DOUBLE", "DECIMAL":
		return core.ColumnFloat
	case "BOOLEAN":
		return core.ColumnBool
	case "DATE", "TIME", "TIMESTAMP", "TIMESTAMPTZ", "TIMESTAMP_S", "TIMESTAMP_MS", "TIMESTAMP_NS":
		return core.ColumnTime
	default:
		return core.ColumnText
	}
}

// normalizeCell narrows driver-specific scan values to the dataset's cell
// vocabulary: nil, int64, float64, bool, string, time.Time.
func normalizeCell(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return float64(val)
	case float64:
		return val
	case bool:
		return val
	case time.Time:
		return val
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
