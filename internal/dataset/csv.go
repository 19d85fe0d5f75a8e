package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapchat/pkg/core"
)

// nullMarkers are cell values treated as nulls during pure-Go parsing,
// matching common CSV conventions.
var nullMarkers = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"null": true,
	"NULL": true,
	"NaN":  true,
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// ParseCSV reads a CSV document into a dataset, inferring per-column types
// from the values. The first record is the header. This is the pure-Go
// ingestion path; LoadCSV is the DuckDB-backed one used for files on disk.
func ParseCSV(r io.Reader) (*core.Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &core.DatasetLoadError{Source: "csv", Err: err}
	}
	if len(records) == 0 {
		// An empty document is a zero-row dataset, not an error.
		return core.NewDataset(nil, nil), nil
	}

	header := records[0]
	body := records[1:]

	types := make([]core.ColumnType, len(header))
	for c := range header {
		types[c] = inferColumnType(body, c)
	}

	ds := core.NewDataset(header, types)
	for i, rec := range body {
		if len(rec) != len(header) {
			return nil, &core.DatasetLoadError{
				Source: "csv",
				Err:    fmt.Errorf("record %d has %d fields, want %d", i+1, len(rec), len(header)),
			}
		}
		row := make([]any, len(header))
		for c, raw := range rec {
			row[c] = convertCell(raw, types[c])
		}
		ds.AppendRow(row...)
	}

	return ds, nil
}

// inferColumnType picks the narrowest type that every non-null value in
// column c parses as, in the order int64, float64, bool, timestamp, text.
func inferColumnType(records [][]string, c int) core.ColumnType {
	candidates := []core.ColumnType{core.ColumnInt, core.ColumnFloat, core.ColumnBool, core.ColumnTime}
	seen := false

	for _, rec := range records {
		if c >= len(rec) || nullMarkers[strings.TrimSpace(rec[c])] {
			continue
		}
		seen = true
		val := strings.TrimSpace(rec[c])

		remaining := candidates[:0]
		for _, t := range candidates {
			if cellParsesAs(val, t) {
				remaining = append(remaining, t)
			}
		}
		candidates = remaining
		if len(candidates) == 0 {
			return core.ColumnText
		}
	}

	if !seen || len(candidates) == 0 {
		return core.ColumnText
	}
	return candidates[0]
}

func cellParsesAs(val string, t core.ColumnType) bool {
	switch t {
	case core.ColumnInt:
		_, err := strconv.ParseInt(val, 10, 64)
		return err == nil
	case core.ColumnFloat:
		_, err := strconv.ParseFloat(val, 64)
		return err == nil
	case core.ColumnBool:
		switch strings.ToLower(val) {
		case "true", "false":
			return true
		}
		return false
	case core.ColumnTime:
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, val); err == nil {
				return true
			}
		}
		return false
	}
	return true
}

func convertCell(raw string, t core.ColumnType) any {
	val := strings.TrimSpace(raw)
	if nullMarkers[val] {
		return nil
	}
	switch t {
	case core.ColumnInt:
		n, err := strconv.ParseInt(val, 10, 64)
		if err == nil {
			return n
		}
	case core.ColumnFloat:
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	case core.ColumnBool:
		return strings.EqualFold(val, "true")
	case core.ColumnTime:
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, val); err == nil {
				return ts
			}
		}
	}
	return val
}
