// Package dataset provides CSV ingestion, type inference, and structural
// profiling for in-memory tabular datasets.
package dataset

import "github.com/leapstack-labs/leapchat/pkg/core"

// Profile computes the structural summary of a dataset: row count, ordered
// column names, per-column type tags, and per-column null counts. It is a
// pure function of the dataset contents, runs in a single pass over the
// data, and never mutates its input. A nil or empty dataset profiles to
// zero rows rather than failing.
func Profile(ds *core.Dataset) *core.DatasetProfile {
	p := &core.DatasetProfile{
		Columns:    []string{},
		Types:      map[string]core.ColumnType{},
		NullCounts: map[string]int{},
	}
	if ds == nil {
		return p
	}

	cols := ds.Columns()
	p.Rows = ds.NumRows()
	p.Columns = cols
	for i, name := range cols {
		p.Types[name] = ds.ColumnType(i)
		p.NullCounts[name] = 0
	}

	for r := 0; r < ds.NumRows(); r++ {
		for c, name := range cols {
			if ds.Value(r, c) == nil {
				p.NullCounts[name]++
			}
		}
	}

	return p
}
