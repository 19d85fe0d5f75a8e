package dataset

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leapchat/pkg/core"
)

// Sample returns up to n rows of the dataset formatted as strings, for
// preview rendering after an upload. Nulls render as empty cells.
func Sample(ds *core.Dataset, n int) [][]string {
	if ds == nil {
		return nil
	}
	if n > ds.NumRows() {
		n = ds.NumRows()
	}
	out := make([][]string, 0, n)
	for r := 0; r < n; r++ {
		row := make([]string, ds.NumCols())
		for c := range row {
			row[c] = FormatCell(ds.Value(r, c))
		}
		out = append(out, row)
	}
	return out
}

// FormatCell renders a single cell value for display.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.Format(time.RFC3339)
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
