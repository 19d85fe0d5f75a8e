package sandbox

import (
	"fmt"
	"time"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/leapchat/pkg/core"
)

// dataFrame exposes a dataset copy to Starlark code under the fixed name
// "df". It is read-only: every accessor returns fresh Starlark values, so
// nothing the script does can reach back into the underlying dataset.
type dataFrame struct {
	ds     *core.Dataset
	frozen bool
}

var _ starlark.HasAttrs = (*dataFrame)(nil)

func (d *dataFrame) String() string {
	return fmt.Sprintf("dataframe(%d rows x %d columns)", d.ds.NumRows(), d.ds.NumCols())
}

func (d *dataFrame) Type() string          { return "dataframe" }
func (d *dataFrame) Freeze()               { d.frozen = true }
func (d *dataFrame) Truth() starlark.Bool  { return d.ds.NumRows() > 0 }
func (d *dataFrame) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: dataframe") }

func (d *dataFrame) AttrNames() []string {
	return []string{"column", "columns", "dtype", "head", "null_count", "num_rows"}
}

func (d *dataFrame) Attr(name string) (starlark.Value, error) {
	switch name {
	case "columns":
		cols := d.ds.Columns()
		vals := make([]starlark.Value, len(cols))
		for i, c := range cols {
			vals[i] = starlark.String(c)
		}
		return starlark.NewList(vals), nil
	case "num_rows":
		return starlark.MakeInt(d.ds.NumRows()), nil
	case "column":
		return starlark.NewBuiltin("column", d.column), nil
	case "null_count":
		return starlark.NewBuiltin("null_count", d.nullCount), nil
	case "dtype":
		return starlark.NewBuiltin("dtype", d.dtype), nil
	case "head":
		return starlark.NewBuiltin("head", d.head), nil
	}
	return nil, nil
}

// column returns the values of a named column as a list, nulls as None.
func (d *dataFrame) column(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	idx := d.ds.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%s: unknown column %q", b.Name(), name)
	}
	vals := make([]starlark.Value, d.ds.NumRows())
	for r := range vals {
		vals[r] = cellToStarlark(d.ds.Value(r, idx))
	}
	return starlark.NewList(vals), nil
}

// nullCount returns the number of nulls in a named column.
func (d *dataFrame) nullCount(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	idx := d.ds.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%s: unknown column %q", b.Name(), name)
	}
	count := 0
	for r := 0; r < d.ds.NumRows(); r++ {
		if d.ds.Value(r, idx) == nil {
			count++
		}
	}
	return starlark.MakeInt(count), nil
}

// dtype returns the type tag of a named column.
func (d *dataFrame) dtype(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	idx := d.ds.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%s: unknown column %q", b.Name(), name)
	}
	return starlark.String(string(d.ds.ColumnType(idx))), nil
}

// head returns the first n rows as a list of dicts.
func (d *dataFrame) head(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	n := 5
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "n?", &n); err != nil {
		return nil, err
	}
	if n > d.ds.NumRows() {
		n = d.ds.NumRows()
	}
	cols := d.ds.Columns()
	rows := make([]starlark.Value, 0, n)
	for r := 0; r < n; r++ {
		dict := starlark.NewDict(len(cols))
		for c, name := range cols {
			_ = dict.SetKey(starlark.String(name), cellToStarlark(d.ds.Value(r, c)))
		}
		rows = append(rows, dict)
	}
	return starlark.NewList(rows), nil
}

// cellToStarlark converts a dataset cell to a Starlark value.
func cellToStarlark(v any) starlark.Value {
	switch val := v.(type) {
	case nil:
		return starlark.None
	case int64:
		return starlark.MakeInt64(val)
	case float64:
		return starlark.Float(val)
	case bool:
		return starlark.Bool(val)
	case string:
		return starlark.String(val)
	case time.Time:
		return starlark.String(val.Format(time.RFC3339))
	default:
		return starlark.String(fmt.Sprintf("%v", val))
	}
}
