package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapchat/pkg/core"
)

func TestProfile(t *testing.T) {
	ds := core.NewDataset(
		[]string{"name", "age", "score"},
		[]core.ColumnType{core.ColumnText, core.ColumnInt, core.ColumnFloat},
	)
	ds.AppendRow("alice", int64(30), 1.5)
	ds.AppendRow("bob", nil, 2.5)
	ds.AppendRow(nil, int64(40), nil)

	p := Profile(ds)

	assert.Equal(t, 3, p.Rows)
	assert.Equal(t, []string{"name", "age", "score"}, p.Columns)
	assert.Equal(t, core.ColumnText, p.Types["name"])
	assert.Equal(t, core.ColumnInt, p.Types["age"])
	assert.Equal(t, core.ColumnFloat, p.Types["score"])
	assert.Equal(t, 1, p.NullCounts["name"])
	assert.Equal(t, 1, p.NullCounts["age"])
	assert.Equal(t, 1, p.NullCounts["score"])
}

func TestProfileNilDataset(t *testing.T) {
	p := Profile(nil)

	require.NotNil(t, p)
	assert.Equal(t, 0, p.Rows)
	assert.Empty(t, p.Columns)
	assert.Empty(t, p.Types)
	assert.Empty(t, p.NullCounts)
}

func TestProfileEmptyDataset(t *testing.T) {
	ds := core.NewDataset([]string{"a", "b"}, []core.ColumnType{core.ColumnInt, core.ColumnText})

	p := Profile(ds)

	assert.Equal(t, 0, p.Rows)
	assert.Equal(t, []string{"a", "b"}, p.Columns)
	assert.Equal(t, 0, p.NullCounts["a"])
	assert.Equal(t, 0, p.NullCounts["b"])
}

func TestProfileDoesNotMutate(t *testing.T) {
	ds := core.NewDataset([]string{"x"}, []core.ColumnType{core.ColumnInt})
	ds.AppendRow(int64(1))
	ds.AppendRow(nil)

	first := Profile(ds)
	second := Profile(ds)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, ds.NumRows())
	assert.Equal(t, int64(1), ds.Value(0, 0))
}
