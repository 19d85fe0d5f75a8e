package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetAppendRow(t *testing.T) {
	ds := NewDataset([]string{"a", "b"}, []ColumnType{ColumnInt, ColumnText})

	ds.AppendRow(int64(1), "x")
	ds.AppendRow(int64(2))                 // missing cell becomes null
	ds.AppendRow(int64(3), "y", "dropped") // extra cell is discarded

	require.Equal(t, 3, ds.NumRows())
	assert.Equal(t, "x", ds.Value(0, 1))
	assert.Nil(t, ds.Value(1, 1))
	assert.Equal(t, "y", ds.Value(2, 1))
}

func TestDatasetColumnIndex(t *testing.T) {
	ds := NewDataset([]string{"a", "b"}, []ColumnType{ColumnInt, ColumnText})

	assert.Equal(t, 0, ds.ColumnIndex("a"))
	assert.Equal(t, 1, ds.ColumnIndex("b"))
	assert.Equal(t, -1, ds.ColumnIndex("missing"))
}

func TestDatasetColumnsReturnsCopy(t *testing.T) {
	ds := NewDataset([]string{"a", "b"}, []ColumnType{ColumnInt, ColumnText})

	cols := ds.Columns()
	cols[0] = "mutated"

	assert.Equal(t, []string{"a", "b"}, ds.Columns())
}

func TestDatasetClone(t *testing.T) {
	ds := NewDataset([]string{"a"}, []ColumnType{ColumnInt})
	ds.AppendRow(int64(1))
	ds.AppendRow(nil)

	clone := ds.Clone()
	clone.AppendRow(int64(3))

	assert.Equal(t, 2, ds.NumRows())
	assert.Equal(t, 3, clone.NumRows())
	assert.Equal(t, int64(1), clone.Value(0, 0))
	assert.Nil(t, clone.Value(1, 0))
}
