package dataset

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapchat/pkg/core"
)

func TestParseCSVTypeInference(t *testing.T) {
	doc := `name,age,score,active,joined
alice,30,1.5,true,2024-01-02
bob,25,2.25,false,2024-03-04
carol,40,0.5,true,2024-05-06
`
	ds, err := ParseCSV(strings.NewReader(doc))
	require.NoError(t, err)

	require.Equal(t, 3, ds.NumRows())
	require.Equal(t, []string{"name", "age", "score", "active", "joined"}, ds.Columns())

	assert.Equal(t, core.ColumnText, ds.ColumnType(0))
	assert.Equal(t, core.ColumnInt, ds.ColumnType(1))
	assert.Equal(t, core.ColumnFloat, ds.ColumnType(2))
	assert.Equal(t, core.ColumnBool, ds.ColumnType(3))
	assert.Equal(t, core.ColumnTime, ds.ColumnType(4))

	assert.Equal(t, "alice", ds.Value(0, 0))
	assert.Equal(t, int64(30), ds.Value(0, 1))
	assert.Equal(t, 1.5, ds.Value(0, 2))
	assert.Equal(t, true, ds.Value(0, 3))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ds.Value(0, 4))
}

func TestParseCSVNullMarkers(t *testing.T) {
	doc := `a,b
1,x
NA,y
,NULL
NaN,z
`
	ds, err := ParseCSV(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, core.ColumnInt, ds.ColumnType(0))
	assert.Nil(t, ds.Value(1, 0))
	assert.Nil(t, ds.Value(2, 0))
	assert.Nil(t, ds.Value(2, 1))
	assert.Nil(t, ds.Value(3, 0))
	assert.Equal(t, int64(1), ds.Value(0, 0))
}

func TestParseCSVMixedColumnFallsBackToText(t *testing.T) {
	doc := `v
1
two
3
`
	ds, err := ParseCSV(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, core.ColumnText, ds.ColumnType(0))
	assert.Equal(t, "1", ds.Value(0, 0))
	assert.Equal(t, "two", ds.Value(1, 0))
}

func TestParseCSVIntWidensToFloat(t *testing.T) {
	doc := `v
1
2.5
3
`
	ds, err := ParseCSV(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, core.ColumnFloat, ds.ColumnType(0))
	assert.Equal(t, 1.0, ds.Value(0, 0))
	assert.Equal(t, 2.5, ds.Value(1, 0))
}

func TestParseCSVAllNullColumnIsText(t *testing.T) {
	doc := `a,b
NA,1
,2
`
	ds, err := ParseCSV(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, core.ColumnText, ds.ColumnType(0))
	assert.Equal(t, core.ColumnInt, ds.ColumnType(1))
}

func TestParseCSVEmptyDocument(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)

	assert.Equal(t, 0, ds.NumRows())
	assert.Equal(t, 0, ds.NumCols())
}

func TestParseCSVHeaderOnly(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader("a,b,c\n"))
	require.NoError(t, err)

	assert.Equal(t, 0, ds.NumRows())
	assert.Equal(t, []string{"a", "b", "c"}, ds.Columns())
}

func TestParseCSVMalformed(t *testing.T) {
	doc := "a,b\n1,2\n\"unterminated\n"

	_, err := ParseCSV(strings.NewReader(doc))
	require.Error(t, err)

	var loadErr *core.DatasetLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestSample(t *testing.T) {
	ds := core.NewDataset([]string{"a", "b"}, []core.ColumnType{core.ColumnInt, core.ColumnFloat})
	ds.AppendRow(int64(1), 1.5)
	ds.AppendRow(nil, 2.0)

	rows := Sample(ds, 5)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "1.5"}, rows[0])
	assert.Equal(t, []string{"", "2"}, rows[1])
}
