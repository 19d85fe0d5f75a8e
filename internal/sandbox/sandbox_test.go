package sandbox

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapchat/internal/testutil"
	"github.com/leapstack-labs/leapchat/pkg/core"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func testDataset(t *testing.T) *core.Dataset {
	t.Helper()
	ds := core.NewDataset(
		[]string{"price", "units"},
		[]core.ColumnType{core.ColumnFloat, core.ColumnInt},
	)
	ds.AppendRow(1.5, int64(10))
	ds.AppendRow(nil, int64(20))
	ds.AppendRow(3.5, int64(30))
	return ds
}

func newTestSandbox(t *testing.T) *Sandbox {
	t.Helper()
	return New(Config{Logger: testutil.NewTestLogger(t)})
}

func TestExecuteSuccessWithoutFigure(t *testing.T) {
	s := newTestSandbox(t)

	res := s.Execute(context.Background(), `print("hello")`, testDataset(t))

	assert.True(t, res.Success)
	assert.Equal(t, "hello\n", res.Output)
	assert.Empty(t, res.Image)
	assert.Empty(t, res.ErrorDetail)
}

func TestExecuteDataFrameBindings(t *testing.T) {
	s := newTestSandbox(t)

	code := `
if df.num_rows != 3:
    fail("bad num_rows")
if df.columns != ["price", "units"]:
    fail("bad columns")
if df.null_count("price") != 1:
    fail("bad null_count")
if df.dtype("units") != "int64":
    fail("bad dtype")
if len(df.head(2)) != 2:
    fail("bad head")
print("ok")
`
	res := s.Execute(context.Background(), code, testDataset(t))

	require.True(t, res.Success, "error: %s", res.ErrorDetail)
	assert.Equal(t, "ok\n", res.Output)
}

func TestExecuteStats(t *testing.T) {
	s := newTestSandbox(t)

	code := `
vals = df.column("units")
print(stats.mean(vals))
print(stats.median(vals))
`
	res := s.Execute(context.Background(), code, testDataset(t))

	require.True(t, res.Success, "error: %s", res.ErrorDetail)
	assert.Equal(t, "20.0\n20.0\n", res.Output)
}

func TestExecuteStatsSkipNulls(t *testing.T) {
	s := newTestSandbox(t)

	// price has a null in row 2; mean of (1.5, 3.5) is 2.5.
	res := s.Execute(context.Background(), `print(stats.mean(df.column("price")))`, testDataset(t))

	require.True(t, res.Success, "error: %s", res.ErrorDetail)
	assert.Equal(t, "2.5\n", res.Output)
}

func TestExecuteFailureCapturedAsData(t *testing.T) {
	s := newTestSandbox(t)

	res := s.Execute(context.Background(), `fail("boom")`, testDataset(t))

	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorDetail, "boom")
	assert.Empty(t, res.Image)
}

func TestExecuteDivisionByZero(t *testing.T) {
	s := newTestSandbox(t)

	res := s.Execute(context.Background(), `x = 1 // 0`, testDataset(t))

	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorDetail, "division by zero")
}

func TestExecuteSyntaxError(t *testing.T) {
	s := newTestSandbox(t)

	res := s.Execute(context.Background(), `def broken(`, testDataset(t))

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.ErrorDetail)
}

func TestExecuteOutputKeptOnFailure(t *testing.T) {
	s := newTestSandbox(t)

	res := s.Execute(context.Background(), "print(\"before\")\nfail(\"after\")", testDataset(t))

	assert.False(t, res.Success)
	assert.Equal(t, "before\n", res.Output)
}

func TestExecuteIsolatesDataset(t *testing.T) {
	s := newTestSandbox(t)
	ds := testDataset(t)

	code := `
vals = df.column("units")
vals.clear()
cols = df.columns
cols.append("intruder")
`
	res := s.Execute(context.Background(), code, ds)

	require.True(t, res.Success, "error: %s", res.ErrorDetail)
	assert.Equal(t, 3, ds.NumRows())
	assert.Equal(t, []string{"price", "units"}, ds.Columns())
	assert.Equal(t, int64(10), ds.Value(0, 1))
}

func TestExecuteRendersChart(t *testing.T) {
	s := newTestSandbox(t)

	code := `
chart.figure(title="units", xlabel="value", ylabel="count")
chart.histogram(df.column("units"), bins=5)
`
	res := s.Execute(context.Background(), code, testDataset(t))

	require.True(t, res.Success, "error: %s", res.ErrorDetail)
	require.NotEmpty(t, res.Image)
	assert.True(t, bytes.HasPrefix(res.Image, pngMagic))
	assert.Empty(t, res.ErrorDetail)
}

func TestExecuteChartWithoutExplicitFigure(t *testing.T) {
	s := newTestSandbox(t)

	res := s.Execute(context.Background(), `chart.scatter(df.column("units"), df.column("units"))`, testDataset(t))

	require.True(t, res.Success, "error: %s", res.ErrorDetail)
	assert.True(t, bytes.HasPrefix(res.Image, pngMagic))
}

func TestExecuteBarChart(t *testing.T) {
	s := newTestSandbox(t)

	code := `
chart.figure(title="totals")
chart.bar(["a", "b", "c"], [1.0, 2.0, 3.0])
`
	res := s.Execute(context.Background(), code, testDataset(t))

	require.True(t, res.Success, "error: %s", res.ErrorDetail)
	assert.True(t, bytes.HasPrefix(res.Image, pngMagic))
}

func TestExecuteDisposesSurfaceBetweenRuns(t *testing.T) {
	s := newTestSandbox(t)
	ds := testDataset(t)

	first := s.Execute(context.Background(), `
chart.figure()
chart.line(df.column("units"), df.column("units"))
`, ds)
	require.True(t, first.Success)
	require.NotEmpty(t, first.Image)

	second := s.Execute(context.Background(), `print("no chart here")`, ds)
	require.True(t, second.Success)
	assert.Empty(t, second.Image)
}

func TestExecuteDisposesSurfaceAfterFailure(t *testing.T) {
	s := newTestSandbox(t)
	ds := testDataset(t)

	failed := s.Execute(context.Background(), "chart.figure()\nchart.histogram(df.column(\"units\"))\nfail(\"late\")", ds)
	require.False(t, failed.Success)
	assert.Empty(t, failed.Image)

	next := s.Execute(context.Background(), `print("clean")`, ds)
	require.True(t, next.Success)
	assert.Empty(t, next.Image)
}

func TestExecuteStepLimit(t *testing.T) {
	s := New(Config{MaxSteps: 1000, Logger: testutil.NewTestLogger(t)})

	code := `
x = 0
for i in range(100000):
    x += 1
`
	res := s.Execute(context.Background(), code, testDataset(t))

	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorDetail, "too many steps")
}

func TestExecuteContextCancellation(t *testing.T) {
	s := newTestSandbox(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := `
x = 0
for i in range(10000000):
    x += 1
`
	res := s.Execute(ctx, code, testDataset(t))

	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorDetail, "context canceled")
}

func TestExecuteNoAmbientBindings(t *testing.T) {
	s := newTestSandbox(t)

	res := s.Execute(context.Background(), `open("/etc/passwd")`, testDataset(t))

	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorDetail, "undefined: open")
}
