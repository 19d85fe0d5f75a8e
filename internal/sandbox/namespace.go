package sandbox

import (
	"fmt"
	"math"
	"sort"

	starlarkmath "go.starlark.net/lib/math"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/leapchat/pkg/core"
)

// predeclared builds the execution namespace: the dataset copy under the
// fixed name "df" plus the permitted analysis and plotting modules. This is
// the complete set of bindings reachable from executed code; there is no
// load(), no filesystem, and no network behind any of them.
func predeclared(ds *core.Dataset) starlark.StringDict {
	return starlark.StringDict{
		"df":    &dataFrame{ds: ds},
		"math":  starlarkmath.Module,
		"stats": statsModule,
		"chart": chartModule,
	}
}

var statsModule = &starlarkstruct.Module{
	Name: "stats",
	Members: starlark.StringDict{
		"mean":        starlark.NewBuiltin("mean", statsMean),
		"median":      starlark.NewBuiltin("median", statsMedian),
		"stdev":       starlark.NewBuiltin("stdev", statsStdev),
		"correlation": starlark.NewBuiltin("correlation", statsCorrelation),
	},
}

var chartModule = &starlarkstruct.Module{
	Name: "chart",
	Members: starlark.StringDict{
		"figure":    starlark.NewBuiltin("figure", chartFigure),
		"histogram": starlark.NewBuiltin("histogram", chartHistogram),
		"bar":       starlark.NewBuiltin("bar", chartBar),
		"line":      starlark.NewBuiltin("line", chartLine),
		"scatter":   starlark.NewBuiltin("scatter", chartScatter),
	},
}

// floatsFrom collects the numeric elements of a Starlark sequence,
// skipping None entries so null-bearing columns can be passed directly.
func floatsFrom(name string, v starlark.Value) ([]float64, error) {
	seq, ok := v.(starlark.Indexable)
	if !ok {
		return nil, fmt.Errorf("%s: want a list of numbers, got %s", name, v.Type())
	}
	out := make([]float64, 0, seq.Len())
	for i := 0; i < seq.Len(); i++ {
		switch elem := seq.Index(i).(type) {
		case starlark.NoneType:
			continue
		case starlark.Float:
			out = append(out, float64(elem))
		case starlark.Int:
			f, _ := starlark.AsFloat(elem)
			out = append(out, f)
		default:
			return nil, fmt.Errorf("%s: element %d is %s, want a number", name, i, elem.Type())
		}
	}
	return out, nil
}

func stringsFrom(name string, v starlark.Value) ([]string, error) {
	seq, ok := v.(starlark.Indexable)
	if !ok {
		return nil, fmt.Errorf("%s: want a list of strings, got %s", name, v.Type())
	}
	out := make([]string, seq.Len())
	for i := 0; i < seq.Len(); i++ {
		s, ok := starlark.AsString(seq.Index(i))
		if !ok {
			s = seq.Index(i).String()
		}
		out[i] = s
	}
	return out, nil
}

func statsMean(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var values starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "values", &values); err != nil {
		return nil, err
	}
	xs, err := floatsFrom(b.Name(), values)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%s: empty sequence", b.Name())
	}
	return starlark.Float(mean(xs)), nil
}

func statsMedian(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var values starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "values", &values); err != nil {
		return nil, err
	}
	xs, err := floatsFrom(b.Name(), values)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%s: empty sequence", b.Name())
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return starlark.Float((sorted[mid-1] + sorted[mid]) / 2), nil
	}
	return starlark.Float(sorted[mid]), nil
}

func statsStdev(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var values starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "values", &values); err != nil {
		return nil, err
	}
	xs, err := floatsFrom(b.Name(), values)
	if err != nil {
		return nil, err
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("%s: need at least two values", b.Name())
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return starlark.Float(math.Sqrt(ss / float64(len(xs)-1))), nil
}

func statsCorrelation(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var xv, yv starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "x", &xv, "y", &yv); err != nil {
		return nil, err
	}
	xs, err := floatsFrom(b.Name(), xv)
	if err != nil {
		return nil, err
	}
	ys, err := floatsFrom(b.Name(), yv)
	if err != nil {
		return nil, err
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%s: sequences have different lengths (%d vs %d)", b.Name(), len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("%s: need at least two values", b.Name())
	}
	mx, my := mean(xs), mean(ys)
	var num, dx, dy float64
	for i := range xs {
		num += (xs[i] - mx) * (ys[i] - my)
		dx += (xs[i] - mx) * (xs[i] - mx)
		dy += (ys[i] - my) * (ys[i] - my)
	}
	if dx == 0 || dy == 0 {
		return nil, fmt.Errorf("%s: zero variance", b.Name())
	}
	return starlark.Float(num / math.Sqrt(dx*dy)), nil
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func chartFigure(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var title, xLabel, yLabel string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "title?", &title, "xlabel?", &xLabel, "ylabel?", &yLabel); err != nil {
		return nil, err
	}
	plotSurface.begin(title, xLabel, yLabel)
	return starlark.None, nil
}

func chartHistogram(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var values starlark.Value
	bins := 10
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "values", &values, "bins?", &bins); err != nil {
		return nil, err
	}
	xs, err := floatsFrom(b.Name(), values)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%s: empty sequence", b.Name())
	}
	if bins < 1 {
		bins = 10
	}
	fig := plotSurface.current()
	fig.series = append(fig.series, series{kind: seriesHistogram, values: xs, bins: bins})
	return starlark.None, nil
}

func chartBar(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var labelsVal, valuesVal starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "labels", &labelsVal, "values", &valuesVal); err != nil {
		return nil, err
	}
	labels, err := stringsFrom(b.Name(), labelsVal)
	if err != nil {
		return nil, err
	}
	values, err := floatsFrom(b.Name(), valuesVal)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(values) {
		return nil, fmt.Errorf("%s: labels and values have different lengths (%d vs %d)", b.Name(), len(labels), len(values))
	}
	fig := plotSurface.current()
	fig.series = append(fig.series, series{kind: seriesBar, labels: labels, values: values})
	return starlark.None, nil
}

func chartLine(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return addXYSeries(b, args, kwargs, seriesLine)
}

func chartScatter(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return addXYSeries(b, args, kwargs, seriesScatter)
}

func addXYSeries(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple, kind seriesKind) (starlark.Value, error) {
	var xv, yv starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "x", &xv, "y", &yv); err != nil {
		return nil, err
	}
	xs, err := floatsFrom(b.Name(), xv)
	if err != nil {
		return nil, err
	}
	ys, err := floatsFrom(b.Name(), yv)
	if err != nil {
		return nil, err
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%s: x and y have different lengths (%d vs %d)", b.Name(), len(xs), len(ys))
	}
	fig := plotSurface.current()
	fig.series = append(fig.series, series{kind: kind, xs: xs, ys: ys})
	return starlark.None, nil
}
