package sandbox

import "sync"

type seriesKind int

const (
	seriesHistogram seriesKind = iota
	seriesBar
	seriesLine
	seriesScatter
)

// series is one plotted dataset within a figure.
type series struct {
	kind   seriesKind
	values []float64 // histogram and bar heights
	labels []string  // bar category labels
	xs, ys []float64 // line and scatter points
	bins   int
}

// figure accumulates chart state during one sandbox execution.
type figure struct {
	title  string
	xLabel string
	yLabel string
	series []series
}

func (f *figure) populated() bool { return f != nil && len(f.series) > 0 }

// surface is the chart state shared by every execution in the process,
// the one piece of mutable state that is not session-scoped. Executions
// serialize on execMu and must dispose of the surface before releasing it,
// so a figure from one run can never leak into the next run's output.
type surface struct {
	fig *figure
}

var (
	execMu      sync.Mutex
	plotSurface surface
)

// begin starts a new figure, replacing any current one.
func (s *surface) begin(title, xLabel, yLabel string) *figure {
	s.fig = &figure{title: title, xLabel: xLabel, yLabel: yLabel}
	return s.fig
}

// current returns the active figure, creating a blank one if needed.
func (s *surface) current() *figure {
	if s.fig == nil {
		s.fig = &figure{}
	}
	return s.fig
}

// take detaches and returns the active figure.
func (s *surface) take() *figure {
	f := s.fig
	s.fig = nil
	return f
}

// reset discards any figure state.
func (s *surface) reset() { s.fig = nil }
