// Package core defines the shared domain types for LeapChat: datasets,
// profiles, turn state, routing decisions, execution results, and the
// persistent store interface. Behavior lives in the internal packages;
// this package holds the contracts they exchange.
package core

import "time"

// ColumnType is the scalar type tag assigned to a dataset column.
type ColumnType string

const (
	ColumnInt    ColumnType = "int64"
	ColumnFloat  ColumnType = "float64"
	ColumnBool   ColumnType = "bool"
	ColumnText   ColumnType = "text"
	ColumnTime   ColumnType = "timestamp"
)

// Dataset is an in-memory table of rows by named columns. It is owned by
// the session that loaded it and is immutable after load; components that
// need to mutate data (the sandbox) must operate on a Clone.
//
// Cell values are nil (null), int64, float64, bool, string, or time.Time.
type Dataset struct {
	cols  []string
	types []ColumnType
	rows  [][]any
}

// NewDataset creates a dataset with the given column names and types.
// The two slices must have equal length.
func NewDataset(cols []string, types []ColumnType) *Dataset {
	c := make([]string, len(cols))
	copy(c, cols)
	t := make([]ColumnType, len(types))
	copy(t, types)
	return &Dataset{cols: c, types: t}
}

// AppendRow adds a row of cell values. The caller must supply one value
// per column; extra values are dropped and missing ones become null.
func (d *Dataset) AppendRow(vals ...any) {
	row := make([]any, len(d.cols))
	for i := range row {
		if i < len(vals) {
			row[i] = vals[i]
		}
	}
	d.rows = append(d.rows, row)
}

// NumRows returns the number of rows.
func (d *Dataset) NumRows() int { return len(d.rows) }

// NumCols returns the number of columns.
func (d *Dataset) NumCols() int { return len(d.cols) }

// Columns returns the ordered column names as a copy.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.cols))
	copy(out, d.cols)
	return out
}

// ColumnIndex returns the index of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.cols {
		if c == name {
			return i
		}
	}
	return -1
}

// ColumnType returns the type tag of column i.
func (d *Dataset) ColumnType(i int) ColumnType { return d.types[i] }

// Value returns the cell at (row, col). A nil value is a null.
func (d *Dataset) Value(row, col int) any { return d.rows[row][col] }

// Clone returns a deep copy of the dataset. Cell values are scalars, so
// copying the row slices is sufficient to isolate the copy.
func (d *Dataset) Clone() *Dataset {
	out := NewDataset(d.cols, d.types)
	out.rows = make([][]any, len(d.rows))
	for i, r := range d.rows {
		row := make([]any, len(r))
		copy(row, r)
		out.rows[i] = row
	}
	return out
}

// DatasetProfile is the cached structural summary of a dataset: row count,
// ordered column names, per-column type tags and null counts. Once computed
// for a dataset instance it is never recomputed; recomputation only happens
// when the dataset itself is replaced.
type DatasetProfile struct {
	Rows       int                   `json:"rows"`
	Columns    []string              `json:"columns"`
	Types      map[string]ColumnType `json:"types"`
	NullCounts map[string]int        `json:"null_counts"`
}

// RoutingDecision is the enumerated classification of a turn.
type RoutingDecision string

const (
	// RouteUnset means no decision has been made yet for this turn.
	RouteUnset RoutingDecision = ""

	// RouteGenerateCode sends the turn through code generation and execution.
	RouteGenerateCode RoutingDecision = "generate_code"

	// RouteSynthesize answers directly without running code.
	RouteSynthesize RoutingDecision = "synthesize"

	// RouteEnd terminates the turn without a new assistant message. It is
	// also the fail-closed default for unrecognized routing replies.
	RouteEnd RoutingDecision = "end"
)

// ExecutionResult is the outcome of one sandbox run.
//
// Invariants: Image and ErrorDetail are never both set, and Success=false
// implies Image is absent. An execution that raises no error and renders no
// figure is still a success with Image absent.
type ExecutionResult struct {
	Success     bool   `json:"success"`
	Image       []byte `json:"-"`
	Output      string `json:"output,omitempty"`
	ErrorDetail string `json:"error,omitempty"`
}

// TurnState is the mutable record threaded through one orchestration run.
// A fresh TurnState is created per user message, seeded from session state,
// and folded back only after the run reaches its terminal state.
type TurnState struct {
	SessionID    string
	UserQuestion string

	// Dataset is a reference to the session's dataset; the turn does not
	// own it and must not mutate it.
	Dataset *Dataset

	// Profile is populated during ingestion if absent, otherwise passed
	// through unchanged.
	Profile *DatasetProfile

	// History is the append-only transcript of prior turns, in arrival
	// order. The orchestrator reads it but never modifies it.
	History []string

	Routing       RoutingDecision
	GeneratedCode string
	Execution     *ExecutionResult
	Synthesis     string
	ErrorMessage  string
}

// TurnRecord is the persisted audit entry for one processed turn.
type TurnRecord struct {
	ID        string
	SessionID string
	Seq       int
	Question  string
	Decision  RoutingDecision
	Success   bool
	Error     string
	HasChart  bool
	CreatedAt time.Time
}
