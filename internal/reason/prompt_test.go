package reason

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/leapchat/pkg/core"
)

func promptProfile() *core.DatasetProfile {
	return &core.DatasetProfile{
		Rows:       3,
		Columns:    []string{"price"},
		Types:      map[string]core.ColumnType{"price": core.ColumnFloat},
		NullCounts: map[string]int{"price": 1},
	}
}

func TestBuildRoutingPrompt(t *testing.T) {
	p := BuildRoutingPrompt([]string{"user: hi\nassistant: hello"}, "plot price", promptProfile())

	assert.Contains(t, p, "generate_code")
	assert.Contains(t, p, "synthesize")
	assert.Contains(t, p, "'end'")
	assert.Contains(t, p, "user: hi\nassistant: hello")
	assert.Contains(t, p, "User question: plot price")
	assert.Contains(t, p, `"rows":3`)
}

func TestBuildRoutingPromptEmptyHistory(t *testing.T) {
	p := BuildRoutingPrompt(nil, "hello", promptProfile())

	assert.Contains(t, p, "(none)")
}

func TestBuildCodePrompt(t *testing.T) {
	p := BuildCodePrompt(promptProfile(), "what is the mean price?")

	assert.Contains(t, p, "Starlark")
	assert.Contains(t, p, "df.column(name)")
	assert.Contains(t, p, "Question: what is the mean price?")
	assert.Contains(t, p, `"price"`)
}

func TestBuildSynthesisPromptIncludesExecution(t *testing.T) {
	st := &core.TurnState{
		UserQuestion:  "plot price",
		Profile:       promptProfile(),
		GeneratedCode: "chart.histogram(df.column(\"price\"))",
		Execution: &core.ExecutionResult{
			Success: true,
			Image:   []byte{1, 2, 3},
			Output:  "done\n",
		},
	}

	p := BuildSynthesisPrompt(st)

	assert.Contains(t, p, "User question: plot price")
	assert.Contains(t, p, "Generated code:")
	assert.Contains(t, p, "Execution succeeded: true")
	assert.Contains(t, p, "A chart was generated")
}

func TestBuildSynthesisPromptIncludesErrors(t *testing.T) {
	st := &core.TurnState{
		UserQuestion: "break it",
		Profile:      promptProfile(),
		Execution: &core.ExecutionResult{
			Success:     false,
			ErrorDetail: "fail: boom",
		},
		ErrorMessage: "code generation failed: no reply",
	}

	p := BuildSynthesisPrompt(st)

	assert.Contains(t, p, "Execution error:\nfail: boom")
	assert.Contains(t, p, "Turn error: code generation failed: no reply")
	assert.NotContains(t, p, "A chart was generated")
}

func TestBuildSynthesisPromptNilProfile(t *testing.T) {
	p := BuildSynthesisPrompt(&core.TurnState{UserQuestion: "hi"})

	assert.Contains(t, p, "(not available)")
}
