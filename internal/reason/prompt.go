package reason

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapchat/pkg/core"
)

// routingSystem instructs the model to classify a turn into one of the
// three routing tokens. The reply is parsed fail-closed by the
// orchestrator, so the wording here only has to make the common case easy.
const routingSystem = `You are a task router for a data-analysis assistant. Read the user's question and the conversation context and decide the next action.
The options are:
1. 'generate_code': the question needs a quantitative analysis, a chart, or a data computation. Examples: "what is the correlation?", "plot a histogram of column X", "how many nulls are there?".
2. 'synthesize': the question is a greeting, a general question about conclusions so far, or a request for a summary. Examples: "hello", "what are the main insights?", "summarize what we found".
3. 'end': the conversation appears to be over or the question is unrelated to data analysis.

Reply with the chosen action only, in lowercase (e.g. 'generate_code').`

// codeSystem instructs the model to produce a Starlark fragment against the
// sandbox namespace. The contract mirrors what the sandbox actually exposes.
const codeSystem = `You are a data-analysis expert who writes Starlark analysis scripts.
Write a script that answers the user's question using the dataset bound to the variable ` + "`df`" + `.
- Available bindings: df, stats (mean, median, stdev, correlation), math, chart (figure, histogram, bar, line, scatter).
- df.columns, df.num_rows, df.column(name), df.null_count(name), df.dtype(name), df.head(n) read the data.
- To draw a chart, call chart.figure(title=..., xlabel=..., ylabel=...) first, then one of chart.histogram/bar/line/scatter. The chart is captured automatically.
- Use print() for numeric findings you want reported.
- Write only the script body. Do not define functions, do not use load(), and do not access files or the network.`

const synthesisSystem = `You are a data consultant. Give the user a clear, concise answer based on the context provided. If a chart was generated, explain the insights it reveals. If an error occurred, explain it in simple terms.`

// BuildRoutingPrompt assembles the routing classification prompt from the
// conversation history, the question, and the dataset profile.
func BuildRoutingPrompt(history []string, question string, profile *core.DatasetProfile) string {
	var b strings.Builder
	b.WriteString(routingSystem)
	b.WriteString("\n\nConversation context:\n")
	if len(history) == 0 {
		b.WriteString("(none)\n")
	}
	for _, entry := range history {
		b.WriteString(entry)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nUser question: %s\n", question)
	fmt.Fprintf(&b, "Dataset profile: %s\n", profileJSON(profile))
	b.WriteString("Reply with the next action.")
	return b.String()
}

// BuildCodePrompt assembles the code-generation prompt.
func BuildCodePrompt(profile *core.DatasetProfile, question string) string {
	var b strings.Builder
	b.WriteString(codeSystem)
	fmt.Fprintf(&b, "\n\nDataset profile: %s\n", profileJSON(profile))
	fmt.Fprintf(&b, "Question: %s\n", question)
	b.WriteString("Write the Starlark script that answers this question.")
	return b.String()
}

// BuildSynthesisPrompt assembles the final-answer prompt from everything
// the turn produced, including execution errors so the model can explain
// them in user terms.
func BuildSynthesisPrompt(st *core.TurnState) string {
	var b strings.Builder
	b.WriteString(synthesisSystem)
	fmt.Fprintf(&b, "\n\nUser question: %s\n", st.UserQuestion)
	fmt.Fprintf(&b, "Dataset profile: %s\n", profileJSON(st.Profile))
	if st.GeneratedCode != "" {
		fmt.Fprintf(&b, "Generated code:\n%s\n", st.GeneratedCode)
	}
	if st.Execution != nil {
		fmt.Fprintf(&b, "Execution succeeded: %v\n", st.Execution.Success)
		if st.Execution.Output != "" {
			fmt.Fprintf(&b, "Execution output:\n%s\n", st.Execution.Output)
		}
		if st.Execution.ErrorDetail != "" {
			fmt.Fprintf(&b, "Execution error:\n%s\n", st.Execution.ErrorDetail)
		}
		if len(st.Execution.Image) > 0 {
			b.WriteString("A chart was generated and will be shown to the user.\n")
		}
	}
	if st.ErrorMessage != "" {
		fmt.Fprintf(&b, "Turn error: %s\n", st.ErrorMessage)
	}
	return b.String()
}

func profileJSON(p *core.DatasetProfile) string {
	if p == nil {
		return "(not available)"
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "(not available)"
	}
	return string(data)
}
