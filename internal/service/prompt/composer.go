package prompt

import (
	"strings"

	"github.com/sandevgo/medrag/internal/core"
)

const contextSeparator = "\n\n"

// Compose merges instructions, history and retrieved context into one prompt.
// The result depends only on its inputs.
//
// Layout of Prompt.System: instructions, history as User:/Assistant: lines,
// then the context chunks separated by blank lines. Prompt.User is the question.
func Compose(instr Instructions, history []core.Turn, context []string, question string) core.Prompt {
	var b strings.Builder

	b.WriteString(instr.Render())

	b.WriteByte('\n')
	b.WriteString(instr.HistoryHeader)
	b.WriteByte('\n')
	for _, t := range history {
		b.WriteString(speaker(t.Role))
		b.WriteString(": ")
		b.WriteString(t.Text)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(instr.ContextHeader)
	b.WriteByte('\n')
	b.WriteString(strings.Join(context, contextSeparator))

	return core.Prompt{
		System: b.String(),
		User:   question,
	}
}

func speaker(r core.Role) string {
	if r == core.RoleAssistant {
		return "Assistant"
	}
	return "User"
}
