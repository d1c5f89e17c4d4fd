package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sandevgo/medrag/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_Layout(t *testing.T) {
	history := []core.Turn{
		{Role: core.RoleUser, Text: "Hi"},
		{Role: core.RoleAssistant, Text: "Hello, how can I help?"},
	}
	chunks := []string{"Diabetes is a chronic condition...", "Type 2 diabetes..."}

	p := Compose(DefaultInstructions(), history, chunks, "What is diabetes?")

	assert.Equal(t, "What is diabetes?", p.User)
	assert.True(t, strings.HasPrefix(p.System, "You are a medical assistant chatbot.\n"))
	assert.Contains(t, p.System, "- "+DefaultDisclaimer+"\n")
	assert.Contains(t, p.System, "Conversation history:\nUser: Hi\nAssistant: Hello, how can I help?\n")
	assert.True(t, strings.HasSuffix(p.System,
		"Retrieved medical context:\nDiabetes is a chronic condition...\n\nType 2 diabetes..."))

	// fixed section order
	iRules := strings.Index(p.System, "Important rules:")
	iHistory := strings.Index(p.System, "Conversation history:")
	iContext := strings.Index(p.System, "Retrieved medical context:")
	assert.Less(t, iRules, iHistory)
	assert.Less(t, iHistory, iContext)
}

func TestCompose_EmptyContextAndHistory(t *testing.T) {
	p := Compose(DefaultInstructions(), nil, nil, "q")

	assert.True(t, strings.HasSuffix(p.System, "Conversation history:\n\nRetrieved medical context:\n"))
	assert.Equal(t, "q", p.User)
}

func TestCompose_Deterministic(t *testing.T) {
	history := []core.Turn{{Role: core.RoleUser, Text: "a"}, {Role: core.RoleAssistant, Text: "b"}}
	chunks := []string{"c1", "c2", "c3"}

	first := Compose(DefaultInstructions(), history, chunks, "q")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Compose(DefaultInstructions(), history, chunks, "q"))
	}
}

func TestCompose_KeepsChunkOrderAndDoesNotTruncate(t *testing.T) {
	var history []core.Turn
	for i := 0; i < 50; i++ {
		history = append(history, core.Turn{Role: core.RoleUser, Text: strings.Repeat("x", i+1)})
	}
	chunks := []string{"zeta", "alpha", "mid"}

	p := Compose(DefaultInstructions(), history, chunks, "q")

	assert.Equal(t, 50, strings.Count(p.System, "\nUser: "))
	assert.Contains(t, p.System, "zeta\n\nalpha\n\nmid")
}

func TestLoadInstructions(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, got Instructions, err error)
	}{
		{
			name: "missing_file_uses_defaults",
			check: func(t *testing.T, got Instructions, err error) {
				require.NoError(t, err)
				assert.Equal(t, DefaultInstructions(), got)
			},
		},
		{
			name:    "partial_override_keeps_disclaimer",
			content: "role: You are a cardiology assistant.\nrules:\n  - Answer in one paragraph.\n",
			check: func(t *testing.T, got Instructions, err error) {
				require.NoError(t, err)
				assert.Equal(t, "You are a cardiology assistant.", got.Role)
				assert.Equal(t, []string{"Answer in one paragraph."}, got.Rules)
				assert.Equal(t, DefaultDisclaimer, got.Disclaimer)
			},
		},
		{
			name:    "invalid_yaml",
			content: "role: [unterminated",
			check: func(t *testing.T, got Instructions, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}
			got, err := LoadInstructions(path)
			tt.check(t, got, err)
		})
	}
}

func TestInstructions_Validate(t *testing.T) {
	instr := DefaultInstructions()
	instr.Disclaimer = "  "
	assert.Error(t, instr.Validate())

	instr = DefaultInstructions()
	instr.Role = ""
	assert.Error(t, instr.Validate())

	assert.NoError(t, DefaultInstructions().Validate())
}
