package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultDisclaimer = "This is for educational purposes only and not a substitute for professional medical advice."

// Instructions is the behavioural part of the system prompt.
type Instructions struct {
	Role          string   `yaml:"role"`
	Guidance      string   `yaml:"guidance"`
	Rules         []string `yaml:"rules"`
	Disclaimer    string   `yaml:"disclaimer"`
	HistoryHeader string   `yaml:"history_header"`
	ContextHeader string   `yaml:"context_header"`
}

func DefaultInstructions() Instructions {
	return Instructions{
		Role:     "You are a medical assistant chatbot.",
		Guidance: "Use the conversation history and the retrieved medical context to answer the user's question accurately.",
		Rules: []string{
			"If the answer is not present in the context, say you do not know.",
			"Keep the answer concise and clear.",
		},
		Disclaimer:    DefaultDisclaimer,
		HistoryHeader: "Conversation history:",
		ContextHeader: "Retrieved medical context:",
	}
}

// LoadInstructions overlays the YAML file at path onto the defaults.
// A missing file is not an error.
func LoadInstructions(path string) (Instructions, error) {
	instr := DefaultInstructions()
	if path == "" {
		return instr, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return instr, nil
		}
		return instr, fmt.Errorf("read prompt file: %w", err)
	}

	var override Instructions
	if err := yaml.Unmarshal(data, &override); err != nil {
		return instr, fmt.Errorf("decode prompt file: %w", err)
	}

	instr.merge(override)
	if err := instr.Validate(); err != nil {
		return DefaultInstructions(), err
	}
	return instr, nil
}

func (i *Instructions) merge(o Instructions) {
	if o.Role != "" {
		i.Role = o.Role
	}
	if o.Guidance != "" {
		i.Guidance = o.Guidance
	}
	if len(o.Rules) > 0 {
		i.Rules = o.Rules
	}
	if o.Disclaimer != "" {
		i.Disclaimer = o.Disclaimer
	}
	if o.HistoryHeader != "" {
		i.HistoryHeader = o.HistoryHeader
	}
	if o.ContextHeader != "" {
		i.ContextHeader = o.ContextHeader
	}
}

func (i Instructions) Validate() error {
	if strings.TrimSpace(i.Role) == "" {
		return errors.New("prompt role must not be empty")
	}
	if strings.TrimSpace(i.Disclaimer) == "" {
		return errors.New("prompt disclaimer must not be empty")
	}
	return nil
}

// Render writes the role, guidance and the rule list ending with the disclaimer.
func (i Instructions) Render() string {
	var b strings.Builder
	b.WriteString(i.Role)
	b.WriteByte('\n')
	if i.Guidance != "" {
		b.WriteString(i.Guidance)
		b.WriteByte('\n')
	}
	b.WriteString("\nImportant rules:\n")
	for _, r := range i.Rules {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteByte('\n')
	}
	b.WriteString("- ")
	b.WriteString(i.Disclaimer)
	b.WriteByte('\n')
	return b.String()
}
