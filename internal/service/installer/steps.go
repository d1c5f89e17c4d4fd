package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/medrag/internal/config"
)

type Option struct {
	Label string
	Value string
}

// ChoiceStep stores the selected option value under Key.
type ChoiceStep struct {
	Key     string
	Title   string
	Options []Option
	When    func(*InstallState) bool

	cursor int
}

func (s *ChoiceStep) Init() tea.Cmd {
	return nil
}

func (s *ChoiceStep) Skip(state *InstallState) bool {
	return s.When != nil && !s.When(state)
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState) (Step, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.Options)-1 {
			s.cursor++
		}
	case "enter":
		state.EnvVars[s.Key] = s.Options[s.cursor].Value
		return nil, nil
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.Title + "\n\n")
	for i, o := range s.Options {
		if s.cursor == i {
			b.WriteString(selStyle.Render("> "+o.Label) + "\n")
		} else {
			b.WriteString(itemStyle.Render("  "+o.Label) + "\n")
		}
	}
	b.WriteString("\n" + hintStyle.Render("(arrows to move, enter to select, ctrl+c to quit)") + "\n")
	return b.String()
}

// InputStep stores free text under the key returned by Key. An empty answer
// falls back to Default.
type InputStep struct {
	Key         func(*InstallState) string
	Title       string
	Placeholder string
	Default     string
	Secret      bool
	When        func(*InstallState) bool

	input textinput.Model
	ready bool
}

func (s *InputStep) Init() tea.Cmd {
	s.input = textinput.New()
	s.input.Focus()
	s.input.CharLimit = 255
	s.input.Width = 48
	s.input.Placeholder = s.Placeholder
	if s.Placeholder == "" {
		s.input.Placeholder = s.Default
	}
	if s.Secret {
		s.input.EchoMode = textinput.EchoPassword
		s.input.EchoCharacter = '*'
	}
	s.ready = true
	return textinput.Blink
}

func (s *InputStep) Skip(state *InstallState) bool {
	return s.When != nil && !s.When(state)
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState) (Step, tea.Cmd) {
	if !s.ready {
		s.Init()
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		value := strings.TrimSpace(s.input.Value())
		if value == "" {
			value = s.Default
		}
		state.EnvVars[s.Key(state)] = value
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	hint := "(press enter to confirm)"
	if s.Default != "" {
		hint = fmt.Sprintf("(press enter to keep %q)", s.Default)
	}
	return s.Title + "\n\n" + s.input.View() + "\n\n" + hintStyle.Render(hint) + "\n"
}

func fixedKey(key string) func(*InstallState) string {
	return func(*InstallState) string { return key }
}

func equals(key, value string) func(*InstallState) bool {
	return func(s *InstallState) bool { return s.Get(key) == value }
}

// llmKeyVar maps the chosen provider to its API key variable.
func llmKeyVar(state *InstallState) string {
	switch state.Get("LLM_PROVIDER") {
	case config.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case config.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case config.ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case config.ProviderOllama:
		return "OLLAMA_API_KEY"
	default:
		return "GROQ_API_KEY"
	}
}

var defaultModels = map[string]string{
	config.ProviderGroq:       "llama-3.1-8b-instant",
	config.ProviderOpenAI:     "gpt-4o-mini",
	config.ProviderAnthropic:  "claude-3-5-haiku-latest",
	config.ProviderOpenRouter: "meta-llama/llama-3.1-8b-instruct",
	config.ProviderOllama:     "llama3.1",
}

// modelStep picks its default from the provider chosen earlier.
type modelStep struct {
	InputStep
}

func (s *modelStep) Update(msg tea.Msg, state *InstallState) (Step, tea.Cmd) {
	s.Default = defaultModels[state.Get("LLM_PROVIDER")]
	next, cmd := s.InputStep.Update(msg, state)
	if next == nil {
		return nil, cmd
	}
	return s, cmd
}

func (s *modelStep) View(state *InstallState) string {
	s.Default = defaultModels[state.Get("LLM_PROVIDER")]
	s.input.Placeholder = s.Default
	return s.InputStep.View(state)
}

// finalizeStep derives flags from the answers and finishes immediately.
type finalizeStep struct{}

type nextMsg struct{}

func (finalizeStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (finalizeStep) Skip(*InstallState) bool { return false }

func (finalizeStep) Update(msg tea.Msg, state *InstallState) (Step, tea.Cmd) {
	state.EnvVars["ENABLE_TELEGRAM"] = fmt.Sprint(state.Get("TELEGRAM_TOKEN") != "")
	if state.Get("LLM_PROVIDER") != config.ProviderOllama {
		delete(state.EnvVars, "OLLAMA_BASE_URL")
	}
	return nil, nil
}

func (finalizeStep) View(*InstallState) string {
	return "Finalizing configuration...\n"
}

// Steps returns the questions in the order they are asked.
func Steps() []Step {
	return []Step{
		&ChoiceStep{
			Key:   "LLM_PROVIDER",
			Title: "Select the completion provider:",
			Options: []Option{
				{"Groq", config.ProviderGroq},
				{"OpenAI", config.ProviderOpenAI},
				{"Anthropic", config.ProviderAnthropic},
				{"OpenRouter", config.ProviderOpenRouter},
				{"Ollama (local)", config.ProviderOllama},
			},
		},
		&InputStep{
			Key:    llmKeyVar,
			Title:  "Enter the provider API key:",
			Secret: true,
			When:   func(s *InstallState) bool { return s.Get("LLM_PROVIDER") != config.ProviderOllama },
		},
		&InputStep{
			Key:     fixedKey("OLLAMA_BASE_URL"),
			Title:   "Enter the Ollama base URL:",
			Default: "http://localhost:11434",
			When:    equals("LLM_PROVIDER", config.ProviderOllama),
		},
		&modelStep{InputStep{
			Key:   fixedKey("LLM_MODEL"),
			Title: "Enter the model name:",
		}},
		&ChoiceStep{
			Key:   "EMBEDDING_PROVIDER",
			Title: "Select the embedding provider:",
			Options: []Option{
				{"OpenAI-compatible endpoint", config.EmbeddingOpenAI},
				{"Offline hash embedder (testing only)", config.EmbeddingHash},
			},
		},
		&InputStep{
			Key:         fixedKey("EMBEDDING_BASE_URL"),
			Title:       "Enter the embedding endpoint base URL (empty for api.openai.com):",
			Placeholder: "https://api.openai.com/v1",
			When:        equals("EMBEDDING_PROVIDER", config.EmbeddingOpenAI),
		},
		&InputStep{
			Key:    fixedKey("EMBEDDING_API_KEY"),
			Title:  "Enter the embedding API key:",
			Secret: true,
			When:   equals("EMBEDDING_PROVIDER", config.EmbeddingOpenAI),
		},
		&ChoiceStep{
			Key:   "VECTOR_INDEX",
			Title: "Select the vector index:",
			Options: []Option{
				{"Pinecone", config.IndexPinecone},
				{"Embedded chromem store", config.IndexChromem},
				{"SQLite file", config.IndexSQLite},
			},
		},
		&InputStep{
			Key:    fixedKey("PINECONE_API_KEY"),
			Title:  "Enter the Pinecone API key:",
			Secret: true,
			When:   equals("VECTOR_INDEX", config.IndexPinecone),
		},
		&InputStep{
			Key:     fixedKey("INDEX_NAME"),
			Title:   "Enter the index name:",
			Default: "medical-chatbot-index",
		},
		&ChoiceStep{
			Key:   "SETUP_TELEGRAM",
			Title: "Serve the bot on Telegram too?",
			Options: []Option{
				{"No", "no"},
				{"Yes", "yes"},
			},
		},
		&InputStep{
			Key:         fixedKey("TELEGRAM_TOKEN"),
			Title:       "Enter the Telegram bot token:",
			Placeholder: "123456789:ABCDEF...",
			Secret:      true,
			When:        equals("SETUP_TELEGRAM", "yes"),
		},
		&InputStep{
			Key:         fixedKey("TELEGRAM_ALLOWED_IDS"),
			Title:       "Enter the allowed Telegram user ids, comma separated (empty allows everyone):",
			Placeholder: "123456789",
			When:        equals("SETUP_TELEGRAM", "yes"),
		},
		finalizeStep{},
	}
}
