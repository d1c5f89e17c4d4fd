package core

const (
	AppName          = "medrag"
	AppUserAgent     = "medrag/0.1"
	AppRepositoryURL = "https://github.com/sandevgo/medrag"
	AppVersion       = "0.1.0"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one role-tagged line of a conversation. Turns are immutable once recorded.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Chunk is a passage returned by the vector index together with its provenance.
type Chunk struct {
	ID     string  `json:"id,omitempty"`
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float32 `json:"score"`
}

// Prompt is the model-ready message produced by the composer.
// System carries instructions, history and context; User carries the live question.
type Prompt struct {
	System string
	User   string
}

// Messages converts the prompt into a system + user message pair.
func (p Prompt) Messages() []Message {
	return []Message{
		{Role: RoleSystem, Content: p.System},
		{Role: RoleUser, Content: p.User},
	}
}

// Message is the provider-neutral chat message used by the completion providers.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Document is a passage prepared for indexing.
type Document struct {
	ID        string
	Text      string
	Source    string
	Embedding []float32
}

type IndexStats struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Documents int    `json:"documents"`
}
