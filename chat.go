package sourcebook

import (
	"context"
	"time"
)

// Role identifies the author of a chat message.
type Role string

// Chat roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant || r == RoleSystem
}

// ChatMessage is a single entry in a notebook's conversation transcript.
type ChatMessage struct {
	ID         string     `json:"id"`
	NotebookID string     `json:"notebookId"`
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Citations  []Citation `json:"citations,omitempty"`

	// IsLoading marks an assistant message still being streamed. Loading
	// messages are transient and never persisted.
	IsLoading bool `json:"isLoading,omitempty"`

	// IsError marks an assistant message whose generation failed. Content
	// holds the explanation, with any partial answer preserved.
	IsError bool `json:"isError,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an error if the message contains invalid fields.
func (m *ChatMessage) Validate() error {
	if m.NotebookID == "" {
		return Errorf(EINVALID, "message notebook ID required")
	}
	if !m.Role.Valid() {
		return Errorf(EINVALID, "unknown message role %q", m.Role)
	}
	return nil
}

// Citation points from an assistant message back into a source. A citation
// may outlive its source; viewers treat a dangling SourceID as "target
// missing".
type Citation struct {
	ID       string `json:"id"`
	SourceID string `json:"sourceId"`
	Title    string `json:"title"`
	Page     int    `json:"page,omitempty"`

	// Quote is the verbatim span the answer relied on; SearchText is the
	// string a viewer can use to locate that span in the source content.
	Quote      string `json:"quote"`
	SearchText string `json:"searchText"`
}

// AskRequest describes a question posed to a notebook.
type AskRequest struct {
	NotebookID string
	Question   string

	// SourceIDs limits the answer to the selected sources. Empty means all
	// sources. Unknown IDs are ignored.
	SourceIDs []string

	// ModelID selects a model from the catalog. Empty means the configured
	// default.
	ModelID string
}

// Asker answers natural language questions over a notebook's sources.
type Asker interface {
	// Ask answers a question and returns the persisted assistant message.
	// Returns EINVALID for a blank question and ENOTFOUND if the notebook
	// does not exist.
	Ask(ctx context.Context, req AskRequest) (*ChatMessage, error)

	// AskStream answers a question, delivering response chunks as they
	// arrive. The transcript is persisted when the stream settles.
	AskStream(ctx context.Context, req AskRequest) (*Answer, error)
}

// ComposeRequest describes a document generation over a notebook's sources.
type ComposeRequest struct {
	NotebookID string

	// Kind selects the document to generate. PromptQuestion is rejected;
	// questions carry a transcript and go through Asker.
	Kind PromptKind

	// SourceIDs limits the material to the selected sources. Empty means all
	// sources. Unknown IDs are ignored.
	SourceIDs []string

	// ModelID selects a model from the catalog. Empty means the configured
	// default.
	ModelID string
}

// Composer generates standalone documents such as work aids and briefings
// from a notebook's sources. Nothing is recorded in the transcript.
type Composer interface {
	// Compose generates a document of the requested kind and returns its
	// text. Returns EINVALID for PromptQuestion or a notebook with no
	// usable sources, and ENOTFOUND if the notebook does not exist.
	Compose(ctx context.Context, req ComposeRequest) (string, error)
}

// Answer is a streamed answer in progress. Chunks arrive in generation
// order over Chunks; Message blocks until the answer has settled and the
// transcript is persisted.
type Answer struct {
	*Stream

	done chan struct{}
	msg  *ChatMessage
	err  error
}

// NewAnswer returns an Answer for an Asker implementation to produce into.
func NewAnswer(buffer int) *Answer {
	return &Answer{
		Stream: NewStream(buffer),
		done:   make(chan struct{}),
	}
}

// Complete records the final message or error and releases Message callers.
// Must be called exactly once, after the stream is closed.
func (a *Answer) Complete(msg *ChatMessage, err error) {
	a.msg = msg
	a.err = err
	close(a.done)
}

// Message blocks until the answer settles and returns the final assistant
// message as persisted.
func (a *Answer) Message(ctx context.Context) (*ChatMessage, error) {
	select {
	case <-a.done:
		return a.msg, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
