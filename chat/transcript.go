package chat

import (
	"github.com/fwojciec/sourcebook"
)

// Transcript accumulates an in-flight assistant turn. The message stays
// IsLoading until Complete or Fail settles it; only settled messages are
// handed to the store.
type Transcript struct {
	msg *sourcebook.ChatMessage
}

// NewTranscript starts an assistant turn for a notebook.
func NewTranscript(notebookID string) *Transcript {
	return &Transcript{
		msg: &sourcebook.ChatMessage{
			NotebookID: notebookID,
			Role:       sourcebook.RoleAssistant,
			IsLoading:  true,
		},
	}
}

// Append adds a response chunk in arrival order.
func (t *Transcript) Append(chunk string) {
	t.msg.Content += chunk
}

// Content returns the text accumulated so far.
func (t *Transcript) Content() string {
	return t.msg.Content
}

// Message returns a snapshot of the in-flight message for display.
func (t *Transcript) Message() *sourcebook.ChatMessage {
	snapshot := *t.msg
	return &snapshot
}

// Complete settles the turn: clears the loading flag and attaches citations.
func (t *Transcript) Complete(citations []sourcebook.Citation) *sourcebook.ChatMessage {
	t.msg.IsLoading = false
	t.msg.Citations = citations
	return t.msg
}

// Fail settles the turn as an error. The explanation is prefixed to any
// partial content already accumulated, which is preserved rather than
// rolled back.
func (t *Transcript) Fail(cause error) *sourcebook.ChatMessage {
	explanation := "The answer could not be completed: " + sourcebook.ErrorMessage(cause)
	if t.msg.Content != "" {
		t.msg.Content = explanation + "\n\n" + t.msg.Content
	} else {
		t.msg.Content = explanation
	}
	t.msg.IsLoading = false
	t.msg.IsError = true
	return t.msg
}
