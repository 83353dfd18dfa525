package models

import "fmt"

// ChatRole identifies the author of a transcript entry.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// WireName returns the role name understood by the assistant endpoint.
func (r ChatRole) WireName() string {
	switch r {
	case ChatRoleUser:
		return "user"
	case ChatRoleAssistant:
		return "model"
	}
	panic(fmt.Sprintf("models: unhandled chat role %q", string(r)))
}

// ChatPart is a fragment of a chat message.
type ChatPart struct {
	Text string `json:"text"`
}

// ChatMessage is one transcript entry.
type ChatMessage struct {
	Role  ChatRole   `json:"role"`
	Parts []ChatPart `json:"parts"`
}

// NewChatMessage builds a single-part message.
func NewChatMessage(role ChatRole, text string) ChatMessage {
	return ChatMessage{Role: role, Parts: []ChatPart{{Text: text}}}
}

// Text returns the first part of the message.
func (m ChatMessage) Text() string {
	if len(m.Parts) == 0 {
		return ""
	}
	return m.Parts[0].Text
}

// Transcript is the append-only conversation history of one workspace.
type Transcript []ChatMessage

// Append returns a new transcript with msg added. The receiver's backing array is never shared
// with the result so snapshots taken earlier stay unchanged.
func (t Transcript) Append(msg ChatMessage) Transcript {
	next := make(Transcript, len(t), len(t)+1)
	copy(next, t)
	return append(next, msg)
}

// ChatTurn is one request to an assistant: the transcript before the question and the question.
type ChatTurn struct {
	Previous Transcript
	Question ChatMessage
	// IncludeQuestion appends Question to the replayed history.
	IncludeQuestion bool
}

// History returns the transcript forwarded to assistants that replay the conversation verbatim.
func (t ChatTurn) History() Transcript {
	if t.IncludeQuestion {
		return t.Previous.Append(t.Question)
	}
	return t.Previous
}

// Conversation returns the whole exchange ending with the question.
func (t ChatTurn) Conversation() Transcript {
	return t.Previous.Append(t.Question)
}

// ChatContext is the read-only problem context sent with every assistant turn.
type ChatContext struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	TestCases   []VisibleTestCase `json:"test_cases"`
	StarterCode []StarterCode     `json:"starter_code"`
}

// NewChatContext extracts the assistant context from a problem.
func NewChatContext(p Problem) ChatContext {
	return ChatContext{
		Title:       p.Title,
		Description: p.Description,
		TestCases:   p.VisibleTestCases,
		StarterCode: p.StarterCode,
	}
}
