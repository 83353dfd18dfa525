package workspace

import (
	"strings"
	"unicode/utf8"

	"github.com/noah-isme/codecraft-workspace/internal/models"
)

const (
	// MinMessageLength is the shortest chat input accepted, in characters.
	MinMessageLength = 2
	// FallbackReply replaces the assistant answer when a chat turn fails.
	FallbackReply = "Sorry, I encountered an error. Please try again."
)

// HistoryMode selects which transcript is sent with a chat turn.
type HistoryMode string

const (
	// HistoryBeforeTurn sends the transcript as it was before the new question was appended.
	HistoryBeforeTurn HistoryMode = "before_turn"
	// HistoryWithQuestion sends the transcript including the new question.
	HistoryWithQuestion HistoryMode = "with_question"
)

// SeedTranscript returns the introductory exchange every conversation starts with.
func SeedTranscript() models.Transcript {
	return models.Transcript{
		models.NewChatMessage(models.ChatRoleAssistant, "Hi, How are you"),
		models.NewChatMessage(models.ChatRoleUser, "I am Good"),
	}
}

// validateMessage applies the input rules of the chat box. Whitespace-only input counts as empty.
func validateMessage(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinMessageLength {
		return ErrMessageTooShort
	}
	return nil
}
