package workspace

import (
	"fmt"
	"maps"

	"github.com/noah-isme/codecraft-workspace/internal/models"
)

// LanguagePolicy decides what happens to a buffer when its language becomes active again.
type LanguagePolicy string

const (
	// PolicyReset replaces the buffer with the starter code on every switch, discarding edits.
	PolicyReset LanguagePolicy = "reset"
	// PolicyPreserve keeps edits per language and only uses starter code for untouched buffers.
	PolicyPreserve LanguagePolicy = "preserve"
)

// ParseLanguagePolicy resolves a policy name.
func ParseLanguagePolicy(value string) (LanguagePolicy, error) {
	switch LanguagePolicy(value) {
	case PolicyReset:
		return PolicyReset, nil
	case PolicyPreserve:
		return PolicyPreserve, nil
	default:
		return "", fmt.Errorf("unknown language policy %q", value)
	}
}

// CodeBuffer maps each language to its editable text. It is copy-on-write: every mutation
// returns a new buffer and leaves the receiver untouched.
type CodeBuffer struct {
	texts map[models.Language]string
}

// NewCodeBuffer returns an empty buffer.
func NewCodeBuffer() CodeBuffer {
	return CodeBuffer{texts: map[models.Language]string{}}
}

// NewCodeBufferFromStarter seeds one buffer per starter code entry of the problem.
func NewCodeBufferFromStarter(problem models.Problem) CodeBuffer {
	texts := make(map[models.Language]string, len(problem.StarterCode))
	for _, entry := range problem.StarterCode {
		texts[entry.Language] = entry.Code
	}
	return CodeBuffer{texts: texts}
}

// Text returns the stored text for lang, or "" when none is stored.
func (b CodeBuffer) Text(lang models.Language) string {
	return b.texts[lang]
}

// Has reports whether a text is stored for lang.
func (b CodeBuffer) Has(lang models.Language) bool {
	_, ok := b.texts[lang]
	return ok
}

// With returns a copy of the buffer with lang set to text.
func (b CodeBuffer) With(lang models.Language, text string) CodeBuffer {
	texts := maps.Clone(b.texts)
	if texts == nil {
		texts = map[models.Language]string{}
	}
	texts[lang] = text
	return CodeBuffer{texts: texts}
}

// Texts returns a copy of every stored buffer.
func (b CodeBuffer) Texts() map[models.Language]string {
	return maps.Clone(b.texts)
}

// activate prepares the buffer for lang becoming the active language.
func (p LanguagePolicy) activate(buffer CodeBuffer, problem models.Problem, lang models.Language) (CodeBuffer, error) {
	starter, ok := problem.StarterCodeFor(lang)
	if !ok {
		return buffer, fmt.Errorf("%w %s", ErrNoStarterCode, lang.DisplayName())
	}

	switch p {
	case PolicyPreserve:
		if buffer.Has(lang) {
			return buffer, nil
		}
		return buffer.With(lang, starter), nil
	default:
		return buffer.With(lang, starter), nil
	}
}
