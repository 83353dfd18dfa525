package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Language identifies one of the programming languages a problem ships starter code for.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
)

// Languages returns the supported languages in editor toolbar order.
func Languages() []Language {
	return []Language{LanguageJavaScript, LanguageJava, LanguageCPP}
}

// ParseLanguage resolves a language slug such as "cpp".
func ParseLanguage(value string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(value))) {
	case LanguageJavaScript:
		return LanguageJavaScript, nil
	case LanguageJava:
		return LanguageJava, nil
	case LanguageCPP:
		return LanguageCPP, nil
	default:
		return "", fmt.Errorf("unknown language %q", value)
	}
}

// ParseLanguageName resolves a display name such as "C++" as stored on problem definitions.
func ParseLanguageName(value string) (Language, error) {
	switch strings.TrimSpace(value) {
	case "JavaScript":
		return LanguageJavaScript, nil
	case "Java":
		return LanguageJava, nil
	case "C++":
		return LanguageCPP, nil
	default:
		return "", fmt.Errorf("unknown language name %q", value)
	}
}

// DisplayName returns the label used by problem definitions and the editor toolbar.
func (l Language) DisplayName() string {
	switch l {
	case LanguageJavaScript:
		return "JavaScript"
	case LanguageJava:
		return "Java"
	case LanguageCPP:
		return "C++"
	}
	panic(fmt.Sprintf("models: unhandled language %q", string(l)))
}

// EditorMode returns the syntax mode the code editor should use.
func (l Language) EditorMode() string {
	switch l {
	case LanguageJavaScript:
		return "javascript"
	case LanguageJava:
		return "java"
	case LanguageCPP:
		return "cpp"
	}
	panic(fmt.Sprintf("models: unhandled language %q", string(l)))
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	_, err := ParseLanguage(string(l))
	return err == nil
}

// UnmarshalJSON rejects unknown slugs at decode time.
func (l *Language) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseLanguage(raw)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Difficulty grades how hard a problem is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty resolves a difficulty value.
func ParseDifficulty(value string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(value))) {
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", value)
	}
}

// Label returns the capitalised difficulty.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	}
	panic(fmt.Sprintf("models: unhandled difficulty %q", string(d)))
}

// BadgeClass returns the style class of the difficulty badge.
func (d Difficulty) BadgeClass() string {
	switch d {
	case DifficultyEasy:
		return "bg-green-50 text-green-700 border border-green-100"
	case DifficultyMedium:
		return "bg-yellow-50 text-yellow-700 border border-yellow-100"
	case DifficultyHard:
		return "bg-red-50 text-red-700 border border-red-100"
	}
	panic(fmt.Sprintf("models: unhandled difficulty %q", string(d)))
}

// UnmarshalJSON rejects unknown difficulties at decode time.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDifficulty(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Tag is the topic a problem belongs to.
type Tag string

const (
	TagArray      Tag = "array"
	TagLinkedList Tag = "linkedList"
	TagGraph      Tag = "graph"
	TagDP         Tag = "dp"
)

// ParseTag resolves a tag value. Tags are case sensitive on the platform.
func ParseTag(value string) (Tag, error) {
	switch Tag(strings.TrimSpace(value)) {
	case TagArray:
		return TagArray, nil
	case TagLinkedList:
		return TagLinkedList, nil
	case TagGraph:
		return TagGraph, nil
	case TagDP:
		return TagDP, nil
	default:
		return "", fmt.Errorf("unknown tag %q", value)
	}
}

// Label returns the tag with its first letter upper-cased.
func (t Tag) Label() string {
	switch t {
	case TagArray:
		return "Array"
	case TagLinkedList:
		return "LinkedList"
	case TagGraph:
		return "Graph"
	case TagDP:
		return "Dp"
	}
	panic(fmt.Sprintf("models: unhandled tag %q", string(t)))
}

// UnmarshalJSON rejects unknown tags at decode time.
func (t *Tag) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTag(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
