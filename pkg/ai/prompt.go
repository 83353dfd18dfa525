package ai

import (
	"strings"

	"github.com/noah-isme/codecraft-workspace/internal/models"
)

func systemPrompt(problem models.ChatContext) string {
	builder := strings.Builder{}
	builder.WriteString("You are a coding tutor helping a student with a single programming problem. ")
	builder.WriteString("Give hints, explain concepts and review their approach. ")
	builder.WriteString("Only reveal a complete solution when the student explicitly asks for it. ")
	builder.WriteString("Decline questions unrelated to this problem.\n\n")

	builder.WriteString("# Problem\n")
	builder.WriteString(problem.Title)
	builder.WriteString("\n\n## Description\n")
	builder.WriteString(problem.Description)

	if len(problem.TestCases) > 0 {
		builder.WriteString("\n\n## Examples\n")
		for _, tc := range problem.TestCases {
			builder.WriteString("Input: ")
			builder.WriteString(tc.Input)
			builder.WriteString("\nOutput: ")
			builder.WriteString(tc.Output)
			if tc.Explanation != "" {
				builder.WriteString("\nExplanation: ")
				builder.WriteString(tc.Explanation)
			}
			builder.WriteString("\n")
		}
	}

	if len(problem.StarterCode) > 0 {
		builder.WriteString("\n## Starter Code\n")
		for _, sc := range problem.StarterCode {
			builder.WriteString("### ")
			builder.WriteString(sc.Language.DisplayName())
			builder.WriteString("\n```")
			builder.WriteString(sc.Language.EditorMode())
			builder.WriteString("\n")
			builder.WriteString(sc.Code)
			builder.WriteString("\n```\n")
		}
	}

	return builder.String()
}
