package platform

import (
	"context"
	"net/http"
	"strings"

	"github.com/noah-isme/codecraft-workspace/internal/models"
)

type wirePart struct {
	Text string `json:"text"`
}

type wireMessage struct {
	Role  string     `json:"role"`
	Parts []wirePart `json:"parts"`
}

type wireTestCase struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

type wireStarterCode struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

type chatRequest struct {
	Messages    []wireMessage     `json:"messages"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	TestCases   []wireTestCase    `json:"testCases"`
	StartCode   []wireStarterCode `json:"startCode"`
}

type chatResponse struct {
	Message string `json:"message"`
}

// Reply asks the platform assistant to answer the turn. The platform receives the history as
// shaped by the workspace history mode.
func (c *Client) Reply(ctx context.Context, turn models.ChatTurn, problem models.ChatContext) (string, error) {
	history := turn.History()
	request := chatRequest{
		Messages:    make([]wireMessage, 0, len(history)),
		Title:       problem.Title,
		Description: problem.Description,
		TestCases:   make([]wireTestCase, 0, len(problem.TestCases)),
		StartCode:   make([]wireStarterCode, 0, len(problem.StarterCode)),
	}
	for _, msg := range history {
		parts := make([]wirePart, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			parts = append(parts, wirePart{Text: part.Text})
		}
		request.Messages = append(request.Messages, wireMessage{Role: msg.Role.WireName(), Parts: parts})
	}
	for _, tc := range problem.TestCases {
		request.TestCases = append(request.TestCases, wireTestCase{Input: tc.Input, Output: tc.Output, Explanation: tc.Explanation})
	}
	for _, sc := range problem.StarterCode {
		request.StartCode = append(request.StartCode, wireStarterCode{Language: sc.Language.DisplayName(), Code: sc.Code})
	}

	var response chatResponse
	if err := c.do(ctx, "chat", http.MethodPost, "/ai/chat", request, &response); err != nil {
		return "", err
	}

	message := strings.TrimSpace(response.Message)
	if message == "" {
		return "", ErrEmptyReply
	}
	return response.Message, nil
}
