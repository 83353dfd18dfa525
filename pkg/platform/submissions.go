package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/codecraft-workspace/internal/models"
)

// statusAccepted is the judge status id of a passing test case.
const statusAccepted = 3

type evaluationRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// number accepts JSON numbers, numeric strings and null.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*n = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parse numeric string %q: %w", raw, err)
		}
		*n = number(parsed)
		return nil
	}
	var parsed float64
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	*n = number(parsed)
	return nil
}

type wireRunResult struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Runtime   number `json:"runtime"`
	Memory    number `json:"memory"`
	TestCases []struct {
		StatusID       int    `json:"status_id"`
		Stdin          string `json:"stdin"`
		ExpectedOutput string `json:"expected_output"`
		Stdout         string `json:"stdout"`
	} `json:"testCases"`
}

type wireSubmitResult struct {
	Accepted        bool   `json:"accepted"`
	Error           string `json:"error"`
	PassedTestCases int    `json:"passedTestCases"`
	TotalTestCases  int    `json:"totalTestCases"`
	Runtime         number `json:"runtime"`
	Memory          number `json:"memory"`
}

// Run evaluates code against the visible test cases of a problem.
func (c *Client) Run(ctx context.Context, problemID string, lang models.Language, code string) (models.RunResult, error) {
	var env envelope
	path := "/submissions/run/" + url.PathEscape(problemID)
	if err := c.do(ctx, "run", http.MethodPost, path, evaluationRequest{Code: code, Language: string(lang)}, &env); err != nil {
		return models.RunResult{}, err
	}

	var wire wireRunResult
	if err := decodeData(env, &wire); err != nil {
		return models.RunResult{}, err
	}

	result := models.RunResult{
		Success:   wire.Success,
		Error:     wire.Error,
		Runtime:   float64(wire.Runtime),
		MemoryKB:  float64(wire.Memory),
		TestCases: make([]models.TestCaseOutcome, 0, len(wire.TestCases)),
	}
	for _, tc := range wire.TestCases {
		status := models.TestCaseStatusFailed
		if tc.StatusID == statusAccepted {
			status = models.TestCaseStatusPassed
		}
		result.TestCases = append(result.TestCases, models.TestCaseOutcome{
			Status:         status,
			Input:          tc.Stdin,
			ExpectedOutput: tc.ExpectedOutput,
			ActualOutput:   tc.Stdout,
		})
	}
	return result, nil
}

// Submit grades code against the full test suite of a problem.
func (c *Client) Submit(ctx context.Context, problemID string, lang models.Language, code string) (models.SubmitResult, error) {
	var env envelope
	path := "/submissions/submit/" + url.PathEscape(problemID)
	if err := c.do(ctx, "submit", http.MethodPost, path, evaluationRequest{Code: code, Language: string(lang)}, &env); err != nil {
		return models.SubmitResult{}, err
	}

	var wire wireSubmitResult
	if err := decodeData(env, &wire); err != nil {
		return models.SubmitResult{}, err
	}

	return models.SubmitResult{
		Accepted:        wire.Accepted,
		Error:           wire.Error,
		PassedTestCases: wire.PassedTestCases,
		TotalTestCases:  wire.TotalTestCases,
		Runtime:         float64(wire.Runtime),
		MemoryKB:        float64(wire.Memory),
	}, nil
}
