package platform

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/codecraft-workspace/internal/models"
)

//go:embed problem.schema.json
var problemSchemaJSON string

const problemSchemaURL = "problem.schema.json"

func compileProblemSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(problemSchemaURL, strings.NewReader(problemSchemaJSON)); err != nil {
		return nil, fmt.Errorf("load problem schema: %w", err)
	}
	schema, err := compiler.Compile(problemSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile problem schema: %w", err)
	}
	return schema, nil
}

type wireProblem struct {
	ID               string `json:"_id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Difficulty       string `json:"difficulty"`
	Tags             string `json:"tags"`
	VisibleTestCases []struct {
		Input       string `json:"input"`
		Output      string `json:"output"`
		Explanation string `json:"explanation"`
	} `json:"visibleTestCases"`
	HiddenTestCases []struct {
		Input  string `json:"input"`
		Output string `json:"output"`
	} `json:"hiddenTestCases"`
	StarterCode []struct {
		Language string `json:"language"`
		Code     string `json:"code"`
	} `json:"starterCode"`
	ReferenceSolution []struct {
		Language     string `json:"language"`
		CompleteCode string `json:"completeCode"`
	} `json:"referenceSolution"`
}

type wireSummary struct {
	ID         string `json:"_id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	Tags       string `json:"tags"`
}

// ProblemByID fetches the full problem definition.
func (c *Client) ProblemByID(ctx context.Context, id string) (models.Problem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Problem{}, fmt.Errorf("%w: empty problem id", ErrNotFound)
	}

	var env envelope
	if err := c.do(ctx, "problem_by_id", http.MethodGet, "/problems/problemByID/"+url.PathEscape(id), nil, &env); err != nil {
		return models.Problem{}, err
	}

	var data struct {
		ProblemRequested json.RawMessage `json:"problemRequested"`
	}
	if err := decodeData(env, &data); err != nil {
		return models.Problem{}, err
	}
	if len(data.ProblemRequested) == 0 || string(data.ProblemRequested) == "null" {
		return models.Problem{}, fmt.Errorf("%w: problem %s", ErrNotFound, id)
	}

	return c.decodeProblem(data.ProblemRequested)
}

func (c *Client) decodeProblem(raw json.RawMessage) (models.Problem, error) {
	var document interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return models.Problem{}, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
	}
	if err := c.schema.Validate(document); err != nil {
		return models.Problem{}, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
	}

	var wire wireProblem
	if err := json.Unmarshal(raw, &wire); err != nil {
		return models.Problem{}, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
	}
	return convertProblem(wire)
}

func convertProblem(wire wireProblem) (models.Problem, error) {
	difficulty, err := models.ParseDifficulty(wire.Difficulty)
	if err != nil {
		return models.Problem{}, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
	}
	tag, err := models.ParseTag(wire.Tags)
	if err != nil {
		return models.Problem{}, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
	}

	problem := models.Problem{
		ID:          wire.ID,
		Title:       wire.Title,
		Description: wire.Description,
		Difficulty:  difficulty,
		Tag:         tag,
	}

	for _, tc := range wire.VisibleTestCases {
		problem.VisibleTestCases = append(problem.VisibleTestCases, models.VisibleTestCase{
			Input:       tc.Input,
			Output:      tc.Output,
			Explanation: tc.Explanation,
		})
	}
	for _, tc := range wire.HiddenTestCases {
		problem.HiddenTestCases = append(problem.HiddenTestCases, models.HiddenTestCase{Input: tc.Input, Output: tc.Output})
	}
	for _, sc := range wire.StarterCode {
		lang, err := models.ParseLanguageName(sc.Language)
		if err != nil {
			return models.Problem{}, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
		}
		problem.StarterCode = append(problem.StarterCode, models.StarterCode{Language: lang, Code: sc.Code})
	}
	for _, rs := range wire.ReferenceSolution {
		lang, err := models.ParseLanguageName(rs.Language)
		if err != nil {
			return models.Problem{}, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
		}
		problem.ReferenceSolutions = append(problem.ReferenceSolutions, models.ReferenceSolution{Language: lang, CompleteCode: rs.CompleteCode})
	}

	return problem, nil
}

// ListProblems returns the catalog of all problems.
func (c *Client) ListProblems(ctx context.Context) ([]models.ProblemSummary, error) {
	var env envelope
	if err := c.do(ctx, "list_problems", http.MethodGet, "/problems/getAllProblems", nil, &env); err != nil {
		return nil, err
	}

	var data struct {
		AllProblems []wireSummary `json:"allProblems"`
	}
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}

	summaries := make([]models.ProblemSummary, 0, len(data.AllProblems))
	for _, item := range data.AllProblems {
		difficulty, err := models.ParseDifficulty(item.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("%w: problem %s: %v", ErrInvalidProblem, item.ID, err)
		}
		tag, err := models.ParseTag(item.Tags)
		if err != nil {
			return nil, fmt.Errorf("%w: problem %s: %v", ErrInvalidProblem, item.ID, err)
		}
		summaries = append(summaries, models.ProblemSummary{
			ID:         item.ID,
			Title:      item.Title,
			Difficulty: difficulty,
			Tag:        tag,
		})
	}
	return summaries, nil
}

// SolvedProblemIDs returns the identifiers of the problems the session owner has solved.
func (c *Client) SolvedProblemIDs(ctx context.Context) ([]string, error) {
	if !c.HasSession() {
		return nil, ErrUnauthorized
	}

	var env envelope
	if err := c.do(ctx, "list_solved", http.MethodGet, "/problems/getAllProblemsSolvedByUser", nil, &env); err != nil {
		return nil, err
	}

	var data struct {
		ProblemsSolved []struct {
			ID string `json:"_id"`
		} `json:"problemsSolved"`
	}
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(data.ProblemsSolved))
	for _, item := range data.ProblemsSolved {
		if item.ID != "" {
			ids = append(ids, item.ID)
		}
	}
	return ids, nil
}
