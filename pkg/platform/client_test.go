package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codecraft-workspace/internal/models"
)

const problemJSON = `{
	"_id": "p1",
	"title": "Sum of Two",
	"description": "Add two integers.",
	"difficulty": "easy",
	"tags": "array",
	"visibleTestCases": [{"input": "2 3", "output": "5", "explanation": "2 + 3"}],
	"hiddenTestCases": [{"input": "1 1", "output": "2"}],
	"starterCode": [
		{"language": "JavaScript", "code": "function sum(a, b) {}"},
		{"language": "Java", "code": "class Solution {}"},
		{"language": "C++", "code": "int sum(int a, int b) {}"}
	],
	"referenceSolution": [{"language": "JavaScript", "completeCode": "function sum(a, b) { return a + b }"}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL + "/", Logger: zerolog.Nop()})
	require.NoError(t, err)
	return client
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "  "})
	require.Error(t, err)
}

func TestProblemByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/problems/problemByID/p1", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"problemRequested":` + problemJSON + `}}`))
	})

	problem, err := client.ProblemByID(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "p1", problem.ID)
	require.Equal(t, models.DifficultyEasy, problem.Difficulty)
	require.Equal(t, models.TagArray, problem.Tag)
	require.Len(t, problem.VisibleTestCases, 1)
	require.Len(t, problem.HiddenTestCases, 1)

	code, ok := problem.StarterCodeFor(models.LanguageCPP)
	require.True(t, ok)
	require.Equal(t, "int sum(int a, int b) {}", code)
	require.Equal(t, models.LanguageJavaScript, problem.ReferenceSolutions[0].Language)
}

func TestProblemByIDRejectsInvalidPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"problemRequested":{"_id":"p1","title":"x","description":"","difficulty":"extreme","tags":"array","visibleTestCases":[],"starterCode":[]}}}`))
	})

	_, err := client.ProblemByID(context.Background(), "p1")
	require.ErrorIs(t, err, ErrInvalidProblem)
}

func TestProblemByIDStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		target error
	}{
		{name: "not found", status: http.StatusNotFound, target: ErrNotFound},
		{name: "unauthorized", status: http.StatusUnauthorized, target: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, target: ErrUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			})
			_, err := client.ProblemByID(context.Background(), "p1")
			require.ErrorIs(t, err, tc.target)
		})
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream down"}`))
	})
	_, err := client.ProblemByID(context.Background(), "p1")
	var status *StatusError
	require.True(t, errors.As(err, &status))
	require.Equal(t, http.StatusBadGateway, status.StatusCode)
	require.Equal(t, "upstream down", status.Message)
}

func TestProblemByIDNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := New(Config{BaseURL: url})
	require.NoError(t, err)

	_, err = client.ProblemByID(context.Background(), "p1")
	require.ErrorIs(t, err, ErrNetwork)
}

func TestListProblemsAndSolved(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/problems/getAllProblems":
			_, _ = w.Write([]byte(`{"data":{"allProblems":[
				{"_id":"p1","title":"Sum","difficulty":"easy","tags":"array"},
				{"_id":"p2","title":"Paths","difficulty":"hard","tags":"graph"}
			]}}`))
		case "/problems/getAllProblemsSolvedByUser":
			cookie, err := r.Cookie("token")
			require.NoError(t, err)
			require.Equal(t, "jwt-abc", cookie.Value)
			_, _ = w.Write([]byte(`{"data":{"problemsSolved":[{"_id":"p2"}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	summaries, err := client.ListProblems(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, models.TagGraph, summaries[1].Tag)

	_, err = client.SolvedProblemIDs(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)

	ids, err := client.WithSession("jwt-abc").SolvedProblemIDs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"p2"}, ids)
	require.False(t, client.HasSession())
}

func TestRunMapsTestCases(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/submissions/run/p1", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "cpp", body["language"])
		require.Equal(t, "int main(){}", body["code"])

		_, _ = w.Write([]byte(`{"data":{"success":true,"runtime":"0.012","memory":1024,"testCases":[
			{"status_id":3,"stdin":"2 3","expected_output":"5","stdout":"5"},
			{"status_id":4,"stdin":"1 1","expected_output":"2","stdout":"3"}
		]}}`))
	})

	result, err := client.Run(context.Background(), "p1", models.LanguageCPP, "int main(){}")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.InDelta(t, 0.012, result.Runtime, 1e-9)
	require.InDelta(t, 1024, result.MemoryKB, 1e-9)
	require.Len(t, result.TestCases, 2)
	require.True(t, result.TestCases[0].Passed())
	require.False(t, result.TestCases[1].Passed())
	require.Equal(t, "3", result.TestCases[1].ActualOutput)
}

func TestSubmitDecodesResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/submissions/submit/p1", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"accepted":false,"error":"Wrong Answer","passedTestCases":3,"totalTestCases":5,"runtime":null,"memory":"2048"}}`))
	})

	result, err := client.Submit(context.Background(), "p1", models.LanguageJava, "class S{}")
	require.NoError(t, err)
	require.False(t, result.Accepted)
	require.Equal(t, "Wrong Answer", result.Header())
	require.Equal(t, 3, result.PassedTestCases)
	require.Equal(t, 5, result.TotalTestCases)
	require.Zero(t, result.Runtime)
	require.InDelta(t, 2048, result.MemoryKB, 1e-9)
}

func TestReplySendsConversation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ai/chat", r.URL.Path)

		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 2)
		require.Equal(t, "model", body.Messages[0].Role)
		require.Equal(t, "user", body.Messages[1].Role)
		require.Equal(t, "Sum of Two", body.Title)
		require.Equal(t, "JavaScript", body.StartCode[0].Language)
		require.Equal(t, "2 3", body.TestCases[0].Input)

		_, _ = w.Write([]byte(`{"message":"Consider the edge cases."}`))
	})

	history := models.Transcript{
		models.NewChatMessage(models.ChatRoleAssistant, "Hi, How are you"),
		models.NewChatMessage(models.ChatRoleUser, "I am Good"),
	}
	ctxProblem := models.ChatContext{
		Title:       "Sum of Two",
		TestCases:   []models.VisibleTestCase{{Input: "2 3", Output: "5"}},
		StarterCode: []models.StarterCode{{Language: models.LanguageJavaScript, Code: "function f(){}"}},
	}

	turn := models.ChatTurn{Previous: history, Question: models.NewChatMessage(models.ChatRoleUser, "Where do I start?")}
	reply, err := client.Reply(context.Background(), turn, ctxProblem)
	require.NoError(t, err)
	require.Equal(t, "Consider the edge cases.", reply)
}

func TestReplyIncludesQuestionWhenRequested(t *testing.T) {
	var received chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"message":"Sort first."}`))
	})

	turn := models.ChatTurn{
		Previous:        models.Transcript{models.NewChatMessage(models.ChatRoleAssistant, "Hi, How are you")},
		Question:        models.NewChatMessage(models.ChatRoleUser, "Is sorting needed?"),
		IncludeQuestion: true,
	}
	_, err := client.Reply(context.Background(), turn, models.ChatContext{Title: "Sum of Two"})
	require.NoError(t, err)

	require.Len(t, received.Messages, 2)
	require.Equal(t, "user", received.Messages[1].Role)
	require.Equal(t, "Is sorting needed?", received.Messages[1].Parts[0].Text)
}

func TestReplyEmptyMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"   "}`))
	})

	_, err := client.Reply(context.Background(), models.ChatTurn{}, models.ChatContext{})
	require.ErrorIs(t, err, ErrEmptyReply)
}
