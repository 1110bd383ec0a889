package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myrjola/whodunit/internal/ai"
	"github.com/myrjola/whodunit/internal/casefile"
	"github.com/myrjola/whodunit/internal/config"
	"github.com/myrjola/whodunit/internal/prompts"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func fakeCompletions(t *testing.T, choices []string, requests *[]openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*requests = append(*requests, req)

		resp := openai.ChatCompletionResponse{Model: req.Model}
		for i, c := range choices {
			resp.Choices = append(resp.Choices, openai.ChatCompletionChoice{
				Index:   i,
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: c},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestResponder_Respond(t *testing.T) {
	var requests []openai.ChatCompletionRequest
	server := fakeCompletions(t, []string{"  I was in the study.\n"}, &requests)

	client := ai.NewClient("test-key", server.URL+"/v1")
	responder := client.NewResponder("test-model", "You are Lydia.")

	reply, err := responder.Respond(context.Background(), "Where were you?")

	require.NoError(t, err)
	require.Equal(t, "I was in the study.", reply)
	require.Len(t, requests, 1)
	require.Equal(t, "test-model", requests[0].Model)
	messages := requests[0].Messages
	require.Len(t, messages, 2)
	require.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	require.Equal(t, "You are Lydia.", messages[0].Content)
	require.Equal(t, openai.ChatMessageRoleUser, messages[1].Role)
	require.Equal(t, "Where were you?", messages[1].Content)
}

func TestResponder_Respond_noChoices(t *testing.T) {
	var requests []openai.ChatCompletionRequest
	server := fakeCompletions(t, nil, &requests)

	responder := ai.NewClient("test-key", server.URL+"/v1").NewResponder("m", "i")
	_, err := responder.Respond(context.Background(), "q")

	require.ErrorIs(t, err, ai.ErrEmptyCompletion)
}

func TestResponder_Respond_serverError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited","type":"rate_limit"}}`, http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	responder := ai.NewClient("test-key", server.URL+"/v1").NewResponder("m", "i")
	_, err := responder.Respond(context.Background(), "q")

	require.Error(t, err)
}

func TestClient_GameResponders(t *testing.T) {
	var requests []openai.ChatCompletionRequest
	server := fakeCompletions(t, []string{"I was in the conservatory."}, &requests)
	c, err := casefile.Default()
	require.NoError(t, err)

	responders := ai.NewClient("test-key", server.URL+"/v1").GameResponders(c, config.Models{
		SuspectModel: "suspect-model",
		UtilityModel: "utility-model",
	})

	require.Len(t, responders.Suspects, len(c.SuspectIDs()))
	for _, id := range c.SuspectIDs() {
		require.NotNil(t, responders.Suspects[id], id)
	}
	require.NotNil(t, responders.Reviser)
	require.NotNil(t, responders.Planner)
	require.NotNil(t, responders.Deducer)
	require.NotNil(t, responders.Evaluator)

	_, err = responders.Suspects["s2"].Respond(context.Background(), "Where were you?")
	require.NoError(t, err)
	_, err = responders.Deducer.Respond(context.Background(), "transcript")
	require.NoError(t, err)

	require.Len(t, requests, 2)
	vale, _ := c.Suspect("s2")
	require.Equal(t, "suspect-model", requests[0].Model)
	require.Equal(t, prompts.SuspectInstructions(c, vale), requests[0].Messages[0].Content)
	require.Equal(t, "utility-model", requests[1].Model)
	require.Equal(t, prompts.DeducerInstructions(c), requests[1].Messages[0].Content)
}
