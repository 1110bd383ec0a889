// Package aitest serves canned chat completions for every model role so that whole processes can be tested
// without a model provider.
package aitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/myrjola/whodunit/internal/game/gametest"
	"github.com/sashabaranov/go-openai"
)

const (
	SuspectAnswer = gametest.DefaultAnswer
	RevisedAnswer = "I would rather not discuss that."
	Narrative     = "CASE RESOLUTION: the detective unmasked the killer."
)

// Questions are handed out by the planner in order. They are distinct enough to pass duplicate detection.
var Questions = []string{
	"Where were you when the clock struck eleven?",
	"Who inherits the estate after the funeral?",
	"Did anybody visit the library that evening?",
	"What did you argue about with the butler?",
	"Why was the garden door left unlocked?",
	"When did you last speak with Victor?",
	"Which guests stayed overnight at the mansion?",
	"How long have you known the family doctor?",
	"What were the debts mentioned in the ledger?",
	"Who telephoned the house before midnight?",
	"Where did the missing letters disappear?",
	"What frightened the maid on the staircase?",
}

// Server is a fake OpenAI compatible endpoint. The role of a request is recognised from its system message.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	planned  int
	requests []openai.ChatCompletionRequest
}

// NewServer starts a Server. Close it when done.
func NewServer() *Server {
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(s.complete))
	return s
}

// BaseURL is the value for the OpenAI base URL setting.
func (s *Server) BaseURL() string {
	return s.URL + "/v1"
}

// Requests returns the received chat completion requests.
func (s *Server) Requests() []openai.ChatCompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]openai.ChatCompletionRequest(nil), s.requests...)
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}
	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	system := ""
	if len(req.Messages) > 0 {
		system = req.Messages[0].Content
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	var reply string
	switch {
	case strings.HasPrefix(system, "You are the CRITIQUE AND REVISION"):
		reply = RevisedAnswer
	case strings.HasPrefix(system, "You are a brilliant, methodical detective"):
		reply = Questions[s.planned%len(Questions)]
		s.planned++
	case strings.HasPrefix(system, "You are an expert detective"):
		reply = gametest.CorrectDeduction
	case strings.HasPrefix(system, "You are the CASE RESOLUTION JUDGE"):
		reply = Narrative
	default:
		reply = SuspectAnswer
	}
	s.mu.Unlock()

	resp := openai.ChatCompletionResponse{
		Model: req.Model,
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
		}},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
