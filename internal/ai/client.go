// Package ai talks to an OpenAI compatible chat completion endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"log/slog"
	"strings"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/sashabaranov/go-openai"
)

const MaxTokens = 1024

var ErrEmptyCompletion = errors.NewSentinel("completion has no choices")

// Client is shared by every responder of a process.
type Client struct {
	client *openai.Client
}

// NewClient creates a client. An empty baseURL uses the OpenAI API, anything else points to an OpenAI compatible
// endpoint such as Groq.
func NewClient(apiKey, baseURL string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
	}
}

// SyncCompletion requests a single chat completion and returns the content of its first choice.
func (c *Client) SyncCompletion(ctx context.Context, model string, messages []openai.ChatCompletionMessage) (string, error) {
	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     model,
			MaxTokens: MaxTokens,
			Messages:  messages,
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion", slog.String("model", model))
	}
	if len(completion.Choices) == 0 {
		return "", errors.Wrap(ErrEmptyCompletion, "read completion", slog.String("model", model))
	}
	return completion.Choices[0].Message.Content, nil
}

// GenerateImage creates a square PNG image from prompt.
func (c *Client) GenerateImage(ctx context.Context, model, prompt string) (image.Image, error) {
	response, err := c.client.CreateImage(ctx, openai.ImageRequest{ //nolint:exhaustruct // this is better for readability
		Model:          model,
		Prompt:         prompt,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create image", slog.String("model", model))
	}
	if len(response.Data) == 0 {
		return nil, errors.Wrap(ErrEmptyCompletion, "read image", slog.String("model", model))
	}
	imgBytes, err := base64.StdEncoding.DecodeString(response.Data[0].B64JSON)
	if err != nil {
		return nil, errors.Wrap(err, "decode base64")
	}
	img, err := png.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, errors.Wrap(err, "decode png")
	}
	return img, nil
}

// Responder is one model role: fixed system instructions sent with every prompt.
type Responder struct {
	client       *Client
	model        string
	instructions string
}

// NewResponder creates a responder for one role.
func (c *Client) NewResponder(model, instructions string) *Responder {
	return &Responder{
		client:       c,
		model:        model,
		instructions: instructions,
	}
}

// Respond sends prompt as the user message and returns the trimmed reply.
func (r *Responder) Respond(ctx context.Context, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: r.instructions},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}
	reply, err := r.client.SyncCompletion(ctx, r.model, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
