package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAI completes prompts against any OpenAI-compatible chat completions
// endpoint.
type OpenAI struct {
	client *resty.Client
	model  string
}

var _ Completer = (*OpenAI)(nil)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAI returns ErrNotConfigured when apiKey is empty.
func NewOpenAI(apiKey, baseURL, model string) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(30*time.Second).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &OpenAI{client: client, model: model}, nil
}

func (o *OpenAI) Close() error {
	return o.client.Close()
}

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	var out chatResponse
	resp, err := o.client.R().
		WithContext(ctx).
		SetBody(chatRequest{
			Model:       o.model,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			MaxTokens:   200,
			Temperature: 0.9,
		}).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: status %d", classify(resp.StatusCode(), resp.String()), resp.StatusCode())
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
