package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini completes prompts with Google's Gemini API, walking a list of
// models and skipping ones that hit their per-minute budget.
type Gemini struct {
	client *genai.Client
	models []geminiModel

	mu          sync.Mutex
	minuteCount map[string]int
	windowStart time.Time
}

type geminiModel struct {
	Name string
	RPM  int
}

var _ Completer = (*Gemini)(nil)

// NewGemini returns ErrNotConfigured when apiKey is empty.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	models := []geminiModel{{Name: model, RPM: 10}}
	if model != "gemini-2.5-flash-lite" {
		models = append(models, geminiModel{Name: "gemini-2.5-flash-lite", RPM: 15})
	}
	return &Gemini{
		client:      client,
		models:      models,
		minuteCount: make(map[string]int),
		windowStart: time.Now(),
	}, nil
}

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	lastErr := ErrRateLimited
	for _, m := range g.models {
		if !g.reserve(m) {
			continue
		}
		result, err := g.client.Models.GenerateContent(ctx, m.Name, genai.Text(prompt), nil)
		if err != nil {
			kind := classify(0, err.Error())
			if kind == ErrRateLimited || strings.Contains(strings.ToLower(err.Error()), "not found") {
				lastErr = fmt.Errorf("%w: %s: %v", kind, m.Name, err)
				continue
			}
			return "", fmt.Errorf("%w: %v", kind, err)
		}
		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil &&
			len(result.Candidates[0].Content.Parts) > 0 {
			if text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text); text != "" {
				return text, nil
			}
		}
		return "", ErrEmptyResponse
	}
	return "", lastErr
}

func (g *Gemini) reserve(m geminiModel) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if time.Since(g.windowStart) >= time.Minute {
		g.minuteCount = make(map[string]int)
		g.windowStart = time.Now()
	}
	if g.minuteCount[m.Name] >= m.RPM {
		return false
	}
	g.minuteCount[m.Name]++
	return true
}
