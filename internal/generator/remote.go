package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"local.dev/oshi-engine/internal/llm"
	"local.dev/oshi-engine/internal/models"
)

const historyWindow = 10

// Remote asks a text-generation service first and falls back to another
// strategy (normally RuleBased) on any failure.
type Remote struct {
	client   llm.Completer
	fallback Strategy
	logger   *slog.Logger
}

var _ Strategy = (*Remote)(nil)

func NewRemote(client llm.Completer, fallback Strategy, logger *slog.Logger) *Remote {
	return &Remote{
		client:   client,
		fallback: fallback,
		logger:   logger.With("component", "generator.Remote"),
	}
}

func (r *Remote) Generate(ctx context.Context, kind Kind, c models.Companion, gc Context) string {
	text, err := r.client.Complete(ctx, BuildPrompt(kind, c, gc))
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			r.logger.Warn("remote generation failed, using fallback", "kind", kind, "companion", c.ID, "error", err)
		}
		return r.fallback.Generate(ctx, kind, c, gc)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return r.fallback.Generate(ctx, kind, c, gc)
	}
	return text
}

// BuildPrompt describes the companion's persona and the task for kind.
func BuildPrompt(kind Kind, c models.Companion, gc Context) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a virtual companion.\n", c.Name)
	fmt.Fprintf(&b, "Personality: %s\n", c.Personality)
	if c.SpeechCharacteristics != "" {
		fmt.Fprintf(&b, "Speech characteristics: %s\n", c.SpeechCharacteristics)
	}
	fmt.Fprintf(&b, "Speech style: %s\n", c.SpeechStyle)
	fmt.Fprintf(&b, "Relationship to the user: %s\n", c.Relationship)
	fmt.Fprintf(&b, "World: %s\n", c.World)
	if c.CallName != "" {
		fmt.Fprintf(&b, "Call the user %q.\n", c.CallName)
	}
	if len(c.NGTopics) > 0 {
		fmt.Fprintf(&b, "Avoid these topics: %s\n", strings.Join(c.NGTopics, ", "))
	}
	fmt.Fprintf(&b, "Closeness to the user (0-100): %d\n\n", c.Intimacy)

	switch kind {
	case KindComment:
		fmt.Fprintf(&b, "The user posted (mood: %s):\n%s\n\nWrite one short comment on the post.", gc.Mood, gc.PostContent)
	case KindChatReply:
		history := gc.History
		if len(history) > historyWindow {
			history = history[len(history)-historyWindow:]
		}
		b.WriteString("Conversation so far:\n")
		for _, m := range history {
			who := c.Name
			if !m.FromCompanion() {
				who = "User"
			}
			fmt.Fprintf(&b, "%s: %s\n", who, m.Content)
		}
		fmt.Fprintf(&b, "\nThe user's mood seems %s. Reply with one or two short sentences.", gc.Mood)
	case KindAutonomousPost:
		b.WriteString("Write a short social media post about your day in your world.")
	case KindMorningGreeting:
		b.WriteString("Send the user a short good-morning message.")
	case KindNightGreeting:
		b.WriteString("Send the user a short good-night message.")
	case KindInitialGreeting:
		b.WriteString("Introduce yourself to the user for the first time in one or two sentences.")
	default:
		b.WriteString("Say something short to the user.")
	}
	return b.String()
}
