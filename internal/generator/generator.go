// Package generator produces the text companions say: comments, chat
// replies, autonomous posts and greetings.
package generator

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"local.dev/oshi-engine/internal/models"
	"local.dev/oshi-engine/internal/mood"
)

type Kind string

const (
	KindComment         Kind = "comment-on-post"
	KindChatReply       Kind = "chat-reply"
	KindAutonomousPost  Kind = "autonomous-post"
	KindMorningGreeting Kind = "morning-greeting"
	KindNightGreeting   Kind = "night-greeting"
	KindInitialGreeting Kind = "initial-greeting"
)

// NeutralReply is returned when no bucket has a candidate.
const NeutralReply = "I see."

// Context is whatever the caller knows about the situation.
type Context struct {
	PostContent string
	Message     string
	Mood        mood.Mood
	History     []models.Message
}

// Strategy turns a companion and a situation into text. Implementations
// never fail: they always return non-empty text.
type Strategy interface {
	Generate(ctx context.Context, kind Kind, c models.Companion, gc Context) string
}

// RuleBased picks from fixed candidate tables and applies the companion's
// speech style. It needs no network.
type RuleBased struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRuleBased(rng *rand.Rand) *RuleBased {
	return &RuleBased{rng: rng}
}

var _ Strategy = (*RuleBased)(nil)

func (g *RuleBased) Generate(_ context.Context, kind Kind, c models.Companion, gc Context) string {
	base := g.pick(candidates(kind, c, gc.Mood))
	base = personalize(base, c)
	return ApplyStyle(c.SpeechStyle, base)
}

func (g *RuleBased) pick(bucket []string) string {
	if len(bucket) == 0 {
		return NeutralReply
	}
	g.mu.Lock()
	i := g.rng.Intn(len(bucket))
	g.mu.Unlock()
	return bucket[i]
}

func candidates(kind Kind, c models.Companion, m mood.Mood) []string {
	switch kind {
	case KindComment, KindChatReply:
		return conversational(c.Personality, m)
	case KindAutonomousPost:
		if b, ok := postsByWorld[c.World]; ok {
			return b
		}
		return postsByWorld[models.WorldModern]
	case KindMorningGreeting:
		return greeting(morningGreetings, c.Relationship)
	case KindNightGreeting:
		return greeting(nightGreetings, c.Relationship)
	case KindInitialGreeting:
		return greeting(initialGreetings, c.Relationship)
	}
	return nil
}

func conversational(p models.Personality, m mood.Mood) []string {
	table, ok := replies[p]
	if !ok {
		table = replies[defaultPersonality]
	}
	if b, ok := table[m]; ok && len(b) > 0 {
		return b
	}
	return table[mood.Normal]
}

func greeting(table map[models.Relationship][]string, r models.Relationship) []string {
	if b, ok := table[r]; ok {
		return b
	}
	return table[models.RelationshipBestFriend]
}

func personalize(text string, c models.Companion) string {
	name := strings.TrimSpace(c.CallName)
	if name == "" {
		name = "you"
	}
	return strings.ReplaceAll(text, "{name}", name)
}
