package engine

import (
	"context"
	"slices"
	"strings"
	"time"

	"local.dev/oshi-engine/internal/generator"
	"local.dev/oshi-engine/internal/models"
)

// SendMessage appends the user's message to the companion's room and
// schedules the companion's reply. When viewing is true the user has the
// room open: the reply arrives already read and no chat notification is
// emitted.
func (e *Engine) SendMessage(ctx context.Context, companionID, content string, viewing bool) (models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, ErrEmptyMessage
	}

	e.mu.Lock()
	c, _ := e.companionLocked(companionID)
	if c == nil {
		e.mu.Unlock()
		return models.Message{}, ErrCompanionNotFound
	}
	msg := models.Message{
		ID:        e.newID(),
		Content:   content,
		Sender:    models.SenderUser,
		CreatedAt: e.now(),
		Read:      true,
	}
	e.roomLocked(companionID).AddMessage(msg)
	c.IncreaseIntimacy(ChatIncrement, msg.CreatedAt)
	updated := cloneCompanion(*c)
	e.sched.After(e.delay(ReplyDelay), func() { e.deliverReply(companionID, content, viewing) })
	e.mu.Unlock()

	return msg, e.companionWrite(companionID, func() error {
		return syncErr(
			e.store.AppendMessage(ctx, companionID, msg),
			e.store.SaveCompanion(ctx, updated),
		)
	})
}

func (e *Engine) deliverReply(companionID, text string, viewing bool) {
	e.mu.Lock()
	c, _ := e.companionLocked(companionID)
	if c == nil {
		e.mu.Unlock()
		return
	}
	author := cloneCompanion(*c)
	history := slices.Clone(e.roomLocked(companionID).Messages)
	e.mu.Unlock()

	reply := e.gen.Generate(background(), generator.KindChatReply, author, generator.Context{
		Message: text,
		Mood:    e.mood.Classify(text),
		History: history,
	})
	e.appendCompanionMessage(companionID, reply, viewing, !viewing)
}

// deliverGreeting sends one generated greeting into the companion's room.
func (e *Engine) deliverGreeting(companionID string, kind generator.Kind, notify bool) {
	e.mu.Lock()
	c, _ := e.companionLocked(companionID)
	if c == nil {
		e.mu.Unlock()
		return
	}
	author := cloneCompanion(*c)
	e.mu.Unlock()

	text := e.gen.Generate(background(), kind, author, generator.Context{})
	e.appendCompanionMessage(companionID, text, false, notify)
}

// appendCompanionMessage stores a companion message and persists it. It
// reports false when the companion is gone.
func (e *Engine) appendCompanionMessage(companionID, text string, read, notify bool) bool {
	e.mu.Lock()
	c, _ := e.companionLocked(companionID)
	if c == nil {
		e.mu.Unlock()
		return false
	}
	msg := models.Message{
		ID:          e.newID(),
		Content:     text,
		Sender:      models.SenderCompanion,
		CompanionID: companionID,
		CreatedAt:   e.now(),
		Read:        read,
	}
	e.roomLocked(companionID).AddMessage(msg)
	if notify {
		e.notifyLocked(models.NotificationChat, *c, text, "")
	}
	e.mu.Unlock()

	chatReplies.Inc()
	e.logSync("append_message", e.companionWrite(companionID, func() error {
		return e.store.AppendMessage(background(), companionID, msg)
	}), "companion", companionID)
	return true
}

// MarkChatRead marks every message in the companion's room read.
func (e *Engine) MarkChatRead(ctx context.Context, companionID string) error {
	e.mu.Lock()
	room, ok := e.rooms[companionID]
	if !ok {
		e.mu.Unlock()
		return ErrCompanionNotFound
	}
	room.MarkAllRead()
	e.mu.Unlock()

	return e.companionWrite(companionID, func() error {
		return syncErr(e.store.MarkRoomRead(ctx, companionID))
	})
}

// ChatRooms returns every room, most recent activity first.
func (e *Engine) ChatRooms() []models.ChatRoom {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.ChatRoom, 0, len(e.rooms))
	for _, r := range e.rooms {
		out = append(out, cloneRoom(*r))
	}
	slices.SortFunc(out, func(a, b models.ChatRoom) int {
		if c := b.LastMessageAt.Compare(a.LastMessageAt); c != 0 {
			return c
		}
		return strings.Compare(a.CompanionID, b.CompanionID)
	})
	return out
}

func (e *Engine) ChatRoom(companionID string) (models.ChatRoom, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.rooms[companionID]
	if !ok {
		return models.ChatRoom{}, false
	}
	return cloneRoom(*r), true
}

// ===== proactive greetings =====

type proactive struct {
	companion models.Companion
	kind      generator.Kind
}

// Proactive windows, in the location of the time passed to
// CheckProactiveMessages.
const (
	morningStartHour = 7
	morningEndHour   = 10
	nightStartHour   = 22
)

// CheckProactiveMessages lets close companions (intimacy at least
// ProactiveThreshold) greet the user. In the morning window a greeting is
// sent once per day, only if the room has nothing from today yet. In the
// night window one is sent on every call. It returns how many were sent.
func (e *Engine) CheckProactiveMessages(ctx context.Context, now time.Time) int {
	hour := now.Hour()
	var kind generator.Kind
	switch {
	case hour >= morningStartHour && hour < morningEndHour:
		kind = generator.KindMorningGreeting
	case hour >= nightStartHour:
		kind = generator.KindNightGreeting
	default:
		return 0
	}

	e.mu.Lock()
	var due []proactive
	for _, c := range e.companions {
		if c.Intimacy < ProactiveThreshold {
			continue
		}
		if kind == generator.KindMorningGreeting {
			if last, ok := e.roomLocked(c.ID).LastMessage(); ok && sameDay(last.CreatedAt, now) {
				continue
			}
		}
		due = append(due, proactive{companion: cloneCompanion(c), kind: kind})
	}
	e.mu.Unlock()

	sent := 0
	for _, p := range due {
		text := e.gen.Generate(ctx, p.kind, p.companion, generator.Context{})
		if e.appendCompanionMessage(p.companion.ID, text, false, true) {
			sent++
		}
	}
	if sent > 0 {
		e.logger.Info("proactive greetings sent", "kind", kind, "count", sent)
	}
	return sent
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
