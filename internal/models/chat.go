package models

import "time"

type Sender string

const (
	SenderUser      Sender = "user"
	SenderCompanion Sender = "companion"
)

type Message struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Sender  Sender `json:"sender"`
	// CompanionID is empty for user messages.
	CompanionID string    `json:"companionId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Read        bool      `json:"read"`
}

func (m Message) FromCompanion() bool { return m.Sender == SenderCompanion }

// ChatRoom is the private thread with one companion. UnreadCount always
// equals the number of unread companion messages.
type ChatRoom struct {
	CompanionID   string    `json:"companionId"`
	Messages      []Message `json:"messages"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   int       `json:"unreadCount"`
}

func NewChatRoom(companionID string) ChatRoom {
	return ChatRoom{CompanionID: companionID, Messages: []Message{}}
}

func (r *ChatRoom) AddMessage(m Message) {
	r.Messages = append(r.Messages, m)
	if m.CreatedAt.After(r.LastMessageAt) {
		r.LastMessageAt = m.CreatedAt
	}
	r.recount()
}

func (r *ChatRoom) MarkAllRead() {
	for i := range r.Messages {
		r.Messages[i].Read = true
	}
	r.UnreadCount = 0
}

func (r *ChatRoom) LastMessage() (Message, bool) {
	if len(r.Messages) == 0 {
		return Message{}, false
	}
	return r.Messages[len(r.Messages)-1], true
}

// Normalize recomputes the cached fields after a load.
func (r *ChatRoom) Normalize() {
	if r.Messages == nil {
		r.Messages = []Message{}
	}
	r.LastMessageAt = time.Time{}
	for _, m := range r.Messages {
		if m.CreatedAt.After(r.LastMessageAt) {
			r.LastMessageAt = m.CreatedAt
		}
	}
	r.recount()
}

func (r *ChatRoom) recount() {
	n := 0
	for _, m := range r.Messages {
		if m.FromCompanion() && !m.Read {
			n++
		}
	}
	r.UnreadCount = n
}
