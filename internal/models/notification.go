package models

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationReaction      NotificationType = "reaction"
	NotificationComment       NotificationType = "comment"
	NotificationMention       NotificationType = "mention"
	NotificationFollow        NotificationType = "follow"
	NotificationChat          NotificationType = "chat"
	NotificationCompanionPost NotificationType = "companion-post"
)

// Notification records a companion-originated event. Only Read changes after
// creation; SenderName is a snapshot.
type Notification struct {
	ID         string           `json:"id"`
	Type       NotificationType `json:"type"`
	SenderID   string           `json:"senderId"`
	SenderName string           `json:"senderName"`
	Content    string           `json:"content"`
	PostID     string           `json:"postId,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	Read       bool             `json:"read"`
}

func (n Notification) HasPost() bool { return n.PostID != "" }

// Message renders the notification for a single-entry display.
func (n Notification) Message() string {
	switch n.Type {
	case NotificationReaction:
		return fmt.Sprintf("%s reacted %s to your post", n.SenderName, n.Content)
	case NotificationComment:
		return fmt.Sprintf("%s commented: %s", n.SenderName, n.Content)
	case NotificationMention:
		return fmt.Sprintf("%s mentioned you: %s", n.SenderName, n.Content)
	case NotificationFollow:
		return fmt.Sprintf("%s started following you", n.SenderName)
	case NotificationChat:
		return fmt.Sprintf("%s: %s", n.SenderName, n.Content)
	case NotificationCompanionPost:
		return fmt.Sprintf("%s posted: %s", n.SenderName, n.Content)
	default:
		return n.Content
	}
}

// GroupedNotification is a read-time view over notifications sharing a type
// and related post. It is never persisted.
type GroupedNotification struct {
	Type     NotificationType `json:"type"`
	PostID   string           `json:"postId,omitempty"`
	Members  []Notification   `json:"members"`
	LatestAt time.Time        `json:"latestAt"`
}

// ID is the id of the most recent member.
func (g GroupedNotification) ID() string {
	if len(g.Members) == 0 {
		return ""
	}
	return g.Members[0].ID
}

func (g GroupedNotification) IsRead() bool {
	for _, n := range g.Members {
		if !n.Read {
			return false
		}
	}
	return true
}

func (g GroupedNotification) MemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, n := range g.Members {
		ids = append(ids, n.ID)
	}
	return ids
}
