// Package notify turns the flat notification stream into display groups.
package notify

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"local.dev/oshi-engine/internal/models"
)

// Groupable reports whether n can share a group with other notifications.
func Groupable(n models.Notification) bool {
	return (n.Type == models.NotificationReaction || n.Type == models.NotificationComment) && n.HasPost()
}

type groupKey struct {
	typ    models.NotificationType
	postID string
}

// Group sorts notifications newest first and collapses reactions and comments
// on the same post into one group each. Everything else stays a singleton.
// The input slice is not modified.
func Group(notifications []models.Notification) []models.GroupedNotification {
	sorted := slices.Clone(notifications)
	slices.SortStableFunc(sorted, func(a, b models.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	placed := make([]bool, len(sorted))
	groups := make([]models.GroupedNotification, 0, len(sorted))
	for i, n := range sorted {
		if placed[i] {
			continue
		}
		placed[i] = true
		g := models.GroupedNotification{
			Type:     n.Type,
			PostID:   n.PostID,
			Members:  []models.Notification{n},
			LatestAt: n.CreatedAt,
		}
		if Groupable(n) {
			key := groupKey{n.Type, n.PostID}
			for j := i + 1; j < len(sorted); j++ {
				if placed[j] || (groupKey{sorted[j].Type, sorted[j].PostID}) != key {
					continue
				}
				placed[j] = true
				g.Members = append(g.Members, sorted[j])
				if sorted[j].CreatedAt.After(g.LatestAt) {
					g.LatestAt = sorted[j].CreatedAt
				}
			}
		}
		groups = append(groups, g)
	}

	slices.SortStableFunc(groups, func(a, b models.GroupedNotification) int {
		return b.LatestAt.Compare(a.LatestAt)
	})
	return groups
}

// Message renders the display line for a group.
func Message(g models.GroupedNotification) string {
	if len(g.Members) == 0 {
		return ""
	}
	first := g.Members[0]
	verb, ok := verbs[g.Type]
	if !ok || len(g.Members) == 1 {
		return first.Message()
	}
	if len(g.Members) == 2 {
		return fmt.Sprintf("%s and %s %s your post", first.SenderName, g.Members[1].SenderName, verb)
	}
	return fmt.Sprintf("%s and %d others %s your post", first.SenderName, len(g.Members)-1, verb)
}

var verbs = map[models.NotificationType]string{
	models.NotificationReaction: "reacted to",
	models.NotificationComment:  "commented on",
}

// Filter keeps notifications of the given type; an empty type keeps all.
func Filter(notifications []models.Notification, typ models.NotificationType) []models.Notification {
	if typ == "" {
		return notifications
	}
	return lo.Filter(notifications, func(n models.Notification, _ int) bool {
		return n.Type == typ
	})
}

// UnreadCount counts unread notifications.
func UnreadCount(notifications []models.Notification) int {
	return lo.CountBy(notifications, func(n models.Notification) bool { return !n.Read })
}

// MarkRead marks every notification whose id is in ids as read and returns
// how many changed.
func MarkRead(notifications []models.Notification, ids ...string) int {
	want := lo.SliceToMap(ids, func(id string) (string, struct{}) { return id, struct{}{} })
	changed := 0
	for i := range notifications {
		if _, ok := want[notifications[i].ID]; ok && !notifications[i].Read {
			notifications[i].Read = true
			changed++
		}
	}
	return changed
}
