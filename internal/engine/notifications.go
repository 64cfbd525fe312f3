package engine

import (
	"slices"

	"local.dev/oshi-engine/internal/models"
	"local.dev/oshi-engine/internal/notify"
)

// Notifications returns notifications of typ (all when empty), newest
// first.
func (e *Engine) Notifications(typ models.NotificationType) []models.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(notify.Filter(e.notifications, typ))
}

// GroupedNotifications is the display view of Notifications.
func (e *Engine) GroupedNotifications(typ models.NotificationType) []models.GroupedNotification {
	return notify.Group(e.Notifications(typ))
}

func (e *Engine) UnreadNotifications() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return notify.UnreadCount(e.notifications)
}

// MarkNotificationsRead marks the given notifications read. Passing every
// member id of a group marks the group read.
func (e *Engine) MarkNotificationsRead(ids ...string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return notify.MarkRead(e.notifications, ids...)
}

func (e *Engine) MarkGroupRead(g models.GroupedNotification) int {
	return e.MarkNotificationsRead(g.MemberIDs()...)
}

func (e *Engine) MarkAllNotificationsRead() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for i := range e.notifications {
		if !e.notifications[i].Read {
			e.notifications[i].Read = true
			n++
		}
	}
	return n
}

func (e *Engine) DeleteNotification(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := slices.IndexFunc(e.notifications, func(n models.Notification) bool { return n.ID == id })
	if i < 0 {
		return ErrNotificationNotFound
	}
	e.notifications = slices.Delete(e.notifications, i, i+1)
	return nil
}

func (e *Engine) ClearNotifications() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifications = nil
}
