package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"local.dev/oshi-engine/internal/models"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

func TestGroupReactionsOnSamePost(t *testing.T) {
	t.Parallel()

	in := []models.Notification{
		{ID: "r1", Type: models.NotificationReaction, SenderName: "Ren", Content: "❤️", PostID: "p1", CreatedAt: at(1)},
		{ID: "c1", Type: models.NotificationComment, SenderName: "Mio", Content: "nice", PostID: "p2", CreatedAt: at(2)},
		{ID: "r2", Type: models.NotificationReaction, SenderName: "Mio", Content: "✨", PostID: "p1", CreatedAt: at(3)},
		{ID: "r3", Type: models.NotificationReaction, SenderName: "Sora", Content: "👍", PostID: "p1", CreatedAt: at(4)},
	}

	groups := Group(in)
	require.Len(t, groups, 2)

	reactions := groups[0]
	assert.Equal(t, models.NotificationReaction, reactions.Type)
	assert.Equal(t, "p1", reactions.PostID)
	assert.Equal(t, []string{"r3", "r2", "r1"}, reactions.MemberIDs())
	assert.Equal(t, at(4), reactions.LatestAt)
	assert.Equal(t, "r3", reactions.ID())
	assert.Equal(t, "Sora and 2 others reacted to your post", Message(reactions))

	assert.Equal(t, []string{"c1"}, groups[1].MemberIDs())
	assert.Equal(t, "Mio commented: nice", Message(groups[1]))

	assert.False(t, reactions.IsRead())
	assert.Equal(t, 3, MarkRead(in, reactions.MemberIDs()...))
	for _, n := range in {
		if n.Type == models.NotificationReaction {
			assert.True(t, n.Read, n.ID)
		} else {
			assert.False(t, n.Read, n.ID)
		}
	}
	assert.True(t, Group(in)[0].IsRead())
}

func TestGroupKeepsOtherTypesAsSingletons(t *testing.T) {
	t.Parallel()

	in := []models.Notification{
		{ID: "a", Type: models.NotificationChat, SenderName: "Ren", Content: "hi", CreatedAt: at(1)},
		{ID: "b", Type: models.NotificationChat, SenderName: "Ren", Content: "still there?", CreatedAt: at(2)},
		{ID: "c", Type: models.NotificationCompanionPost, SenderName: "Ren", Content: "sunset", PostID: "p9", CreatedAt: at(3)},
		{ID: "d", Type: models.NotificationReaction, SenderName: "Ren", Content: "❤️", CreatedAt: at(4)},
	}

	groups := Group(in)
	require.Len(t, groups, 4)
	assert.Equal(t, []string{"d", "c", "b", "a"}, []string{groups[0].ID(), groups[1].ID(), groups[2].ID(), groups[3].ID()})
	assert.Equal(t, "Ren: still there?", Message(groups[2]))
}

func TestGroupSameTypeDifferentPosts(t *testing.T) {
	t.Parallel()

	in := []models.Notification{
		{ID: "1", Type: models.NotificationComment, SenderName: "A", PostID: "p1", CreatedAt: at(1)},
		{ID: "2", Type: models.NotificationComment, SenderName: "B", PostID: "p2", CreatedAt: at(2)},
		{ID: "3", Type: models.NotificationComment, SenderName: "C", PostID: "p1", CreatedAt: at(3)},
	}

	groups := Group(in)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"3", "1"}, groups[0].MemberIDs())
	assert.Equal(t, "C and A commented on your post", Message(groups[0]))
	assert.Equal(t, []string{"2"}, groups[1].MemberIDs())
}

func TestGroupDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	in := []models.Notification{
		{ID: "old", Type: models.NotificationFollow, CreatedAt: at(1)},
		{ID: "new", Type: models.NotificationFollow, CreatedAt: at(2)},
	}
	_ = Group(in)
	assert.Equal(t, "old", in[0].ID)
	assert.Empty(t, Group(nil))
}

func TestMessageFallsBackToFirstMember(t *testing.T) {
	t.Parallel()

	g := models.GroupedNotification{
		Type: models.NotificationFollow,
		Members: []models.Notification{
			{ID: "1", Type: models.NotificationFollow, SenderName: "Ren"},
			{ID: "2", Type: models.NotificationFollow, SenderName: "Mio"},
		},
	}
	assert.Equal(t, "Ren started following you", Message(g))
	assert.Empty(t, Message(models.GroupedNotification{}))
}

func TestFilterAndUnreadCount(t *testing.T) {
	t.Parallel()

	in := []models.Notification{
		{ID: "1", Type: models.NotificationChat},
		{ID: "2", Type: models.NotificationReaction, Read: true},
		{ID: "3", Type: models.NotificationChat, Read: true},
	}
	assert.Len(t, Filter(in, ""), 3)
	assert.Len(t, Filter(in, models.NotificationChat), 2)
	assert.Empty(t, Filter(in, models.NotificationMention))
	assert.Equal(t, 1, UnreadCount(in))
	assert.Equal(t, 0, MarkRead(in, "2", "missing"))
}
