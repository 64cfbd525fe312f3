package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"local.dev/oshi-engine/internal/models"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

var t0 = time.Unix(1_760_000_000, 0).UTC()

func TestChatRoomRoundTripKeepsOrderAndUnread(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	room := models.NewChatRoom("c1")
	const k = 7
	for i := 0; i < k; i++ {
		m := models.Message{ID: string(rune('a' + i)), Content: "m", CreatedAt: t0.Add(time.Duration(i) * time.Second)}
		if i%2 == 0 {
			m.Sender = models.SenderUser
			m.Read = true
		} else {
			m.Sender = models.SenderCompanion
			m.CompanionID = "c1"
			m.Read = i == 1
		}
		room.AddMessage(m)
	}
	require.Equal(t, 2, room.UnreadCount)
	require.NoError(t, s.SaveChatRoom(ctx, room))

	rooms, err := s.LoadChatRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	got := rooms[0]
	require.Len(t, got.Messages, k)
	for i, m := range got.Messages {
		assert.Equal(t, room.Messages[i].ID, m.ID)
		assert.Equal(t, room.Messages[i].CreatedAt, m.CreatedAt)
	}
	assert.Equal(t, 2, got.UnreadCount)
	assert.Equal(t, t0.Add(6*time.Second), got.LastMessageAt)
}

func TestAppendMessageAndMarkRoomRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	msg := models.Message{ID: "m1", Content: "hey", Sender: models.SenderCompanion, CompanionID: "c1", CreatedAt: t0}
	require.NoError(t, s.AppendMessage(ctx, "c1", msg))
	require.NoError(t, s.AppendMessage(ctx, "c1", msg))

	rooms, err := s.LoadChatRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Len(t, rooms[0].Messages, 1)
	assert.Equal(t, 1, rooms[0].UnreadCount)

	require.NoError(t, s.MarkRoomRead(ctx, "c1"))
	rooms, err = s.LoadChatRooms(ctx)
	require.NoError(t, err)
	assert.Zero(t, rooms[0].UnreadCount)
	assert.True(t, rooms[0].Messages[0].Read)
}

func TestCompanionRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	g := models.GenderFemale
	last := t0.Add(time.Hour)
	c := models.Companion{
		ID: "c1", Name: "Ren", Gender: &g, Personality: models.PersonalityCool,
		SpeechStyle: models.StyleCasual, Relationship: models.RelationshipLover, World: models.WorldIdol,
		NGTopics: []string{"work"}, Avatar: models.ImageAvatar("https://img/ren.png"),
		Intimacy: 42, TotalInteractions: 9, LastInteractionAt: &last, CreatedAt: t0,
	}
	other := models.Companion{ID: "c2", Name: "Mio", Avatar: models.ColorAvatar("pink"), CreatedAt: t0.Add(time.Minute)}
	require.NoError(t, s.SaveCompanion(ctx, other))
	require.NoError(t, s.SaveCompanion(ctx, c))

	got, err := s.LoadCompanions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, c, got[0])
	assert.Nil(t, got[1].Gender)
	assert.Nil(t, got[1].LastInteractionAt)
}

func TestLoadSkipsMalformedRecords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	raw := `{
	  "good": {"id":"good","name":"Ren","avatarKind":"color","avatarValue":"blue","createdAt":1760000000},
	  "noname": {"id":"noname","name":""},
	  "badkind": {"id":"badkind","name":"X","avatarKind":"hologram"},
	  "garbage": "not an object"
	}`
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, companionsFile), []byte(raw), 0o644))

	got, err := s.LoadCompanions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].ID)
}

func TestDeleteCompanionCascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	for _, id := range []string{"c1", "c2"} {
		require.NoError(t, s.SaveCompanion(ctx, models.Companion{ID: id, Name: id, CreatedAt: t0}))
		require.NoError(t, s.SaveChatRoom(ctx, models.NewChatRoom(id)))
		require.NoError(t, s.SavePost(ctx, models.Post{ID: "post-" + id, CompanionID: id, AuthorName: id, CreatedAt: t0}))
	}
	require.NoError(t, s.SavePost(ctx, models.Post{ID: "mine", IsUserPost: true, CreatedAt: t0}))

	require.NoError(t, s.DeleteCompanion(ctx, "c1"))

	companions, err := s.LoadCompanions(ctx)
	require.NoError(t, err)
	require.Len(t, companions, 1)
	assert.Equal(t, "c2", companions[0].ID)

	rooms, err := s.LoadChatRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "c2", rooms[0].CompanionID)

	posts, err := s.LoadPosts(ctx, 0)
	require.NoError(t, err)
	ids := []string{}
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"post-c2", "mine"}, ids)
}

func TestUpdatePostMerges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SavePost(ctx, models.Post{ID: "p1", IsUserPost: true, Content: "ramen", CreatedAt: t0}))

	require.NoError(t, s.UpdatePost(ctx, "p1", models.PostPatch{
		AddReactions: []models.Reaction{{ID: "r1", CompanionID: "c1", Emoji: "❤️", CreatedAt: t0}},
	}))
	require.NoError(t, s.UpdatePost(ctx, "p1", models.PostPatch{
		AddComments: []models.Comment{{ID: "k1", CompanionID: "c2", Text: "yum", CreatedAt: t0}},
	}))
	require.NoError(t, s.UpdatePost(ctx, "p1", models.PostPatch{
		AddReactions: []models.Reaction{{ID: "r2", CompanionID: "c1", Emoji: "😂", CreatedAt: t0}},
	}))

	posts, err := s.LoadPosts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Len(t, posts[0].Reactions, 1)
	assert.Equal(t, "r1", posts[0].Reactions[0].ID)
	assert.Len(t, posts[0].Comments, 1)

	err = s.UpdatePost(ctx, "missing", models.PostPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadPostsNewestFirstWithLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.SavePost(ctx, models.Post{
			ID: string(rune('a' + i)), IsUserPost: true, CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		}))
	}
	posts, err := s.LoadPosts(ctx, 3)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "e", posts[0].ID)
	assert.Equal(t, "c", posts[2].ID)
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.SavePost(ctx, models.Post{ID: "x"}), context.Canceled)
	_, err := s.LoadCompanions(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
