package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"local.dev/oshi-engine/internal/generator"
	"local.dev/oshi-engine/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memStore is an in-memory Store that can be told to fail.
type memStore struct {
	mu         sync.Mutex
	companions map[string]models.Companion
	posts      map[string]models.Post
	rooms      map[string]models.ChatRoom
	fail       error
	calls      []string

	// beforeUpdate runs at the start of UpdatePost, outside the store lock.
	beforeUpdate func(models.PostPatch)
}

func newMemStore() *memStore {
	return &memStore{
		companions: map[string]models.Companion{},
		posts:      map[string]models.Post{},
		rooms:      map[string]models.ChatRoom{},
	}
}

func (s *memStore) record(op string) error {
	s.calls = append(s.calls, op)
	return s.fail
}

func (s *memStore) setFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *memStore) SaveCompanion(_ context.Context, c models.Companion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("SaveCompanion"); err != nil {
		return err
	}
	s.companions[c.ID] = cloneCompanion(c)
	return nil
}

func (s *memStore) LoadCompanions(context.Context) ([]models.Companion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("LoadCompanions"); err != nil {
		return nil, err
	}
	out := []models.Companion{}
	for _, c := range s.companions {
		out = append(out, c)
	}
	return out, nil
}

func (s *memStore) DeleteCompanion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("DeleteCompanion"); err != nil {
		return err
	}
	delete(s.companions, id)
	delete(s.rooms, id)
	for pid, p := range s.posts {
		if p.AuthoredBy(id) {
			delete(s.posts, pid)
		}
	}
	return nil
}

func (s *memStore) SavePost(_ context.Context, p models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("SavePost"); err != nil {
		return err
	}
	s.posts[p.ID] = clonePost(p)
	return nil
}

func (s *memStore) LoadPosts(_ context.Context, limit int) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("LoadPosts"); err != nil {
		return nil, err
	}
	out := []models.Post{}
	for _, p := range s.posts {
		out = append(out, clonePost(p))
	}
	return out, nil
}

func (s *memStore) UpdatePost(_ context.Context, postID string, patch models.PostPatch) error {
	if s.beforeUpdate != nil {
		s.beforeUpdate(patch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("UpdatePost"); err != nil {
		return err
	}
	p, ok := s.posts[postID]
	if !ok {
		return fmt.Errorf("post %s missing", postID)
	}
	p.Apply(patch)
	s.posts[postID] = p
	return nil
}

func (s *memStore) SaveChatRoom(_ context.Context, room models.ChatRoom) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("SaveChatRoom"); err != nil {
		return err
	}
	s.rooms[room.CompanionID] = cloneRoom(room)
	return nil
}

func (s *memStore) LoadChatRooms(context.Context) ([]models.ChatRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("LoadChatRooms"); err != nil {
		return nil, err
	}
	out := []models.ChatRoom{}
	for _, r := range s.rooms {
		out = append(out, cloneRoom(r))
	}
	return out, nil
}

func (s *memStore) AppendMessage(_ context.Context, companionID string, m models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("AppendMessage"); err != nil {
		return err
	}
	r, ok := s.rooms[companionID]
	if !ok {
		r = models.NewChatRoom(companionID)
	}
	r.AddMessage(m)
	s.rooms[companionID] = r
	return nil
}

func (s *memStore) MarkRoomRead(_ context.Context, companionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("MarkRoomRead"); err != nil {
		return err
	}
	r := s.rooms[companionID]
	r.MarkAllRead()
	s.rooms[companionID] = r
	return nil
}

var errStoreDown = errors.New("store unavailable")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	*Engine
	store *memStore
	sched *ManualScheduler
	clock *fakeClock
}

type option func(*Options)

func withoutGreeting(o *Options) { o.NoGreeting = true }

func newHarness(t *testing.T, opts ...option) *harness {
	t.Helper()
	h := &harness{
		store: newMemStore(),
		sched: &ManualScheduler{},
		clock: &fakeClock{now: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)},
	}
	seq := 0
	o := Options{
		Store:     h.store,
		Scheduler: h.sched,
		Rand:      rand.New(rand.NewSource(1)),
		Generator: generator.NewRuleBased(rand.New(rand.NewSource(2))),
		Now: func() time.Time {
			h.clock.Advance(time.Second)
			return h.clock.Now()
		},
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range opts {
		fn(&o)
	}
	e, err := New(o)
	require.NoError(t, err)
	h.Engine = e
	return h
}

func (h *harness) add(t *testing.T, name string, p models.Personality) models.Companion {
	t.Helper()
	c, err := h.AddCompanion(context.Background(), models.CompanionSpec{
		Name:         name,
		Personality:  p,
		SpeechStyle:  models.StyleCasual,
		Relationship: models.RelationshipBestFriend,
		World:        models.WorldModern,
	})
	require.NoError(t, err)
	return c
}

// setIntimacy forces a companion's intimacy for tests of threshold logic.
func (h *harness) setIntimacy(id string, v int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, _ := h.companionLocked(id)
	c.Intimacy = v
}
