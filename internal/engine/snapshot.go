package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"local.dev/oshi-engine/internal/models"
)

const snapshotKey = "engine-snapshot"

// Snapshot is the whole engine state at one moment.
type Snapshot struct {
	Companions    []models.Companion    `json:"companions"`
	Posts         []models.Post         `json:"posts"`
	ChatRooms     []models.ChatRoom     `json:"chatRooms"`
	Notifications []models.Notification `json:"notifications"`
	SavedAt       time.Time             `json:"savedAt"`
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Snapshot{
		Companions:    make([]models.Companion, 0, len(e.companions)),
		Posts:         make([]models.Post, 0, len(e.posts)),
		ChatRooms:     make([]models.ChatRoom, 0, len(e.rooms)),
		Notifications: slices.Clone(e.notifications),
		SavedAt:       e.now(),
	}
	for _, c := range e.companions {
		s.Companions = append(s.Companions, cloneCompanion(c))
	}
	for _, p := range e.posts {
		s.Posts = append(s.Posts, clonePost(p))
	}
	for _, r := range e.rooms {
		s.ChatRooms = append(s.ChatRooms, cloneRoom(*r))
	}
	return s
}

// Restore replaces the engine state with s.
func (e *Engine) Restore(s Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replaceLocked(s.Companions, s.Posts, s.ChatRooms)
	e.notifications = slices.Clone(s.Notifications)
}

// replaceLocked installs roster, feed and rooms. Rooms of unknown companions
// are dropped and every companion gets a room.
func (e *Engine) replaceLocked(companions []models.Companion, posts []models.Post, rooms []models.ChatRoom) {
	e.companions = make([]models.Companion, 0, len(companions))
	known := map[string]bool{}
	for _, c := range companions {
		c.Intimacy = models.ClampIntimacy(c.Intimacy)
		e.companions = append(e.companions, cloneCompanion(c))
		known[c.ID] = true
		delete(e.removed, c.ID)
	}

	e.posts = make([]models.Post, 0, len(posts))
	for _, p := range posts {
		e.posts = append(e.posts, clonePost(p))
	}
	slices.SortStableFunc(e.posts, func(a, b models.Post) int { return b.CreatedAt.Compare(a.CreatedAt) })

	e.rooms = map[string]*models.ChatRoom{}
	for _, r := range rooms {
		if !known[r.CompanionID] {
			continue
		}
		room := cloneRoom(r)
		room.Normalize()
		e.rooms[r.CompanionID] = &room
	}
	for _, c := range e.companions {
		e.roomLocked(c.ID)
	}
	rosterSize.Set(float64(len(e.companions)))
}

// SaveSnapshot writes the current state to the snapshot cache.
func (e *Engine) SaveSnapshot(ctx context.Context) error {
	if e.cache == nil {
		return nil
	}
	if err := e.cache.Put(ctx, snapshotKey, e.Snapshot()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// RestoreSnapshot loads the cached state, if any.
func (e *Engine) RestoreSnapshot(ctx context.Context) (bool, error) {
	if e.cache == nil {
		return false, nil
	}
	var s Snapshot
	ok, err := e.cache.Get(ctx, snapshotKey, &s)
	if err != nil || !ok {
		return false, err
	}
	e.Restore(s)
	args := []any{"companions", len(s.Companions), "posts", len(s.Posts), "saved_at", s.SavedAt}
	if at, ok, err := e.cache.UpdatedAt(ctx, snapshotKey); err == nil && ok {
		args = append(args, "age", e.now().Sub(at).Round(time.Second))
	}
	e.logger.Info("snapshot restored", args...)
	return true, nil
}

// ClearSnapshot drops the cached state, for a snapshot that no longer
// decodes.
func (e *Engine) ClearSnapshot(ctx context.Context) error {
	if e.cache == nil {
		return nil
	}
	if err := e.cache.Delete(ctx, snapshotKey); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

// Load replaces roster, feed and rooms with what the store holds.
// Notifications are kept since the store does not hold them.
func (e *Engine) Load(ctx context.Context) error {
	var (
		companions []models.Companion
		posts      []models.Post
		rooms      []models.ChatRoom
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		companions, err = e.store.LoadCompanions(gctx)
		return err
	})
	g.Go(func() (err error) {
		posts, err = e.store.LoadPosts(gctx, e.limit)
		return err
	})
	g.Go(func() (err error) {
		rooms, err = e.store.LoadChatRooms(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	e.mu.Lock()
	e.replaceLocked(companions, posts, rooms)
	e.mu.Unlock()

	e.logger.Info("state loaded", "companions", len(companions), "posts", len(posts), "rooms", len(rooms))
	return nil
}
