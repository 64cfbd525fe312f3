// Package store keeps companions, posts and chat rooms as JSON files on the
// local disk. It is the store used when Firestore is not configured.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"local.dev/oshi-engine/internal/models"
)

var ErrNotFound = errors.New("record not found")

const (
	companionsFile = "companions.json"
	postsFile      = "posts.json"
	chatRoomsFile  = "chat_rooms.json"
)

// FileStore keeps one JSON object per collection, keyed by entity id. Every
// write is a read-modify-write of the whole file under the store lock, so
// partial post updates merge with whatever is on disk.
type FileStore struct {
	mu     sync.RWMutex
	dir    string
	logger *slog.Logger
}

func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir, logger: logger.With("component", "store.FileStore")}, nil
}

func readJSONFile[T any](path string, out *T) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func writeJSONFile(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// collection is a raw view of one file. Records stay undecoded so a single
// bad record never poisons the others.
type collection map[string]json.RawMessage

func (s *FileStore) read(name string) (collection, error) {
	c := collection{}
	err := readJSONFile(filepath.Join(s.dir, name), &c)
	if errors.Is(err, fs.ErrNotExist) {
		return collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return c, nil
}

func (s *FileStore) write(name string, c collection) error {
	if err := writeJSONFile(filepath.Join(s.dir, name), c); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) put(name, id string, record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	c, err := s.read(name)
	if err != nil {
		return err
	}
	c[id] = raw
	return s.write(name, c)
}

// decodeAll unmarshals every record with decode, skipping the ones that fail.
func decodeAll[R any, M any](s *FileStore, name string, c collection, decode func(R) (M, error)) []M {
	out := make([]M, 0, len(c))
	for id, raw := range c {
		var rec R
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.logger.Warn("skipping malformed record", "file", name, "id", id, "error", err)
			continue
		}
		m, err := decode(rec)
		if err != nil {
			s.logger.Warn("skipping malformed record", "file", name, "id", id, "error", err)
			continue
		}
		out = append(out, m)
	}
	return out
}

// ===== companions =====

func (s *FileStore) SaveCompanion(ctx context.Context, c models.Companion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(companionsFile, c.ID, CompanionToRecord(c))
}

func (s *FileStore) LoadCompanions(ctx context.Context) ([]models.Companion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.read(companionsFile)
	if err != nil {
		return nil, err
	}
	out := decodeAll(s, companionsFile, c, CompanionRecord.Companion)
	slices.SortFunc(out, func(a, b models.Companion) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

// DeleteCompanion removes the companion, its chat room and every post it
// authored.
func (s *FileStore) DeleteCompanion(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	companions, err := s.read(companionsFile)
	if err != nil {
		return err
	}
	delete(companions, id)
	if err := s.write(companionsFile, companions); err != nil {
		return err
	}

	rooms, err := s.read(chatRoomsFile)
	if err != nil {
		return err
	}
	delete(rooms, id)
	if err := s.write(chatRoomsFile, rooms); err != nil {
		return err
	}

	posts, err := s.read(postsFile)
	if err != nil {
		return err
	}
	for pid, raw := range posts {
		var rec PostRecord
		if json.Unmarshal(raw, &rec) != nil {
			continue
		}
		if !rec.IsUserPost && rec.CompanionID == id {
			delete(posts, pid)
		}
	}
	return s.write(postsFile, posts)
}

// ===== posts =====

func (s *FileStore) SavePost(ctx context.Context, p models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(postsFile, p.ID, PostToRecord(p))
}

// LoadPosts returns up to limit posts, newest first. limit <= 0 means all.
func (s *FileStore) LoadPosts(ctx context.Context, limit int) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.read(postsFile)
	if err != nil {
		return nil, err
	}
	out := decodeAll(s, postsFile, c, PostRecord.Post)
	slices.SortFunc(out, func(a, b models.Post) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdatePost merges patch into the stored post.
func (s *FileStore) UpdatePost(ctx context.Context, postID string, patch models.PostPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read(postsFile)
	if err != nil {
		return err
	}
	raw, ok := c[postID]
	if !ok {
		return fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	var rec PostRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("post %s: %w: %v", postID, ErrMalformedRecord, err)
	}
	p, err := rec.Post()
	if err != nil {
		return err
	}
	p.Apply(patch)
	b, err := json.Marshal(PostToRecord(p))
	if err != nil {
		return err
	}
	c[postID] = b
	return s.write(postsFile, c)
}

// ===== chat rooms =====

func (s *FileStore) SaveChatRoom(ctx context.Context, room models.ChatRoom) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(chatRoomsFile, room.CompanionID, ChatRoomToRecord(room))
}

func (s *FileStore) LoadChatRooms(ctx context.Context) ([]models.ChatRoom, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.read(chatRoomsFile)
	if err != nil {
		return nil, err
	}
	out := decodeAll(s, chatRoomsFile, c, ChatRoomRecord.ChatRoom)
	slices.SortFunc(out, func(a, b models.ChatRoom) int { return b.LastMessageAt.Compare(a.LastMessageAt) })
	return out, nil
}

// modifyRoom loads one room (creating it when absent), applies fn and writes
// it back.
func (s *FileStore) modifyRoom(companionID string, fn func(*models.ChatRoom)) error {
	c, err := s.read(chatRoomsFile)
	if err != nil {
		return err
	}
	room := models.NewChatRoom(companionID)
	if raw, ok := c[companionID]; ok {
		var rec ChatRoomRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("chat room %s: %w: %v", companionID, ErrMalformedRecord, err)
		}
		if room, err = rec.ChatRoom(); err != nil {
			return err
		}
	}
	fn(&room)
	b, err := json.Marshal(ChatRoomToRecord(room))
	if err != nil {
		return err
	}
	c[companionID] = b
	return s.write(chatRoomsFile, c)
}

func (s *FileStore) AppendMessage(ctx context.Context, companionID string, m models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modifyRoom(companionID, func(room *models.ChatRoom) {
		for _, ex := range room.Messages {
			if ex.ID == m.ID {
				return
			}
		}
		room.AddMessage(m)
	})
}

func (s *FileStore) MarkRoomRead(ctx context.Context, companionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modifyRoom(companionID, func(room *models.ChatRoom) { room.MarkAllRead() })
}
