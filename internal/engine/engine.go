// Package engine owns the companion roster, the feed, the chat rooms and the
// notification stream, and turns user actions into companion behavior.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"local.dev/oshi-engine/internal/generator"
	"local.dev/oshi-engine/internal/models"
	"local.dev/oshi-engine/internal/mood"
	"local.dev/oshi-engine/internal/random"
)

var (
	ErrNameRequired         = errors.New("companion name is required")
	ErrInvalidCompanion     = errors.New("invalid companion attributes")
	ErrEmptyPost            = errors.New("post needs content or images")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrCompanionNotFound    = errors.New("companion not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrNotCompanionPost     = errors.New("post was not written by a companion")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUnknownTick          = errors.New("unknown tick kind")
	ErrTickSkipped          = errors.New("previous tick still running")
	ErrNoStore              = errors.New("engine needs a store")
	ErrNoBlobStore          = errors.New("no image store configured")

	// ErrSyncFailed is returned when local state changed but persisting it
	// did not. The change is kept.
	ErrSyncFailed = errors.New("sync failed")
)

// Intimacy increments. Chat counts more than a comment, a like least.
const (
	ChatIncrement    = 3
	CommentIncrement = 2
	LikeIncrement    = 1

	CommentProbability = 0.8
	ProactiveThreshold = 70
)

// Span is a closed range of delays.
type Span struct {
	Min, Max time.Duration
}

var (
	ReactionDelay = Span{1 * time.Second, 3 * time.Second}
	CommentDelay  = Span{2 * time.Second, 6 * time.Second}
	ReplyDelay    = Span{1 * time.Second, 3 * time.Second}
	GreetingDelay = Span{1 * time.Second, 2 * time.Second}
)

// Store persists one user's companions, posts and chat rooms. Loads skip
// malformed records.
type Store interface {
	SaveCompanion(ctx context.Context, c models.Companion) error
	LoadCompanions(ctx context.Context) ([]models.Companion, error)
	DeleteCompanion(ctx context.Context, id string) error

	SavePost(ctx context.Context, p models.Post) error
	LoadPosts(ctx context.Context, limit int) ([]models.Post, error)
	UpdatePost(ctx context.Context, postID string, patch models.PostPatch) error

	SaveChatRoom(ctx context.Context, room models.ChatRoom) error
	LoadChatRooms(ctx context.Context) ([]models.ChatRoom, error)
	AppendMessage(ctx context.Context, companionID string, m models.Message) error
	MarkRoomRead(ctx context.Context, companionID string) error
}

// Blob stores images by owner.
type Blob interface {
	Upload(ctx context.Context, data []byte, owner string) (string, error)
	Download(ctx context.Context, url string) ([]byte, error)
	Delete(ctx context.Context, owner string) error
}

// SnapshotCache keeps the last known state between runs.
type SnapshotCache interface {
	Put(ctx context.Context, key string, v any) error
	Get(ctx context.Context, key string, out any) (bool, error)
	UpdatedAt(ctx context.Context, key string) (time.Time, bool, error)
	Delete(ctx context.Context, key string) error
}

type MoodClassifier interface {
	Classify(text string) mood.Mood
}

type Options struct {
	Store     Store
	Blob      Blob
	Cache     SnapshotCache
	Generator generator.Strategy
	Mood      MoodClassifier
	Scheduler Scheduler
	Rand      *rand.Rand
	Now       func() time.Time
	NewID     func() string
	Logger    *slog.Logger

	// UserName is the author name on the user's own posts.
	UserName string
	// FeedLimit caps how many posts Load pulls from the store.
	FeedLimit int
	// NoGreeting stops new companions from sending a first greeting.
	NoGreeting bool
}

type Engine struct {
	mu            sync.Mutex
	companions    []models.Companion
	posts         []models.Post
	rooms         map[string]*models.ChatRoom
	notifications []models.Notification
	// removed holds every companion deleted since start. Writes for them
	// are dropped.
	removed map[string]struct{}

	// writeMu orders companion-scoped store writes against deletes.
	writeMu sync.Mutex

	store    Store
	blob     Blob
	cache    SnapshotCache
	gen      generator.Strategy
	mood     MoodClassifier
	sched    Scheduler
	rng      *rand.Rand
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
	userName string
	limit    int
	greet    bool

	ticking map[TickKind]*atomic.Bool
}

func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, ErrNoStore
	}
	e := &Engine{
		rooms:    map[string]*models.ChatRoom{},
		removed:  map[string]struct{}{},
		store:    opts.Store,
		blob:     opts.Blob,
		cache:    opts.Cache,
		gen:      opts.Generator,
		mood:     opts.Mood,
		sched:    opts.Scheduler,
		rng:      opts.Rand,
		now:      opts.Now,
		newID:    opts.NewID,
		logger:   opts.Logger,
		userName: opts.UserName,
		limit:    opts.FeedLimit,
		greet:    !opts.NoGreeting,
		ticking: map[TickKind]*atomic.Bool{
			TickAutonomousPost: {},
			TickProactive:      {},
			TickSnapshot:       {},
		},
	}
	if e.rng == nil {
		e.rng = random.New(0)
	}
	if e.gen == nil {
		e.gen = generator.NewRuleBased(random.New(e.rng.Int63() | 1))
	}
	if e.mood == nil {
		e.mood = mood.Classifier{}
	}
	if e.sched == nil {
		e.sched = WallClock{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "engine")
	if e.userName == "" {
		e.userName = "Me"
	}
	if e.limit <= 0 {
		e.limit = 200
	}
	return e, nil
}

// syncErr wraps collaborator failures so callers can tell that local state
// changed anyway.
func syncErr(errs ...error) error {
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}
	return nil
}

// companionWrite runs a store write that recreates or updates state owned
// by the companion. It is skipped once the companion has been removed, so
// delayed work cannot bring a deleted companion back. Callers must not hold
// e.mu.
func (e *Engine) companionWrite(id string, write func() error) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	e.mu.Lock()
	_, gone := e.removed[id]
	e.mu.Unlock()
	if gone {
		e.logger.Debug("dropped write for removed companion", "companion", id)
		return nil
	}
	return write()
}

// background is the context for delayed work, which outlives the request
// that scheduled it.
func background() context.Context { return context.Background() }

// logSync records a failed write from delayed work, where nobody is waiting
// for the error.
func (e *Engine) logSync(op string, err error, args ...any) {
	if err == nil {
		return
	}
	syncFailures.WithLabelValues(op).Inc()
	e.logger.Warn("persist failed", append([]any{"op", op, "error", err}, args...)...)
}

// delay draws a duration in s. Callers hold e.mu.
func (e *Engine) delay(s Span) time.Duration {
	if s.Max <= s.Min {
		return s.Min
	}
	return s.Min + time.Duration(e.rng.Int63n(int64(s.Max-s.Min)+1))
}

// ===== lookups; callers hold e.mu =====

func (e *Engine) companionLocked(id string) (*models.Companion, int) {
	for i := range e.companions {
		if e.companions[i].ID == id {
			return &e.companions[i], i
		}
	}
	return nil, -1
}

func (e *Engine) postLocked(id string) *models.Post {
	for i := range e.posts {
		if e.posts[i].ID == id {
			return &e.posts[i]
		}
	}
	return nil
}

func (e *Engine) roomLocked(companionID string) *models.ChatRoom {
	room, ok := e.rooms[companionID]
	if !ok {
		r := models.NewChatRoom(companionID)
		room = &r
		e.rooms[companionID] = room
	}
	return room
}

func (e *Engine) notifyLocked(typ models.NotificationType, c models.Companion, content, postID string) {
	n := models.Notification{
		ID:         e.newID(),
		Type:       typ,
		SenderID:   c.ID,
		SenderName: c.Name,
		Content:    content,
		PostID:     postID,
		CreatedAt:  e.now(),
	}
	e.notifications = append([]models.Notification{n}, e.notifications...)
	notificationsEmitted.WithLabelValues(string(typ)).Inc()
}

// ===== copies handed to callers =====

func cloneCompanion(c models.Companion) models.Companion {
	c.NGTopics = slices.Clone(c.NGTopics)
	return c
}

func clonePost(p models.Post) models.Post {
	p.Images = slices.Clone(p.Images)
	p.Reactions = slices.Clone(p.Reactions)
	p.Comments = slices.Clone(p.Comments)
	return p
}

func cloneRoom(r models.ChatRoom) models.ChatRoom {
	r.Messages = slices.Clone(r.Messages)
	return r
}
