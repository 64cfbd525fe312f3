package engine

import (
	"context"
	"fmt"
	"strings"

	"local.dev/oshi-engine/internal/generator"
	"local.dev/oshi-engine/internal/models"
)

// AddCompanion creates a companion with zero intimacy and an empty chat
// room, then schedules its first greeting. No notification is emitted.
func (e *Engine) AddCompanion(ctx context.Context, spec models.CompanionSpec) (models.Companion, error) {
	if err := validateSpec(spec); err != nil {
		return models.Companion{}, err
	}

	e.mu.Lock()
	c := models.NewCompanion(e.newID(), spec, e.now())
	e.companions = append(e.companions, c)
	room := e.roomLocked(c.ID)
	roomCopy := cloneRoom(*room)
	rosterSize.Set(float64(len(e.companions)))
	if e.greet {
		e.sched.After(e.delay(GreetingDelay), func() {
			e.deliverGreeting(c.ID, generator.KindInitialGreeting, false)
		})
	}
	e.mu.Unlock()

	e.logger.Info("companion added", "companion", c.ID, "name", c.Name)
	err := e.companionWrite(c.ID, func() error {
		return syncErr(
			e.store.SaveCompanion(ctx, c),
			e.store.SaveChatRoom(ctx, roomCopy),
		)
	})
	return cloneCompanion(c), err
}

// validateSpec rejects attributes the store could not load back.
// Personality, speech style and world accept free text.
func validateSpec(spec models.CompanionSpec) error {
	if strings.TrimSpace(spec.Name) == "" {
		return ErrNameRequired
	}
	if !spec.Avatar.Valid() {
		return fmt.Errorf("%w: avatar kind %q", ErrInvalidCompanion, spec.Avatar.Kind)
	}
	if spec.Relationship != "" && !spec.Relationship.Valid() {
		return fmt.Errorf("%w: relationship %q", ErrInvalidCompanion, spec.Relationship)
	}
	if spec.Gender != nil && !spec.Gender.Valid() {
		return fmt.Errorf("%w: gender %q", ErrInvalidCompanion, *spec.Gender)
	}
	return nil
}

// RemoveCompanion deletes the companion with its chat room, the posts it
// wrote and its images.
func (e *Engine) RemoveCompanion(ctx context.Context, id string) error {
	e.mu.Lock()
	_, i := e.companionLocked(id)
	if i < 0 {
		e.mu.Unlock()
		return ErrCompanionNotFound
	}
	e.companions = append(e.companions[:i], e.companions[i+1:]...)
	e.removed[id] = struct{}{}
	delete(e.rooms, id)
	kept := e.posts[:0]
	for _, p := range e.posts {
		if !p.AuthoredBy(id) {
			kept = append(kept, p)
		}
	}
	e.posts = kept
	rosterSize.Set(float64(len(e.companions)))
	e.mu.Unlock()

	e.logger.Info("companion removed", "companion", id)
	e.writeMu.Lock()
	errs := []error{e.store.DeleteCompanion(ctx, id)}
	e.writeMu.Unlock()
	if e.blob != nil {
		errs = append(errs, e.blob.Delete(ctx, id))
	}
	return syncErr(errs...)
}

// RenameCompanion changes the display name. Names already copied onto
// reactions, comments, posts and notifications stay as they were.
func (e *Engine) RenameCompanion(ctx context.Context, id, name string) (models.Companion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Companion{}, ErrNameRequired
	}
	e.mu.Lock()
	c, _ := e.companionLocked(id)
	if c == nil {
		e.mu.Unlock()
		return models.Companion{}, ErrCompanionNotFound
	}
	c.Name = name
	out := cloneCompanion(*c)
	e.mu.Unlock()

	return out, e.saveCompanion(ctx, out)
}

// SetAvatar uploads image bytes and points the companion's avatar at them.
func (e *Engine) SetAvatar(ctx context.Context, id string, image []byte) (models.Companion, error) {
	e.mu.Lock()
	c, _ := e.companionLocked(id)
	e.mu.Unlock()
	if c == nil {
		return models.Companion{}, ErrCompanionNotFound
	}
	if e.blob == nil {
		return models.Companion{}, ErrNoBlobStore
	}
	url, err := e.blob.Upload(ctx, image, id)
	if err != nil {
		return models.Companion{}, err
	}

	e.mu.Lock()
	c, _ = e.companionLocked(id)
	if c == nil {
		e.mu.Unlock()
		return models.Companion{}, ErrCompanionNotFound
	}
	c.Avatar = models.ImageAvatar(url)
	out := cloneCompanion(*c)
	e.mu.Unlock()

	return out, e.saveCompanion(ctx, out)
}

func (e *Engine) saveCompanion(ctx context.Context, c models.Companion) error {
	return e.companionWrite(c.ID, func() error {
		return syncErr(e.store.SaveCompanion(ctx, c))
	})
}

func (e *Engine) Companions() []models.Companion {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Companion, 0, len(e.companions))
	for _, c := range e.companions {
		out = append(out, cloneCompanion(c))
	}
	return out
}

func (e *Engine) Companion(id string) (models.Companion, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, _ := e.companionLocked(id)
	if c == nil {
		return models.Companion{}, false
	}
	return cloneCompanion(*c), true
}
