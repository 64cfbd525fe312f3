package engine

import (
	"context"
	"fmt"
)

type TickKind string

const (
	TickAutonomousPost TickKind = "autonomous-post"
	TickProactive      TickKind = "proactive"
	TickSnapshot       TickKind = "snapshot"
)

var TickKinds = []TickKind{TickAutonomousPost, TickProactive, TickSnapshot}

// OnTick runs the periodic work for kind. The host decides the period. A
// tick that arrives while the previous one of the same kind is still
// running returns ErrTickSkipped without doing anything.
func (e *Engine) OnTick(ctx context.Context, kind TickKind) error {
	running, ok := e.ticking[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTick, kind)
	}
	if !running.CompareAndSwap(false, true) {
		e.logger.Debug("tick skipped", "kind", kind)
		return ErrTickSkipped
	}
	defer running.Store(false)

	switch kind {
	case TickAutonomousPost:
		_, _, err := e.PostAutonomously(ctx)
		return err
	case TickProactive:
		e.CheckProactiveMessages(ctx, e.now())
		return nil
	default:
		return e.SaveSnapshot(ctx)
	}
}
