// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package gesture

import (
	"sync"

	"signage/internal/rotation"
)

// Kind is the type of gesture in progress.
type Kind string

const (
	KindDrag   Kind = "drag"
	KindResize Kind = "resize"
	KindScale  Kind = "scale"
)

// LayerKind says what a gesture manipulates.
type LayerKind string

const (
	LayerText    LayerKind = "text"
	LayerOverlay LayerKind = "overlay"
	LayerImage   LayerKind = "image"
)

// PhaseKey identifies the layer set of one content in one rotation phase.
type PhaseKey struct {
	ContentID string
	Phase     rotation.Phase
}

// Target is the layer a gesture edits. LayerID is empty for image scale.
type Target struct {
	ContentID string
	Phase     rotation.Phase
	LayerID   string
}

// Key drops the layer from t. The zero Phase and rotation.First() map
// to the same key.
func (t Target) Key() PhaseKey {
	p := t.Phase
	if p.IsFirst() {
		p = rotation.First()
	}
	return PhaseKey{ContentID: t.ContentID, Phase: p}
}

// Cursor is the pointer shape shown while a gesture is active.
type Cursor string

const (
	CursorGrabbing   Cursor = "grabbing"
	CursorNWSEResize Cursor = "nwse-resize"
	CursorNESWResize Cursor = "nesw-resize"
	CursorEWResize   Cursor = "ew-resize"
	CursorNSResize   Cursor = "ns-resize"
)

func cursorFor(k Kind, h Handle) Cursor {
	if k == KindDrag {
		return CursorGrabbing
	}
	switch h {
	case HandleNW, HandleSE:
		return CursorNWSEResize
	case HandleNE, HandleSW:
		return CursorNESWResize
	case HandleE, HandleW:
		return CursorEWResize
	default:
		return CursorNSResize
	}
}

// Tracker routes pointer events from anywhere on screen to the active
// gesture. The returned func detaches the listeners.
type Tracker interface {
	Track(s *Session) (untrack func())
}

// Affordances applies the global cursor and suppresses text selection.
// The returned func restores the previous state.
type Affordances interface {
	Apply(c Cursor) (restore func())
}

type nopTracker struct{}

func (nopTracker) Track(*Session) func() { return func() {} }

type nopAffordances struct{}

func (nopAffordances) Apply(Cursor) func() { return func() {} }

// Session is one active gesture. It owns the tracker subscription and the
// affordances for its whole lifetime.
type Session struct {
	Kind    Kind
	Target  Target
	Layer   LayerKind
	Handle  Handle
	Origin  string
	Start   Point
	Frame   ContainerRect
	Last    Point
	Changed bool

	release []func()
	once    sync.Once
}

func (s *Session) acquire(t Tracker, a Affordances) {
	s.release = append(s.release, t.Track(s), a.Apply(cursorFor(s.Kind, s.Handle)))
}

// Release detaches listeners and restores affordances. Calling it more
// than once is a no-op.
func (s *Session) Release() {
	s.once.Do(func() {
		for i := len(s.release) - 1; i >= 0; i-- {
			if s.release[i] != nil {
				s.release[i]()
			}
		}
		s.release = nil
	})
}
