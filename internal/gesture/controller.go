// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package gesture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"signage/internal/styleconfig"
)

var (
	ErrGestureActive = errors.New("gesture already in progress")
	ErrNoGesture     = errors.New("no gesture in progress")
	ErrLayerNotFound = errors.New("layer not found")
	ErrBadHandle     = errors.New("invalid handle")
)

// Layers is the editable state of one content phase.
type Layers struct {
	Text     []styleconfig.TextLayer    `json:"text_layers"`
	Overlays []styleconfig.OverlayImage `json:"overlay_images"`
	ScaleX   float64                    `json:"scale_x"`
	ScaleY   float64                    `json:"scale_y"`
}

// Clone returns a deep copy of the layer arrays.
func (l Layers) Clone() Layers {
	l.Text = slices.Clone(l.Text)
	l.Overlays = slices.Clone(l.Overlays)
	return l
}

// Edit is the result of a finished gesture, handed to the Committer.
type Edit struct {
	Target Target
	Kind   Kind
	Layer  LayerKind
	Layers Layers

	// Origin is the transform origin the scale was anchored at.
	Origin string
}

// Committer persists a finished gesture.
type Committer interface {
	CommitEdit(ctx context.Context, e Edit) error
}

// CommitFunc adapts a function to Committer.
type CommitFunc func(ctx context.Context, e Edit) error

func (f CommitFunc) CommitEdit(ctx context.Context, e Edit) error { return f(ctx, e) }

// Grab starts a gesture.
type Grab struct {
	Kind    Kind
	Target  Target
	Layer   LayerKind
	Handle  Handle
	Origin  string
	Pointer Point
	Frame   ContainerRect

	// Live points at the layer state of the selected content, which is
	// mutated in place. When nil the state is staged in the controller
	// starting from Initial.
	Live    *Layers
	Initial Layers
}

// Option configures a Controller.
type Option func(*Controller)

func WithTracker(t Tracker) Option         { return func(c *Controller) { c.tracker = t } }
func WithAffordances(a Affordances) Option { return func(c *Controller) { c.aff = a } }
func WithLogger(l *slog.Logger) Option     { return func(c *Controller) { c.log = l } }

// Controller runs at most one gesture at a time. Motion only updates
// local or staged state; the Committer is called once per gesture, on
// release, and only if something changed.
type Controller struct {
	commit  Committer
	tracker Tracker
	aff     Affordances
	log     *slog.Logger

	mu      sync.Mutex
	active  *Session
	live    *Layers
	start   Layers
	pending map[PhaseKey]*Layers
}

// NewController creates a controller persisting through commit.
func NewController(commit Committer, opts ...Option) *Controller {
	c := &Controller{
		commit:  commit,
		tracker: nopTracker{},
		aff:     nopAffordances{},
		log:     slog.Default(),
		pending: make(map[PhaseKey]*Layers),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Begin starts a gesture and acquires its global resources.
func (c *Controller) Begin(g Grab) (*Session, error) {
	switch g.Kind {
	case KindDrag:
	case KindResize:
		if !g.Handle.IsCorner() {
			return nil, ErrBadHandle
		}
	case KindScale:
		if !g.Handle.Valid() {
			return nil, ErrBadHandle
		}
	default:
		return nil, fmt.Errorf("unknown gesture kind %q", g.Kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return nil, ErrGestureActive
	}

	state := g.Live
	if state == nil {
		state = c.pending[g.Target.Key()]
		if state == nil {
			staged := g.Initial.Clone()
			state = &staged
			c.pending[g.Target.Key()] = state
		}
	}
	if g.Kind != KindScale && indexOf(*state, g.Layer, g.Target.LayerID) < 0 {
		if g.Live == nil {
			delete(c.pending, g.Target.Key())
		}
		return nil, ErrLayerNotFound
	}
	if state.ScaleX == 0 {
		state.ScaleX = 1
	}
	if state.ScaleY == 0 {
		state.ScaleY = 1
	}

	s := &Session{
		Kind:   g.Kind,
		Target: g.Target,
		Layer:  g.Layer,
		Handle: g.Handle,
		Origin: g.Origin,
		Start:  g.Pointer,
		Frame:  g.Frame,
		Last:   g.Pointer,
	}
	s.acquire(c.tracker, c.aff)
	c.active = s
	c.live = state
	c.start = state.Clone()
	return s, nil
}

// Active reports whether a gesture is in progress.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// Pending returns the staged state of a content phase, if any.
func (c *Controller) Pending(k PhaseKey) (Layers, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.pending[k]
	if !ok {
		return Layers{}, false
	}
	return l.Clone(), true
}

// Move applies pointer motion to the active gesture and returns the
// updated state.
func (c *Controller) Move(p Point) (Layers, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.active
	if s == nil {
		return Layers{}, ErrNoGesture
	}
	s.Last = p
	st := c.live

	switch s.Kind {
	case KindDrag:
		x, y := s.Frame.Percent(p)
		i := indexOf(*st, s.Layer, s.Target.LayerID)
		switch s.Layer {
		case LayerText:
			st.Text[i].X, st.Text[i].Y = x, y
		case LayerOverlay:
			st.Overlays[i].X, st.Overlays[i].Y = x, y
		}
	case KindResize:
		delta := ResizeDelta(s.Handle, p.Sub(s.Start))
		i := indexOf(*st, s.Layer, s.Target.LayerID)
		switch s.Layer {
		case LayerText:
			st.Text[i].Size = ResizedSize(c.start.Text[i].Size, delta, TextResizeDivisor, styleconfig.MinTextSize, styleconfig.MaxTextSize)
		case LayerOverlay:
			st.Overlays[i].Size = ResizedSize(c.start.Overlays[i].Size, delta, OverlayResizeDivisor, styleconfig.MinOverlaySize, styleconfig.MaxOverlaySize)
		}
	case KindScale:
		fx, fy := s.Frame.Fraction(p)
		sx0, sy0 := s.Frame.Fraction(s.Start)
		signX, signY := s.Handle.Signs()
		st.ScaleX = ScaledValue(c.start.ScaleX, fx-sx0, signX)
		st.ScaleY = ScaledValue(c.start.ScaleY, fy-sy0, signY)
	}
	s.Changed = !equalLayers(c.start, *st)
	return st.Clone(), nil
}

// End finishes the gesture. If anything changed the Committer is called
// exactly once. The staged entry is cleared and the session's resources
// are released whatever the outcome.
func (c *Controller) End(ctx context.Context) error {
	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return ErrNoGesture
	}
	edit := Edit{Target: s.Target, Kind: s.Kind, Layer: s.Layer, Layers: c.live.Clone(), Origin: s.Origin}
	changed := s.Changed
	c.active, c.live = nil, nil
	c.mu.Unlock()

	defer s.Release()
	defer c.clear(s.Target.Key())

	if !changed {
		return nil
	}
	if err := c.commit.CommitEdit(ctx, edit); err != nil {
		c.log.Error("persist gesture", "kind", s.Kind, "content_id", s.Target.ContentID, "error", err)
		return fmt.Errorf("commit %s: %w", s.Kind, err)
	}
	return nil
}

// Cancel abandons the gesture and restores the state it started from.
func (c *Controller) Cancel() {
	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return
	}
	*c.live = c.start
	c.active, c.live = nil, nil
	c.mu.Unlock()

	s.Release()
	c.clear(s.Target.Key())
}

func (c *Controller) clear(k PhaseKey) {
	c.mu.Lock()
	delete(c.pending, k)
	c.mu.Unlock()
}

func indexOf(l Layers, kind LayerKind, id string) int {
	switch kind {
	case LayerText:
		return slices.IndexFunc(l.Text, func(t styleconfig.TextLayer) bool { return t.ID == id })
	case LayerOverlay:
		return slices.IndexFunc(l.Overlays, func(o styleconfig.OverlayImage) bool { return o.ID == id })
	}
	return -1
}

func equalLayers(a, b Layers) bool {
	return a.ScaleX == b.ScaleX && a.ScaleY == b.ScaleY &&
		slices.Equal(a.Text, b.Text) && slices.Equal(a.Overlays, b.Overlays)
}
