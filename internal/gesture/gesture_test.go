// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package gesture

import (
	"context"
	"errors"
	"testing"

	"signage/internal/rotation"
	"signage/internal/styleconfig"
)

var frame = ContainerRect{Left: 100, Top: 50, Width: 400, Height: 200}

type countingTracker struct{ tracked, released int }

func (t *countingTracker) Track(*Session) func() {
	t.tracked++
	return func() { t.released++ }
}

type countingAffordances struct {
	applied  []Cursor
	restored int
}

func (a *countingAffordances) Apply(c Cursor) func() {
	a.applied = append(a.applied, c)
	return func() { a.restored++ }
}

type recorder struct {
	edits []Edit
	err   error
}

func (r *recorder) CommitEdit(_ context.Context, e Edit) error {
	r.edits = append(r.edits, e)
	return r.err
}

func sampleLayers() Layers {
	return Layers{
		Text: []styleconfig.TextLayer{
			{ID: "t1", Text: "Espresso", X: 50, Y: 50, Size: 24},
			{ID: "t2", Text: "Latte", X: 10, Y: 10, Size: 24},
		},
		Overlays: []styleconfig.OverlayImage{
			{ID: "o1", ImageURL: "logo.png", X: 25, Y: 25, Size: 25},
		},
	}
}

func TestPercentClamps(t *testing.T) {
	tests := []struct {
		p      Point
		wx, wy float64
	}{
		{Point{300, 150}, 50, 50},
		{Point{-1000, 150}, 0, 50},
		{Point{2000, 150}, 100, 50},
		{Point{300, -400}, 50, 0},
		{Point{300, 9000}, 50, 100},
		{Point{100, 50}, 0, 0},
	}
	for _, tt := range tests {
		x, y := frame.Percent(tt.p)
		if x != tt.wx || y != tt.wy {
			t.Errorf("Percent(%v) = %v,%v want %v,%v", tt.p, x, y, tt.wx, tt.wy)
		}
	}
	if x, y := (ContainerRect{}).Percent(Point{5, 5}); x != 0 || y != 0 {
		t.Errorf("degenerate container = %v,%v", x, y)
	}
}

func TestDragOutsideIsIdempotent(t *testing.T) {
	c := NewController(&recorder{})
	live := sampleLayers()

	var results [][2]float64
	for i := 0; i < 3; i++ {
		if _, err := c.Begin(Grab{Kind: KindDrag, Layer: LayerText, Target: Target{ContentID: "c1", LayerID: "t1"}, Frame: frame, Pointer: Point{300, 150}, Live: &live}); err != nil {
			t.Fatalf("Begin: %v", err)
		}
		got, err := c.Move(Point{-500, 1000})
		if err != nil {
			t.Fatalf("Move: %v", err)
		}
		results = append(results, [2]float64{got.Text[0].X, got.Text[0].Y})
		if err := c.End(context.Background()); err != nil {
			t.Fatalf("End: %v", err)
		}
	}
	for _, r := range results {
		if r != [2]float64{0, 100} {
			t.Errorf("drag result = %v, want [0 100]", r)
		}
	}
}

func TestResizeMonotonic(t *testing.T) {
	prev := 0.0
	hitCeiling := false
	for delta := 0.0; delta <= 400; delta += 5 {
		size := ResizedSize(24, ResizeDelta(HandleSE, Point{delta / 2, delta / 2}), TextResizeDivisor, styleconfig.MinTextSize, styleconfig.MaxTextSize)
		if size > styleconfig.MaxTextSize {
			t.Fatalf("size %v above ceiling", size)
		}
		if hitCeiling {
			if size != styleconfig.MaxTextSize {
				t.Fatalf("size left the ceiling at delta %v: %v", delta, size)
			}
			continue
		}
		if delta > 0 && size <= prev {
			t.Fatalf("size not increasing at delta %v: %v <= %v", delta, size, prev)
		}
		if size == styleconfig.MaxTextSize {
			hitCeiling = true
		}
		prev = size
	}
	if !hitCeiling {
		t.Error("ceiling never reached")
	}
}

func TestResizeDeltaSigns(t *testing.T) {
	off := Point{10, 4}
	tests := map[Handle]float64{HandleSE: 14, HandleNW: -14, HandleNE: 6, HandleSW: -6}
	for h, want := range tests {
		if got := ResizeDelta(h, off); got != want {
			t.Errorf("ResizeDelta(%s) = %v, want %v", h, got, want)
		}
	}
}

func TestResizeOverlayLeavesPosition(t *testing.T) {
	c := NewController(&recorder{})
	live := sampleLayers()
	if _, err := c.Begin(Grab{Kind: KindResize, Handle: HandleSE, Layer: LayerOverlay, Target: Target{ContentID: "c1", LayerID: "o1"}, Frame: frame, Pointer: Point{200, 100}, Live: &live}); err != nil {
		t.Fatal(err)
	}
	got, _ := c.Move(Point{215, 115})
	o := got.Overlays[0]
	if o.Size != 50 {
		t.Errorf("size = %v, want 50", o.Size)
	}
	if o.X != 25 || o.Y != 25 {
		t.Errorf("position moved to %v,%v", o.X, o.Y)
	}
	got, _ = c.Move(Point{900, 900})
	if got.Overlays[0].Size != styleconfig.MaxOverlaySize {
		t.Errorf("size = %v, want clamp %v", got.Overlays[0].Size, styleconfig.MaxOverlaySize)
	}
	c.Cancel()
	if live.Overlays[0].Size != 25 {
		t.Errorf("cancel did not restore size: %v", live.Overlays[0].Size)
	}
}

func TestResizeRequiresCorner(t *testing.T) {
	c := NewController(&recorder{})
	live := sampleLayers()
	_, err := c.Begin(Grab{Kind: KindResize, Handle: HandleE, Layer: LayerText, Target: Target{LayerID: "t1"}, Live: &live})
	if !errors.Is(err, ErrBadHandle) {
		t.Errorf("err = %v, want ErrBadHandle", err)
	}
}

func TestScaleIndependentAxes(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec)
	live := Layers{ScaleX: 1, ScaleY: 1}
	if _, err := c.Begin(Grab{Kind: KindScale, Handle: HandleE, Layer: LayerImage, Origin: "top left", Target: Target{ContentID: "c1"}, Frame: frame, Pointer: Point{300, 150}, Live: &live}); err != nil {
		t.Fatal(err)
	}
	got, _ := c.Move(Point{400, 250})
	if got.ScaleX != 1.5 || got.ScaleY != 1 {
		t.Errorf("scale = %v,%v want 1.5,1", got.ScaleX, got.ScaleY)
	}
	got, _ = c.Move(Point{5000, 150})
	if got.ScaleX != styleconfig.MaxScale {
		t.Errorf("scaleX = %v, want clamp", got.ScaleX)
	}
	if err := c.End(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(rec.edits) != 1 || rec.edits[0].Origin != "top left" || rec.edits[0].Layers.ScaleX != styleconfig.MaxScale {
		t.Errorf("edits = %+v", rec.edits)
	}
}

func TestScaleWestHandleShrinks(t *testing.T) {
	c := NewController(&recorder{})
	live := Layers{ScaleX: 1, ScaleY: 1}
	if _, err := c.Begin(Grab{Kind: KindScale, Handle: HandleNW, Layer: LayerImage, Frame: frame, Pointer: Point{300, 150}, Live: &live}); err != nil {
		t.Fatal(err)
	}
	got, _ := c.Move(Point{350, 175})
	if got.ScaleX != 0.75 || got.ScaleY != 0.75 {
		t.Errorf("scale = %v,%v want 0.75,0.75", got.ScaleX, got.ScaleY)
	}
	c.Cancel()
}

func TestEndCommitsOnceAndOnlyOnChange(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec)
	live := sampleLayers()
	grab := Grab{Kind: KindDrag, Layer: LayerText, Target: Target{ContentID: "c1", LayerID: "t2"}, Frame: frame, Pointer: Point{140, 70}, Live: &live}

	if _, err := c.Begin(grab); err != nil {
		t.Fatal(err)
	}
	if err := c.End(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(rec.edits) != 0 {
		t.Fatalf("commit without motion: %d", len(rec.edits))
	}

	if _, err := c.Begin(grab); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		c.Move(Point{140 + float64(i), 70})
	}
	c.Move(Point{200, 70})
	if len(rec.edits) != 0 {
		t.Fatal("motion must not persist")
	}
	if err := c.End(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(rec.edits) != 1 {
		t.Fatalf("commits = %d, want 1", len(rec.edits))
	}
	if rec.edits[0].Layers.Text[1].X != 25 {
		t.Errorf("committed x = %v", rec.edits[0].Layers.Text[1].X)
	}
}

func TestStagedEditsKeyedByPhase(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec)
	target := Target{ContentID: "c1", Phase: rotation.Rotation(1), LayerID: "t1"}
	if _, err := c.Begin(Grab{Kind: KindDrag, Layer: LayerText, Target: target, Frame: frame, Pointer: Point{300, 150}, Initial: sampleLayers()}); err != nil {
		t.Fatal(err)
	}
	c.Move(Point{500, 250})

	staged, ok := c.Pending(target.Key())
	if !ok || staged.Text[0].X != 100 {
		t.Fatalf("staged = %+v, %v", staged, ok)
	}
	if _, ok := c.Pending(PhaseKey{ContentID: "c1", Phase: rotation.First()}); ok {
		t.Error("first phase must not see the staged rotation edit")
	}

	if err := c.End(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Pending(target.Key()); ok {
		t.Error("staged entry not cleared after release")
	}
	if rec.edits[0].Target != target {
		t.Errorf("target = %+v", rec.edits[0].Target)
	}
}

func TestFailedCommitStillReleases(t *testing.T) {
	tr := &countingTracker{}
	aff := &countingAffordances{}
	rec := &recorder{err: errors.New("backend down")}
	c := NewController(rec, WithTracker(tr), WithAffordances(aff))

	s, err := c.Begin(Grab{Kind: KindResize, Handle: HandleNE, Layer: LayerText, Target: Target{ContentID: "c1", LayerID: "t1"}, Frame: frame, Pointer: Point{300, 150}, Initial: sampleLayers()})
	if err != nil {
		t.Fatal(err)
	}
	if aff.applied[0] != CursorNESWResize {
		t.Errorf("cursor = %s", aff.applied[0])
	}
	c.Move(Point{330, 120})
	if err := c.End(context.Background()); err == nil {
		t.Fatal("expected commit error")
	}
	s.Release()

	if tr.tracked != 1 || tr.released != 1 {
		t.Errorf("tracker tracked=%d released=%d", tr.tracked, tr.released)
	}
	if aff.restored != 1 {
		t.Errorf("affordances restored %d times", aff.restored)
	}
	if c.Active() {
		t.Error("controller still active")
	}
	if _, ok := c.Pending(Target{ContentID: "c1"}.Key()); ok {
		t.Error("staged entry survived failed commit")
	}
}

func TestSingleActiveGesture(t *testing.T) {
	c := NewController(&recorder{})
	live := sampleLayers()
	g := Grab{Kind: KindDrag, Layer: LayerText, Target: Target{ContentID: "c1", LayerID: "t1"}, Frame: frame, Live: &live}
	if _, err := c.Begin(g); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Begin(g); !errors.Is(err, ErrGestureActive) {
		t.Errorf("err = %v, want ErrGestureActive", err)
	}
	c.Cancel()
	if _, err := c.Move(Point{}); !errors.Is(err, ErrNoGesture) {
		t.Errorf("err = %v, want ErrNoGesture", err)
	}
	if err := c.End(context.Background()); !errors.Is(err, ErrNoGesture) {
		t.Errorf("err = %v, want ErrNoGesture", err)
	}
}

func TestUnknownLayer(t *testing.T) {
	c := NewController(&recorder{})
	_, err := c.Begin(Grab{Kind: KindDrag, Layer: LayerText, Target: Target{ContentID: "c1", LayerID: "nope"}, Initial: sampleLayers()})
	if !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("err = %v, want ErrLayerNotFound", err)
	}
	if _, ok := c.Pending(Target{ContentID: "c1"}.Key()); ok {
		t.Error("failed begin left a staged entry")
	}
}
