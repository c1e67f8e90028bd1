// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package rotation

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"signage/internal/styleconfig"
)

// Change is reported every time a new phase becomes visible.
type Change struct {
	Phase              Phase
	Item               Item
	Transition         styleconfig.Transition
	TransitionDuration time.Duration
	At                 time.Time
}

// Option configures a Player.
type Option func(*Player)

// WithClock replaces the real clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(p *Player) { p.clock = c }
}

// OnPhase registers the callback for phase changes. It runs on the
// player goroutine and must not call Stop or Replace.
func OnPhase(fn func(Change)) Option {
	return func(p *Player) { p.onPhase = fn }
}

// Snapshot keeps the player on the first phase without scheduling
// anything, as used when rendering a still preview.
func Snapshot() Option {
	return func(p *Player) { p.snapshot = true }
}

// WithLogger sets the logger used for phase tracing.
func WithLogger(l *slog.Logger) Option {
	return func(p *Player) { p.log = l }
}

// Player advances a Sequence on a clock. All timers belong to a single
// goroutine that exits before Stop returns.
type Player struct {
	clock    clockwork.Clock
	onPhase  func(Change)
	snapshot bool
	log      *slog.Logger

	mu       sync.Mutex
	seq      Sequence
	current  Phase
	reported bool
	stop     chan struct{}
	done     chan struct{}
}

// NewPlayer creates a stopped player for seq.
func NewPlayer(seq Sequence, opts ...Option) *Player {
	p := &Player{
		clock:   clockwork.NewRealClock(),
		seq:     seq,
		current: First(),
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// NewVideoPlayer builds a player for a video content.
func NewVideoPlayer(firstURL string, vr *styleconfig.VideoRotation, opts ...Option) *Player {
	return NewPlayer(VideoSequence(firstURL, vr), opts...)
}

// NewImagePlayer builds a player for an image content.
func NewImagePlayer(firstURL string, m styleconfig.MediaStyle, opts ...Option) *Player {
	return NewPlayer(ImageSequence(firstURL, m), opts...)
}

// Start begins playback from the first phase. Starting a running player
// does nothing.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return
	}
	p.startLocked()
}

func (p *Player) startLocked() {
	p.current = First()
	p.reported = false
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.seq, p.stop, p.done)
}

// Stop halts playback and waits for the player goroutine to exit. No
// phase change is reported after Stop returns. Calling it again is a
// no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports whether the player goroutine is active.
func (p *Player) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop != nil
}

// Current returns the phase on screen.
func (p *Player) Current() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Sequence returns the sequence being played.
func (p *Player) Sequence() Sequence {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq
}

// Replace swaps the sequence. A running player restarts from the first
// phase with the new schedule.
func (p *Player) Replace(seq Sequence) {
	running := p.Running()
	p.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq = seq
	p.current = First()
	p.reported = false
	if running && p.stop == nil {
		p.startLocked()
	}
}

func (p *Player) run(seq Sequence, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	phase := First()
	p.enter(seq, phase, stop)
	if p.snapshot || !seq.HasRotation() {
		<-stop
		return
	}

	for {
		d := seq.Duration(phase)
		if d <= 0 {
			p.log.Warn("rotation item without duration, holding", "phase", phase.String(), "url", seq.ItemAt(phase).URL)
			<-stop
			return
		}
		t := p.clock.NewTimer(d)
		select {
		case <-stop:
			t.Stop()
			return
		case <-t.Chan():
		}

		next, ok := seq.Next(phase)
		if !ok {
			p.log.Debug("rotation finished", "phase", phase.String())
			<-stop
			return
		}
		phase = next
		p.enter(seq, phase, stop)
	}
}

// enter records phase as current and reports it unless it is already
// the last reported phase or the player is being stopped.
func (p *Player) enter(seq Sequence, phase Phase, stop <-chan struct{}) {
	p.mu.Lock()
	select {
	case <-stop:
		p.mu.Unlock()
		return
	default:
	}
	dup := p.reported && p.current == phase
	p.current = phase
	p.reported = true
	p.mu.Unlock()

	if dup || p.onPhase == nil {
		return
	}
	tr, trd := seq.TransitionInto(phase)
	p.onPhase(Change{
		Phase:              phase,
		Item:               seq.ItemAt(phase),
		Transition:         tr,
		TransitionDuration: trd,
		At:                 p.clock.Now(),
	})
}
