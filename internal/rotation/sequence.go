// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package rotation drives timed content rotation inside a block: the
// block's primary media shows first, then every rotation item in order,
// each for its own duration, and the cycle starts over. Sequences are
// plain values with pure schedule functions; Player runs one on a clock.
package rotation

import (
	"fmt"
	"time"

	"signage/internal/styleconfig"
)

// PhaseKind says whether the primary item or a rotation item is showing.
type PhaseKind string

const (
	PhaseFirst    PhaseKind = "first"
	PhaseRotation PhaseKind = "rotation"
)

// Phase identifies the item currently displayed. Index is the rotation
// item index and is 0 for the first phase.
type Phase struct {
	Kind  PhaseKind `json:"phase"`
	Index int       `json:"index"`
}

// First is the phase showing the block's primary item.
func First() Phase { return Phase{Kind: PhaseFirst} }

// Rotation is the phase showing rotation item i.
func Rotation(i int) Phase { return Phase{Kind: PhaseRotation, Index: i} }

// IsFirst reports whether p is the first phase.
func (p Phase) IsFirst() bool { return p.Kind != PhaseRotation }

// RotationIndex returns the rotation item index, or -1 for the first phase.
func (p Phase) RotationIndex() int {
	if p.IsFirst() {
		return -1
	}
	return p.Index
}

func (p Phase) String() string {
	if p.IsFirst() {
		return "first"
	}
	return fmt.Sprintf("rot%d", p.Index)
}

// Item is one displayable entry of a sequence.
type Item struct {
	URL      string        `json:"url"`
	Duration time.Duration `json:"duration"`
	IsVideo  bool          `json:"is_video"`

	// SourceDurationSeconds is the probed length of a video item, 0 when
	// unknown.
	SourceDurationSeconds int `json:"source_duration_seconds,omitempty"`

	// Overlay drawn while the item is on screen.
	TextLayers []styleconfig.TextLayer `json:"text_layers,omitempty"`
	Title      string                  `json:"title,omitempty"`
	Price      *float64                `json:"price,omitempty"`

	// Transition overrides the sequence default when entering this item.
	Transition         styleconfig.Transition `json:"transition,omitempty"`
	TransitionDuration time.Duration          `json:"transition_duration,omitempty"`
}

// Sequence is the full rotation of one block: the first item followed by
// Items, looping forever unless PlayOnce is set.
type Sequence struct {
	First Item   `json:"first"`
	Items []Item `json:"items"`

	// Transition and TransitionDuration are the defaults applied on every
	// phase change. Video rotations use TransitionNone.
	Transition         styleconfig.Transition `json:"transition"`
	TransitionDuration time.Duration          `json:"transition_duration"`

	// PlayOnce stops on the last rotation item instead of looping.
	PlayOnce bool `json:"play_once"`
}

// Len is the number of phases in one cycle: the first item plus the
// rotation items.
func (s Sequence) Len() int {
	return 1 + len(s.Items)
}

// HasRotation reports whether the sequence ever leaves the first phase.
func (s Sequence) HasRotation() bool {
	return len(s.Items) > 0
}

// ItemAt returns the item displayed during p.
func (s Sequence) ItemAt(p Phase) Item {
	if p.IsFirst() || p.Index < 0 || p.Index >= len(s.Items) {
		return s.First
	}
	return s.Items[p.Index]
}

// Duration is how long p stays on screen.
func (s Sequence) Duration(p Phase) time.Duration {
	return s.ItemAt(p).Duration
}

// Next returns the phase after p. The second result is false when the
// sequence stops at p: no rotation items, or PlayOnce on the last item.
func (s Sequence) Next(p Phase) (Phase, bool) {
	if !s.HasRotation() {
		return p, false
	}
	if p.IsFirst() {
		return Rotation(0), true
	}
	if p.Index+1 < len(s.Items) {
		return Rotation(p.Index + 1), true
	}
	if s.PlayOnce {
		return p, false
	}
	return First(), true
}

// TransitionInto returns the effect and duration used when p becomes
// visible. Per-item overrides win over the sequence default.
func (s Sequence) TransitionInto(p Phase) (styleconfig.Transition, time.Duration) {
	it := s.ItemAt(p)
	tr := s.Transition
	if it.Transition != "" {
		tr = it.Transition
	}
	if tr == "" {
		tr = styleconfig.TransitionNone
	}
	d := s.TransitionDuration
	if it.TransitionDuration > 0 {
		d = it.TransitionDuration
	}
	if tr == styleconfig.TransitionNone {
		d = 0
	}
	return tr, d
}

// CycleDuration is the length of one full loop.
func (s Sequence) CycleDuration() time.Duration {
	total := s.First.Duration
	for _, it := range s.Items {
		total += it.Duration
	}
	return total
}
