package rotation

import (
	"time"

	"signage/internal/styleconfig"
)

// Step is one scheduled phase of a timeline.
type Step struct {
	Phase              Phase                  `json:"phase"`
	URL                string                 `json:"url"`
	Start              time.Duration          `json:"start"`
	End                time.Duration          `json:"end"`
	Transition         styleconfig.Transition `json:"transition"`
	TransitionDuration time.Duration          `json:"transition_duration"`

	// Final is set on a step the sequence never leaves.
	Final bool `json:"final,omitempty"`
}

// Timeline lists the phases shown from time zero until horizon. A step
// that never ends (single-item or play-once sequences) is marked Final
// and ends at horizon.
func Timeline(s Sequence, horizon time.Duration) []Step {
	var steps []Step
	p := First()
	var at time.Duration
	for at < horizon {
		tr, trd := s.TransitionInto(p)
		st := Step{Phase: p, URL: s.ItemAt(p).URL, Start: at, Transition: tr, TransitionDuration: trd}
		next, ok := s.Next(p)
		d := s.Duration(p)
		if !ok || d <= 0 {
			st.End = horizon
			st.Final = true
			steps = append(steps, st)
			break
		}
		st.End = at + d
		steps = append(steps, st)
		at += d
		p = next
	}
	return steps
}

// PhaseAt returns the phase displayed elapsed after the player started.
func PhaseAt(s Sequence, elapsed time.Duration) Phase {
	if elapsed < 0 || !s.HasRotation() {
		return First()
	}
	cycle := s.CycleDuration()
	if cycle <= 0 {
		return First()
	}
	if !s.PlayOnce {
		elapsed %= cycle
	}
	p := First()
	for {
		d := s.Duration(p)
		if elapsed < d {
			return p
		}
		next, ok := s.Next(p)
		if !ok {
			return p
		}
		elapsed -= d
		p = next
	}
}
