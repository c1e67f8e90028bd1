package styleconfig

// Transition is the effect applied when an image rotation changes phase.
type Transition string

const (
	TransitionFade           Transition = "fade"
	TransitionSlideLeft      Transition = "slide-left"
	TransitionSlideRight     Transition = "slide-right"
	TransitionSlideUp        Transition = "slide-up"
	TransitionSlideDown      Transition = "slide-down"
	TransitionZoomIn         Transition = "zoom-in"
	TransitionZoomOut        Transition = "zoom-out"
	TransitionBlurIn         Transition = "blur-in"
	TransitionFlipH          Transition = "flip-h"
	TransitionFlipV          Transition = "flip-v"
	TransitionRotateIn       Transition = "rotate-in"
	TransitionRevealCenter   Transition = "reveal-center"
	TransitionDissolve       Transition = "dissolve"
	TransitionIrisOpen       Transition = "iris-open"
	TransitionIrisClose      Transition = "iris-close"
	TransitionSpiralIn       Transition = "spiral-in"
	TransitionBlindsH        Transition = "blinds-h"
	TransitionBlindsV        Transition = "blinds-v"
	TransitionTiles          Transition = "tiles"
	TransitionPuzzleExpand   Transition = "puzzle-expand"
	TransitionPuzzleRows     Transition = "puzzle-rows"
	TransitionPuzzleCols     Transition = "puzzle-cols"
	TransitionPuzzleDiagonal Transition = "puzzle-diagonal"
	TransitionPuzzleGrid     Transition = "puzzle-grid"
	TransitionNone           Transition = "none"
)

// Transitions lists every supported effect.
var Transitions = []Transition{
	TransitionFade, TransitionSlideLeft, TransitionSlideRight, TransitionSlideUp,
	TransitionSlideDown, TransitionZoomIn, TransitionZoomOut, TransitionBlurIn,
	TransitionFlipH, TransitionFlipV, TransitionRotateIn, TransitionRevealCenter,
	TransitionDissolve, TransitionIrisOpen, TransitionIrisClose, TransitionSpiralIn,
	TransitionBlindsH, TransitionBlindsV, TransitionTiles, TransitionPuzzleExpand,
	TransitionPuzzleRows, TransitionPuzzleCols, TransitionPuzzleDiagonal,
	TransitionPuzzleGrid, TransitionNone,
}

var transitionSet = func() map[Transition]bool {
	m := make(map[Transition]bool, len(Transitions))
	for _, t := range Transitions {
		m[t] = true
	}
	return m
}()

// Valid reports whether t is a supported effect.
func (t Transition) Valid() bool {
	return transitionSet[t]
}

// Transition duration bounds, in milliseconds.
const (
	MinTransitionMillis     = 200
	MaxTransitionMillis     = 5000
	DefaultTransitionMillis = 500
)

// ClampTransitionMillis bounds a transition duration; zero or negative
// values get the default.
func ClampTransitionMillis(ms int) int {
	if ms <= 0 {
		return DefaultTransitionMillis
	}
	return clampInt(ms, MinTransitionMillis, MaxTransitionMillis)
}
