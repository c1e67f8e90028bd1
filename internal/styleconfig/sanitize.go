// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package styleconfig

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
)

// Bounds of the directly manipulated values.
const (
	MinPercent = 0.0
	MaxPercent = 100.0

	MinTextSize     = 8.0
	MaxTextSize     = 120.0
	DefaultTextSize = 24.0

	MinOverlaySize     = 10.0
	MaxOverlaySize     = 80.0
	DefaultOverlaySize = 25.0

	MinScale = 0.5
	MaxScale = 2.5

	MaxBlur = 20.0

	MinDiscountPercent = 1
	MaxDiscountPercent = 99

	MinItemSeconds     = 1
	MaxItemSeconds     = 120
	DefaultItemSeconds = 5
	DefaultFirstSecond = 10
)

// Clamp bounds v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent bounds a coordinate to [0, 100].
func ClampPercent(v float64) float64 {
	return Clamp(v, MinPercent, MaxPercent)
}

// ClampItemSeconds bounds a rotation item duration to
// [1, min(120, source)]. A zero source means the media length is unknown.
// Zero or negative durations get the default first.
func ClampItemSeconds(seconds, sourceSeconds int) int {
	if seconds <= 0 {
		seconds = DefaultItemSeconds
	}
	upper := MaxItemSeconds
	if sourceSeconds > 0 && sourceSeconds < upper {
		upper = sourceSeconds
	}
	return clampInt(seconds, MinItemSeconds, upper)
}

// ClampFirstSeconds bounds the duration of the first item; zero means the
// 10 second default.
func ClampFirstSeconds(seconds int) int {
	if seconds <= 0 {
		seconds = DefaultFirstSecond
	}
	return clampInt(seconds, MinItemSeconds, MaxItemSeconds)
}

// Sanitize clamps coordinates, size and discount fields, and normalises
// enum values to their defaults.
func (l *TextLayer) Sanitize() {
	l.X = ClampPercent(l.X)
	l.Y = ClampPercent(l.Y)
	if l.Size == 0 {
		l.Size = DefaultTextSize
	}
	l.Size = Clamp(l.Size, MinTextSize, MaxTextSize)
	switch l.TextAlign {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		l.TextAlign = AlignCenter
	}
	if l.Icon == "" {
		l.IconPosition = ""
	} else if l.IconPosition != IconAfter {
		l.IconPosition = IconBefore
	}
	if l.IsDiscountBlock {
		l.DiscountPercent = clampInt(l.DiscountPercent, MinDiscountPercent, MaxDiscountPercent)
		if !validAnimation(l.DiscountAnimation) {
			l.DiscountAnimation = "pulse"
		}
		if !validBlockStyle(l.DiscountBlockStyle) {
			l.DiscountBlockStyle = "rounded"
		}
	}
}

func validAnimation(a DiscountAnimation) bool {
	for _, v := range DiscountAnimations {
		if v == a {
			return true
		}
	}
	return false
}

func validBlockStyle(s DiscountBlockStyle) bool {
	for _, v := range DiscountBlockStyles {
		if v == s {
			return true
		}
	}
	return false
}

// Sanitize clamps the overlay's position and size and defaults its shape.
func (o *OverlayImage) Sanitize() {
	o.X = ClampPercent(o.X)
	o.Y = ClampPercent(o.Y)
	if o.Size == 0 {
		o.Size = DefaultOverlaySize
	}
	o.Size = Clamp(o.Size, MinOverlaySize, MaxOverlaySize)
	switch o.Shape {
	case ShapeRound, ShapeSquare, ShapeRounded, ShapeShadow:
	default:
		o.Shape = ShapeRounded
	}
}

// Sanitize clamps the duration against the probed source length and
// sanitizes nested text layers.
func (it *RotationItem) Sanitize() {
	it.URL = strings.TrimSpace(it.URL)
	if it.SourceDurationSeconds < 0 {
		it.SourceDurationSeconds = 0
	}
	it.DurationSeconds = ClampItemSeconds(it.DurationSeconds, it.SourceDurationSeconds)
	if it.TransitionType != "" && !it.TransitionType.Valid() {
		it.TransitionType = ""
	}
	if it.TransitionDuration != nil {
		ms := ClampTransitionMillis(*it.TransitionDuration)
		it.TransitionDuration = &ms
	}
	if !it.IsVideo && looksLikeVideo(it.URL) {
		it.IsVideo = true
	}
	for i := range it.TextLayers {
		it.TextLayers[i].Sanitize()
	}
}

// ErrRotationURL is returned for a rotation item without a url.
var ErrRotationURL = errors.New("rotation item has no url")

// compactRotationItems drops items without a url. Players never show
// them, so phase N must be stored item N.
func compactRotationItems(items []RotationItem) []RotationItem {
	if !slices.ContainsFunc(items, func(it RotationItem) bool { return it.URL == "" }) {
		return items
	}
	out := make([]RotationItem, 0, len(items))
	for _, it := range items {
		if it.URL != "" {
			out = append(out, it)
		}
	}
	return out
}

// CheckRotationURLs reports the first rotation item of doc that has no
// url, under either rotation key.
func CheckRotationURLs(doc Document) error {
	for _, key := range []string{KeyVideoRotation, KeyImageRotation} {
		var rot struct {
			RotationItems []RotationItem `json:"rotationItems"`
		}
		if !doc.Get(key, &rot) {
			continue
		}
		for i, it := range rot.RotationItems {
			if strings.TrimSpace(it.URL) == "" {
				return fmt.Errorf("%s item %d: %w", key, i, ErrRotationURL)
			}
		}
	}
	return nil
}

var videoExt = regexp.MustCompile(`(?i)\.(mp4|webm|ogg)(\?|$)`)

func looksLikeVideo(url string) bool {
	return videoExt.MatchString(url)
}

// IsVideoURL reports whether url names a video file by extension.
func IsVideoURL(url string) bool {
	return looksLikeVideo(url)
}

var placeholderText = regexp.MustCompile(`lorem\s+ipsum|amet\s+consectetuer|dolor\s+sit\s+amet|consectetuer\s+adipiscing`)
var latinOnly = regexp.MustCompile(`^[a-zA-Z\s,]+$`)

// DisplayText hides placeholder filler text that must never reach a
// screen. Anything else is returned unchanged.
func DisplayText(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return ""
	}
	lower := strings.ToLower(t)
	if placeholderText.MatchString(lower) {
		return ""
	}
	if len(t) < 80 && latinOnly.MatchString(t) &&
		(strings.Contains(lower, "amet") || strings.Contains(lower, "consectetuer") || strings.Contains(lower, "lorem")) {
		return ""
	}
	return s
}
