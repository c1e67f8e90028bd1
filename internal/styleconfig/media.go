// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package styleconfig

import "fmt"

// MediaStyle is the typed view of an image or video content's style
// document. Pointer fields distinguish "unset" from a zero value.
type MediaStyle struct {
	TextLayers     []TextLayer
	OverlayImages  []OverlayImage
	ImageFit       Fit
	ImageOpacity   *float64
	ImageClipShape ClipShape
	ImageScaleX    *float64
	ImageScaleY    *float64
	ImagePosition  string
	Blur           *float64

	VideoRotation *VideoRotation
	ImageRotation *ImageRotation

	ImageRotationTransition         Transition
	ImageRotationTransitionDuration *int
}

// DecodeMedia reads the known keys of doc one by one. A malformed key is
// skipped without affecting the others. The result is sanitized.
func DecodeMedia(doc Document) MediaStyle {
	var m MediaStyle
	doc.Get(KeyTextLayers, &m.TextLayers)
	doc.Get(KeyOverlayImages, &m.OverlayImages)
	doc.Get(KeyImageFit, &m.ImageFit)
	doc.Get(KeyImageClipShape, &m.ImageClipShape)
	doc.Get(KeyImagePosition, &m.ImagePosition)
	doc.Get(KeyImageRotationTransition, &m.ImageRotationTransition)

	m.ImageOpacity = getPtr[float64](doc, KeyImageOpacity)
	m.ImageScaleX = getPtr[float64](doc, KeyImageScaleX)
	m.ImageScaleY = getPtr[float64](doc, KeyImageScaleY)
	m.Blur = getPtr[float64](doc, KeyBlur)
	m.ImageRotationTransitionDuration = getPtr[int](doc, KeyImageRotationTransitionDuration)

	m.VideoRotation = getPtr[VideoRotation](doc, KeyVideoRotation)
	m.ImageRotation = getPtr[ImageRotation](doc, KeyImageRotation)

	m.Sanitize()
	return m
}

func ptr[T any](v T) *T { return &v }

// getPtr decodes key into a fresh *T; missing, null and malformed values
// all yield nil.
func getPtr[T any](doc Document, key string) *T {
	var v *T
	if !doc.Get(key, &v) {
		return nil
	}
	return v
}

// Sanitize clamps every numeric field and normalises enums.
func (m *MediaStyle) Sanitize() {
	for i := range m.TextLayers {
		m.TextLayers[i].Sanitize()
	}
	for i := range m.OverlayImages {
		m.OverlayImages[i].Sanitize()
	}
	switch m.ImageFit {
	case "", FitCover, FitContain:
	default:
		m.ImageFit = FitCover
	}
	switch m.ImageClipShape {
	case "", ClipRect, ClipCircle:
	default:
		m.ImageClipShape = ClipRect
	}
	if m.ImageOpacity != nil {
		m.ImageOpacity = ptr(Clamp(*m.ImageOpacity, 0, 1))
	}
	if m.ImageScaleX != nil {
		m.ImageScaleX = ptr(Clamp(*m.ImageScaleX, MinScale, MaxScale))
	}
	if m.ImageScaleY != nil {
		m.ImageScaleY = ptr(Clamp(*m.ImageScaleY, MinScale, MaxScale))
	}
	if m.Blur != nil {
		m.Blur = ptr(Clamp(*m.Blur, 0, MaxBlur))
	}
	if m.ImageRotationTransition != "" && !m.ImageRotationTransition.Valid() {
		m.ImageRotationTransition = TransitionFade
	}
	if m.ImageRotationTransitionDuration != nil {
		m.ImageRotationTransitionDuration = ptr(ClampTransitionMillis(*m.ImageRotationTransitionDuration))
	}
	if m.VideoRotation != nil {
		m.VideoRotation.FirstVideoDurationSeconds = ClampFirstSeconds(m.VideoRotation.FirstVideoDurationSeconds)
		for i := range m.VideoRotation.RotationItems {
			m.VideoRotation.RotationItems[i].Sanitize()
		}
		m.VideoRotation.RotationItems = compactRotationItems(m.VideoRotation.RotationItems)
	}
	if m.ImageRotation != nil {
		m.ImageRotation.FirstImageDurationSeconds = ClampFirstSeconds(m.ImageRotation.FirstImageDurationSeconds)
		if m.ImageRotation.FirstImageTransitionType != "" && !m.ImageRotation.FirstImageTransitionType.Valid() {
			m.ImageRotation.FirstImageTransitionType = ""
		}
		for i := range m.ImageRotation.RotationItems {
			m.ImageRotation.RotationItems[i].Sanitize()
		}
		m.ImageRotation.RotationItems = compactRotationItems(m.ImageRotation.RotationItems)
	}
}

// ScaleX returns the horizontal scale, defaulting to 1.
func (m *MediaStyle) ScaleX() float64 {
	if m.ImageScaleX == nil {
		return 1
	}
	return *m.ImageScaleX
}

// ScaleY returns the vertical scale, defaulting to 1.
func (m *MediaStyle) ScaleY() float64 {
	if m.ImageScaleY == nil {
		return 1
	}
	return *m.ImageScaleY
}

// RotationItems returns the rotation items of whichever rotation the
// content carries, and the key it lives under.
func (m *MediaStyle) RotationItems() ([]RotationItem, string) {
	switch {
	case m.VideoRotation != nil:
		return m.VideoRotation.RotationItems, KeyVideoRotation
	case m.ImageRotation != nil:
		return m.ImageRotation.RotationItems, KeyImageRotation
	}
	return nil, ""
}

// PhaseLayers returns the text layers shown during a phase. A negative
// rotationIndex is the first item, whose layers live on the content
// itself; rotation items keep their own layers.
func (m *MediaStyle) PhaseLayers(rotationIndex int) []TextLayer {
	if rotationIndex < 0 {
		return m.TextLayers
	}
	items, _ := m.RotationItems()
	if rotationIndex >= len(items) {
		return nil
	}
	return items[rotationIndex].TextLayers
}

// SetPhaseLayers replaces the text layers of a phase and returns the
// top-level key that changed.
func (m *MediaStyle) SetPhaseLayers(rotationIndex int, layers []TextLayer) (string, error) {
	if rotationIndex < 0 {
		m.TextLayers = layers
		return KeyTextLayers, nil
	}
	items, key := m.RotationItems()
	if rotationIndex >= len(items) {
		return "", fmt.Errorf("rotation item %d does not exist (have %d)", rotationIndex, len(items))
	}
	items[rotationIndex].TextLayers = layers
	return key, nil
}

// Patch encodes the listed keys of m into a document suitable for
// Merge. Unset optional values are encoded as JSON null only when
// explicitly listed, which clears them on merge.
func (m *MediaStyle) Patch(keys ...string) (Document, error) {
	doc := Document{}
	for _, k := range keys {
		v, ok := m.value(k)
		if !ok {
			return nil, fmt.Errorf("unknown style key %q", k)
		}
		if err := doc.Set(k, v); err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		if _, present := doc[k]; !present {
			doc[k] = []byte("null")
		}
	}
	return doc, nil
}

func (m *MediaStyle) value(key string) (any, bool) {
	switch key {
	case KeyTextLayers:
		return nonNil(m.TextLayers), true
	case KeyOverlayImages:
		return nonNil(m.OverlayImages), true
	case KeyImageFit:
		return m.ImageFit, true
	case KeyImageOpacity:
		return m.ImageOpacity, true
	case KeyImageClipShape:
		return m.ImageClipShape, true
	case KeyImageScaleX:
		return m.ImageScaleX, true
	case KeyImageScaleY:
		return m.ImageScaleY, true
	case KeyImagePosition:
		return m.ImagePosition, true
	case KeyBlur:
		return m.Blur, true
	case KeyVideoRotation:
		return m.VideoRotation, true
	case KeyImageRotation:
		return m.ImageRotation, true
	case KeyImageRotationTransition:
		return m.ImageRotationTransition, true
	case KeyImageRotationTransitionDuration:
		return m.ImageRotationTransitionDuration, true
	}
	return nil, false
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
