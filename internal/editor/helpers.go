// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"signage/internal/gesture"
	"signage/internal/models"
	"signage/internal/rotation"
	"signage/internal/styleconfig"
)

// Defaults for new layers.
const (
	DefaultLayerText  = "New text"
	DefaultLayerColor = "#FFFFFF"

	overlayCascadeStart = 25.0
	overlayCascadeStep  = 8.0
)

// ErrLayerNotFound is returned when a layer id does not exist in the
// edited phase.
var ErrLayerNotFound = errors.New("layer not found")

// media decodes the local style of a content.
func (w *Workspace) media(id uuid.UUID) (styleconfig.MediaStyle, models.BlockContent, error) {
	c, ok := w.Content(id)
	if !ok {
		return styleconfig.MediaStyle{}, c, fmt.Errorf("content %s: %w", id, models.ErrNotFound)
	}
	return styleconfig.DecodeMedia(styleconfig.Parse(c.StyleConfig)), c, nil
}

// MediaStyle returns the decoded local style of a content.
func (w *Workspace) MediaStyle(id uuid.UUID) (styleconfig.MediaStyle, error) {
	m, _, err := w.media(id)
	return m, err
}

// applyStyle persists the listed keys of m.
func (w *Workspace) applyStyle(id uuid.UUID, m *styleconfig.MediaStyle, undo func(), keys ...string) error {
	doc, err := m.Patch(keys...)
	if err != nil {
		return err
	}
	return w.apply(id, models.ContentPatch{StyleConfig: doc.Bytes()}, undo)
}

// TextLayers returns the text layers of the displayed phase.
func (w *Workspace) TextLayers(id uuid.UUID) ([]styleconfig.TextLayer, error) {
	m, _, err := w.media(id)
	if err != nil {
		return nil, err
	}
	return m.PhaseLayers(w.DisplayedPhase(id).RotationIndex()), nil
}

func (w *Workspace) editPhaseLayers(id uuid.UUID, fn func([]styleconfig.TextLayer) ([]styleconfig.TextLayer, error)) error {
	m, _, err := w.media(id)
	if err != nil {
		return err
	}
	idx := w.DisplayedPhase(id).RotationIndex()
	layers, err := fn(slices.Clone(m.PhaseLayers(idx)))
	if err != nil {
		return err
	}
	key, err := m.SetPhaseLayers(idx, layers)
	if err != nil {
		return err
	}
	return w.applyStyle(id, &m, nil, key)
}

// AddTextLayer adds a text layer to the displayed phase. at is the canvas
// click position in percent; nil centres the layer.
func (w *Workspace) AddTextLayer(id uuid.UUID, at *gesture.Point) (styleconfig.TextLayer, error) {
	l := styleconfig.TextLayer{
		ID:        uuid.NewString(),
		Text:      DefaultLayerText,
		Color:     DefaultLayerColor,
		Size:      styleconfig.DefaultTextSize,
		X:         50,
		Y:         50,
		TextAlign: styleconfig.AlignCenter,
	}
	if at != nil {
		l.X, l.Y = at.X, at.Y
	}
	l.Sanitize()
	err := w.editPhaseLayers(id, func(ls []styleconfig.TextLayer) ([]styleconfig.TextLayer, error) {
		return append(ls, l), nil
	})
	return l, err
}

// UpdateTextLayer changes one text layer of the displayed phase.
func (w *Workspace) UpdateTextLayer(id uuid.UUID, layerID string, fn func(*styleconfig.TextLayer)) error {
	return w.editPhaseLayers(id, func(ls []styleconfig.TextLayer) ([]styleconfig.TextLayer, error) {
		i := slices.IndexFunc(ls, func(l styleconfig.TextLayer) bool { return l.ID == layerID })
		if i < 0 {
			return nil, ErrLayerNotFound
		}
		fn(&ls[i])
		ls[i].ID = layerID
		ls[i].Sanitize()
		return ls, nil
	})
}

// DeleteTextLayer removes a text layer from the displayed phase.
func (w *Workspace) DeleteTextLayer(id uuid.UUID, layerID string) error {
	return w.editPhaseLayers(id, func(ls []styleconfig.TextLayer) ([]styleconfig.TextLayer, error) {
		i := slices.IndexFunc(ls, func(l styleconfig.TextLayer) bool { return l.ID == layerID })
		if i < 0 {
			return nil, ErrLayerNotFound
		}
		return slices.Delete(ls, i, i+1), nil
	})
}

// AddOverlay adds an overlay image. Each new overlay is offset from the
// previous one so they do not stack exactly.
func (w *Workspace) AddOverlay(id uuid.UUID, imageURL string) (styleconfig.OverlayImage, error) {
	m, _, err := w.media(id)
	if err != nil {
		return styleconfig.OverlayImage{}, err
	}
	pos := overlayCascadeStart + float64(len(m.OverlayImages))*overlayCascadeStep
	o := styleconfig.OverlayImage{
		ID:       uuid.NewString(),
		ImageURL: imageURL,
		X:        pos,
		Y:        pos,
		Size:     styleconfig.DefaultOverlaySize,
		Shape:    styleconfig.ShapeRounded,
	}
	o.Sanitize()
	m.OverlayImages = append(m.OverlayImages, o)
	return o, w.applyStyle(id, &m, nil, styleconfig.KeyOverlayImages)
}

// RemoveOverlay deletes an overlay image. If the save fails the overlay
// comes back.
func (w *Workspace) RemoveOverlay(id uuid.UUID, overlayID string) error {
	m, c, err := w.media(id)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(m.OverlayImages, func(o styleconfig.OverlayImage) bool { return o.ID == overlayID })
	if i < 0 {
		return ErrLayerNotFound
	}
	previous, hadKey := styleconfig.Parse(c.StyleConfig)[styleconfig.KeyOverlayImages]

	undo := func() {
		cur, ok := w.contents[id]
		if !ok {
			return
		}
		doc := styleconfig.Parse(cur.StyleConfig)
		if hadKey {
			doc[styleconfig.KeyOverlayImages] = previous
		} else {
			delete(doc, styleconfig.KeyOverlayImages)
		}
		cur.StyleConfig = doc.Bytes()
	}
	m.OverlayImages = slices.Delete(m.OverlayImages, i, i+1)
	return w.applyStyle(id, &m, undo, styleconfig.KeyOverlayImages)
}

// SetImageFit sets how the image fills its block.
func (w *Workspace) SetImageFit(id uuid.UUID, fit styleconfig.Fit) error {
	return w.setMedia(id, func(m *styleconfig.MediaStyle) { m.ImageFit = fit }, styleconfig.KeyImageFit)
}

// SetImageOpacity sets the image opacity in [0, 1].
func (w *Workspace) SetImageOpacity(id uuid.UUID, opacity float64) error {
	return w.setMedia(id, func(m *styleconfig.MediaStyle) { m.ImageOpacity = &opacity }, styleconfig.KeyImageOpacity)
}

// SetClipShape sets the clip shape of the image.
func (w *Workspace) SetClipShape(id uuid.UUID, shape styleconfig.ClipShape) error {
	return w.setMedia(id, func(m *styleconfig.MediaStyle) { m.ImageClipShape = shape }, styleconfig.KeyImageClipShape)
}

// SetBlur sets the image blur radius in pixels.
func (w *Workspace) SetBlur(id uuid.UUID, blur float64) error {
	return w.setMedia(id, func(m *styleconfig.MediaStyle) { m.Blur = &blur }, styleconfig.KeyBlur)
}

// SetImageScale sets the independent horizontal and vertical scale.
func (w *Workspace) SetImageScale(id uuid.UUID, x, y float64) error {
	return w.setMedia(id, func(m *styleconfig.MediaStyle) {
		m.ImageScaleX, m.ImageScaleY = &x, &y
	}, styleconfig.KeyImageScaleX, styleconfig.KeyImageScaleY)
}

func (w *Workspace) setMedia(id uuid.UUID, fn func(*styleconfig.MediaStyle), keys ...string) error {
	m, _, err := w.media(id)
	if err != nil {
		return err
	}
	fn(&m)
	m.Sanitize()
	return w.applyStyle(id, &m, nil, keys...)
}

// SetRotationItems replaces the rotation items of a content. Video
// contents keep them under videoRotation, images under imageRotation.
func (w *Workspace) SetRotationItems(id uuid.UUID, items []styleconfig.RotationItem) error {
	m, c, err := w.media(id)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Sanitize()
		if items[i].URL == "" {
			return fmt.Errorf("item %d: %w", i, styleconfig.ErrRotationURL)
		}
	}
	if c.ContentType == models.ContentTypeVideo {
		if m.VideoRotation == nil {
			m.VideoRotation = &styleconfig.VideoRotation{FirstVideoDurationSeconds: styleconfig.DefaultFirstSecond}
		}
		m.VideoRotation.RotationItems = items
		return w.applyStyle(id, &m, nil, styleconfig.KeyVideoRotation)
	}
	if m.ImageRotation == nil {
		m.ImageRotation = &styleconfig.ImageRotation{FirstImageDurationSeconds: styleconfig.DefaultFirstSecond}
	}
	m.ImageRotation.RotationItems = items
	return w.applyStyle(id, &m, nil, styleconfig.KeyImageRotation)
}

// AddRotationItem appends one rotation item.
func (w *Workspace) AddRotationItem(id uuid.UUID, url string, seconds int) (styleconfig.RotationItem, error) {
	m, _, err := w.media(id)
	if err != nil {
		return styleconfig.RotationItem{}, err
	}
	it := styleconfig.RotationItem{URL: url, DurationSeconds: seconds}
	it.Sanitize()
	if it.URL == "" {
		return it, styleconfig.ErrRotationURL
	}
	items, _ := m.RotationItems()
	return it, w.SetRotationItems(id, append(slices.Clone(items), it))
}

// SetFirstDuration sets how long the primary item shows before the
// rotation starts.
func (w *Workspace) SetFirstDuration(id uuid.UUID, seconds int) error {
	m, c, err := w.media(id)
	if err != nil {
		return err
	}
	seconds = styleconfig.ClampFirstSeconds(seconds)
	if c.ContentType == models.ContentTypeVideo {
		if m.VideoRotation == nil {
			m.VideoRotation = &styleconfig.VideoRotation{}
		}
		m.VideoRotation.FirstVideoDurationSeconds = seconds
		return w.applyStyle(id, &m, nil, styleconfig.KeyVideoRotation)
	}
	if m.ImageRotation == nil {
		m.ImageRotation = &styleconfig.ImageRotation{}
	}
	m.ImageRotation.FirstImageDurationSeconds = seconds
	return w.applyStyle(id, &m, nil, styleconfig.KeyImageRotation)
}

// SetRotationTransition sets the transition used between image rotation
// phases.
func (w *Workspace) SetRotationTransition(id uuid.UUID, t styleconfig.Transition, millis int) error {
	if !t.Valid() {
		return fmt.Errorf("unknown transition %q", t)
	}
	return w.setMedia(id, func(m *styleconfig.MediaStyle) {
		ms := styleconfig.ClampTransitionMillis(millis)
		m.ImageRotationTransition = t
		m.ImageRotationTransitionDuration = &ms
	}, styleconfig.KeyImageRotationTransition, styleconfig.KeyImageRotationTransitionDuration)
}

// Sequence builds the rotation sequence of a content from its local
// style.
func (w *Workspace) Sequence(id uuid.UUID) (rotation.Sequence, error) {
	m, c, err := w.media(id)
	if err != nil {
		return rotation.Sequence{}, err
	}
	url := ""
	if c.ImageURL != nil {
		url = *c.ImageURL
	}
	return rotation.ForContent(c.ContentType == models.ContentTypeVideo, url, m), nil
}

// CommitEdit persists a finished gesture. It makes Workspace a
// gesture.Committer.
func (w *Workspace) CommitEdit(_ context.Context, e gesture.Edit) error {
	id, err := uuid.Parse(e.Target.ContentID)
	if err != nil {
		return fmt.Errorf("content id: %w", err)
	}
	m, _, err := w.media(id)
	if err != nil {
		return err
	}
	switch e.Layer {
	case gesture.LayerText:
		key, err := m.SetPhaseLayers(e.Target.Phase.RotationIndex(), e.Layers.Text)
		if err != nil {
			return err
		}
		return w.applyStyle(id, &m, nil, key)
	case gesture.LayerOverlay:
		m.OverlayImages = e.Layers.Overlays
		return w.applyStyle(id, &m, nil, styleconfig.KeyOverlayImages)
	case gesture.LayerImage:
		sx, sy := e.Layers.ScaleX, e.Layers.ScaleY
		m.ImageScaleX, m.ImageScaleY = &sx, &sy
		keys := []string{styleconfig.KeyImageScaleX, styleconfig.KeyImageScaleY}
		if e.Origin != "" {
			m.ImagePosition = e.Origin
			keys = append(keys, styleconfig.KeyImagePosition)
		}
		m.Sanitize()
		return w.applyStyle(id, &m, nil, keys...)
	}
	return fmt.Errorf("unknown layer kind %q", e.Layer)
}

// GestureLayers returns the state a gesture on target starts from.
func (w *Workspace) GestureLayers(target gesture.Target) (gesture.Layers, error) {
	id, err := uuid.Parse(target.ContentID)
	if err != nil {
		return gesture.Layers{}, fmt.Errorf("content id: %w", err)
	}
	m, _, err := w.media(id)
	if err != nil {
		return gesture.Layers{}, err
	}
	return gesture.Layers{
		Text:     slices.Clone(m.PhaseLayers(target.Phase.RotationIndex())),
		Overlays: slices.Clone(m.OverlayImages),
		ScaleX:   m.ScaleX(),
		ScaleY:   m.ScaleY(),
	}, nil
}

// AddFromSelection turns a content library pick into block content. A
// background pick sets the block background instead and returns nil.
// Image, video and regional menu contents replace any existing content of
// the same kind in the block.
func (w *Workspace) AddFromSelection(ctx context.Context, blockID uuid.UUID, sel models.Selection) (*models.BlockContent, error) {
	if sel.IsBackground() {
		return nil, w.SetBlockBackground(ctx, blockID, sel.Value())
	}
	c, err := sel.ToContent()
	if err != nil {
		return nil, err
	}
	c.TemplateBlockID = blockID
	if c.ContentType == models.ContentTypeRegionalMenu {
		menu := styleconfig.RegionalMenuStyle{}
		menu.Sanitize()
		c.StyleConfig = menu.Document().Bytes()
	}

	w.mu.Lock()
	for _, existing := range w.contents {
		if existing.TemplateBlockID == blockID && existing.DisplayOrder >= c.DisplayOrder {
			c.DisplayOrder = existing.DisplayOrder + 1
		}
	}
	w.mu.Unlock()

	created, err := w.backend.CreateContent(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if created.ContentType.Exclusive() {
		for cid, existing := range w.contents {
			if existing.TemplateBlockID == blockID && sameExclusiveKind(existing.ContentType, created.ContentType) {
				delete(w.contents, cid)
			}
		}
	}
	cp := *created
	w.contents[created.ID] = &cp
	return created, nil
}

func sameExclusiveKind(a, b models.ContentType) bool {
	if a.IsMedia() && b.IsMedia() {
		return true
	}
	return a == b && a.Exclusive()
}

// DeleteContent removes a content from the block.
func (w *Workspace) DeleteContent(ctx context.Context, id uuid.UUID) error {
	if err := w.backend.DeleteContent(ctx, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	w.mu.Lock()
	delete(w.contents, id)
	delete(w.phases, id)
	w.mu.Unlock()
	return nil
}

// SetBlockBackground sets a block background image, clearing any
// gradient.
func (w *Workspace) SetBlockBackground(ctx context.Context, blockID uuid.UUID, url string) error {
	return w.patchBlockStyle(ctx, blockID, styleconfig.BackgroundImagePatch(url))
}

// SetBlockColor sets a block background colour.
func (w *Workspace) SetBlockColor(ctx context.Context, blockID uuid.UUID, color string) error {
	return w.patchBlockStyle(ctx, blockID, styleconfig.BackgroundColorPatch(color))
}

func (w *Workspace) patchBlockStyle(ctx context.Context, blockID uuid.UUID, patch styleconfig.Document) error {
	saved, err := w.backend.PatchBlock(ctx, blockID, models.BlockPatch{StyleConfig: json.RawMessage(patch.Bytes())})
	if err != nil {
		w.report.Report(fmt.Errorf("save block style: %w", err))
		return fmt.Errorf("patch block: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.blocks {
		if w.blocks[i].ID == blockID {
			if saved != nil {
				w.blocks[i] = *saved
			} else {
				doc := styleconfig.Merge(styleconfig.Parse(w.blocks[i].StyleConfig), patch)
				w.blocks[i].StyleConfig = doc.Bytes()
			}
		}
	}
	return nil
}
