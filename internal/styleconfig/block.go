// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package styleconfig

// Keys of a block-level style document.
const (
	KeyBackgroundColor    = "background_color"
	KeyBackgroundGradient = "background_gradient"
	KeyBackgroundImage    = "background_image"
)

// BlockStyle is the typed view of a block's own style document.
type BlockStyle struct {
	BackgroundColor    string `json:"background_color,omitempty"`
	BackgroundGradient string `json:"background_gradient,omitempty"`
	BackgroundImage    string `json:"background_image,omitempty"`
}

// DecodeBlock reads a block style document with per-key fallback.
func DecodeBlock(doc Document) BlockStyle {
	var b BlockStyle
	doc.Get(KeyBackgroundColor, &b.BackgroundColor)
	doc.Get(KeyBackgroundGradient, &b.BackgroundGradient)
	doc.Get(KeyBackgroundImage, &b.BackgroundImage)
	return b
}

// BackgroundImagePatch sets the background image and clears any gradient,
// which would otherwise be painted over it.
func BackgroundImagePatch(url string) Document {
	doc := Document{}
	doc.Set(KeyBackgroundImage, url)
	doc[KeyBackgroundGradient] = []byte("null")
	return doc
}

// BackgroundColorPatch sets a solid background color.
func BackgroundColorPatch(color string) Document {
	doc := Document{}
	doc.Set(KeyBackgroundColor, color)
	return doc
}
