// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package styleconfig

import "encoding/json"

// Top-level keys of a media (image/video) style document.
const (
	KeyTextLayers                      = "textLayers"
	KeyOverlayImages                   = "overlayImages"
	KeyImageFit                        = "imageFit"
	KeyImageOpacity                    = "imageOpacity"
	KeyImageClipShape                  = "imageClipShape"
	KeyImageScaleX                     = "imageScaleX"
	KeyImageScaleY                     = "imageScaleY"
	KeyImagePosition                   = "imagePosition"
	KeyBlur                            = "blur"
	KeyVideoRotation                   = "videoRotation"
	KeyImageRotation                   = "imageRotation"
	KeyImageRotationTransition         = "imageRotationTransition"
	KeyImageRotationTransitionDuration = "imageRotationTransitionDuration"
)

// Fit is how media fills its block.
type Fit string

const (
	FitCover   Fit = "cover"
	FitContain Fit = "contain"
)

// ClipShape is the mask applied to the media.
type ClipShape string

const (
	ClipRect   ClipShape = "rect"
	ClipCircle ClipShape = "circle"
)

// TextAlign is the horizontal alignment of a text layer.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// IconPosition places a text layer's icon relative to the text.
type IconPosition string

const (
	IconBefore IconPosition = "before"
	IconAfter  IconPosition = "after"
)

// OverlayShape is the frame of an overlay image.
type OverlayShape string

const (
	ShapeRound   OverlayShape = "round"
	ShapeSquare  OverlayShape = "square"
	ShapeRounded OverlayShape = "rounded"
	ShapeShadow  OverlayShape = "shadow"
)

// DiscountAnimation is the animation preset of a discount block.
type DiscountAnimation string

// DiscountAnimations lists the presets in display order.
var DiscountAnimations = []DiscountAnimation{
	"none", "pulse", "bounce", "shake", "glow", "flash",
	"swing", "wobble", "heartbeat", "float", "spin",
}

// DiscountBlockStyle is the visual preset of a discount block.
type DiscountBlockStyle string

// DiscountBlockStyles lists the presets in display order.
var DiscountBlockStyles = []DiscountBlockStyle{
	"rounded", "pill", "square", "outline", "circle",
	"tag", "ribbon", "burst", "shadow", "gradient",
}

// TextLayer is a positioned text annotation drawn over media.
// X and Y are percent of the container; Size is a px-equivalent unit.
type TextLayer struct {
	ID             string       `json:"id"`
	Text           string       `json:"text"`
	Color          string       `json:"color,omitempty"`
	Size           float64      `json:"size"`
	X              float64      `json:"x"`
	Y              float64      `json:"y"`
	FontWeight     string       `json:"fontWeight,omitempty"`
	FontStyle      string       `json:"fontStyle,omitempty"`
	FontFamily     string       `json:"fontFamily,omitempty"`
	TextDecoration string       `json:"textDecoration,omitempty"`
	TextAlign      TextAlign    `json:"textAlign,omitempty"`
	Icon           string       `json:"icon,omitempty"`
	IconPosition   IconPosition `json:"iconPosition,omitempty"`

	IsDiscountBlock    bool               `json:"isDiscountBlock,omitempty"`
	DiscountPercent    int                `json:"discountPercent,omitempty"`
	BlockColor         string             `json:"blockColor,omitempty"`
	DiscountAnimation  DiscountAnimation  `json:"discountAnimation,omitempty"`
	DiscountBlockStyle DiscountBlockStyle `json:"discountBlockStyle,omitempty"`
}

// OverlayImage is a small image composited over media.
type OverlayImage struct {
	ID       string       `json:"id"`
	ImageURL string       `json:"imageUrl"`
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	Size     float64      `json:"size"`
	Shape    OverlayShape `json:"shape,omitempty"`
}

// RotationItem is one entry after the first item of a rotation.
type RotationItem struct {
	URL                   string      `json:"url"`
	DurationSeconds       int         `json:"durationSeconds"`
	SourceDurationSeconds int         `json:"sourceDurationSeconds,omitempty"`
	TextLayers            []TextLayer `json:"textLayers,omitempty"`

	// Image rotations only.
	Title              string     `json:"title,omitempty"`
	Price              *float64   `json:"price,omitempty"`
	IsVideo            bool       `json:"isVideo,omitempty"`
	TransitionType     Transition `json:"transitionType,omitempty"`
	TransitionDuration *int       `json:"transitionDuration,omitempty"`
}

// UnmarshalJSON accepts image_url as an alias of url, as written by older
// editors.
func (it *RotationItem) UnmarshalJSON(b []byte) error {
	type plain RotationItem
	var aux struct {
		plain
		ImageURL string `json:"image_url"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*it = RotationItem(aux.plain)
	if it.URL == "" {
		it.URL = aux.ImageURL
	}
	return nil
}

// VideoRotation is the videoRotation key.
type VideoRotation struct {
	FirstVideoDurationSeconds int            `json:"firstVideoDurationSeconds"`
	RotationItems             []RotationItem `json:"rotationItems"`
	PlayOnce                  bool           `json:"playOnce,omitempty"`
}

// ImageRotation is the imageRotation key.
type ImageRotation struct {
	FirstImageDurationSeconds int            `json:"firstImageDurationSeconds"`
	RotationItems             []RotationItem `json:"rotationItems"`
	PlayOnce                  bool           `json:"playOnce,omitempty"`

	FirstImageTransitionType     Transition `json:"firstImageTransitionType,omitempty"`
	FirstImageTransitionDuration *int       `json:"firstImageTransitionDuration,omitempty"`
}
