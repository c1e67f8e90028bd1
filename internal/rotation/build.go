// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package rotation

import (
	"time"

	"signage/internal/styleconfig"
)

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// VideoSequence builds the sequence of a video content. Video rotations
// switch without a transition effect.
func VideoSequence(firstURL string, vr *styleconfig.VideoRotation) Sequence {
	s := Sequence{
		First:      Item{URL: firstURL, IsVideo: true, Duration: seconds(styleconfig.DefaultFirstSecond)},
		Transition: styleconfig.TransitionNone,
	}
	if vr == nil {
		return s
	}
	s.First.Duration = seconds(styleconfig.ClampFirstSeconds(vr.FirstVideoDurationSeconds))
	s.PlayOnce = vr.PlayOnce
	for _, ri := range vr.RotationItems {
		ri.Sanitize()
		if ri.URL == "" {
			continue
		}
		s.Items = append(s.Items, Item{
			URL:                   ri.URL,
			Duration:              seconds(ri.DurationSeconds),
			IsVideo:               true,
			SourceDurationSeconds: ri.SourceDurationSeconds,
			TextLayers:            ri.TextLayers,
		})
	}
	return s
}

// ImageSequence builds the sequence of an image content from its style.
// Rotation items may themselves be videos; they play without a nested
// rotation.
func ImageSequence(firstURL string, m styleconfig.MediaStyle) Sequence {
	s := Sequence{
		First:              Item{URL: firstURL, IsVideo: styleconfig.IsVideoURL(firstURL), Duration: seconds(styleconfig.DefaultFirstSecond)},
		Transition:         styleconfig.TransitionFade,
		TransitionDuration: millis(styleconfig.DefaultTransitionMillis),
	}
	if m.ImageRotationTransition != "" {
		s.Transition = m.ImageRotationTransition
	}
	if m.ImageRotationTransitionDuration != nil {
		s.TransitionDuration = millis(styleconfig.ClampTransitionMillis(*m.ImageRotationTransitionDuration))
	}
	ir := m.ImageRotation
	if ir == nil {
		return s
	}
	s.First.Duration = seconds(styleconfig.ClampFirstSeconds(ir.FirstImageDurationSeconds))
	s.First.Transition = ir.FirstImageTransitionType
	if ir.FirstImageTransitionDuration != nil {
		s.First.TransitionDuration = millis(styleconfig.ClampTransitionMillis(*ir.FirstImageTransitionDuration))
	}
	s.PlayOnce = ir.PlayOnce
	for _, ri := range ir.RotationItems {
		ri.Sanitize()
		if ri.URL == "" {
			continue
		}
		it := Item{
			URL:                   ri.URL,
			Duration:              seconds(ri.DurationSeconds),
			IsVideo:               ri.IsVideo,
			Transition:            ri.TransitionType,
			SourceDurationSeconds: ri.SourceDurationSeconds,
			TextLayers:            ri.TextLayers,
			Title:                 ri.Title,
			Price:                 ri.Price,
		}
		if ri.TransitionDuration != nil {
			it.TransitionDuration = millis(*ri.TransitionDuration)
		}
		s.Items = append(s.Items, it)
	}
	return s
}

// ForContent picks the sequence for a media content: video contents use
// their videoRotation, everything else the image rotation.
func ForContent(isVideo bool, url string, m styleconfig.MediaStyle) Sequence {
	var s Sequence
	if isVideo {
		s = VideoSequence(url, m.VideoRotation)
	} else {
		s = ImageSequence(url, m)
	}
	s.First.TextLayers = m.TextLayers
	return s
}

// ClampDuration bounds a rotation item duration to [1s, 120s], tightened
// to the source length of a video when known.
func ClampDuration(seconds, source int) time.Duration {
	return time.Duration(styleconfig.ClampItemSeconds(seconds, source)) * time.Second
}
