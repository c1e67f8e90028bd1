// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContentType identifies what a BlockContent renders.
type ContentType string

const (
	ContentTypeImage         ContentType = "image"
	ContentTypeVideo         ContentType = "video"
	ContentTypeIcon          ContentType = "icon"
	ContentTypeCampaignBadge ContentType = "campaign_badge"
	ContentTypeDrink         ContentType = "drink"
	ContentTypeText          ContentType = "text"
	ContentTypeRegionalMenu  ContentType = "regional_menu"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeImage, ContentTypeVideo, ContentTypeIcon, ContentTypeCampaignBadge,
		ContentTypeDrink, ContentTypeText, ContentTypeRegionalMenu:
		return true
	}
	return false
}

// IsMedia reports whether t is image or video. A block holds at most one
// media content.
func (t ContentType) IsMedia() bool {
	return t == ContentTypeImage || t == ContentTypeVideo
}

// Exclusive reports whether a block may hold only one content of type t.
func (t ContentType) Exclusive() bool {
	return t.IsMedia() || t == ContentTypeRegionalMenu
}

// BlockContent is one piece of content attached to a block. StyleConfig is
// the JSON style document; its shape depends on ContentType.
type BlockContent struct {
	ID              uuid.UUID       `json:"id"`
	TemplateBlockID uuid.UUID       `json:"template_block_id"`
	ContentType     ContentType     `json:"content_type"`
	Title           *string         `json:"title"`
	Price           *float64        `json:"price"`
	Description     *string         `json:"description"`
	ImageURL        *string         `json:"image_url"`
	StyleConfig     json.RawMessage `json:"style_config"`
	DisplayOrder    int             `json:"display_order"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// VisibleContents applies the rendering rule for one block: a regional
// menu suppresses every other content type.
func VisibleContents(contents []BlockContent) []BlockContent {
	for _, c := range contents {
		if c.ContentType == ContentTypeRegionalMenu {
			return []BlockContent{c}
		}
	}
	return contents
}

// ContentPatch is a partial update of a BlockContent. Nil fields are left
// unchanged. StyleConfig is merged per top-level key into the stored
// document, never replacing it.
type ContentPatch struct {
	Title       *string         `json:"title,omitempty"`
	Price       *float64        `json:"price,omitempty"`
	Description *string         `json:"description,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
	StyleConfig json.RawMessage `json:"style_config,omitempty"`

	// IfVersion, when set, makes the update conditional on the stored
	// version.
	IfVersion *int `json:"version,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p *ContentPatch) Empty() bool {
	return p.Title == nil && p.Price == nil && p.Description == nil &&
		p.ImageURL == nil && len(p.StyleConfig) == 0
}

// Displaces returns the content types a new content of type t replaces
// on its block. Non-exclusive types displace nothing.
func (t ContentType) Displaces() []ContentType {
	switch {
	case t.IsMedia():
		return []ContentType{ContentTypeImage, ContentTypeVideo}
	case t.Exclusive():
		return []ContentType{t}
	}
	return nil
}
