package models

import (
	"fmt"
	"strings"
)

// SelectionType is the kind of item picked from the content library.
type SelectionType string

const (
	SelectionImage        SelectionType = "image"
	SelectionVideo        SelectionType = "video"
	SelectionIcon         SelectionType = "icon"
	SelectionBadge        SelectionType = "badge"
	SelectionDrink        SelectionType = "drink"
	SelectionBackground   SelectionType = "background"
	SelectionText         SelectionType = "text"
	SelectionRegionalMenu SelectionType = "regional_menu"
)

// Selection is what the content library hands over when the user picks
// an item. Only Type and URL/Content are consumed.
type Selection struct {
	Type    SelectionType `json:"type"`
	URL     string        `json:"url,omitempty"`
	Content string        `json:"content,omitempty"`
	Name    string        `json:"name,omitempty"`
}

// Value returns URL, falling back to Content.
func (s Selection) Value() string {
	if s.URL != "" {
		return s.URL
	}
	return s.Content
}

// IsBackground reports whether the selection targets the block background
// rather than creating a content record.
func (s Selection) IsBackground() bool {
	return s.Type == SelectionBackground
}

// ContentType maps the selection to the content type it creates.
func (s Selection) ContentType() (ContentType, error) {
	switch s.Type {
	case SelectionImage:
		return ContentTypeImage, nil
	case SelectionVideo:
		return ContentTypeVideo, nil
	case SelectionIcon:
		return ContentTypeIcon, nil
	case SelectionBadge:
		return ContentTypeCampaignBadge, nil
	case SelectionDrink:
		return ContentTypeDrink, nil
	case SelectionText:
		return ContentTypeText, nil
	case SelectionRegionalMenu:
		return ContentTypeRegionalMenu, nil
	}
	return "", fmt.Errorf("unsupported selection type %q", s.Type)
}

// ToContent builds the BlockContent a selection creates. The caller sets
// the owning block and persists it.
func (s Selection) ToContent() (*BlockContent, error) {
	ct, err := s.ContentType()
	if err != nil {
		return nil, err
	}
	v := strings.TrimSpace(s.Value())
	c := &BlockContent{ContentType: ct}
	switch ct {
	case ContentTypeImage, ContentTypeVideo, ContentTypeDrink:
		if v == "" {
			return nil, fmt.Errorf("%s selection has no url", s.Type)
		}
		c.ImageURL = &v
		if name := strings.TrimSpace(s.Name); name != "" {
			c.Title = &name
		}
	case ContentTypeIcon, ContentTypeCampaignBadge, ContentTypeText:
		if v == "" {
			return nil, fmt.Errorf("%s selection has no content", s.Type)
		}
		c.Title = &v
	case ContentTypeRegionalMenu:
		if name := strings.TrimSpace(s.Name); name != "" {
			c.Title = &name
		}
	}
	return c, nil
}
