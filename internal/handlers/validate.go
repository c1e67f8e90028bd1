package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"signage/internal/models"
	"signage/internal/styleconfig"
)

// Validation limits for template and content fields.
const (
	maxDisplayNameLen = 200
	maxDescriptionLen = 2_000
	maxTitleLen       = 300
	maxURLLen         = 2_048
	maxBlockCount     = 24
	maxPrice          = 9_999_999_999.99
)

var errStyleNotObject = errors.New("style_config must be a JSON object")

// decodeStyle accepts style_config either as a JSON string holding a JSON
// object (the documented request shape) or as an object.
func decodeStyle(raw json.RawMessage) (styleconfig.Document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errStyleNotObject
		}
		raw = bytes.TrimSpace([]byte(s))
	}
	if len(raw) == 0 || raw[0] != '{' {
		return nil, errStyleNotObject
	}
	var doc styleconfig.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errStyleNotObject
	}
	return doc, nil
}

// validateTemplatePatch checks a template update and returns the first
// error found.
func validateTemplatePatch(p models.TemplatePatch) string {
	if p.DisplayName != nil {
		name := strings.TrimSpace(*p.DisplayName)
		if name == "" {
			return "display_name must not be empty"
		}
		if utf8.RuneCountInString(name) > maxDisplayNameLen {
			return fmt.Sprintf("display_name is too long (max %d characters)", maxDisplayNameLen)
		}
	}
	if p.Description != nil && utf8.RuneCountInString(*p.Description) > maxDescriptionLen {
		return fmt.Sprintf("description is too long (max %d characters)", maxDescriptionLen)
	}
	if p.BlockCount != nil && (*p.BlockCount < 1 || *p.BlockCount > maxBlockCount) {
		return fmt.Sprintf("block_count must be between 1 and %d", maxBlockCount)
	}
	if p.LayoutMode != nil && !p.LayoutMode.Valid() {
		return fmt.Sprintf("unknown layout_mode %q", *p.LayoutMode)
	}
	return ""
}

// validateRect checks the geometry fields of a block update. Origins lie
// in [0, 100]; sizes in (0, 100].
func validateRect(p models.BlockPatch) string {
	check := func(name string, v *float64, allowZero bool) string {
		if v == nil {
			return ""
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 || *v > 100 || (!allowZero && *v == 0) {
			return name + " must be a percentage within the canvas"
		}
		return ""
	}
	for _, msg := range []string{
		check("position_x", p.PositionX, true),
		check("position_y", p.PositionY, true),
		check("width", p.Width, false),
		check("height", p.Height, false),
	} {
		if msg != "" {
			return msg
		}
	}
	if p.PositionX != nil && p.Width != nil && *p.PositionX+*p.Width > 100.01 {
		return "block exceeds the canvas horizontally"
	}
	if p.PositionY != nil && p.Height != nil && *p.PositionY+*p.Height > 100.01 {
		return "block exceeds the canvas vertically"
	}
	return ""
}

// validateContentFields checks the scalar fields shared by create and
// update.
func validateContentFields(title, description, imageURL *string, price *float64) string {
	if title != nil && utf8.RuneCountInString(*title) > maxTitleLen {
		return fmt.Sprintf("title is too long (max %d characters)", maxTitleLen)
	}
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLen {
		return fmt.Sprintf("description is too long (max %d characters)", maxDescriptionLen)
	}
	if imageURL != nil && len(*imageURL) > maxURLLen {
		return "image_url is too long"
	}
	if price != nil && (math.IsNaN(*price) || *price < 0 || *price > maxPrice) {
		return "price must be a non-negative amount"
	}
	return ""
}

// validateNewContent checks a content about to be created.
func validateNewContent(c *models.BlockContent) string {
	if !c.ContentType.Valid() {
		return fmt.Sprintf("unknown content_type %q", c.ContentType)
	}
	if msg := validateContentFields(c.Title, c.Description, c.ImageURL, c.Price); msg != "" {
		return msg
	}
	switch c.ContentType {
	case models.ContentTypeImage, models.ContentTypeVideo, models.ContentTypeDrink:
		if c.ImageURL == nil || strings.TrimSpace(*c.ImageURL) == "" {
			return fmt.Sprintf("%s content requires image_url", c.ContentType)
		}
	case models.ContentTypeIcon, models.ContentTypeCampaignBadge, models.ContentTypeText:
		if c.Title == nil || strings.TrimSpace(*c.Title) == "" {
			return fmt.Sprintf("%s content requires title", c.ContentType)
		}
	}
	return ""
}
