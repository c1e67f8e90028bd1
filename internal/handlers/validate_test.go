package handlers

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"signage/internal/layout"
	"signage/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestDecodeStyle(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKeys int
		wantNil  bool
		wantErr  bool
	}{
		{"absent", ``, 0, true, false},
		{"null", `null`, 0, true, false},
		{"object", `{"a":1,"b":2}`, 2, false, false},
		{"string holding object", `"{\"a\":1}"`, 1, false, false},
		{"empty object", `{}`, 0, false, false},
		{"array", `[1]`, 0, false, true},
		{"number", `5`, 0, false, true},
		{"string holding array", `"[1]"`, 0, false, true},
		{"string holding junk", `"{oops"`, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := decodeStyle(json.RawMessage(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil != (doc == nil) {
				t.Errorf("nil document: got %v, want %v", doc == nil, tt.wantNil)
			}
			if len(doc) != tt.wantKeys {
				t.Errorf("keys: got %d, want %d", len(doc), tt.wantKeys)
			}
		})
	}
}

func TestValidateTemplatePatch(t *testing.T) {
	tests := []struct {
		name      string
		patch     models.TemplatePatch
		wantError bool
	}{
		{"empty", models.TemplatePatch{}, false},
		{"valid name", models.TemplatePatch{DisplayName: ptr("Lobby")}, false},
		{"blank name", models.TemplatePatch{DisplayName: ptr("  ")}, true},
		{"name too long", models.TemplatePatch{DisplayName: ptr(strings.Repeat("a", 201))}, true},
		{"description too long", models.TemplatePatch{Description: ptr(strings.Repeat("a", 2001))}, true},
		{"one block", models.TemplatePatch{BlockCount: ptr(1)}, false},
		{"max blocks", models.TemplatePatch{BlockCount: ptr(maxBlockCount)}, false},
		{"zero blocks", models.TemplatePatch{BlockCount: ptr(0)}, true},
		{"too many blocks", models.TemplatePatch{BlockCount: ptr(maxBlockCount + 1)}, true},
		{"grid mode", models.TemplatePatch{LayoutMode: ptr(layout.ModeGrid)}, false},
		{"auto mode", models.TemplatePatch{LayoutMode: ptr(layout.ModeAuto)}, false},
		{"unknown mode", models.TemplatePatch{LayoutMode: ptr(layout.Mode("flex"))}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateTemplatePatch(tt.patch)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateRect(t *testing.T) {
	tests := []struct {
		name      string
		patch     models.BlockPatch
		wantError bool
	}{
		{"style only", models.BlockPatch{StyleConfig: json.RawMessage(`{}`)}, false},
		{"full rect", models.BlockPatch{PositionX: ptr(0.0), PositionY: ptr(50.0), Width: ptr(100.0), Height: ptr(50.0)}, false},
		{"thirds", models.BlockPatch{PositionX: ptr(66.67), Width: ptr(33.33)}, false},
		{"zero height", models.BlockPatch{Height: ptr(0.0)}, true},
		{"over 100", models.BlockPatch{Width: ptr(100.5)}, true},
		{"negative y", models.BlockPatch{PositionY: ptr(-0.1)}, true},
		{"NaN", models.BlockPatch{PositionX: ptr(math.NaN())}, true},
		{"past bottom", models.BlockPatch{PositionY: ptr(80.0), Height: ptr(30.0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateRect(tt.patch)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateNewContent(t *testing.T) {
	url := "https://cdn.example.com/a.png"
	tests := []struct {
		name      string
		content   models.BlockContent
		wantError bool
	}{
		{"image", models.BlockContent{ContentType: models.ContentTypeImage, ImageURL: &url}, false},
		{"image without url", models.BlockContent{ContentType: models.ContentTypeImage}, true},
		{"video blank url", models.BlockContent{ContentType: models.ContentTypeVideo, ImageURL: ptr(" ")}, true},
		{"drink with price", models.BlockContent{ContentType: models.ContentTypeDrink, ImageURL: &url, Price: ptr(3.5)}, false},
		{"drink NaN price", models.BlockContent{ContentType: models.ContentTypeDrink, ImageURL: &url, Price: ptr(math.NaN())}, true},
		{"badge", models.BlockContent{ContentType: models.ContentTypeCampaignBadge, Title: ptr("NEW")}, false},
		{"icon without title", models.BlockContent{ContentType: models.ContentTypeIcon}, true},
		{"text too long", models.BlockContent{ContentType: models.ContentTypeText, Title: ptr(strings.Repeat("a", 301))}, true},
		{"regional menu bare", models.BlockContent{ContentType: models.ContentTypeRegionalMenu}, false},
		{"url too long", models.BlockContent{ContentType: models.ContentTypeImage, ImageURL: ptr("https://x/" + strings.Repeat("a", 2048))}, true},
		{"unknown type", models.BlockContent{ContentType: "poster"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateNewContent(&tt.content)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}
