package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"signage/internal/models"
	"signage/internal/styleconfig"
)

func TestPatchBlock_StyleMergesPerKey(t *testing.T) {
	env := newTestEnv(t)
	_, blocks := env.DB.addTemplate(2)
	id := blocks[0].ID.String()

	// style_config arrives as a JSON string holding JSON.
	rec := do(t, env.API.PatchBlock, http.MethodPatch, "/template-blocks/x",
		map[string]any{"style_config": `{"background_color":"#112233"}`}, "id", id)
	if rec.Code != http.StatusOK {
		t.Fatalf("first patch: got status %d: %s", rec.Code, rec.Body)
	}
	rec = do(t, env.API.PatchBlock, http.MethodPatch, "/template-blocks/x",
		map[string]any{"style_config": map[string]any{"background_image": "https://cdn.example.com/bg.jpg"}}, "id", id)
	if rec.Code != http.StatusOK {
		t.Fatalf("second patch: got status %d: %s", rec.Code, rec.Body)
	}

	got := decode[models.Block](t, rec)
	style := styleconfig.DecodeBlock(styleconfig.Parse(got.StyleConfig))
	if style.BackgroundColor != "#112233" {
		t.Errorf("background_color lost: %q", style.BackgroundColor)
	}
	if style.BackgroundImage != "https://cdn.example.com/bg.jpg" {
		t.Errorf("background_image: got %q", style.BackgroundImage)
	}
}

func TestPatchBlock_Rejections(t *testing.T) {
	env := newTestEnv(t)
	_, blocks := env.DB.addTemplate(2)
	id := blocks[0].ID.String()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty", `{}`, http.StatusBadRequest},
		{"style array", `{"style_config": [1, 2]}`, http.StatusBadRequest},
		{"style string not object", `{"style_config": "\"x\""}`, http.StatusBadRequest},
		{"zero width", `{"width": 0}`, http.StatusUnprocessableEntity},
		{"negative x", `{"position_x": -1}`, http.StatusUnprocessableEntity},
		{"past right edge", `{"position_x": 60, "width": 50}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, env.API.PatchBlock, http.MethodPatch, "/template-blocks/x", tt.body, "id", id)
			if rec.Code != tt.status {
				t.Errorf("got status %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
		})
	}
}

func TestPatchBlock_Missing_Returns404(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.API.PatchBlock, http.MethodPatch, "/template-blocks/x", `{"width": 10}`, "id", uuid.NewString())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
}

func TestDeleteBlock_RenumbersRemaining(t *testing.T) {
	env := newTestEnv(t)
	tmpl, blocks := env.DB.addTemplate(3)

	rec := do(t, env.API.DeleteBlock, http.MethodDelete, "/template-blocks/x", nil, "id", blocks[0].ID.String())
	if rec.Code != http.StatusNoContent {
		t.Fatalf("got status %d, want 204", rec.Code)
	}

	left, _ := memBlocks{env.DB}.ListByTemplate(t.Context(), tmpl.ID)
	if len(left) != 2 || left[0].ID != blocks[1].ID || left[0].BlockIndex != 0 || left[1].BlockIndex != 1 {
		t.Errorf("remaining blocks: %+v", left)
	}

	rec = do(t, env.API.DeleteBlock, http.MethodDelete, "/template-blocks/x", nil, "id", blocks[0].ID.String())
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: got status %d, want 404", rec.Code)
	}
}

func TestResetBlock_DeletesContents(t *testing.T) {
	env := newTestEnv(t)
	_, blocks := env.DB.addTemplate(1)
	title := "Sale"
	for i := 0; i < 2; i++ {
		if _, err := (memContents{env.DB}).Create(t.Context(), &models.BlockContent{
			TemplateBlockID: blocks[0].ID, ContentType: models.ContentTypeText, Title: &title,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rec := do(t, env.API.ResetBlock, http.MethodDelete, "/template-blocks/x/contents", nil, "id", blocks[0].ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if got := decode[map[string]int64](t, rec)["deleted"]; got != 2 {
		t.Errorf("deleted: got %d, want 2", got)
	}
	if left := env.DB.contentsOf(blocks[0].ID); len(left) != 0 {
		t.Errorf("%d contents left", len(left))
	}
}
