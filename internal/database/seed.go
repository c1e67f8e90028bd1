package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// DemoTemplateName is the display name of the seeded template.
const DemoTemplateName = "Demo menu board"

// Seed populates the database with a demo template when it has none: three
// blocks on the default grid and a cover image in the first block.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM templates").Scan(&count); err != nil {
		return fmt.Errorf("seed check templates: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var templateID string
	err = tx.QueryRow(`
		INSERT INTO templates (display_name, description, block_count)
		VALUES ($1, $2, 3)
		RETURNING id
	`, DemoTemplateName, "Three block starter layout").Scan(&templateID)
	if err != nil {
		return fmt.Errorf("seed insert template: %w", err)
	}

	var firstBlock string
	for i := 0; i < 3; i++ {
		var id string
		err := tx.QueryRow(`
			INSERT INTO template_blocks (template_id, block_index)
			VALUES ($1, $2)
			RETURNING id
		`, templateID, i).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed insert block %d: %w", i, err)
		}
		if i == 0 {
			firstBlock = id
		}
	}

	_, err = tx.Exec(`
		INSERT INTO template_block_contents (template_block_id, content_type, title, image_url, style_config)
		VALUES ($1, 'image', $2, $3, $4)
	`, firstBlock, "Cover", "https://picsum.photos/seed/signage/1280/720",
		`{"imageFit":"cover","textLayers":[{"id":"welcome","text":"Welcome","x":50,"y":20,"size":48,"textAlign":"center"}]}`)
	if err != nil {
		return fmt.Errorf("seed insert content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo template", "template_id", templateID)
	return nil
}
