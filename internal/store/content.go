// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"signage/internal/models"
)

// ContentStore handles block content operations.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

const contentColumns = `id, template_block_id, content_type, title, price::float8, description, image_url,
	style_config::text, display_order, version, created_at, updated_at`

func scanContent(row rowScanner) (*models.BlockContent, error) {
	c := &models.BlockContent{}
	var ct string
	var style []byte
	if err := row.Scan(
		&c.ID, &c.TemplateBlockID, &ct, &c.Title, &c.Price, &c.Description, &c.ImageURL,
		&style, &c.DisplayOrder, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.ContentType = models.ContentType(ct)
	c.StyleConfig = style
	return c, nil
}

// ListByBlock returns the contents of a block in display order.
func (s *ContentStore) ListByBlock(ctx context.Context, blockID uuid.UUID) ([]models.BlockContent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contentColumns+` FROM template_block_contents
		WHERE template_block_id = $1
		ORDER BY display_order, created_at
	`, blockID)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	defer rows.Close()

	var contents []models.BlockContent
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		contents = append(contents, *c)
	}
	return contents, rows.Err()
}

// FindByID retrieves a content by its UUID. Returns nil if not found.
func (s *ContentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.BlockContent, error) {
	c, err := scanContent(s.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM template_block_contents WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return c, nil
}

// Create inserts a content at the end of its block. Media and regional
// menus are exclusive: any content they displace is deleted in the same
// transaction.
func (s *ContentStore) Create(ctx context.Context, c *models.BlockContent) (*models.BlockContent, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var blockID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM template_blocks WHERE id = $1 FOR UPDATE`, c.TemplateBlockID,
	).Scan(&blockID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock block: %w", err)
	}

	if displaced := c.ContentType.Displaces(); len(displaced) > 0 {
		types := make([]string, len(displaced))
		for i, t := range displaced {
			types[i] = string(t)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM template_block_contents
			WHERE template_block_id = $1 AND content_type = ANY($2)
		`, blockID, types); err != nil {
			return nil, fmt.Errorf("replace exclusive content: %w", err)
		}
	}

	style := c.StyleConfig
	if len(style) == 0 {
		style = []byte("{}")
	}
	created, err := scanContent(tx.QueryRowContext(ctx, `
		INSERT INTO template_block_contents
			(template_block_id, content_type, title, price, description, image_url, style_config, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb,
			(SELECT COALESCE(MAX(display_order) + 1, 0) FROM template_block_contents WHERE template_block_id = $1))
		RETURNING `+contentColumns,
		blockID, string(c.ContentType), c.Title, c.Price, c.Description, c.ImageURL, string(style),
	))
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// Patch applies a partial update. The style document is merged per
// top-level key so concurrent edits to different keys never clobber each
// other. When p.IfVersion is set and does not match, ErrVersionConflict
// is returned and nothing changes.
func (s *ContentStore) Patch(ctx context.Context, id uuid.UUID, p models.ContentPatch) (*models.BlockContent, error) {
	var style any
	if len(p.StyleConfig) > 0 {
		style = string(p.StyleConfig)
	}
	c, err := scanContent(s.db.QueryRowContext(ctx, `
		UPDATE template_block_contents SET
			title = COALESCE($2, title),
			price = COALESCE($3, price),
			description = COALESCE($4, description),
			image_url = COALESCE($5, image_url),
			style_config = style_config || COALESCE($6::jsonb, '{}'::jsonb),
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND ($7::int IS NULL OR version = $7)
		RETURNING `+contentColumns,
		id, p.Title, p.Price, p.Description, p.ImageURL, style, p.IfVersion,
	))
	if errors.Is(err, sql.ErrNoRows) {
		existing, ferr := s.FindByID(ctx, id)
		if ferr != nil {
			return nil, ferr
		}
		if existing == nil {
			return nil, models.ErrNotFound
		}
		return nil, models.ErrVersionConflict
	}
	if err != nil {
		return nil, fmt.Errorf("patch content: %w", err)
	}
	return c, nil
}

// Delete removes a content.
func (s *ContentStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM template_block_contents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CountByBlock returns how many contents a block holds.
func (s *ContentStore) CountByBlock(ctx context.Context, blockID uuid.UUID) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM template_block_contents WHERE template_block_id = $1`, blockID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contents: %w", err)
	}
	return n, nil
}
