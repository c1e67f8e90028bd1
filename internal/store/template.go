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

	"signage/internal/layout"
	"signage/internal/models"
)

// TemplateStore handles all template-related database operations.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

const templateColumns = `id, display_name, description, block_count, layout_mode, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*models.Template, error) {
	t := &models.Template{}
	var mode string
	if err := row.Scan(
		&t.ID, &t.DisplayName, &t.Description, &t.BlockCount, &mode,
		&t.Version, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.LayoutMode = layout.Mode(mode)
	return t, nil
}

// List returns all templates ordered by name.
func (s *TemplateStore) List(ctx context.Context) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY display_name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// FindByID retrieves a template by its UUID. Returns nil if not found.
func (s *TemplateStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	t, err := scanTemplate(s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return t, nil
}

// Create inserts a template together with its blocks, one per grid slot.
func (s *TemplateStore) Create(ctx context.Context, t *models.Template) (*models.Template, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created, err := scanTemplate(tx.QueryRowContext(ctx, `
		INSERT INTO templates (display_name, description, block_count, layout_mode)
		VALUES ($1, $2, $3, $4)
		RETURNING `+templateColumns,
		t.DisplayName, t.Description, t.BlockCount, string(t.LayoutMode),
	))
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	for i := 0; i < t.BlockCount; i++ {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO template_blocks (template_id, block_index) VALUES ($1, $2)`,
			created.ID, i,
		); err != nil {
			return nil, fmt.Errorf("create block %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// Update applies a partial update and increments the version. Changing
// the block count adds or removes trailing blocks and drops every custom
// rectangle, returning the template to the computed grid.
func (s *TemplateStore) Update(ctx context.Context, id uuid.UUID, p models.TemplatePatch) (*models.Template, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	cur, err := scanTemplate(tx.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock template: %w", err)
	}

	mode := cur.LayoutMode
	if p.LayoutMode != nil {
		mode = *p.LayoutMode
	}
	if p.BlockCount != nil && *p.BlockCount != cur.BlockCount {
		if err := resizeBlocks(ctx, tx, id, cur.BlockCount, *p.BlockCount); err != nil {
			return nil, err
		}
		if p.LayoutMode == nil {
			mode = layout.ModeAuto
		}
	}

	updated, err := scanTemplate(tx.QueryRowContext(ctx, `
		UPDATE templates SET
			display_name = COALESCE($2, display_name),
			description = COALESCE($3, description),
			block_count = COALESCE($4, block_count),
			layout_mode = $5,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+templateColumns,
		id, p.DisplayName, p.Description, p.BlockCount, string(mode),
	))
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

func resizeBlocks(ctx context.Context, tx *sql.Tx, templateID uuid.UUID, from, to int) error {
	if to < from {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM template_blocks WHERE template_id = $1 AND block_index >= $2`,
			templateID, to,
		); err != nil {
			return fmt.Errorf("delete trailing blocks: %w", err)
		}
	}
	for i := from; i < to; i++ {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO template_blocks (template_id, block_index) VALUES ($1, $2)`,
			templateID, i,
		); err != nil {
			return fmt.Errorf("add block %d: %w", i, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE template_blocks SET
			position_x = NULL, position_y = NULL, width = NULL, height = NULL, updated_at = NOW()
		WHERE template_id = $1
	`, templateID); err != nil {
		return fmt.Errorf("reset block rects: %w", err)
	}
	return nil
}

// Delete removes a template and, by cascade, its blocks and contents.
func (s *TemplateStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Count returns the total number of templates.
func (s *TemplateStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}
