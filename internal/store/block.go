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

	"signage/internal/merge"
	"signage/internal/models"
)

// BlockStore handles template block operations.
type BlockStore struct {
	db *sql.DB
}

// NewBlockStore creates a new BlockStore with the given database connection.
func NewBlockStore(db *sql.DB) *BlockStore {
	return &BlockStore{db: db}
}

const blockColumns = `id, template_id, block_index, position_x, position_y, width, height, style_config::text, created_at, updated_at`

func scanBlock(row rowScanner) (*models.Block, error) {
	b := &models.Block{}
	var style []byte
	if err := row.Scan(
		&b.ID, &b.TemplateID, &b.BlockIndex,
		&b.PositionX, &b.PositionY, &b.Width, &b.Height,
		&style, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.StyleConfig = style
	return b, nil
}

// ListByTemplate returns the blocks of a template in index order.
func (s *BlockStore) ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]models.Block, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+blockColumns+` FROM template_blocks WHERE template_id = $1 ORDER BY block_index`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []models.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

// FindByID retrieves a block by its UUID. Returns nil if not found.
func (s *BlockStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	b, err := scanBlock(s.db.QueryRowContext(ctx, `SELECT `+blockColumns+` FROM template_blocks WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find block by id: %w", err)
	}
	return b, nil
}

// Update applies a partial update. The style document is merged per
// top-level key. A geometry change bumps the template version in the same
// transaction, which retires every cached plan keyed by the old version.
func (s *BlockStore) Update(ctx context.Context, id uuid.UUID, p models.BlockPatch) (*models.Block, error) {
	var style any
	if len(p.StyleConfig) > 0 {
		style = string(p.StyleConfig)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	b, err := scanBlock(tx.QueryRowContext(ctx, `
		UPDATE template_blocks SET
			position_x = COALESCE($2, position_x),
			position_y = COALESCE($3, position_y),
			width = COALESCE($4, width),
			height = COALESCE($5, height),
			style_config = style_config || COALESCE($6::jsonb, '{}'::jsonb),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+blockColumns,
		id, p.PositionX, p.PositionY, p.Width, p.Height, style,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update block: %w", err)
	}

	if p.TouchesGeometry() {
		if _, err := tx.ExecContext(ctx,
			`UPDATE templates SET version = version + 1, updated_at = NOW() WHERE id = $1`, b.TemplateID,
		); err != nil {
			return nil, fmt.Errorf("bump template version: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit block update: %w", err)
	}
	return b, nil
}

// Delete removes a block and its contents, closes the gap in the block
// indices and decrements the template's block count.
func (s *BlockStore) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var templateID uuid.UUID
	var index int
	err = tx.QueryRowContext(ctx,
		`DELETE FROM template_blocks WHERE id = $1 RETURNING template_id, block_index`, id,
	).Scan(&templateID, &index)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `SET CONSTRAINTS ALL DEFERRED`); err != nil {
		return fmt.Errorf("defer constraints: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE template_blocks SET block_index = block_index - 1, updated_at = NOW()
		WHERE template_id = $1 AND block_index > $2
	`, templateID, index); err != nil {
		return fmt.Errorf("renumber blocks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE templates SET block_count = block_count - 1, version = version + 1, updated_at = NOW()
		WHERE id = $1
	`, templateID); err != nil {
		return fmt.Errorf("update block count: %w", err)
	}
	return tx.Commit()
}

// ResetContents deletes every content of a block.
func (s *BlockStore) ResetContents(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM template_block_contents WHERE template_block_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("reset block contents: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// ApplyMerge executes a merge plan atomically: contents of the absorbed
// blocks move to the target, the absorbed blocks are deleted, every
// survivor gets its planned index and rectangle, and the template
// switches to absolute layout.
func (s *BlockStore) ApplyMerge(ctx context.Context, plan *merge.MergePlan) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var locked uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT id FROM templates WHERE id = $1 FOR UPDATE`, plan.TemplateID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock template: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `SET CONSTRAINTS ALL DEFERRED`); err != nil {
		return fmt.Errorf("defer constraints: %w", err)
	}

	for _, id := range plan.Absorbed {
		if _, err := tx.ExecContext(ctx, `
			UPDATE template_block_contents SET template_block_id = $1, updated_at = NOW()
			WHERE template_block_id = $2
		`, plan.Target, id); err != nil {
			return fmt.Errorf("move contents of %s: %w", id, err)
		}
		result, err := tx.ExecContext(ctx,
			`DELETE FROM template_blocks WHERE id = $1 AND template_id = $2`, id, plan.TemplateID)
		if err != nil {
			return fmt.Errorf("delete block %s: %w", id, err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("delete block %s: %w", id, models.ErrNotFound)
		}
	}

	for _, a := range plan.Survivors {
		result, err := tx.ExecContext(ctx, `
			UPDATE template_blocks SET
				block_index = $2, position_x = $3, position_y = $4, width = $5, height = $6,
				updated_at = NOW()
			WHERE id = $1
		`, a.BlockID, a.NewIndex, a.Rect.X, a.Rect.Y, a.Rect.W, a.Rect.H)
		if err != nil {
			return fmt.Errorf("place block %s: %w", a.BlockID, err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("place block %s: %w", a.BlockID, models.ErrNotFound)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE templates SET block_count = $2, layout_mode = 'absolute', version = version + 1, updated_at = NOW()
		WHERE id = $1
	`, plan.TemplateID, plan.BlockCount); err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return tx.Commit()
}

// MergeStore adapts the template and block stores to merge.Store.
type MergeStore struct {
	Templates *TemplateStore
	Blocks    *BlockStore
}

func (m MergeStore) FindTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	return m.Templates.FindByID(ctx, id)
}

func (m MergeStore) ListBlocks(ctx context.Context, templateID uuid.UUID) ([]models.Block, error) {
	return m.Blocks.ListByTemplate(ctx, templateID)
}

func (m MergeStore) ApplyMerge(ctx context.Context, plan *merge.MergePlan) error {
	return m.Blocks.ApplyMerge(ctx, plan)
}
