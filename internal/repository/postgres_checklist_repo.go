package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/listman/internal/model"
)

// PostgresChecklistRepo はPostgreSQLを使用したチェックリストリポジトリ。
// 項目リストはJSONB列に格納する（項目は常に親ドキュメントごと読み書きされるため）。
type PostgresChecklistRepo struct {
	db *sql.DB
}

// NewPostgresChecklistRepo はPostgresChecklistRepoを生成する。
func NewPostgresChecklistRepo(db *sql.DB) *PostgresChecklistRepo {
	return &PostgresChecklistRepo{db: db}
}

// List は全チェックリストを作成日時の降順で返す。
func (r *PostgresChecklistRepo) List(ctx context.Context) ([]model.Checklist, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, template_id, title, icon, color_scheme, items, created_at, updated_at
		 FROM checklists ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}
	defer rows.Close()

	checklists := []model.Checklist{}
	for rows.Next() {
		c, err := scanChecklist(rows)
		if err != nil {
			return nil, err
		}
		checklists = append(checklists, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checklists: %w", err)
	}

	return checklists, nil
}

// FindByID は指定IDのチェックリストを取得する。見つからない場合はnilを返す。
func (r *PostgresChecklistRepo) FindByID(ctx context.Context, id string) (*model.Checklist, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, template_id, title, icon, color_scheme, items, created_at, updated_at
		 FROM checklists WHERE id = $1`,
		id,
	)
	c, err := scanChecklist(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create はチェックリストを作成する。
func (r *PostgresChecklistRepo) Create(ctx context.Context, checklist *model.Checklist) error {
	itemsJSON, err := json.Marshal(checklist.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal checklist items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO checklists (id, template_id, title, icon, color_scheme, items, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		checklist.ID, checklist.TemplateID, checklist.Title, checklist.Icon,
		checklist.ColorScheme, itemsJSON, checklist.CreatedAt, checklist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create checklist: %w", err)
	}
	return nil
}

// Patch は指定フィールドのみを部分更新し、更新後のエンティティを返す。
// nilフィールドはCOALESCEにより既存値を維持する。対象が存在しない場合はnilを返す。
func (r *PostgresChecklistRepo) Patch(ctx context.Context, id string, patch *model.ChecklistPatch) (*model.Checklist, error) {
	var itemsJSON []byte
	if patch.Items != nil {
		var err error
		itemsJSON, err = json.Marshal(*patch.Items)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal checklist items: %w", err)
		}
	}

	row := r.db.QueryRowContext(ctx,
		`UPDATE checklists
		 SET template_id  = COALESCE($2, template_id),
		     title        = COALESCE($3, title),
		     icon         = COALESCE($4, icon),
		     color_scheme = COALESCE($5, color_scheme),
		     items        = COALESCE($6::jsonb, items),
		     updated_at   = now()
		 WHERE id = $1
		 RETURNING id, template_id, title, icon, color_scheme, items, created_at, updated_at`,
		id, patch.TemplateID, patch.Title, patch.Icon, patch.ColorScheme, itemsJSON,
	)
	c, err := scanChecklist(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete は指定IDのチェックリストを削除する。存在しない場合もエラーにしない。
func (r *PostgresChecklistRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM checklists WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete checklist: %w", err)
	}
	return nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通スキャンインターフェース。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanChecklist は1行をmodel.Checklistに変換する。
func scanChecklist(row rowScanner) (*model.Checklist, error) {
	c := &model.Checklist{}
	var itemsJSON []byte
	err := row.Scan(
		&c.ID, &c.TemplateID, &c.Title, &c.Icon, &c.ColorScheme,
		&itemsJSON, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan checklist: %w", err)
	}

	c.Items = []model.ChecklistItem{}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checklist items: %w", err)
		}
	}

	return c, nil
}

// compile-time interface check
var _ ChecklistRepository = (*PostgresChecklistRepo)(nil)
