package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/listman/internal/model"
)

// PostgresTemplateRepo はPostgreSQLを使用したテンプレートリポジトリ。
type PostgresTemplateRepo struct {
	db *sql.DB
}

// NewPostgresTemplateRepo はPostgresTemplateRepoを生成する。
func NewPostgresTemplateRepo(db *sql.DB) *PostgresTemplateRepo {
	return &PostgresTemplateRepo{db: db}
}

// List は全テンプレートを作成日時の降順で返す。
func (r *PostgresTemplateRepo) List(ctx context.Context) ([]model.ChecklistTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, icon, color_scheme, items, created_at, updated_at
		 FROM checklist_templates ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := []model.ChecklistTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}

	return templates, nil
}

// FindByID は指定IDのテンプレートを取得する。見つからない場合はnilを返す。
func (r *PostgresTemplateRepo) FindByID(ctx context.Context, id string) (*model.ChecklistTemplate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, icon, color_scheme, items, created_at, updated_at
		 FROM checklist_templates WHERE id = $1`,
		id,
	)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create はテンプレートを作成する。
func (r *PostgresTemplateRepo) Create(ctx context.Context, template *model.ChecklistTemplate) error {
	itemsJSON, err := json.Marshal(template.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal template items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO checklist_templates (id, title, icon, color_scheme, items, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		template.ID, template.Title, template.Icon, template.ColorScheme,
		itemsJSON, template.CreatedAt, template.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// Patch は指定フィールドのみを部分更新し、更新後のエンティティを返す。
// nilフィールドはCOALESCEにより既存値を維持する。対象が存在しない場合はnilを返す。
func (r *PostgresTemplateRepo) Patch(ctx context.Context, id string, patch *model.TemplatePatch) (*model.ChecklistTemplate, error) {
	var itemsJSON []byte
	if patch.Items != nil {
		var err error
		itemsJSON, err = json.Marshal(*patch.Items)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal template items: %w", err)
		}
	}

	row := r.db.QueryRowContext(ctx,
		`UPDATE checklist_templates
		 SET title        = COALESCE($2, title),
		     icon         = COALESCE($3, icon),
		     color_scheme = COALESCE($4, color_scheme),
		     items        = COALESCE($5::jsonb, items),
		     updated_at   = now()
		 WHERE id = $1
		 RETURNING id, title, icon, color_scheme, items, created_at, updated_at`,
		id, patch.Title, patch.Icon, patch.ColorScheme, itemsJSON,
	)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Delete は指定IDのテンプレートを削除する。存在しない場合もエラーにしない。
// テンプレート削除は参照元チェックリストに影響しない
// （templateIdは非所有の参照情報であり、カスケード削除しない）。
func (r *PostgresTemplateRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM checklist_templates WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// scanTemplate は1行をmodel.ChecklistTemplateに変換する。
func scanTemplate(row rowScanner) (*model.ChecklistTemplate, error) {
	t := &model.ChecklistTemplate{}
	var itemsJSON []byte
	err := row.Scan(
		&t.ID, &t.Title, &t.Icon, &t.ColorScheme,
		&itemsJSON, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	t.Items = []model.ChecklistTemplateItem{}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &t.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal template items: %w", err)
		}
	}

	return t, nil
}

// compile-time interface check
var _ TemplateRepository = (*PostgresTemplateRepo)(nil)
