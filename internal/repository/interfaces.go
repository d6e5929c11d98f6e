// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/listman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByGoogleID はGoogleサブジェクトIDでユーザーを検索する。見つからない場合はnilを返す。
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error
}

// RefreshTokenRepository はリフレッシュトークンの永続化インターフェース。
// トークン値のユニーク制約がcreate/delete/findの原子性を担保する。
type RefreshTokenRepository interface {
	// Create はリフレッシュトークンレコードを作成する。
	// トークン値が既に存在する場合はmodel.ErrDuplicateTokenを返す。
	Create(ctx context.Context, token *model.RefreshToken) error

	// FindValid は有効期限内のトークンレコードを取得する。
	// 存在しない場合と期限切れの場合はnilを返す（ちょうど期限時刻のものは期限切れ扱い）。
	FindValid(ctx context.Context, token string) (*model.RefreshToken, error)

	// Delete は指定トークンのレコードを削除する。存在しない場合もエラーにしない（冪等）。
	Delete(ctx context.Context, token string) error
}

// ChecklistRepository はチェックリストの永続化インターフェース。
type ChecklistRepository interface {
	// List は全チェックリストを作成日時の降順で返す。
	List(ctx context.Context) ([]model.Checklist, error)

	// FindByID は指定IDのチェックリストを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Checklist, error)

	// Create はチェックリストを作成する。
	Create(ctx context.Context, checklist *model.Checklist) error

	// Patch は指定フィールドのみを部分更新し、更新後のエンティティを返す。
	// nilフィールドは変更しない。対象が存在しない場合はnilを返す。
	Patch(ctx context.Context, id string, patch *model.ChecklistPatch) (*model.Checklist, error)

	// Delete は指定IDのチェックリストを削除する。存在しない場合もエラーにしない。
	Delete(ctx context.Context, id string) error
}

// TemplateRepository はチェックリストテンプレートの永続化インターフェース。
type TemplateRepository interface {
	// List は全テンプレートを作成日時の降順で返す。
	List(ctx context.Context) ([]model.ChecklistTemplate, error)

	// FindByID は指定IDのテンプレートを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.ChecklistTemplate, error)

	// Create はテンプレートを作成する。
	Create(ctx context.Context, template *model.ChecklistTemplate) error

	// Patch は指定フィールドのみを部分更新し、更新後のエンティティを返す。
	// nilフィールドは変更しない。対象が存在しない場合はnilを返す。
	Patch(ctx context.Context, id string, patch *model.TemplatePatch) (*model.ChecklistTemplate, error)

	// Delete は指定IDのテンプレートを削除する。存在しない場合もエラーにしない。
	Delete(ctx context.Context, id string) error
}
