// Package checklist はチェックリストのドメインロジックを提供する。
package checklist

import (
	"github.com/hitoshi/listman/internal/model"
)

// Instantiate はテンプレートから新しいチェックリストを生成する。
// タイトル・アイコン・カラースキームをコピーし、templateIdに元テンプレートの
// IDを記録する。各項目は新しいIDを採番し、未完了状態で初期化する。
// 元のテンプレートは変更しない。
// newIDはIDの採番関数。テストでは決定的な採番を注入できる。
func Instantiate(tmpl *model.ChecklistTemplate, newID func() string) *model.Checklist {
	id := newID()

	items := make([]model.ChecklistItem, len(tmpl.Items))
	for i, item := range tmpl.Items {
		items[i] = model.ChecklistItem{
			ID:        newID(),
			Text:      item.Text,
			Completed: false,
		}
	}

	templateID := tmpl.ID

	return &model.Checklist{
		ID:          id,
		TemplateID:  &templateID,
		Title:       tmpl.Title,
		Icon:        tmpl.Icon,
		ColorScheme: tmpl.ColorScheme,
		Items:       items,
	}
}
