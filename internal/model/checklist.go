package model

import "time"

// ChecklistItem はチェックリスト内の1項目を表す。
// IDは親チェックリスト内で一意。
type ChecklistItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Checklist は進捗を追跡できる具体的なチェックリストを表す。
// TemplateIDは生成元テンプレートへの参照情報であり、所有関係ではない。
// テンプレートが削除されてもチェックリストは無効にならない。
type Checklist struct {
	ID          string          `json:"id"`
	TemplateID  *string         `json:"templateId,omitempty"`
	Title       string          `json:"title"`
	Icon        string          `json:"icon"`
	ColorScheme string          `json:"colorScheme"`
	Items       []ChecklistItem `json:"items"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ChecklistTemplateItem はテンプレート内の1項目を表す。完了状態は持たない。
type ChecklistTemplateItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ChecklistTemplate は再利用可能なチェックリストの雛形を表す。
type ChecklistTemplate struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Icon        string                  `json:"icon"`
	ColorScheme string                  `json:"colorScheme"`
	Items       []ChecklistTemplateItem `json:"items"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// ChecklistPatch はチェックリストの部分更新を表す。
// nilフィールドは変更しない。
type ChecklistPatch struct {
	TemplateID  *string          `json:"templateId"`
	Title       *string          `json:"title"`
	Icon        *string          `json:"icon"`
	ColorScheme *string          `json:"colorScheme"`
	Items       *[]ChecklistItem `json:"items"`
}

// TemplatePatch はテンプレートの部分更新を表す。
// nilフィールドは変更しない。
type TemplatePatch struct {
	Title       *string                  `json:"title"`
	Icon        *string                  `json:"icon"`
	ColorScheme *string                  `json:"colorScheme"`
	Items       *[]ChecklistTemplateItem `json:"items"`
}
