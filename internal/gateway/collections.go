package gateway

import (
	"log/slog"

	"github.com/hitoshi/listman/internal/model"
)

// チェックリスト/テンプレートそれぞれのID規約を束ねた型付きコンストラクタ。

// ChecklistID はチェックリストのIDアクセサ。
func ChecklistID(c model.Checklist) string { return c.ID }

// TemplateID はテンプレートのIDアクセサ。
func TemplateID(t model.ChecklistTemplate) string { return t.ID }

func setChecklistID(c model.Checklist, id string) model.Checklist {
	c.ID = id
	return c
}

func setTemplateID(t model.ChecklistTemplate, id string) model.ChecklistTemplate {
	t.ID = id
	return t
}

// NewChecklistCollection はチェックリストコレクションのゲートウェイを生成する。
func NewChecklistCollection(backend Backend[model.Checklist], logger *slog.Logger) *Collection[model.Checklist] {
	return NewCollection(backend, logger, ChecklistID, setChecklistID)
}

// NewTemplateCollection はテンプレートコレクションのゲートウェイを生成する。
func NewTemplateCollection(backend Backend[model.ChecklistTemplate], logger *slog.Logger) *Collection[model.ChecklistTemplate] {
	return NewCollection(backend, logger, TemplateID, setTemplateID)
}
