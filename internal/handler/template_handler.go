package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hitoshi/listman/internal/model"
	"github.com/hitoshi/listman/internal/security"
)

// TemplateStoreInterface はテンプレートハンドラーが必要とする永続化インターフェース。
type TemplateStoreInterface interface {
	List(ctx context.Context) ([]model.ChecklistTemplate, error)
	FindByID(ctx context.Context, id string) (*model.ChecklistTemplate, error)
	Create(ctx context.Context, template *model.ChecklistTemplate) error
	Patch(ctx context.Context, id string, patch *model.TemplatePatch) (*model.ChecklistTemplate, error)
	Delete(ctx context.Context, id string) error
}

// TemplateHandler はチェックリストテンプレートCRUDのHTTPハンドラー。
type TemplateHandler struct {
	store     TemplateStoreInterface
	sanitizer security.TextSanitizerService
	newID     func() string
	now       func() time.Time
}

// NewTemplateHandler はTemplateHandlerを生成する。
func NewTemplateHandler(store TemplateStoreInterface, sanitizer security.TextSanitizerService) *TemplateHandler {
	return &TemplateHandler{
		store:     store,
		sanitizer: sanitizer,
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
	}
}

// createTemplateRequest はテンプレート作成リクエストのボディ。
type createTemplateRequest struct {
	ID          string                        `json:"id"`
	Title       string                        `json:"title"`
	Icon        string                        `json:"icon"`
	ColorScheme string                        `json:"colorScheme"`
	Items       []model.ChecklistTemplateItem `json:"items"`
}

// List は全テンプレートを作成日時の降順で返す。
// GET /api/templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("failed to list templates", slog.String("error", err.Error()))
		writeEntityError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}

	writeJSON(w, http.StatusOK, templates)
}

// Create は新しいテンプレートを作成する。
// POST /api/templates
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEntityError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = h.sanitizer.Sanitize(req.Title)
	req.Icon = h.sanitizer.Sanitize(req.Icon)
	req.ColorScheme = h.sanitizer.Sanitize(req.ColorScheme)

	if req.Title == "" || req.Icon == "" || req.ColorScheme == "" {
		writeEntityError(w, http.StatusBadRequest, "title, icon and colorScheme are required")
		return
	}

	now := h.now()
	template := &model.ChecklistTemplate{
		ID:          req.ID,
		Title:       req.Title,
		Icon:        req.Icon,
		ColorScheme: req.ColorScheme,
		Items:       h.sanitizeItems(req.Items),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if template.ID == "" {
		template.ID = h.newID()
	}

	if err := h.store.Create(r.Context(), template); err != nil {
		slog.Error("failed to create template",
			slog.String("template_id", template.ID),
			slog.String("error", err.Error()),
		)
		writeEntityError(w, http.StatusInternalServerError, "failed to create template")
		return
	}

	writeJSON(w, http.StatusCreated, template)
}

// Update はテンプレートを部分更新する。送信されたフィールドのみ変更する。
// PATCH /api/templates/:id
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch model.TemplatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeEntityError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sanitizePatch(&patch); err != nil {
		writeEntityError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.store.Patch(r.Context(), id, &patch)
	if err != nil {
		slog.Error("failed to update template",
			slog.String("template_id", id),
			slog.String("error", err.Error()),
		)
		writeEntityError(w, http.StatusInternalServerError, "failed to update template")
		return
	}
	if updated == nil {
		writeEntityError(w, http.StatusNotFound, "Template not found")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete はテンプレートを削除する。参照しているチェックリストには影響しない。
// DELETE /api/templates/:id
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("failed to find template",
			slog.String("template_id", id),
			slog.String("error", err.Error()),
		)
		writeEntityError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}
	if existing == nil {
		writeEntityError(w, http.StatusNotFound, "Template not found")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		slog.Error("failed to delete template",
			slog.String("template_id", id),
			slog.String("error", err.Error()),
		)
		writeEntityError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// sanitizeItems は項目テキストをサニタイズし、欠落IDを採番する。
func (h *TemplateHandler) sanitizeItems(items []model.ChecklistTemplateItem) []model.ChecklistTemplateItem {
	sanitized := make([]model.ChecklistTemplateItem, len(items))
	for i, item := range items {
		sanitized[i] = model.ChecklistTemplateItem{
			ID:   item.ID,
			Text: h.sanitizer.Sanitize(item.Text),
		}
		if sanitized[i].ID == "" {
			sanitized[i].ID = h.newID()
		}
	}
	return sanitized
}

// sanitizePatch は部分更新のテキストフィールドをサニタイズする。
// 必須フィールドを空文字列に更新しようとした場合はエラーを返す。
func (h *TemplateHandler) sanitizePatch(patch *model.TemplatePatch) error {
	if patch.Title != nil {
		title := h.sanitizer.Sanitize(*patch.Title)
		if title == "" {
			return errRequiredField("title")
		}
		patch.Title = &title
	}
	if patch.Icon != nil {
		icon := h.sanitizer.Sanitize(*patch.Icon)
		if icon == "" {
			return errRequiredField("icon")
		}
		patch.Icon = &icon
	}
	if patch.ColorScheme != nil {
		colorScheme := h.sanitizer.Sanitize(*patch.ColorScheme)
		if colorScheme == "" {
			return errRequiredField("colorScheme")
		}
		patch.ColorScheme = &colorScheme
	}
	if patch.Items != nil {
		items := h.sanitizeItems(*patch.Items)
		patch.Items = &items
	}
	return nil
}
