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

// ChecklistStoreInterface はチェックリストハンドラーが必要とする永続化インターフェース。
type ChecklistStoreInterface interface {
	List(ctx context.Context) ([]model.Checklist, error)
	FindByID(ctx context.Context, id string) (*model.Checklist, error)
	Create(ctx context.Context, checklist *model.Checklist) error
	Patch(ctx context.Context, id string, patch *model.ChecklistPatch) (*model.Checklist, error)
	Delete(ctx context.Context, id string) error
}

// ChecklistHandler はチェックリストCRUDのHTTPハンドラー。
type ChecklistHandler struct {
	store     ChecklistStoreInterface
	sanitizer security.TextSanitizerService
	newID     func() string // エンティティID採番。テストでは決定的な採番を注入する
	now       func() time.Time
}

// NewChecklistHandler はChecklistHandlerを生成する。
func NewChecklistHandler(store ChecklistStoreInterface, sanitizer security.TextSanitizerService) *ChecklistHandler {
	return &ChecklistHandler{
		store:     store,
		sanitizer: sanitizer,
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
	}
}

// createChecklistRequest はチェックリスト作成リクエストのボディ。
// クライアントがIDを生成済みの場合はそれを尊重し、なければサーバーで採番する。
type createChecklistRequest struct {
	ID          string                `json:"id"`
	TemplateID  *string               `json:"templateId"`
	Title       string                `json:"title"`
	Icon        string                `json:"icon"`
	ColorScheme string                `json:"colorScheme"`
	Items       []model.ChecklistItem `json:"items"`
}

// List は全チェックリストを作成日時の降順で返す。
// GET /api/checklists
func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	checklists, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("failed to list checklists", slog.String("error", err.Error()))
		writeEntityError(w, http.StatusInternalServerError, "failed to list checklists")
		return
	}

	writeJSON(w, http.StatusOK, checklists)
}

// Create は新しいチェックリストを作成する。
// POST /api/checklists
func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createChecklistRequest
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
	checklist := &model.Checklist{
		ID:          req.ID,
		TemplateID:  req.TemplateID,
		Title:       req.Title,
		Icon:        req.Icon,
		ColorScheme: req.ColorScheme,
		Items:       h.sanitizeItems(req.Items),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if checklist.ID == "" {
		checklist.ID = h.newID()
	}

	if err := h.store.Create(r.Context(), checklist); err != nil {
		slog.Error("failed to create checklist",
			slog.String("checklist_id", checklist.ID),
			slog.String("error", err.Error()),
		)
		writeEntityError(w, http.StatusInternalServerError, "failed to create checklist")
		return
	}

	writeJSON(w, http.StatusCreated, checklist)
}

// Update はチェックリストを部分更新する。送信されたフィールドのみ変更する。
// PATCH /api/checklists/:id
func (h *ChecklistHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch model.ChecklistPatch
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
		slog.Error("failed to update checklist",
			slog.String("checklist_id", id),
			slog.String("error", err.Error()),
		)
		writeEntityError(w, http.StatusInternalServerError, "failed to update checklist")
		return
	}
	if updated == nil {
		writeEntityError(w, http.StatusNotFound, "Checklist not found")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete はチェックリストを削除する。
// DELETE /api/checklists/:id
func (h *ChecklistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// ストアのDeleteは冪等のため、404判定は事前の存在確認で行う
	existing, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("failed to find checklist",
			slog.String("checklist_id", id),
			slog.String("error", err.Error()),
		)
		writeEntityError(w, http.StatusInternalServerError, "failed to delete checklist")
		return
	}
	if existing == nil {
		writeEntityError(w, http.StatusNotFound, "Checklist not found")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		slog.Error("failed to delete checklist",
			slog.String("checklist_id", id),
			slog.String("error", err.Error()),
		)
		writeEntityError(w, http.StatusInternalServerError, "failed to delete checklist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// sanitizeItems は項目テキストをサニタイズし、欠落IDを採番する。
func (h *ChecklistHandler) sanitizeItems(items []model.ChecklistItem) []model.ChecklistItem {
	sanitized := make([]model.ChecklistItem, len(items))
	for i, item := range items {
		sanitized[i] = model.ChecklistItem{
			ID:        item.ID,
			Text:      h.sanitizer.Sanitize(item.Text),
			Completed: item.Completed,
		}
		if sanitized[i].ID == "" {
			sanitized[i].ID = h.newID()
		}
	}
	return sanitized
}

// sanitizePatch は部分更新のテキストフィールドをサニタイズする。
// 必須フィールドを空文字列に更新しようとした場合はエラーを返す。
func (h *ChecklistHandler) sanitizePatch(patch *model.ChecklistPatch) error {
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

// requiredFieldError は必須フィールドが空の場合の検証エラー。
type requiredFieldError struct {
	field string
}

func (e *requiredFieldError) Error() string {
	return e.field + " must not be empty"
}

func errRequiredField(field string) error {
	return &requiredFieldError{field: field}
}
