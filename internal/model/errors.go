// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, checklist, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeRefreshNotFound   = "REFRESH_TOKEN_NOT_FOUND"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeChecklistNotFound = "CHECKLIST_NOT_FOUND"
	ErrCodeTemplateNotFound  = "TEMPLATE_NOT_FOUND"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeGoogleAuthFailed  = "GOOGLE_AUTH_FAILED"
)

// ErrDuplicateToken はリフレッシュトークン値の衝突を表す。
// 十分なエントロピーがあれば実質的に発生しないが、
// ユニーク制約違反として検出した場合は黙殺せずこのエラーで通知する。
var ErrDuplicateToken = errors.New("refresh token already exists")

// NewUnauthorizedError は認証必須ルートで認証情報が欠落・無効な場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewRefreshNotFoundError はリフレッシュトークンがストアに存在しない場合のエラーを生成する。
func NewRefreshNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeRefreshNotFound,
		Message:  "リフレッシュトークンが無効です。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewChecklistNotFoundError はチェックリストが見つからない場合のエラーを生成する。
func NewChecklistNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeChecklistNotFound,
		Message:  fmt.Sprintf("指定されたチェックリストが見つかりません: %s", id),
		Category: "checklist",
		Action:   "チェックリストIDを確認してください。",
	}
}

// NewTemplateNotFoundError はテンプレートが見つからない場合のエラーを生成する。
func NewTemplateNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeTemplateNotFound,
		Message:  fmt.Sprintf("指定されたテンプレートが見つかりません: %s", id),
		Category: "checklist",
		Action:   "テンプレートIDを確認してください。",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewGoogleAuthFailedError はGoogle認証の失敗エラーを生成する。
func NewGoogleAuthFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeGoogleAuthFailed,
		Message:  fmt.Sprintf("Google認証に失敗しました: %s", reason),
		Category: "auth",
		Action:   "再度ログインをお試しください。",
	}
}
