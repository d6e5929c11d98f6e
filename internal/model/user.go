// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// 複数の認証手段（Google OAuth、メール/パスワード、SMS認証）を想定し、
// 認証関連フィールドはすべてオプショナルとする。
// 非NULLの値はそれぞれ部分ユニークインデックスで一意性を保証する。
type User struct {
	ID           string
	GoogleID     *string
	Email        *string
	Mobile       *string
	PasswordHash *string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
