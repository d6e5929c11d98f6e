package model

import "time"

// RefreshToken はリフレッシュトークンのサーバー側レコードを表す。
// トークン値そのものが秘密情報であり、全ユーザーを通じて一意である。
// 同一ユーザーが複数デバイスでログインした場合はレコードが複数並存する。
type RefreshToken struct {
	Token     string
	UserID    string
	UserAgent *string
	ExpiresAt time.Time
	CreatedAt time.Time
}
