package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Verifier はアクセストークンの検証を担う。
// 署名と有効期限のみで妥当性を判定するステートレスな検証器。
type Verifier struct {
	secret []byte
}

// NewVerifier はVerifierを生成する。
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Verify はアクセストークンを検証し、ユーザーIDを抽出する。
// 署名不正・期限切れ・形式不正のいずれの場合もfalseを返し、panicやエラーは発生させない。
// 認証情報の欠落を許可するかどうかは呼び出し側（ルート）が判断する。
func (v *Verifier) Verify(tokenString string) (string, bool) {
	if tokenString == "" {
		return "", false
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	if claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}
