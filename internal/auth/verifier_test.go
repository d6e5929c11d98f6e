package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, secret []byte, userID string, issuedAt, expiresAt time.Time) string {
	t.Helper()
	claims := accessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("テストトークンの署名に失敗: %v", err)
	}
	return token
}

func TestVerify_ValidToken(t *testing.T) {
	now := time.Now()
	token := signTestToken(t, testSecret, "user-1", now, now.Add(15*time.Minute))

	userID, ok := NewVerifier(testSecret).Verify(token)
	if !ok {
		t.Fatal("有効なトークンが検証を通らない")
	}
	if userID != "user-1" {
		t.Errorf("userID = %q, want user-1", userID)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	now := time.Now()
	token := signTestToken(t, testSecret, "user-1", now.Add(-time.Hour), now.Add(-30*time.Minute))

	if _, ok := NewVerifier(testSecret).Verify(token); ok {
		t.Error("期限切れトークンが検証を通った")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	now := time.Now()
	token := signTestToken(t, []byte("another-secret-32bytes-long!!!!!"), "user-1", now, now.Add(15*time.Minute))

	if _, ok := NewVerifier(testSecret).Verify(token); ok {
		t.Error("署名鍵の異なるトークンが検証を通った")
	}
}

func TestVerify_MalformedToken(t *testing.T) {
	tests := []string{
		"",
		"not-a-jwt",
		"aaa.bbb",
		"aaa.bbb.ccc",
	}
	v := NewVerifier(testSecret)
	for _, token := range tests {
		if _, ok := v.Verify(token); ok {
			t.Errorf("不正な形式のトークンが検証を通った: %q", token)
		}
	}
}

func TestVerify_RejectsUnsignedToken(t *testing.T) {
	now := time.Now()
	claims := accessClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("noneトークンの生成に失敗: %v", err)
	}

	if _, ok := NewVerifier(testSecret).Verify(token); ok {
		t.Error("alg=noneのトークンが検証を通った")
	}
}

func TestVerify_MissingUserIDClaim(t *testing.T) {
	now := time.Now()
	token := signTestToken(t, testSecret, "", now, now.Add(15*time.Minute))

	if _, ok := NewVerifier(testSecret).Verify(token); ok {
		t.Error("userIdクレームのないトークンが検証を通った")
	}
}
