package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newGoogleStubServer はトークン/ユーザー情報エンドポイントを模したサーバーを立てる。
func newGoogleStubServer(t *testing.T, tokenHandler, userInfoHandler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler)
	mux.HandleFunc("/userinfo", userInfoHandler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newStubOAuthClient(srv *httptest.Server, clientSecret string) *GoogleOAuthClient {
	return NewGoogleOAuthClient(GoogleOAuthConfig{
		ClientSecret: clientSecret,
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/userinfo",
	}, srv.Client())
}

func TestExchange_Success(t *testing.T) {
	var tokenForm map[string][]string
	var userInfoAuth string

	srv := newGoogleStubServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("フォームの解析に失敗: %v", err)
			}
			tokenForm = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"google-access-token","token_type":"Bearer","expires_in":3600}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			userInfoAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"sub":"google-sub-1","email":"taro@example.com","name":"Taro"}`))
		},
	)
	client := newStubOAuthClient(srv, "")

	info, err := client.Exchange(context.Background(), GoogleExchangeRequest{
		Code:         "auth-code",
		CodeVerifier: "pkce-verifier",
		RedirectURI:  "http://localhost:8081/callback",
		ClientID:     "client-id",
	})
	if err != nil {
		t.Fatalf("想定外のエラー: %v", err)
	}

	if info.Sub != "google-sub-1" || info.Email != "taro@example.com" || info.Name != "Taro" {
		t.Errorf("ユーザー情報が一致しない: %+v", info)
	}

	// トークン交換のフォームパラメータ
	wantParams := map[string]string{
		"code":          "auth-code",
		"code_verifier": "pkce-verifier",
		"redirect_uri":  "http://localhost:8081/callback",
		"client_id":     "client-id",
		"grant_type":    "authorization_code",
	}
	for key, want := range wantParams {
		if got := tokenForm[key]; len(got) != 1 || got[0] != want {
			t.Errorf("フォームパラメータ %s = %v, want %q", key, got, want)
		}
	}

	// PKCEのみの公開クライアントではclient_secretを送らない
	if _, ok := tokenForm["client_secret"]; ok {
		t.Error("client_secret未設定なのにフォームに含まれている")
	}

	if userInfoAuth != "Bearer google-access-token" {
		t.Errorf("ユーザー情報リクエストのAuthorization = %q", userInfoAuth)
	}
}

func TestExchange_SendsClientSecretWhenConfigured(t *testing.T) {
	var tokenForm map[string][]string

	srv := newGoogleStubServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			tokenForm = r.PostForm
			w.Write([]byte(`{"access_token":"google-access-token"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"sub":"google-sub-1","name":"Taro"}`))
		},
	)
	client := newStubOAuthClient(srv, "confidential-secret")

	if _, err := client.Exchange(context.Background(), GoogleExchangeRequest{Code: "c"}); err != nil {
		t.Fatalf("想定外のエラー: %v", err)
	}

	if got := tokenForm["client_secret"]; len(got) != 1 || got[0] != "confidential-secret" {
		t.Errorf("client_secret = %v, want confidential-secret", got)
	}
}

func TestExchange_TokenEndpointErrorStatus(t *testing.T) {
	srv := newGoogleStubServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("トークン交換失敗後にユーザー情報が取得された")
		},
	)
	client := newStubOAuthClient(srv, "")

	if _, err := client.Exchange(context.Background(), GoogleExchangeRequest{Code: "bad"}); err == nil {
		t.Fatal("トークンエンドポイントの400でエラーが返らない")
	}
}

func TestExchange_MissingAccessToken(t *testing.T) {
	srv := newGoogleStubServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"token_type":"Bearer"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)
	client := newStubOAuthClient(srv, "")

	if _, err := client.Exchange(context.Background(), GoogleExchangeRequest{Code: "c"}); err == nil {
		t.Fatal("access_token欠落でエラーが返らない")
	}
}

func TestExchange_UserInfoErrorStatus(t *testing.T) {
	srv := newGoogleStubServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"access_token":"google-access-token"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	)
	client := newStubOAuthClient(srv, "")

	if _, err := client.Exchange(context.Background(), GoogleExchangeRequest{Code: "c"}); err == nil {
		t.Fatal("ユーザー情報エンドポイントの401でエラーが返らない")
	}
}

func TestExchange_MissingSub(t *testing.T) {
	srv := newGoogleStubServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"access_token":"google-access-token"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"email":"taro@example.com"}`))
		},
	)
	client := newStubOAuthClient(srv, "")

	if _, err := client.Exchange(context.Background(), GoogleExchangeRequest{Code: "c"}); err == nil {
		t.Fatal("sub欠落でエラーが返らない")
	}
}
