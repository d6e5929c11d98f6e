package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultGoogleTokenURL    = "https://oauth2.googleapis.com/token"
	defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// GoogleUserInfo はGoogleから取得したユーザー情報を表す。
type GoogleUserInfo struct {
	Sub   string // Googleのサブジェクト（ユーザー）ID
	Email string
	Name  string
}

// GoogleExchangeRequest は認可コード交換に必要なパラメータ。
// クライアント（モバイル/Web）がPKCEフローで取得した値をそのまま渡す。
type GoogleExchangeRequest struct {
	Code         string
	CodeVerifier string
	RedirectURI  string
	ClientID     string
}

// GoogleProvider は外部IDプロバイダーのインターフェース。
// 署名・audience・issuerの検証はプロバイダー側クライアントに委譲する。
type GoogleProvider interface {
	// Exchange は認可コードをトークンに交換し、ユーザー情報を取得する。
	Exchange(ctx context.Context, req GoogleExchangeRequest) (*GoogleUserInfo, error)
}

// GoogleOAuthConfig はGoogle OAuthクライアントの設定。
type GoogleOAuthConfig struct {
	// ClientSecret はコンフィデンシャルクライアント用。PKCEのみの公開クライアントでは空でよい。
	ClientSecret string

	// テスト用にオーバーライド可能なURL
	TokenURL    string
	UserInfoURL string
}

// GoogleOAuthClient はGoogle OAuth 2.0（PKCE）による認証を提供する。
type GoogleOAuthClient struct {
	config     GoogleOAuthConfig
	httpClient *http.Client
}

// NewGoogleOAuthClient はGoogleOAuthClientを生成する。
func NewGoogleOAuthClient(config GoogleOAuthConfig, httpClient *http.Client) *GoogleOAuthClient {
	if config.TokenURL == "" {
		config.TokenURL = defaultGoogleTokenURL
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = defaultGoogleUserInfoURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GoogleOAuthClient{config: config, httpClient: httpClient}
}

// googleTokenResponse はGoogleのトークンエンドポイントのレスポンス。
type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	IDToken     string `json:"id_token"`
}

// googleUserInfo はGoogleのユーザー情報エンドポイントのレスポンス。
type googleUserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Exchange は認可コードをアクセストークンに交換し、ユーザー情報を取得する。
func (c *GoogleOAuthClient) Exchange(ctx context.Context, req GoogleExchangeRequest) (*GoogleUserInfo, error) {
	// 1. 認可コードをアクセストークンに交換
	tokenResp, err := c.exchangeToken(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	// 2. アクセストークンでユーザー情報を取得
	userInfo, err := c.fetchUserInfo(ctx, tokenResp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	return &GoogleUserInfo{
		Sub:   userInfo.Sub,
		Email: userInfo.Email,
		Name:  userInfo.Name,
	}, nil
}

// exchangeToken は認可コードをアクセストークンに交換する。
func (c *GoogleOAuthClient) exchangeToken(ctx context.Context, req GoogleExchangeRequest) (*googleTokenResponse, error) {
	params := url.Values{
		"code":          {req.Code},
		"code_verifier": {req.CodeVerifier},
		"redirect_uri":  {req.RedirectURI},
		"client_id":     {req.ClientID},
		"grant_type":    {"authorization_code"},
	}
	if c.config.ClientSecret != "" {
		params.Set("client_secret", c.config.ClientSecret)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp googleTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response did not contain access_token")
	}

	return &tokenResp, nil
}

// fetchUserInfo はアクセストークンでユーザー情報を取得する。
func (c *GoogleOAuthClient) fetchUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to parse userinfo response: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("userinfo response did not contain sub")
	}

	return &info, nil
}
