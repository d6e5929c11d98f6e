package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// TokenSource はリクエストに添付するアクセストークンの供給元。
// 空文字列を返した場合はAuthorizationヘッダーを付けない（匿名アクセス）。
type TokenSource interface {
	AccessToken() string
}

// StaticToken は固定のアクセストークンを返すTokenSource。
type StaticToken string

// AccessToken は保持しているトークンを返す。
func (t StaticToken) AccessToken() string { return string(t) }

// RemoteStore はリモートAPIをバックエンドとするコレクション永続化。
// サーバーのチェックリスト/テンプレートREST APIと通信する。
type RemoteStore[T any] struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string // 例: https://api.example.com/api
	collection string // 例: checklists
	tokens     TokenSource
}

// NewRemoteStore はRemoteStoreを生成する。
// collectionはREST上のコレクションパス（"checklists"、"templates"）。
func NewRemoteStore[T any](
	httpClient *http.Client,
	logger *slog.Logger,
	baseURL, collection string,
	tokens TokenSource,
) *RemoteStore[T] {
	return &RemoteStore[T]{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
		collection: collection,
		tokens:     tokens,
	}
}

// Load はコレクションの全エンティティを取得する。
// GET {baseURL}/{collection}
func (s *RemoteStore[T]) Load(ctx context.Context) ([]T, error) {
	body, err := s.do(ctx, http.MethodGet, s.collectionURL(), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var entities []T
	if err := json.Unmarshal(body, &entities); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", s.collection, err)
	}
	return entities, nil
}

// Insert はエンティティを作成する。
// POST {baseURL}/{collection}
func (s *RemoteStore[T]) Insert(ctx context.Context, entity T) error {
	payload, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	_, err = s.do(ctx, http.MethodPost, s.collectionURL(), payload, http.StatusCreated)
	return err
}

// Update は指定IDのエンティティを更新する。
// PATCH {baseURL}/{collection}/{id}
//
// ボディはエンティティ全体を送る。サーバ側のPATCHはフィールド単位で
// 適用されるため、変更のないフィールドは現在値のまま上書きされ、
// 結果は差分のみを送った場合と一致する。
func (s *RemoteStore[T]) Update(ctx context.Context, id string, entity T) error {
	payload, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	_, err = s.do(ctx, http.MethodPatch, s.entityURL(id), payload, http.StatusOK)
	return err
}

// Remove は指定IDのエンティティを削除する。
// DELETE {baseURL}/{collection}/{id}
func (s *RemoteStore[T]) Remove(ctx context.Context, id string) error {
	_, err := s.do(ctx, http.MethodDelete, s.entityURL(id), nil, http.StatusOK)
	return err
}

func (s *RemoteStore[T]) collectionURL() string {
	return s.baseURL + "/" + s.collection
}

func (s *RemoteStore[T]) entityURL(id string) string {
	return s.baseURL + "/" + s.collection + "/" + id
}

// do はHTTPリクエストを実行し、期待ステータス以外はエラーにする。
func (s *RemoteStore[T]) do(ctx context.Context, method, url string, payload []byte, wantStatus int) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := s.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("remote store request failed",
			slog.String("method", method),
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != wantStatus {
		s.logger.Error("remote store returned unexpected status",
			slog.String("method", method),
			slog.String("url", url),
			slog.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%s %s returned status %d", method, url, resp.StatusCode)
	}

	return body, nil
}
