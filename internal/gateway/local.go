package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// snapshotKeyPrefix はスナップショットファイル名の名前空間プレフィックス。
const snapshotKeyPrefix = "listman."

// LocalStore はコレクションをJSONスナップショットファイルとして永続化する
// バックエンド。コレクションごとに名前空間付きキー（listman.<collection>.json）の
// 1ファイルにエンティティ配列全体を書き込む。
type LocalStore[T any] struct {
	path string
	idOf func(T) string

	mu sync.Mutex
}

// NewLocalStore はLocalStoreを生成する。
// dirはスナップショットの保存先ディレクトリ、collectionはコレクション名
// （"checklists"、"templates"など）。
func NewLocalStore[T any](dir, collection string, idOf func(T) string) *LocalStore[T] {
	return &LocalStore[T]{
		path: filepath.Join(dir, snapshotKeyPrefix+collection+".json"),
		idOf: idOf,
	}
}

// Load はスナップショットファイルから全エンティティを読み込む。
// ファイルが存在しない場合は空として扱う。
func (s *LocalStore[T]) Load(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", s.path, err)
	}

	var entities []T
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", s.path, err)
	}
	return entities, nil
}

// Insert はエンティティをスナップショットの先頭に追加する。
func (s *LocalStore[T]) Insert(ctx context.Context, entity T) error {
	return s.rewrite(ctx, func(entities []T) []T {
		return append([]T{entity}, entities...)
	})
}

// Update は指定IDのエンティティを置き換える。IDが存在しない場合は変更なし。
func (s *LocalStore[T]) Update(ctx context.Context, id string, entity T) error {
	return s.rewrite(ctx, func(entities []T) []T {
		for i := range entities {
			if s.idOf(entities[i]) == id {
				entities[i] = entity
				break
			}
		}
		return entities
	})
}

// Remove は指定IDのエンティティを削除する。IDが存在しない場合は変更なし。
func (s *LocalStore[T]) Remove(ctx context.Context, id string) error {
	return s.rewrite(ctx, func(entities []T) []T {
		for i := range entities {
			if s.idOf(entities[i]) == id {
				return append(entities[:i], entities[i+1:]...)
			}
		}
		return entities
	})
}

// rewrite はスナップショット全体のread-modify-writeを排他的に行う。
func (s *LocalStore[T]) rewrite(ctx context.Context, modify func([]T) []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entities []T
	data, err := os.ReadFile(s.path)
	if err == nil {
		if err := json.Unmarshal(data, &entities); err != nil {
			return fmt.Errorf("failed to parse snapshot %s: %w", s.path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read snapshot %s: %w", s.path, err)
	}

	entities = modify(entities)

	out, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(s.path, out, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", s.path, err)
	}
	return nil
}
