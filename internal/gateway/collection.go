// Package gateway はチェックリスト/テンプレートデータの所在を抽象化する
// クライアント側データゲートウェイを提供する。
// ローカルのスナップショットファイルまたはリモートAPIのどちらを背後に
// 持っていても、同一のCRUDコントラクトとインメモリキャッシュを公開する。
package gateway

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Backend はコレクションの永続化先インターフェース。
// LocalStoreとRemoteStoreが実装する。
type Backend[T any] interface {
	// Load は永続化されている全エンティティを返す。
	Load(ctx context.Context) ([]T, error)

	// Insert はエンティティを永続化する。
	Insert(ctx context.Context, entity T) error

	// Update は指定IDのエンティティを置き換える。
	Update(ctx context.Context, id string, entity T) error

	// Remove は指定IDのエンティティを削除する。
	Remove(ctx context.Context, id string) error
}

// Collection はエンティティコレクションのインメモリキャッシュと
// 楽観的CRUD操作を提供する。
//
// 変更操作はまずキャッシュに反映され、直後のList呼び出しから見える。
// 永続化は非同期に行われ、失敗してもキャッシュは巻き戻さない
// （ログに記録し、整合は次回のLoadに委ねる。§既知の耐久性ギャップ）。
type Collection[T any] struct {
	backend Backend[T]
	logger  *slog.Logger

	idOf  func(T) string    // エンティティからIDを取り出す
	setID func(T, string) T // エンティティにIDを設定した複製を返す
	newID func() string     // ID採番。テストでは決定的な採番を注入する

	mu       sync.RWMutex
	entities []T // 新しい順
	ready    bool

	persistWG sync.WaitGroup
}

// NewCollection はCollectionを生成する。
// idOf/setIDでエンティティ型のID規約を注入する。
func NewCollection[T any](
	backend Backend[T],
	logger *slog.Logger,
	idOf func(T) string,
	setID func(T, string) T,
) *Collection[T] {
	return &Collection[T]{
		backend: backend,
		logger:  logger,
		idOf:    idOf,
		setID:   setID,
		newID:   func() string { return uuid.New().String() },
	}
}

// Load は永続化先から全エンティティを読み込みキャッシュを初期化する。
// 読み込みに失敗しても空のキャッシュでReadyになる
// （ロード画面で固まるよりも空の状態を優先する）。
func (c *Collection[T]) Load(ctx context.Context) {
	entities, err := c.backend.Load(ctx)
	if err != nil {
		c.logger.Warn("failed to load collection, starting empty",
			slog.String("error", err.Error()),
		)
		entities = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities = entities
	c.ready = true
}

// Ready はロード試行が完了していればtrueを返す（成否を問わない）。
func (c *Collection[T]) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// List はキャッシュ内の全エンティティを新しい順のコピーで返す。
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.entities))
	copy(out, c.entities)
	return out
}

// Add はエンティティをコレクションに追加する。
// IDが未設定の場合は採番する。キャッシュには即座に（永続化の完了を
// 待たずに）先頭へ追加され、以降のListから見える。
// 追加後のエンティティ（採番済みID付き）を返す。
func (c *Collection[T]) Add(entity T) T {
	if c.idOf(entity) == "" {
		entity = c.setID(entity, c.newID())
	}

	c.mu.Lock()
	c.entities = append([]T{entity}, c.entities...)
	c.mu.Unlock()

	id := c.idOf(entity)
	c.persist("insert", id, func(ctx context.Context) error {
		return c.backend.Insert(ctx, entity)
	})

	return entity
}

// Update は指定IDのエンティティをキャッシュ上で置き換え、非同期に永続化する。
// IDが存在しない場合は何もしない。
func (c *Collection[T]) Update(entity T) {
	id := c.idOf(entity)

	c.mu.Lock()
	found := false
	for i := range c.entities {
		if c.idOf(c.entities[i]) == id {
			c.entities[i] = entity
			found = true
			break
		}
	}
	c.mu.Unlock()

	if !found {
		return
	}

	c.persist("update", id, func(ctx context.Context) error {
		return c.backend.Update(ctx, id, entity)
	})
}

// Remove は指定IDのエンティティをキャッシュから取り除き、非同期に永続化する。
func (c *Collection[T]) Remove(id string) {
	c.mu.Lock()
	found := false
	for i := range c.entities {
		if c.idOf(c.entities[i]) == id {
			c.entities = append(c.entities[:i], c.entities[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()

	if !found {
		return
	}

	c.persist("remove", id, func(ctx context.Context) error {
		return c.backend.Remove(ctx, id)
	})
}

// persist は耐久書き込みの唯一の入口。バックグラウンドで実行し、
// 失敗はログに記録するのみでキャッシュには反映しない。
func (c *Collection[T]) persist(op, id string, fn func(ctx context.Context) error) {
	c.persistWG.Add(1)
	go func() {
		defer c.persistWG.Done()
		if err := fn(context.Background()); err != nil {
			c.logger.Error("failed to persist collection change",
				slog.String("op", op),
				slog.String("entity_id", id),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Flush は実行中の非同期永続化が全て完了するまで待機する。
// テストおよびシャットダウン時に使用する。
func (c *Collection[T]) Flush() {
	c.persistWG.Wait()
}
