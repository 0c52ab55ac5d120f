package cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"
)

// ResponseNamespace 是原始上游响应在缓存目录中的子目录。
const ResponseNamespace = "responses"

// ErrStoreUnavailable 表示未注入缓存存储实例。
var ErrStoreUnavailable = errors.New("cache store unavailable")

// ResponseCache 在 Store 之上提供基于 TTL 的原始响应缓存，避免重复请求上游。
type ResponseCache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewResponseCache 构造响应缓存，默认使用 time.Now 作为时钟。ttl <= 0 时只写不读。
func NewResponseCache(store Store, ttl time.Duration) ResponseCache {
	return ResponseCache{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Enabled 返回当前是否具备缓存能力。
func (c ResponseCache) Enabled() bool {
	return c.store != nil
}

// Fresh 判断缓存条目是否仍在 TTL 内。
func (c ResponseCache) Fresh(entry Entry) bool {
	if c.ttl <= 0 {
		return false
	}
	return c.now().Before(entry.ModTime.Add(c.ttl))
}

// Lookup 返回仍然新鲜的缓存正文；未命中或过期时返回 ErrNotFound。
func (c ResponseCache) Lookup(ctx context.Context, key string) ([]byte, error) {
	if c.store == nil {
		return nil, ErrStoreUnavailable
	}
	result, err := c.store.Get(ctx, responseLocator(key))
	if err != nil {
		return nil, err
	}
	defer result.Reader.Close()

	if !c.Fresh(result.Entry) {
		return nil, ErrNotFound
	}
	return io.ReadAll(result.Reader)
}

// Remember 写入上游正文。
func (c ResponseCache) Remember(ctx context.Context, key string, body []byte) error {
	if c.store == nil {
		return ErrStoreUnavailable
	}
	_, err := c.store.Put(ctx, responseLocator(key), bytes.NewReader(body), PutOptions{ModTime: c.now().UTC()})
	return err
}

// Forget 删除缓存正文，条目不存在时不报错。
func (c ResponseCache) Forget(ctx context.Context, key string) error {
	if c.store == nil {
		return ErrStoreUnavailable
	}
	return c.store.Remove(ctx, responseLocator(key))
}

func responseLocator(key string) Locator {
	return Locator{Namespace: ResponseNamespace, Path: key}
}
