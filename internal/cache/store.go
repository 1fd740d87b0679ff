package cache

import (
	"errors"
	"time"
)

// Store 是代理使用的键值缓存。所有方法都必须可被并发调用。
type Store interface {
	// Get 返回未过期的条目并将其标记为最近使用；过期条目会被顺带删除。
	Get(key Key) (Entry, bool)

	// Peek 与 Get 相同，但不影响 LRU 顺序和命中统计。
	Peek(key Key) (Entry, bool)

	// Put 写入或替换条目，ExpiresAt = now + ttl。ttl <= 0 时不写入并删除旧值。
	// 新键写入时若已满，先清理过期条目，再淘汰最久未使用的条目，直到空出一个位置。
	Put(key Key, value []byte, ttl time.Duration, opts PutOptions) error

	// Remove 删除条目，返回是否存在过。
	Remove(key Key) bool

	// Contains 判断是否存在未过期条目，不影响 LRU 顺序。
	Contains(key Key) bool

	// Keys 按最近使用到最久未使用的顺序列出未过期的键。
	Keys() []Key

	// Size 返回未过期条目数量，过期条目先被清理。
	Size() int

	// Sweep 删除所有过期条目并返回删除数量。
	Sweep() int

	// Clear 清空缓存并重置统计，返回被移除的条目数（含尚未清理的过期条目）。
	Clear() int

	// Stats 返回计数器快照。
	Stats() Stats
}

// PutOptions 控制写入过程中的可选属性。
type PutOptions struct {
	ContentType string
}

// ErrInvalidCapacity 表示最大容量不是正数。
var ErrInvalidCapacity = errors.New("cache capacity must be positive")
