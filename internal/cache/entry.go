package cache

import "time"

// Entry 是一次写入的不可变快照，刷新时整体替换。
type Entry struct {
	Value       []byte
	ContentType string
	StoredAt    time.Time
	ExpiresAt   time.Time
}

// Expired 在 now >= ExpiresAt 时返回 true。
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// TTL 返回相对 now 的剩余存活时间，过期后为 0。
func (e Entry) TTL(now time.Time) time.Duration {
	if e.Expired(now) {
		return 0
	}
	return e.ExpiresAt.Sub(now)
}
