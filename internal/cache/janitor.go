package cache

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper 由可批量清理过期条目的存储实现。
type Sweeper interface {
	Sweep() int
}

// Janitor 按固定周期清理过期条目，避免长期未访问的键占用容量。
type Janitor struct {
	store    Sweeper
	interval time.Duration
	logger   *logrus.Logger
}

// NewJanitor 构造清理器；interval <= 0 时退回 5 分钟。
func NewJanitor(store Sweeper, interval time.Duration, logger *logrus.Logger) *Janitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Janitor{store: store, interval: interval, logger: logger}
}

// Run 阻塞直到 ctx 结束。
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := j.store.Sweep()
			if j.logger != nil && removed > 0 {
				j.logger.WithFields(logrus.Fields{
					"action":  "cache_sweep",
					"removed": removed,
				}).Debug("过期缓存已清理")
			}
		}
	}
}
