package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("ListenPort", "必须在 1-65535")
	}
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("LogLevel", fmt.Sprintf("无法识别的日志级别: %s", g.LogLevel))
	}
	if g.LogFormat != LogFormatJSON && g.LogFormat != LogFormatText {
		return newFieldError("LogFormat", "仅支持 json/text")
	}
	if g.LogMaxSize < 0 || g.LogMaxBackups < 0 {
		return newFieldError("LogMaxSize/LogMaxBackups", "不能为负数")
	}

	if err := validateUpstream(c.Upstream.BaseURL); err != nil {
		return fmt.Errorf("Upstream.BaseURL: %w", err)
	}
	if c.Upstream.Timeout.DurationValue() <= 0 {
		return newFieldError("Upstream.Timeout", "必须大于 0")
	}

	switch c.Cache.Type {
	case CacheTypeMemory, CacheTypeNone:
	default:
		return newFieldError("Cache.Type", "仅支持 memory/none")
	}
	if c.Cache.MaxSize <= 0 {
		return newFieldError("Cache.MaxSize", "必须大于 0")
	}
	if c.Cache.Expiration.DurationValue() <= 0 {
		return newFieldError("Cache.Expiration", "必须大于 0")
	}
	if c.Cache.CleanupInterval.DurationValue() <= 0 {
		return newFieldError("Cache.CleanupInterval", "必须大于 0")
	}

	if c.Random.Resource == "" {
		return newFieldError("Random.Resource", "不能为空")
	}
	if c.Random.MinID < 1 {
		return newFieldError("Random.MinID", "必须大于等于 1")
	}
	if c.Random.MaxID < c.Random.MinID {
		return newFieldError("Random.MaxID", "不能小于 MinID")
	}
	return nil
}

func validateUpstream(raw string) error {
	if raw == "" {
		return errors.New("缺少上游地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https，上游: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("上游缺少 Host: %s", raw)
	}
	return nil
}
