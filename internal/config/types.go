package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

const (
	// CacheTypeMemory 启用进程内 LRU 缓存。
	CacheTypeMemory = "memory"
	// CacheTypeNone 关闭缓存读写，仍保留并发合并。
	CacheTypeNone = "none"

	LogFormatJSON = "json"
	LogFormatText = "text"
)

// GlobalConfig 描述进程级行为：监听端口与日志输出。
type GlobalConfig struct {
	ListenPort    int    `mapstructure:"ListenPort"`
	LogLevel      string `mapstructure:"LogLevel"`
	LogFormat     string `mapstructure:"LogFormat"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`
}

// UpstreamConfig 决定代理如何访问上游 REST API。
type UpstreamConfig struct {
	BaseURL      string   `mapstructure:"BaseURL"`
	Timeout      Duration `mapstructure:"Timeout"`
	CacheEnabled bool     `mapstructure:"CacheEnabled"`
	StripPrefix  string   `mapstructure:"StripPrefix"`
	UserAgent    string   `mapstructure:"UserAgent"`
}

// CacheConfig 控制内存缓存容量、过期时间与后台清理周期。
type CacheConfig struct {
	Type            string   `mapstructure:"Type"`
	MaxSize         int      `mapstructure:"MaxSize"`
	Expiration      Duration `mapstructure:"Expiration"`
	CleanupInterval Duration `mapstructure:"CleanupInterval"`
}

// RandomConfig 描述 /random 端点选择的资源与 id 区间（闭区间）。
type RandomConfig struct {
	Resource string `mapstructure:"Resource"`
	MinID    int    `mapstructure:"MinID"`
	MaxID    int    `mapstructure:"MaxID"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global   GlobalConfig   `mapstructure:",squash"`
	Upstream UpstreamConfig `mapstructure:"Upstream"`
	Cache    CacheConfig    `mapstructure:"Cache"`
	Random   RandomConfig   `mapstructure:"Random"`
}

// CacheEnabled 仅在上游开关打开且缓存类型为 memory 时返回 true。
func (c *Config) CacheEnabled() bool {
	return c.Upstream.CacheEnabled && c.Cache.Type == CacheTypeMemory
}

// CacheMode 输出 `memory` 或 `bypass`，供日志与诊断接口使用。
func (c *Config) CacheMode() string {
	if c.CacheEnabled() {
		return CacheTypeMemory
	}
	return "bypass"
}
