package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/poke-hub/poke-hub/internal/version"
)

// EnvPrefix 是环境变量覆盖配置时使用的前缀，例如 POKE_HUB_UPSTREAM_BASEURL。
const EnvPrefix = "POKE_HUB"

// Load 读取并解析 TOML 配置文件，同时注入默认值、环境变量覆盖与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 3000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", LogFormatJSON)
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)

	v.SetDefault("Upstream.BaseURL", "https://pokeapi.co/api/v2")
	v.SetDefault("Upstream.Timeout", 30)
	v.SetDefault("Upstream.CacheEnabled", true)
	v.SetDefault("Upstream.StripPrefix", "api/v2")
	v.SetDefault("Upstream.UserAgent", "")

	v.SetDefault("Cache.Type", CacheTypeMemory)
	v.SetDefault("Cache.MaxSize", 1000)
	v.SetDefault("Cache.Expiration", 3600)
	v.SetDefault("Cache.CleanupInterval", "5m")

	v.SetDefault("Random.Resource", "pokemon")
	v.SetDefault("Random.MinID", 1)
	v.SetDefault("Random.MaxID", 1025)
}

func applyDefaults(cfg *Config) {
	if cfg.Global.ListenPort == 0 {
		cfg.Global.ListenPort = 3000
	}
	cfg.Global.LogFormat = strings.ToLower(strings.TrimSpace(cfg.Global.LogFormat))
	if cfg.Global.LogFormat == "" {
		cfg.Global.LogFormat = LogFormatJSON
	}

	cfg.Upstream.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Upstream.BaseURL), "/")
	cfg.Upstream.StripPrefix = strings.Trim(strings.TrimSpace(cfg.Upstream.StripPrefix), "/")
	if cfg.Upstream.Timeout.DurationValue() == 0 {
		cfg.Upstream.Timeout = Duration(30 * time.Second)
	}
	if strings.TrimSpace(cfg.Upstream.UserAgent) == "" {
		cfg.Upstream.UserAgent = "poke-hub/" + version.Version
	}

	cfg.Cache.Type = strings.ToLower(strings.TrimSpace(cfg.Cache.Type))
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = CacheTypeMemory
	}
	if cfg.Cache.CleanupInterval.DurationValue() == 0 {
		cfg.Cache.CleanupInterval = Duration(5 * time.Minute)
	}

	cfg.Random.Resource = strings.Trim(strings.TrimSpace(cfg.Random.Resource), "/")
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			v = strings.TrimSpace(v)
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
