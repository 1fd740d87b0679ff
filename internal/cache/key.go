package cache

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ErrInvalidKey 表示路径归一化后为空，无法作为缓存键。
var ErrInvalidKey = errors.New("invalid cache key")

// Key 是归一化后的资源路径，例如 `pokemon/25` 或 `pokemon?limit=20&offset=0`。
// 同一个 Key 既用于缓存定位，也作为上游请求的相对路径。
type Key string

func (k Key) String() string {
	return string(k)
}

// Path 返回不含查询参数的部分。
func (k Key) Path() string {
	p, _, _ := strings.Cut(string(k), "?")
	return p
}

// RawQuery 返回排序后的查询字符串，没有时为空。
func (k Key) RawQuery() string {
	_, q, _ := strings.Cut(string(k), "?")
	return q
}

// Normalizer 将入站路径转换为稳定的缓存键。
type Normalizer struct {
	prefix string
}

// NewNormalizer 创建归一化器，prefix（如 "api/v2"）会从路径开头剥离。
func NewNormalizer(prefix string) Normalizer {
	return Normalizer{prefix: strings.Trim(prefix, "/")}
}

// Normalize 清理路径（path.Clean）、去掉首尾斜杠与前缀、按键排序查询参数。
// raw 的路径部分按转义形式解释：每个分段先解码再统一转义，因此 `%3F`、`%25`
// 之类的字符留在路径里，不会变成查询串。对自身输出再次调用会得到相同结果。
func (n Normalizer) Normalize(raw string) (Key, error) {
	rawPath, rawQuery, _ := strings.Cut(strings.TrimSpace(raw), "?")

	escaped, err := canonicalPath(rawPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	p := strings.Trim(path.Clean("/"+escaped), "/")
	if n.prefix != "" {
		for p == n.prefix || strings.HasPrefix(p, n.prefix+"/") {
			p = strings.Trim(strings.TrimPrefix(p, n.prefix), "/")
		}
	}
	if p == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, raw)
	}

	if rawQuery == "" {
		return Key(p), nil
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if encoded := values.Encode(); encoded != "" {
		return Key(p + "?" + encoded), nil
	}
	return Key(p), nil
}

// canonicalPath 统一分段转义，使 `/pokemon/%61` 与 `/pokemon/a` 得到同一个键。
func canonicalPath(rawPath string) (string, error) {
	segments := strings.Split(rawPath, "/")
	for i, segment := range segments {
		decoded, err := url.PathUnescape(segment)
		if err != nil {
			return "", err
		}
		segments[i] = url.PathEscape(decoded)
	}
	return strings.Join(segments, "/"), nil
}
