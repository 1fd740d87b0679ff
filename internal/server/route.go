package server

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/poke-hub/poke-hub/internal/config"
)

// RouteKind 区分普通透传请求与 /random 请求。
type RouteKind string

const (
	RouteProxy  RouteKind = "proxy"
	RouteRandom RouteKind = "random"
)

// RandomPath 是随机资源端点。
const RandomPath = "/random"

// Route 描述一次入站请求映射到的上游资源。Resource 保留原始路径与查询串，
// 归一化由缓存层完成。
type Route struct {
	Kind        RouteKind
	Resource    string
	UpstreamURL *url.URL
}

// RouteTable 在启动时解析上游地址，供每个请求快速构造 Route。
type RouteTable struct {
	upstream *url.URL
}

// NewRouteTable 根据配置解析上游地址。调用方应在启动阶段创建一次并复用。
func NewRouteTable(cfg *config.Config) (*RouteTable, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	parsed, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream %q: %w", cfg.Upstream.BaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid upstream %q: scheme and host are required", cfg.Upstream.BaseURL)
	}
	return &RouteTable{upstream: parsed}, nil
}

// Upstream 返回解析后的上游地址。
func (t *RouteTable) Upstream() *url.URL {
	return t.upstream
}

// Lookup 将请求路径（转义形式）与查询串转换为 Route。
func (t *RouteTable) Lookup(path, rawQuery string) *Route {
	if strings.TrimRight(path, "/") == RandomPath {
		return &Route{Kind: RouteRandom, UpstreamURL: t.upstream}
	}
	resource := path
	if rawQuery != "" {
		resource += "?" + rawQuery
	}
	return &Route{Kind: RouteProxy, Resource: resource, UpstreamURL: t.upstream}
}
