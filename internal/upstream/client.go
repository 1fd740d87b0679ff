package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultContentType = "application/json"
	maxDrainBytes      = 64 << 10
)

// Result 是一次成功请求的响应快照，构造后不再修改。
type Result struct {
	Body        []byte
	StatusCode  int
	ContentType string
}

// Options 控制单次请求的超时与附加请求头。
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// Client 对上游发起单次 GET 请求，不做重试。
type Client struct {
	http      *http.Client
	baseURL   string
	timeout   time.Duration
	userAgent string
}

// NewClient 校验 baseURL 并返回 Client；httpClient 为空时使用默认超时的新实例。
func NewClient(httpClient *http.Client, baseURL string, opts Options) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("解析上游地址失败: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("仅支持 http/https，上游: %s", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("上游缺少 Host: %s", baseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""
	return &Client{
		http:      httpClient,
		baseURL:   strings.TrimRight(parsed.String(), "/"),
		timeout:   timeout,
		userAgent: opts.UserAgent,
	}, nil
}

// Timeout returns the per-request deadline.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// URLFor 拼接 resource（形如 `pokemon/25?limit=1`，路径已转义）与 baseURL。
func (c *Client) URLFor(resource string) string {
	return c.baseURL + "/" + strings.TrimLeft(resource, "/")
}

// Fetch 发起一次 GET 请求。任何失败都以 *Error 返回；非 2xx 视为 KindStatus。
func (c *Client) Fetch(ctx context.Context, resource string) (*Result, error) {
	target := c.URLFor(resource)
	started := time.Now()

	result, err := c.do(ctx, target)

	UpstreamDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		UpstreamRequests.WithLabelValues(string(KindOf(err))).Inc()
		return nil, err
	}
	UpstreamRequests.WithLabelValues("ok").Inc()
	return result, nil
}

func (c *Client) do(ctx context.Context, target string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Kind: KindInternal, URL: target, Err: err}
	}
	req.Header.Set("Accept", defaultContentType)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: classify(err), URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		return nil, &Error{Kind: KindStatus, StatusCode: resp.StatusCode, URL: target}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: classify(err), URL: target, Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	return &Result{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
	}, nil
}
