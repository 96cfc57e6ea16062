package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Fetch 以 GET 读取整个页面；非 2xx 返回 *HTTPStatusError。
// 不做缓存、不做重试（网络策略由 httpx 统一实现）。
func Fetch(ctx context.Context, c *http.Client, u string) ([]byte, error) {
	resp, err := Open(ctx, c, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// Open 发起 GET 并在状态码为 2xx 时把响应交给调用方（调用方负责 Close）。
// 用于需要流式读取 body 的场景（例如 PDF 下载）。
func Open(ctx context.Context, c *http.Client, u string) (*http.Response, error) {
	if c == nil {
		return nil, errors.New("http client 不能为空")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, &HTTPStatusError{URL: u, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}
	return resp, nil
}

// ResolveURL 把页面上的 href 解析为绝对 URL。
// 协议相对地址（//host/path）沿用 base 的 scheme；base 不可用时补 https:。
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	ru, err := url.Parse(href)
	if err != nil {
		return href
	}
	bu, err := url.Parse(base)
	if err != nil || bu.Scheme == "" || bu.Host == "" {
		if strings.HasPrefix(href, "//") {
			return "https:" + href
		}
		return href
	}
	return bu.ResolveReference(ru).String()
}
