// Package robots 提供可选的 robots.txt 检查（按 host 缓存规则，整个进程内有效）。
package robots

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// DisallowedError 表示目标 URL 被 robots.txt 禁止抓取。
type DisallowedError struct {
	URL string
}

func (e *DisallowedError) Error() string {
	return fmt.Sprintf("robots.txt 禁止抓取：%s", e.URL)
}

// Gate 在真正发请求前判断 URL 是否允许抓取。
// nil *Gate 等价于“不检查”。
type Gate struct {
	client *http.Client
	agent  string

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// New 构造一个 Gate；agent 用于匹配 robots.txt 中的 User-agent 分组（为空时只看 "*"）。
func New(c *http.Client, agent string) *Gate {
	return &Gate{
		client: c,
		agent:  strings.TrimSpace(agent),
		cache:  make(map[string]*robotstxt.RobotsData),
	}
}

// Check 返回 nil 表示允许；被禁止时返回 *DisallowedError。
//
// robots.txt 本身抓取失败（网络错误）时放行。
// 状态码语义沿用 robotstxt：4xx 视为全部允许，5xx 视为全部禁止。
func (g *Gate) Check(ctx context.Context, rawURL string) error {
	if g == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return nil
	}

	data, err := g.rules(ctx, u)
	if err != nil {
		return nil
	}

	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	if !data.TestAgent(p, g.agentName()) {
		return &DisallowedError{URL: rawURL}
	}
	return nil
}

func (g *Gate) agentName() string {
	if g.agent == "" {
		return "*"
	}
	return g.agent
}

func (g *Gate) rules(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	host := strings.ToLower(u.Host)

	g.mu.Lock()
	data, ok := g.cache[host]
	g.mu.Unlock()
	if ok {
		return data, nil
	}

	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err = robotstxt.FromResponse(resp)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.cache[host] = data
	g.mu.Unlock()
	return data, nil
}
