package httpx

import (
	"compress/gzip"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"
)

const defaultTimeout = 60 * time.Second

// Options 是构造 HTTP client 的全部可调项（均来自配置）。
type Options struct {
	// ProxyURL 非空：所有请求走代理，且禁用 keep-alive（每请求新连接）。
	ProxyURL string
	// UserAgent 为空时每个请求从内置 UA 池随机选取。
	UserAgent string
	// Timeout 是单个请求的总超时（含读取 body）；<=0 使用默认值。
	Timeout time.Duration
	// RateLimit 是每秒请求数上限；<=0 表示不限速。
	RateLimit float64
	// RetryMax 是网络错误时的最大重试次数（不含首次尝试）。默认 0：不做任何自动重试。
	RetryMax int
}

// Transport 把“UA 选择 + 代理 + keep-alive 策略 + 限速 + 响应解压”固化为统一策略。
//
// 设计目标：provider 只负责“定位页面 + 解析 HTML”，不关心网络策略细节。
type Transport struct {
	Base *http.Transport

	ua userAgent

	// Limiter 非空时，每次尝试前都要先拿到令牌（ctx 取消则放弃）。
	Limiter *rate.Limiter

	// RetryMax 表示最大重试次数（不含首次尝试）。例如 2 表示最多 3 次尝试。
	RetryMax int

	// DisableKeepAlives 决定是否对 Request 设置 Close=true（额外保险）。
	// 真正禁用 keep-alive 依赖 Base.DisableKeepAlives。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只对“可重放”的请求做重试：GET/HEAD 且无 body。
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 {
		max = 0
	}
	if !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		if t.Limiter != nil {
			if err := t.Limiter.Wait(req.Context()); err != nil {
				return nil, err
			}
		}

		r := cloneRequest(req)
		if r.Header.Get("User-Agent") == "" && t.ua != nil {
			r.Header.Set("User-Agent", t.ua.pick())
		}
		// 自己声明 Accept-Encoding 后，net/http 不再透明解压，由 decodeBody 负责。
		if r.Header.Get("Accept-Encoding") == "" {
			r.Header.Set("Accept-Encoding", "gzip, br")
		}
		if t.DisableKeepAlives {
			r.Close = true
		}

		resp, err := t.Base.RoundTrip(r)
		if err == nil {
			if err := decodeBody(resp); err != nil {
				_ = resp.Body.Close()
				return nil, err
			}
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			// ctx 已取消：不再重试，直接返回最后错误（更可解释）。
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func cloneRequest(req *http.Request) *http.Request {
	// Clone 会复制 Header 等，避免在 RoundTripper 内部“污染”调用方的 request。
	return req.Clone(req.Context())
}

// decodeBody 按 Content-Encoding 包装 resp.Body，并清理相关头，
// 使上层看到的永远是解压后的字节（PDF 也按原样落盘）。
func decodeBody(resp *http.Response) error {
	enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	var rc io.ReadCloser
	switch enc {
	case "", "identity":
		return nil
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		rc = &wrappedBody{Reader: zr, closers: []io.Closer{zr, resp.Body}}
	case "br":
		rc = &wrappedBody{Reader: brotli.NewReader(resp.Body), closers: []io.Closer{resp.Body}}
	default:
		// 未声明过的编码：原样交给上层。
		return nil
	}
	resp.Body = rc
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}

type wrappedBody struct {
	io.Reader
	closers []io.Closer
}

func (b *wrappedBody) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewClient 构造抓取用的 HTTP client。
//
// 规则：
// - ProxyURL 非空：必须走代理，且禁用 keep-alive（每请求新连接）
// - UserAgent 为空：内置 UA 池，每个请求随机 UA
// - RateLimit > 0：令牌桶限速（burst=1）
// - 总超时 + 默认不重试
func NewClient(opts Options) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}

	disableKeepAlives := false
	proxyURL := strings.TrimSpace(opts.ProxyURL)
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
		// proxy 模式强制每请求新连接（代理池轮换依赖该行为）。
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	var ua userAgent = globalUA
	if s := strings.TrimSpace(opts.UserAgent); s != "" {
		ua = fixedUA(s)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	tr := &Transport{
		Base:              base,
		ua:                ua,
		Limiter:           limiter,
		RetryMax:          opts.RetryMax,
		DisableKeepAlives: disableKeepAlives,
	}
	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

type userAgent interface {
	pick() string
}

type fixedUA string

func (f fixedUA) pick() string { return string(f) }

type uaPool struct {
	mu  sync.Mutex
	rnd *rand.Rand
	uas []string
}

func (p *uaPool) pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uas[p.rnd.Intn(len(p.uas))]
}

var globalUA = newUAPool()

func newUAPool() *uaPool {
	// 尽量保持 UA 列表短小但多样；未来可扩充（不对外暴露配置）。
	uas := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	}
	return &uaPool{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		uas: uas,
	}
}
