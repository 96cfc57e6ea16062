package httpx

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestNewClient_ProxyDisablesKeepAlive(t *testing.T) {
	c, err := NewClient(Options{ProxyURL: "http://127.0.0.1:8080"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("期望 *Transport，实际 %T", c.Transport)
	}
	if tr.Base.Proxy == nil {
		t.Fatalf("期望启用代理，但 Proxy=nil")
	}
	if !tr.Base.DisableKeepAlives || !tr.DisableKeepAlives {
		t.Fatalf("代理模式应禁用 keep-alive")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr := c.Transport.(*Transport)
	if tr.Base.Proxy != nil {
		t.Fatalf("不期望启用代理，但 Proxy!=nil")
	}
	if tr.Limiter != nil {
		t.Fatalf("RateLimit=0 时不应限速")
	}
	if tr.RetryMax != 0 {
		t.Fatalf("默认不应重试，RetryMax=%d", tr.RetryMax)
	}
	if c.Timeout != defaultTimeout {
		t.Fatalf("期望默认超时 %s，实际 %s", defaultTimeout, c.Timeout)
	}
}

func TestNewClient_RateLimit(t *testing.T) {
	c, err := NewClient(Options{RateLimit: 2})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr := c.Transport.(*Transport)
	if tr.Limiter == nil || float64(tr.Limiter.Limit()) != 2 || tr.Limiter.Burst() != 1 {
		t.Fatalf("limiter 配置不符合预期：%+v", tr.Limiter)
	}
}

func TestNewClient_InvalidProxyURL(t *testing.T) {
	if _, err := NewClient(Options{ProxyURL: "http://[::1"}); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestTransport_FixedUserAgent(t *testing.T) {
	uaCh := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uaCh <- r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c, err := NewClient(Options{UserAgent: "jude-test/1.0"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("请求失败：%v", err)
	}
	resp.Body.Close()
	if got := <-uaCh; got != "jude-test/1.0" {
		t.Fatalf("期望固定 UA，实际 %q", got)
	}
}

func TestTransport_PoolUserAgent(t *testing.T) {
	uaCh := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uaCh <- r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c, _ := NewClient(Options{})
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("请求失败：%v", err)
	}
	resp.Body.Close()

	got := <-uaCh
	found := false
	for _, ua := range globalUA.uas {
		if ua == got {
			found = true
		}
	}
	if !found {
		t.Fatalf("UA 不在内置池中：%q", got)
	}
}

func TestTransport_DecodesGzipAndBrotli(t *testing.T) {
	const body = "<html><body>ok</body></html>"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		switch r.URL.Path {
		case "/gz":
			zw := gzip.NewWriter(&buf)
			_, _ = zw.Write([]byte(body))
			_ = zw.Close()
			w.Header().Set("Content-Encoding", "gzip")
		case "/br":
			bw := brotli.NewWriter(&buf)
			_, _ = bw.Write([]byte(body))
			_ = bw.Close()
			w.Header().Set("Content-Encoding", "br")
		default:
			buf.WriteString(body)
		}
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	c, _ := NewClient(Options{})
	for _, p := range []string{"/gz", "/br", "/plain"} {
		resp, err := c.Get(srv.URL + p)
		if err != nil {
			t.Fatalf("%s 请求失败：%v", p, err)
		}
		b, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("%s 读取失败：%v", p, err)
		}
		if string(b) != body {
			t.Fatalf("%s 解压结果不一致：%q", p, string(b))
		}
		if resp.Header.Get("Content-Encoding") != "" {
			t.Fatalf("%s 解压后应清理 Content-Encoding", p)
		}
	}
}
