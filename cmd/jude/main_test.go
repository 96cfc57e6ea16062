package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/jude/internal/domain"
	"github.com/John-Robertt/jude/internal/infra/cache"
)

// newTestCLI 在临时 cwd 下构造一个非 TTY 的 cli，并写入指向 baseURL 的 jude.yaml。
func newTestCLI(t *testing.T, baseURL string) (*cli, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cwd := t.TempDir()
	if baseURL != "" {
		cfg := "base_url: " + baseURL + "\nlog_level: warn\n"
		require.NoError(t, os.WriteFile(filepath.Join(cwd, "jude.yaml"), []byte(cfg), 0o644))
	}
	var stdout, stderr bytes.Buffer
	return &cli{cwd: cwd, stdout: &stdout, stderr: &stderr}, &stdout, &stderr
}

func newFakeSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCLI_Scrape_NoTTY_StdoutOnlyRunReportJSON(t *testing.T) {
	pages := map[string]string{
		"/cases/test/court/2020/": `<html><body>
<div class="has-padding-content-block-30 -zb"><a class="case-name" href="/cases/test/court/2020/a-1.html"><strong>A</strong></a></div>
<div class="has-padding-content-block-30 -zb"><strong>no link</strong></div>
</body></html>`,
		"/cases/test/court/2020/a-1.html": `<html><body><a class="pdf-icon pull-right has-margin-bottom-20" href="/pdf/a-1.pdf">Download PDF</a></body></html>`,
		"/pdf/a-1.pdf":                    "%PDF-1.4 a-1",
	}
	srv := newFakeSite(t, pages)
	c, stdout, stderr := newTestCLI(t, srv.URL)

	code := c.run(context.Background(), []string{"scrape", "--court", "cases/test/court", "--years", "2020"})
	require.Equal(t, exitOK, code, "stderr=%s", stderr.String())

	// stdout 必须是单个 RunReport JSON。
	var rr domain.RunReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rr), "stdout=%q", stdout.String())
	require.Equal(t, domain.CourtID("/cases/test/court/"), rr.Court)
	require.Equal(t, domain.ReportSummary{Collected: 1, Dropped: 1, Downloaded: 1}, rr.Summary)

	out := stderr.String()
	require.Contains(t, out, "//CASES_TEST_COURT")
	require.Contains(t, out, "Collecting: 1")
	require.Contains(t, out, "Dropping: 1")
	require.NotContains(t, stdout.String(), "Collecting")

	pdf := filepath.Join(c.cwd, "data", "court_opinions", "cases_test_court", "2020", "test_court_2020_a-1.pdf")
	b, err := os.ReadFile(pdf)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 a-1", string(b))
}

func TestCLI_Scrape_FailedRecordExitsNonZero(t *testing.T) {
	pages := map[string]string{
		"/cases/test/court/2020/": `<html><body>
<div class="has-padding-content-block-30 -zb"><a class="case-name" href="/cases/test/court/2020/a-1.html"><strong>A</strong></a></div>
</body></html>`,
		"/cases/test/court/2020/a-1.html": `<html><body><a class="pdf-icon pull-right has-margin-bottom-20" href="/pdf/missing.pdf">Download PDF</a></body></html>`,
	}
	srv := newFakeSite(t, pages)
	c, stdout, stderr := newTestCLI(t, srv.URL)

	code := c.run(context.Background(), []string{"scrape", "--court", "/cases/test/court/", "--years", "2020"})
	require.Equal(t, exitFail, code)
	require.Contains(t, stderr.String(), "Error: TEST_COURT_2020_A-1 aborted with 404 status")

	var rr domain.RunReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rr))
	require.Equal(t, 1, rr.Summary.Failed)
}

func TestCLI_Scrape_RejectsCourtMissingFromCatalog(t *testing.T) {
	c, _, stderr := newTestCLI(t, "http://127.0.0.1:1")
	cat := domain.NewCatalog(domain.CatalogEntry{ID: "/cases/known/", Category: domain.CategoryState})
	path := filepath.Join(c.cwd, "data", "courts.yaml")
	require.NoError(t, cache.New(path, false).WriteCatalog(cat, "http://127.0.0.1:1", time.Now()))

	code := c.run(context.Background(), []string{"scrape", "--court", "/cases/unknown/", "--years", "2020"})
	require.Equal(t, exitFail, code)
	require.Contains(t, stderr.String(), "/cases/unknown/")

	// --no-validate 跳过目录校验；目标站不可达，于是在列表页阶段失败。
	stderr.Reset()
	code = c.run(context.Background(), []string{"scrape", "--court", "/cases/unknown/", "--years", "2020", "--no-validate"})
	require.Equal(t, exitFail, code)
	require.NotContains(t, stderr.String(), "参数错误")
}

func TestCLI_Scrape_UsageErrors(t *testing.T) {
	cases := map[string][]string{
		"missing court":  {"scrape", "--years", "2020"},
		"bad years":      {"scrape", "--court", "/cases/x/", "--years", "20x0"},
		"reversed range": {"scrape", "--court", "/cases/x/", "--years", "2020-2019"},
		"unknown flag":   {"scrape", "--nope"},
		"extra args":     {"search", "a", "b"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			c, stdout, stderr := newTestCLI(t, "")
			code := c.run(context.Background(), args)
			require.Equal(t, exitUsage, code, "stderr=%s", stderr.String())
			require.Empty(t, stdout.String())
		})
	}
}

func TestCLI_Search(t *testing.T) {
	c, stdout, stderr := newTestCLI(t, "")

	// 没有目录文件且未加 --build：运行错误。
	code := c.run(context.Background(), []string{"search", "cal"})
	require.Equal(t, exitFail, code)
	require.Contains(t, stderr.String(), "目录文件不存在")

	cat := domain.NewCatalog(
		domain.CatalogEntry{ID: "/cases/federal/appellate-courts/ca1/", Category: domain.CategoryFederalAppellate},
		domain.CatalogEntry{ID: "/cases/california/supreme-court/", Category: domain.CategoryState},
		domain.CatalogEntry{ID: "/cases/california/court-of-appeal/", Category: domain.CategoryState},
	)
	path := filepath.Join(c.cwd, "data", "courts.yaml")
	require.NoError(t, cache.New(path, false).WriteCatalog(cat, "https://law.justia.com", time.Now()))

	stdout.Reset()
	code = c.run(context.Background(), []string{"search", "CALIFORNIA"})
	require.Equal(t, exitOK, code)
	require.Equal(t, "/cases/california/supreme-court/\n/cases/california/court-of-appeal/\n", stdout.String())

	stdout.Reset()
	code = c.run(context.Background(), []string{"search", "nowhere"})
	require.Equal(t, exitOK, code)
	require.Empty(t, stdout.String())
}

func TestCLI_Version(t *testing.T) {
	c, stdout, _ := newTestCLI(t, "")
	require.Equal(t, exitOK, c.run(context.Background(), []string{"version"}))
	require.True(t, strings.HasPrefix(stdout.String(), "jude "))
}

func TestParseYears(t *testing.T) {
	got, err := parseYears("2019, 2015-2017,2016,2019")
	require.NoError(t, err)
	require.Equal(t, []int{2019, 2015, 2016, 2017}, got)

	for _, raw := range []string{"", " , ", "abc", "2020-", "1500", "2020-2019", "2019-10000"} {
		_, err := parseYears(raw)
		require.Error(t, err, "输入 %q 应报错", raw)
	}
}

func TestFormatFailure(t *testing.T) {
	got := formatFailure(domain.DownloadResult{
		Citation:   "test_court_2020_a-1",
		ErrorCode:  domain.ErrCodeHTTPStatus,
		StatusCode: 403,
	})
	require.Equal(t, "Error: TEST_COURT_2020_A-1 aborted with 403 status", got)

	got = formatFailure(domain.DownloadResult{
		Citation:  "x",
		ErrorCode: domain.ErrCodeFetchFailed,
		ErrorMsg:  "connection refused",
	})
	require.Equal(t, "Error: X aborted with fetch_failed: connection refused", got)
}

func TestTruncate_RuneBoundary(t *testing.T) {
	msg := strings.Repeat("详情页返回错误", 40)
	got := truncate(msg, 160)
	require.True(t, utf8.ValidString(got), "截断结果不是合法 UTF-8：%q", got)
	require.Equal(t, 160, utf8.RuneCountInString(got))
	require.True(t, strings.HasSuffix(got, "..."))

	require.Equal(t, "短消息", truncate(" 短消息 ", 160))
	require.Equal(t, "详情", truncate("详情页", 2))
}

func TestFormatFailure_LongChineseMessage(t *testing.T) {
	got := formatFailure(domain.DownloadResult{
		Citation:  "x",
		ErrorCode: domain.ErrCodeIOFailed,
		ErrorMsg:  strings.Repeat("写入失败", 100),
	})
	require.True(t, utf8.ValidString(got), "错误行不是合法 UTF-8：%q", got)
}

func TestFormatProxy(t *testing.T) {
	require.Equal(t, "off", formatProxy(" "))
	require.Equal(t, "on (http://127.0.0.1:8080, auth=off)", formatProxy("http://127.0.0.1:8080"))
	require.Equal(t, "on (socks5://proxy.test:1080, auth=on)", formatProxy("socks5://u:p@proxy.test:1080"))
}
