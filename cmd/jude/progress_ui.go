package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/jude/internal/app/scrape"
	"github.com/John-Robertt/jude/internal/domain"
	"github.com/John-Robertt/jude/internal/slug"
)

var _ scrape.Observer = (*consoleUI)(nil)

// consoleUI 把抓取事件渲染成终端进度行，全部写到 stderr。
//
// 长时间没有条目完成时，keepalive 会定期补一行进度。
type consoleUI struct {
	w io.Writer

	mu          sync.Mutex
	yearStarted time.Time
	lastPrinted time.Time

	year  int
	total int
	done  int
	ok    int
	fail  int
	skip  int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newConsoleUI(w io.Writer) *consoleUI {
	return &consoleUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *consoleUI) OnStart(runID string, court domain.CourtID, years []int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "+++ %s +++\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintln(p.w, "//JUDE")
	fmt.Fprintf(p.w, "//%s\n", strings.ToUpper(court.Dir()))
	fmt.Fprintf(p.w, "run=%s years=%s\n\n", runID, formatYears(years))
	p.lastPrinted = time.Now()
}

func (p *consoleUI) OnYearStart(year int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.year = year
	p.yearStarted = time.Now()
	p.total, p.done, p.ok, p.fail, p.skip = 0, 0, 0, 0, 0
	fmt.Fprintf(p.w, "+++ %d\n", year)
	p.lastPrinted = time.Now()
}

func (p *consoleUI) OnListing(year, pages int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "Parsing: %d page(s)\n", pages)
	p.lastPrinted = time.Now()
}

func (p *consoleUI) OnBatch(year, collected, dropped int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "Collecting: %d\n", collected)
	fmt.Fprintf(p.w, "Dropping: %d\n", dropped)
	p.total = collected
	p.lastPrinted = time.Now()
	if p.total > 0 && !p.tickerStarted {
		p.startTickerLocked()
	}
}

func (p *consoleUI) OnRecordDone(year, idx, total int, res domain.DownloadResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total
	switch res.Status {
	case domain.DownloadStatusDownloaded:
		p.ok++
	case domain.DownloadStatusSkipped:
		p.skip++
	case domain.DownloadStatusFailed:
		p.fail++
		fmt.Fprintln(p.w, formatFailure(res))
		p.lastPrinted = time.Now()
	}
}

func (p *consoleUI) OnYearDone(year int, rep domain.YearReport, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopTickerLocked()
	d, s, f := rep.Counts()
	fmt.Fprintf(p.w, "Done %d: downloaded=%d skipped=%d failed=%d on_disk=%d (%s)\n\n",
		year, d, s, f, rep.OnDisk, formatShortDuration(dur),
	)
	p.lastPrinted = time.Now()
}

// Close 停止 keepalive（年度中途出错时 OnYearDone 不会被调用）。
func (p *consoleUI) Close() {
	p.mu.Lock()
	p.stopTickerLocked()
	p.mu.Unlock()
}

func (p *consoleUI) stopTickerLocked() {
	if p.tickerStarted {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *consoleUI) startTickerLocked() {
	stop := make(chan struct{})
	p.stopCh = stop
	p.tickerStarted = true

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "Progress %d: done=%d/%d ok=%d fail=%d skip=%d elapsed=%s\n",
						p.year, p.done, p.total, p.ok, p.fail, p.skip, formatElapsed(time.Since(p.yearStarted)),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

// formatFailure 渲染失败条目：HTTP 状态码失败与网络/IO 失败措辞不同。
func formatFailure(res domain.DownloadResult) string {
	label := slug.ErrorLabel(res.Citation)
	if res.ErrorCode == domain.ErrCodeHTTPStatus && res.StatusCode != 0 {
		return fmt.Sprintf("Error: %s aborted with %d status", label, res.StatusCode)
	}
	msg := truncate(res.ErrorMsg, 160)
	if msg == "" {
		return fmt.Sprintf("Error: %s aborted with %s", label, res.ErrorCode)
	}
	return fmt.Sprintf("Error: %s aborted with %s: %s", label, res.ErrorCode, msg)
}

func formatYears(years []int) string {
	parts := make([]string, 0, len(years))
	for _, y := range years {
		parts = append(parts, fmt.Sprint(y))
	}
	return strings.Join(parts, ",")
}

func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

// truncate 按字符（rune）截断，max 也按字符计。
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
