// Package scrape 按 (court, year) 抓取判决列表并下载 PDF。
//
// 每个年度的状态推进：
//
//	listing -> pagination -> entries -> filter -> mkdir -> download -> done
//
// mkdir 之前的任何失败（抓取列表页、结构不符、年度目录已存在）都会中止整个 run；
// 下载阶段的失败只影响单条记录，记录在 report 里。
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/jude/internal/app"
	"github.com/John-Robertt/jude/internal/app/planner"
	"github.com/John-Robertt/jude/internal/domain"
	"github.com/John-Robertt/jude/internal/infra/fsx"
	"github.com/John-Robertt/jude/internal/infra/robots"
	"github.com/John-Robertt/jude/internal/provider"
	"github.com/John-Robertt/jude/internal/scan"
)

const (
	MinYear = 1600
	MaxYear = 9999

	MaxConcurrency = 32
)

// Options 是一次 run 需要的全部依赖（由 cmd 层组装）。
type Options struct {
	Client  *http.Client
	Markup  provider.Listing
	BaseURL string
	Root    string

	// Concurrency 是单个年度内下载 worker 数；<1 视为 1，超过 MaxConcurrency 截断。
	Concurrency int

	// Robots 为 nil 时不检查 robots.txt。
	Robots *robots.Gate
	// Catalog 非 nil 时，court 必须在目录中。
	Catalog *domain.Catalog

	Logger *slog.Logger
}

// Error 是中止整个 run 的致命错误。
type Error struct {
	Court domain.CourtID
	Year  int    // 0 表示与具体年度无关（例如参数校验）
	Stage string // validate / root / listing / pagination / entries / mkdir
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "scrape error"
	}
	if e.Year == 0 {
		return fmt.Sprintf("%s：%s 失败：%v", e.Court, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %d：%s 失败：%v", e.Court, e.Year, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Run 依次处理 years 中的每个年度，返回已完成年度的 report。
//
// 出错时 report 仍然有效（包含出错前已完成的年度），err 为 *Error。
func Run(ctx context.Context, opts Options, court domain.CourtID, years []int, obs Observer) (domain.RunReport, error) {
	if obs == nil {
		obs = nopObserver{}
	}

	rr := domain.RunReport{
		Court:       court,
		Years:       append([]int(nil), years...),
		StartedAt:   time.Now().UTC(),
		YearReports: make([]domain.YearReport, 0, len(years)),
	}
	finish := func(err error) (domain.RunReport, error) {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr, err
	}

	id, err := validate(opts, court, years)
	if err != nil {
		return finish(&Error{Court: court, Stage: "validate", Err: err})
	}
	court = id
	rr.Court = id
	rr.RunID = uuid.NewString()

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run_id", rr.RunID, "court", string(court))

	obs.OnStart(rr.RunID, court, rr.Years)

	// 根目录与法院目录只创建一次；法院目录已存在是允许的（便于追加新年度）。
	if err := fsx.EnsureDir(opts.Root); err != nil {
		return finish(&Error{Court: court, Stage: "root", Err: err})
	}
	if err := fsx.EnsureDir(planner.CourtDir(opts.Root, court)); err != nil {
		return finish(&Error{Court: court, Stage: "root", Err: err})
	}

	r := &runner{opts: opts, court: court, obs: obs, log: log}
	for _, y := range years {
		started := time.Now()
		obs.OnYearStart(y)

		yr, err := r.year(ctx, y)
		if err != nil {
			log.Error("year aborted", "year", y, "err", err)
			return finish(err)
		}
		rr.YearReports = append(rr.YearReports, yr)
		obs.OnYearDone(y, yr, time.Since(started))
	}
	return finish(nil)
}

func validate(opts Options, court domain.CourtID, years []int) (domain.CourtID, error) {
	if opts.Client == nil {
		return "", errors.New("http client 不能为空")
	}
	if opts.Markup == nil {
		return "", errors.New("markup 不能为空")
	}
	if opts.Root == "" {
		return "", errors.New("root 不能为空")
	}
	id, err := domain.ParseCourtID(string(court))
	if err != nil {
		return "", err
	}
	if opts.Catalog != nil && !opts.Catalog.Contains(id) {
		return "", fmt.Errorf("court 不在目录中：%s", id)
	}
	if len(years) == 0 {
		return "", errors.New("years 不能为空")
	}
	seen := make(map[int]struct{}, len(years))
	for _, y := range years {
		if y < MinYear || y > MaxYear {
			return "", fmt.Errorf("非法年份：%d（允许 %d-%d）", y, MinYear, MaxYear)
		}
		if _, ok := seen[y]; ok {
			return "", fmt.Errorf("年份重复：%d", y)
		}
		seen[y] = struct{}{}
	}
	return id, nil
}

type runner struct {
	opts  Options
	court domain.CourtID
	obs   Observer
	log   *slog.Logger
}

func (r *runner) year(ctx context.Context, year int) (domain.YearReport, error) {
	fail := func(stage string, err error) (domain.YearReport, error) {
		return domain.YearReport{}, &Error{Court: r.court, Year: year, Stage: stage, Err: err}
	}

	first := r.opts.Markup.ListingURL(r.opts.BaseURL, r.court, year)
	firstHTML, err := r.fetchListing(ctx, first)
	if err != nil {
		return fail("listing", err)
	}

	hrefs, err := r.opts.Markup.ParsePagination(firstHTML)
	if err != nil {
		return fail("pagination", err)
	}
	pages := app.ListingPages(first, hrefs)
	r.obs.OnListing(year, len(pages))
	r.log.Debug("pagination resolved", "year", year, "pages", len(pages))

	all := make([]domain.CaseRecord, 0, 64)
	for i, u := range pages {
		html := firstHTML
		if i > 0 {
			html, err = r.fetchListing(ctx, u)
			if err != nil {
				return fail("listing", err)
			}
		}
		recs, err := r.opts.Markup.ParseEntries(html, u)
		if err != nil {
			return fail("entries", err)
		}
		all = append(all, recs...)
	}

	batch := domain.YearBatch{Court: r.court, Year: year, Pages: pages}
	batch.Records, batch.Dropped, batch.Duplicates = app.FilterRecords(all)
	r.obs.OnBatch(year, len(batch.Records), batch.Dropped)
	r.log.Info("records collected", "year", year, "collected", len(batch.Records), "dropped", batch.Dropped, "duplicates", batch.Duplicates)

	// 年度目录必须在任何下载之前创建；已存在即失败（没有“续传”模式）。
	yearDir := planner.YearDir(r.opts.Root, r.court, year)
	if err := fsx.Mkdir(yearDir); err != nil {
		return fail("mkdir", err)
	}

	plan := planner.PlanYear(yearDir, batch.Records)
	results := r.download(ctx, year, plan)

	onDisk := 0
	if files, err := scan.PDFs(yearDir); err != nil {
		r.log.Warn("scan year dir failed", "year", year, "dir", yearDir, "err", err)
	} else {
		onDisk = len(files)
	}

	return domain.YearReport{
		Year:       year,
		Dir:        yearDir,
		Pages:      len(pages),
		Collected:  len(batch.Records),
		Dropped:    batch.Dropped,
		Duplicates: batch.Duplicates,
		OnDisk:     onDisk,
		Results:    results,
	}, nil
}

func (r *runner) fetchListing(ctx context.Context, u string) ([]byte, error) {
	if err := r.opts.Robots.Check(ctx, u); err != nil {
		return nil, err
	}
	r.log.Debug("fetch listing", "url", u)
	return provider.Fetch(ctx, r.opts.Client, u)
}

func (r *runner) workers(n int) int {
	w := r.opts.Concurrency
	if w < 1 {
		w = 1
	}
	if w > MaxConcurrency {
		w = MaxConcurrency
	}
	if n > 0 && w > n {
		w = n
	}
	return w
}

// download 用 worker pool 执行一个年度的下载计划。
// 结果按计划顺序返回；Observer 事件也按计划顺序发出（先完成的结果会等待前面的记录）。
func (r *runner) download(ctx context.Context, year int, plan domain.YearPlan) []domain.DownloadResult {
	total := len(plan.Items)
	results := make([]domain.DownloadResult, total)
	if total == 0 {
		return results
	}

	type execResult struct {
		idx int
		res domain.DownloadResult
		dur time.Duration
	}

	// 撞名的条目落在同一组，由同一个 worker 按顺序执行。
	groups := planner.TargetGroups(plan)
	jobs := make(chan []int)
	done := make(chan execResult, total)

	var wg sync.WaitGroup
	for i := 0; i < r.workers(len(groups)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range jobs {
				for _, idx := range group {
					started := time.Now()
					res := r.downloadOne(ctx, plan.Dir, plan.Items[idx])
					done <- execResult{idx: idx, res: res, dur: time.Since(started)}
				}
			}
		}()
	}

	go func() {
		for _, g := range groups {
			jobs <- g
		}
		close(jobs)
		wg.Wait()
		close(done)
	}()

	pending := make(map[int]execResult, r.workers(total))
	next := 0
	for it := range done {
		results[it.idx] = it.res
		pending[it.idx] = it
		for {
			p, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			r.obs.OnRecordDone(year, next, total, p.res, p.dur)
		}
	}
	return results
}

func (r *runner) downloadOne(ctx context.Context, dir string, item domain.DownloadPlan) domain.DownloadResult {
	res := domain.DownloadResult{
		Citation:  item.Record.Citation,
		DetailURL: item.Record.DetailURL,
		Status:    domain.DownloadStatusDownloaded, // 失败时覆盖
	}

	if item.Degenerate {
		return failed(res, domain.ErrCodeDegenerateSlug, "引用规范化后为空，无法生成文件名", 0)
	}
	if err := ctx.Err(); err != nil {
		return failed(res, domain.ErrCodeFetchFailed, err.Error(), 0)
	}

	if err := r.opts.Robots.Check(ctx, item.Record.DetailURL); err != nil {
		return failed(res, domain.ErrCodeRobotsDisallowed, err.Error(), 0)
	}
	r.log.Debug("fetch detail", "url", item.Record.DetailURL)
	html, err := provider.Fetch(ctx, r.opts.Client, item.Record.DetailURL)
	if err != nil {
		return fetchFailed(res, "详情页", err)
	}

	pdfURL, ok, err := r.opts.Markup.ParsePDFLink(html, item.Record.DetailURL)
	if err != nil {
		return failed(res, domain.ErrCodeFetchFailed, fmt.Sprintf("解析详情页失败：%v", err), 0)
	}
	if !ok {
		// 不是错误：不是每个判决都有 PDF。
		res.Status = domain.DownloadStatusSkipped
		res.ErrorCode = domain.ErrCodeNoPDFLink
		return res
	}
	res.PDFURL = pdfURL

	if err := r.opts.Robots.Check(ctx, pdfURL); err != nil {
		return failed(res, domain.ErrCodeRobotsDisallowed, err.Error(), 0)
	}
	r.log.Debug("fetch pdf", "url", pdfURL)
	resp, err := provider.Open(ctx, r.opts.Client, pdfURL)
	if err != nil {
		return fetchFailed(res, "PDF", err)
	}
	defer resp.Body.Close()

	n, err := fsx.WriteReaderAtomic(dir, item.Name, resp.Body)
	if err != nil {
		return failed(res, domain.ErrCodeIOFailed, fmt.Sprintf("写入 %s 失败：%v", item.Name, err), 0)
	}
	res.File = item.Path
	r.log.Debug("pdf written", "file", item.Path, "bytes", n)
	return res
}

func fetchFailed(res domain.DownloadResult, what string, err error) domain.DownloadResult {
	if code := provider.StatusCode(err); code != 0 {
		return failed(res, domain.ErrCodeHTTPStatus, fmt.Sprintf("%s返回 HTTP %d", what, code), code)
	}
	return failed(res, domain.ErrCodeFetchFailed, fmt.Sprintf("抓取%s失败：%v", what, err), 0)
}

func failed(res domain.DownloadResult, code, msg string, status int) domain.DownloadResult {
	res.Status = domain.DownloadStatusFailed
	res.ErrorCode = code
	res.ErrorMsg = msg
	res.StatusCode = status
	return res
}
