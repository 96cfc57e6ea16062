package scrape

import (
	"time"

	"github.com/John-Robertt/jude/internal/domain"
)

// Observer 把抓取进度从核心流程中解耦出来。
//
// 约束：
// - scrape 包只发事件，不做任何输出（stdout 留给 JSON report）
// - 同一年度内 OnRecordDone 按收集顺序调用，且只在调用 Run 的 goroutine 上触发
type Observer interface {
	// OnStart 在参数校验通过、开始抓取前调用。
	OnStart(runID string, court domain.CourtID, years []int)
	OnYearStart(year int)
	// OnListing 在分页解析完成后调用，pages 为该年度要抓取的列表页数（含首页）。
	OnListing(year, pages int)
	// OnBatch 在过滤完成、创建年度目录之前调用。
	OnBatch(year, collected, dropped int)
	OnRecordDone(year, idx, total int, res domain.DownloadResult, dur time.Duration)
	OnYearDone(year int, rep domain.YearReport, dur time.Duration)
}

type nopObserver struct{}

func (nopObserver) OnStart(string, domain.CourtID, []int)                            {}
func (nopObserver) OnYearStart(int)                                                  {}
func (nopObserver) OnListing(int, int)                                               {}
func (nopObserver) OnBatch(int, int, int)                                            {}
func (nopObserver) OnRecordDone(int, int, int, domain.DownloadResult, time.Duration) {}
func (nopObserver) OnYearDone(int, domain.YearReport, time.Duration)                 {}
