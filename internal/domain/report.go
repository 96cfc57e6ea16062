package domain

import (
	"encoding/json"
	"time"
)

// RunReport 是一次 scrape 的对外输出（stdout JSON）。
// 只用于观测：不写盘，也不用于下一次运行的增量判断。
type RunReport struct {
	RunID string  `json:"run_id"`
	Court CourtID `json:"court"`
	Years []int   `json:"years"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary     ReportSummary `json:"summary"`
	YearReports []YearReport  `json:"year_reports"`
}

type ReportSummary struct {
	Collected  int `json:"collected"`
	Dropped    int `json:"dropped"`
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// YearReport 是单个年度的处理结果。Results 与 YearBatch.Records 顺序一致。
type YearReport struct {
	Year       int              `json:"year"`
	Dir        string           `json:"dir"`
	Pages      int              `json:"pages"`
	Collected  int              `json:"collected"`
	Dropped    int              `json:"dropped"`
	Duplicates int              `json:"duplicates"`
	OnDisk     int              `json:"on_disk"`
	Results    []DownloadResult `json:"results"`
}

// Counts 统计该年度各状态的条目数。
func (y YearReport) Counts() (downloaded, skipped, failed int) {
	for _, r := range y.Results {
		switch r.Status {
		case DownloadStatusDownloaded:
			downloaded++
		case DownloadStatusSkipped:
			skipped++
		case DownloadStatusFailed:
			failed++
		}
	}
	return downloaded, skipped, failed
}

// Finalize 做两件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) summary 由 year_reports 计算得出
//
// year_reports 保持执行顺序（即输入年份顺序），不做排序。
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Years == nil {
		r.Years = []int{}
	}
	if r.YearReports == nil {
		r.YearReports = []YearReport{}
	}

	var s ReportSummary
	for i := range r.YearReports {
		y := &r.YearReports[i]
		if y.Results == nil {
			y.Results = []DownloadResult{}
		}
		s.Collected += y.Collected
		s.Dropped += y.Dropped
		d, sk, f := y.Counts()
		s.Downloaded += d
		s.Skipped += sk
		s.Failed += f
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
