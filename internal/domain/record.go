package domain

// NoLink 是列表页条目缺少案件链接时使用的哨兵值（引用与 URL 同时置为该值）。
const NoLink = "No Link"

// CaseRecord 是从列表页提取到的一条判决记录。
type CaseRecord struct {
	Citation  string `json:"citation"`
	DetailURL string `json:"detail_url"`
}

// HasLink 报告记录是否带有可解析的详情页 URL。
func (r CaseRecord) HasLink() bool {
	return r.DetailURL != "" && r.DetailURL != NoLink
}

// YearBatch 是某个 (court, year) 经过分页汇总、过滤与去重后的记录集合。
// 生命周期只覆盖该年度：构建、过滤、下载后即丢弃。
type YearBatch struct {
	Court CourtID `json:"-"`
	Year  int     `json:"year"`

	// Pages 是实际抓取的列表页 URL（首页在前，按发现顺序）。
	Pages []string `json:"pages"`

	Records    []CaseRecord `json:"-"`
	Dropped    int          `json:"dropped"`
	Duplicates int          `json:"duplicates"`
}

const (
	DownloadStatusDownloaded = "downloaded"
	DownloadStatusSkipped    = "skipped"
	DownloadStatusFailed     = "failed"
)

const (
	ErrCodeHTTPStatus       = "http_status"
	ErrCodeFetchFailed      = "fetch_failed"
	ErrCodeIOFailed         = "io_failed"
	ErrCodeDegenerateSlug   = "degenerate_slug"
	ErrCodeRobotsDisallowed = "robots_disallowed"
	ErrCodeNoPDFLink        = "no_pdf_link"
)

// DownloadResult 是单条记录的下载结果（只用于日志与 report，不落盘）。
type DownloadResult struct {
	Citation  string `json:"citation"`
	DetailURL string `json:"detail_url"`
	PDFURL    string `json:"pdf_url,omitempty"`
	File      string `json:"file,omitempty"`

	Status     string `json:"status"`
	StatusCode int    `json:"status_code,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"`
	ErrorMsg   string `json:"error_msg,omitempty"`
}
