package domain

// DownloadPlan 是单条记录的下载计划（纯数据，不做任何 IO）。
type DownloadPlan struct {
	Record CaseRecord

	// Name 是年度目录下的目标文件名（<slug>.pdf，冲突时带 __N 后缀）。
	// 引用规范化后为空时 Name 为空，Degenerate=true。
	Name       string
	Path       string
	Degenerate bool
}

// YearPlan 是某个年度的完整下载计划，顺序与 YearBatch.Records 一致。
type YearPlan struct {
	Dir   string
	Items []DownloadPlan
}

// PDFFile 是年度目录下实际存在的一个 PDF（只用于统计，不读内容）。
type PDFFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}
