package provider

import "github.com/John-Robertt/jude/internal/domain"

// Listing 描述“年度列表页 -> 详情页 -> PDF”这条链路上的页面结构。
//
// 约束：
// - 所有 Parse* 必须是纯函数：相同输入 => 相同输出，不发网络请求
// - 页面缺少必需结构时返回 *StructureError（上层据此中止整个年度）
type Listing interface {
	// ListingURL 拼出某法院某年度的第一页列表 URL。
	ListingURL(baseURL string, court domain.CourtID, year int) string
	// ParsePagination 返回分页控件里的 href（已去空、按首次出现去重）。
	ParsePagination(html []byte) ([]string, error)
	// ParseEntries 返回列表页上每个判决条目；缺少案件链接的条目以 domain.NoLink 占位。
	ParseEntries(html []byte, pageURL string) ([]domain.CaseRecord, error)
	// ParsePDFLink 返回详情页上的 PDF 绝对 URL；没有 PDF 链接时 ok=false 且 err=nil。
	ParsePDFLink(html []byte, pageURL string) (pdfURL string, ok bool, err error)
}

// Index 描述法院目录构建时用到的索引页结构。
type Index interface {
	FederalIndexPath() string
	AllCasesIndexPath() string

	ParseAppellateCourts(html []byte) ([]domain.CourtID, error)
	ParseDistrictGroups(html []byte) ([]string, error)
	ParseDistrictCourts(html []byte) ([]domain.CourtID, error)
	ParseStateGroups(html []byte) ([]string, error)
	ParseStateCourts(html []byte) ([]domain.CourtID, error)
}

// Markup 把“站点结构变化”限制在 provider 子包内部；
// 目录构建与抓取流程只依赖这个接口。
type Markup interface {
	Name() string
	Listing
	Index
}
