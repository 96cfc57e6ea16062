package justia

// Layout 收拢了 law.justia.com 页面结构的全部假设（选择器 + 位置索引）。
//
// 这些值与站点当前的 HTML 强耦合：站点改版时只需要改这里（或通过 Provider.Layout 覆盖），
// 解析逻辑本身不需要动。
type Layout struct {
	// 年度列表页
	PaginationSelector string // 分页控件（每个控件内取第一个 a[href]）
	EntrySelector      string // 单个判决条目块
	CaseNameSelector   string // 条目块内的案件链接

	// 详情页
	PDFSelector string // PDF 下载链接（协议相对地址）

	// 目录索引页
	FederalIndexPath  string // 联邦案件索引页
	AllCasesIndexPath string // 全部案件索引页（州法院入口）

	CourtListSelector  string // 联邦索引页上同形的法院链接列表
	AppellateListIndex int    // 第几个 CourtListSelector 是上诉法院列表（0 起）

	DistrictGroupSelector string // 联邦索引页上的地区法院分组列表（独特的 class 组合）
	DistrictListSelector  string // 分组页上的地区法院列表

	StateGroupSelector string // 全部案件索引页上的州列表
	StateListSelector  string // 州页面上的法院列表

	LinkSelector string // 列表内的链接
}

// DefaultLayout 对应 law.justia.com 当前的页面结构。
var DefaultLayout = Layout{
	PaginationSelector: "span.pagination.page",
	EntrySelector:      "div.has-padding-content-block-30.-zb",
	CaseNameSelector:   "a.case-name[href]",

	PDFSelector: "a.pdf-icon.pull-right.has-margin-bottom-20[href]",

	FederalIndexPath:  "/cases/federal/",
	AllCasesIndexPath: "/cases/",

	CourtListSelector:  "ul.list-columns",
	AppellateListIndex: 1,

	DistrictGroupSelector: "ul.list-columns.-district-regions",
	DistrictListSelector:  "ul.list-columns",

	StateGroupSelector: "div#states ul.list-columns",
	StateListSelector:  "ul.list-columns",

	LinkSelector: "a[href]",
}
