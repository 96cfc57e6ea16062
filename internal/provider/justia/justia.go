package justia

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/jude/internal/domain"
	providerx "github.com/John-Robertt/jude/internal/provider"
	"github.com/John-Robertt/jude/internal/slug"
)

// Provider 实现 law.justia.com 的页面解析。
//
// 约束：
// - 只解析，不抓取：网络请求由上层统一发起（限速/UA/代理在 httpx）
// - 所有 Parse* 都是纯函数（依赖输入 html + pageURL）
type Provider struct {
	// Layout 为零值时使用 DefaultLayout。
	Layout *Layout
}

var _ providerx.Markup = Provider{}

func (Provider) Name() string { return "justia" }

func (p Provider) layout() *Layout {
	if p.Layout != nil {
		return p.Layout
	}
	return &DefaultLayout
}

// ListingURL 拼出年度列表页：<base><court><year>/
func (p Provider) ListingURL(baseURL string, court domain.CourtID, year int) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/") + string(court) + strconv.Itoa(year) + "/"
}

// ParsePagination 收集分页链接：每个分页控件取第一个 a[href]，跳过空 href，按首次出现去重。
// 页面没有分页控件是正常情况（只有一页）。
func (p Provider) ParsePagination(html []byte) ([]string, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}
	l := p.layout()

	seen := make(map[string]struct{})
	out := make([]string, 0, 8)
	doc.Find(l.PaginationSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Find("a[href]").First().Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		out = append(out, href)
	})
	return out, nil
}

// ParseEntries 解析列表页上的判决条目。
//
// 条目块内没有案件链接时，引用与 URL 都置为 domain.NoLink（由上层统一过滤并计数）。
// 一个条目块都没有说明页面不是预期的列表页，返回 *StructureError。
func (p Provider) ParseEntries(html []byte, pageURL string) ([]domain.CaseRecord, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}
	l := p.layout()

	blocks := doc.Find(l.EntrySelector)
	if blocks.Length() == 0 {
		return nil, &providerx.StructureError{Page: pageURL, What: l.EntrySelector}
	}

	out := make([]domain.CaseRecord, 0, blocks.Length())
	blocks.Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Find(l.CaseNameSelector).First().Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			out = append(out, domain.CaseRecord{Citation: domain.NoLink, DetailURL: domain.NoLink})
			return
		}
		out = append(out, domain.CaseRecord{
			Citation:  slug.Citation(href),
			DetailURL: providerx.ResolveURL(pageURL, href),
		})
	})
	return out, nil
}

// ParsePDFLink 在详情页上查找 PDF 下载链接。没有链接不是错误：ok=false。
func (p Provider) ParsePDFLink(html []byte, pageURL string) (string, bool, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return "", false, err
	}
	href, ok := doc.Find(p.layout().PDFSelector).First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", false, nil
	}
	return providerx.ResolveURL(pageURL, href), true, nil
}

func (p Provider) FederalIndexPath() string  { return p.layout().FederalIndexPath }
func (p Provider) AllCasesIndexPath() string { return p.layout().AllCasesIndexPath }

// ParseAppellateCourts 取联邦索引页上第 AppellateListIndex 个法院列表。
func (p Provider) ParseAppellateCourts(html []byte) ([]domain.CourtID, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}
	l := p.layout()
	lists := doc.Find(l.CourtListSelector)
	if lists.Length() <= l.AppellateListIndex {
		return nil, &providerx.StructureError{
			Page: "federal index",
			What: fmt.Sprintf("第 %d 个 %s（实际只有 %d 个）", l.AppellateListIndex+1, l.CourtListSelector, lists.Length()),
		}
	}
	return courtIDs(lists.Eq(l.AppellateListIndex), l.LinkSelector, "federal index")
}

func (p Provider) ParseDistrictGroups(html []byte) ([]string, error) {
	return p.groupHrefs(html, p.layout().DistrictGroupSelector, "federal index")
}

func (p Provider) ParseDistrictCourts(html []byte) ([]domain.CourtID, error) {
	return p.firstCourtList(html, p.layout().DistrictListSelector, "district group")
}

func (p Provider) ParseStateGroups(html []byte) ([]string, error) {
	return p.groupHrefs(html, p.layout().StateGroupSelector, "all cases index")
}

func (p Provider) ParseStateCourts(html []byte) ([]domain.CourtID, error) {
	return p.firstCourtList(html, p.layout().StateListSelector, "state")
}

func (p Provider) groupHrefs(html []byte, selector, page string) ([]string, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}
	list := doc.Find(selector).First()
	if list.Length() == 0 {
		return nil, &providerx.StructureError{Page: page, What: selector}
	}
	hrefs := linkHrefs(list, p.layout().LinkSelector)
	if len(hrefs) == 0 {
		return nil, &providerx.StructureError{Page: page, What: selector + " 内的链接"}
	}
	return hrefs, nil
}

func (p Provider) firstCourtList(html []byte, selector, page string) ([]domain.CourtID, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}
	list := doc.Find(selector).First()
	if list.Length() == 0 {
		return nil, &providerx.StructureError{Page: page, What: selector}
	}
	return courtIDs(list, p.layout().LinkSelector, page)
}

func courtIDs(list *goquery.Selection, linkSelector, page string) ([]domain.CourtID, error) {
	hrefs := linkHrefs(list, linkSelector)
	out := make([]domain.CourtID, 0, len(hrefs))
	for _, h := range hrefs {
		id, err := domain.ParseCourtID(hrefPath(h))
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, &providerx.StructureError{Page: page, What: "法院链接"}
	}
	return out, nil
}

// linkHrefs 返回列表内链接的 href（去空、按首次出现去重）。
func linkHrefs(list *goquery.Selection, linkSelector string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, 16)
	list.Find(linkSelector).Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		out = append(out, href)
	})
	return out
}

// hrefPath 只保留 href 的路径部分（站内链接也可能写成绝对 URL）。
func hrefPath(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return u.Path
}

func parseDoc(html []byte) (*goquery.Document, error) {
	if len(html) == 0 {
		return nil, errors.New("html 为空")
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(html))
}
