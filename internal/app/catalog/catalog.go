// Package catalog 构建法院目录并提供目录检索。
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/John-Robertt/jude/internal/domain"
	"github.com/John-Robertt/jude/internal/provider"
)

// Error 表示目录构建在某个阶段失败（整个构建中止，不产出部分目录）。
type Error struct {
	Stage string // federal / district / cases / state
	URL   string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "catalog error"
	}
	return fmt.Sprintf("构建目录失败（%s %s）：%v", e.Stage, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Build 抓取站点索引页，发现全部法院 ID。
//
// 顺序：联邦上诉法院 -> 联邦地区法院（按地区分组逐个展开）-> 州法院（按州逐个展开）。
// 请求数为 2 + 分组数。任何抓取失败或页面结构不符都会立即中止。
// log 为 nil 时使用 slog.Default()。
func Build(ctx context.Context, c *http.Client, m provider.Index, baseURL string, log *slog.Logger) (domain.Catalog, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "catalog")

	entries := make([]domain.CatalogEntry, 0, 512)
	add := func(ids []domain.CourtID, category string) {
		for _, id := range ids {
			entries = append(entries, domain.CatalogEntry{ID: id, Category: category})
		}
	}

	federalURL := base + m.FederalIndexPath()
	federal, err := fetch(ctx, c, log, "federal", federalURL)
	if err != nil {
		return domain.Catalog{}, err
	}

	appellate, err := m.ParseAppellateCourts(federal)
	if err != nil {
		return domain.Catalog{}, &Error{Stage: "federal", URL: federalURL, Err: err}
	}
	add(appellate, domain.CategoryFederalAppellate)
	log.Debug("appellate courts", "count", len(appellate))

	groups, err := m.ParseDistrictGroups(federal)
	if err != nil {
		return domain.Catalog{}, &Error{Stage: "federal", URL: federalURL, Err: err}
	}
	for _, g := range groups {
		u := provider.ResolveURL(federalURL, g)
		html, err := fetch(ctx, c, log, "district", u)
		if err != nil {
			return domain.Catalog{}, err
		}
		ids, err := m.ParseDistrictCourts(html)
		if err != nil {
			return domain.Catalog{}, &Error{Stage: "district", URL: u, Err: err}
		}
		add(ids, domain.CategoryFederalDistrict)
		log.Debug("district group", "group", g, "count", len(ids))
	}

	casesURL := base + m.AllCasesIndexPath()
	cases, err := fetch(ctx, c, log, "cases", casesURL)
	if err != nil {
		return domain.Catalog{}, err
	}
	states, err := m.ParseStateGroups(cases)
	if err != nil {
		return domain.Catalog{}, &Error{Stage: "cases", URL: casesURL, Err: err}
	}
	for _, s := range states {
		u := provider.ResolveURL(casesURL, s)
		html, err := fetch(ctx, c, log, "state", u)
		if err != nil {
			return domain.Catalog{}, err
		}
		ids, err := m.ParseStateCourts(html)
		if err != nil {
			return domain.Catalog{}, &Error{Stage: "state", URL: u, Err: err}
		}
		add(ids, domain.CategoryState)
		log.Debug("state group", "group", s, "count", len(ids))
	}

	return domain.NewCatalog(entries...), nil
}

func fetch(ctx context.Context, c *http.Client, log *slog.Logger, stage, u string) ([]byte, error) {
	log.Debug("fetch", "stage", stage, "url", u)
	b, err := provider.Fetch(ctx, c, u)
	if err != nil {
		return nil, &Error{Stage: stage, URL: u, Err: err}
	}
	return b, nil
}

// Search 在目录中做大小写不敏感的子串匹配，按目录顺序返回命中项。
// 空字符串匹配全部；没有命中返回空切片（不是错误）。
func Search(cat domain.Catalog, text string) []domain.CourtID {
	needle := strings.ToLower(text)
	out := make([]domain.CourtID, 0, 16)
	for _, id := range cat.IDs() {
		if strings.Contains(strings.ToLower(string(id)), needle) {
			out = append(out, id)
		}
	}
	return out
}
