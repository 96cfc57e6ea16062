package app

import (
	"strings"

	"github.com/John-Robertt/jude/internal/domain"
	"github.com/John-Robertt/jude/internal/provider"
)

// ListingPages 生成某年度要抓取的全部列表页 URL：首页在前，随后是分页 href 解析后的绝对 URL。
//
// - 空 href 跳过
// - 按解析后的绝对 URL 去重（同一页可能以不同写法出现多次），保持首次出现顺序
func ListingPages(initialURL string, hrefs []string) []string {
	out := make([]string, 0, len(hrefs)+1)
	seen := make(map[string]struct{}, len(hrefs)+1)

	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	add(strings.TrimSpace(initialURL))
	for _, h := range hrefs {
		add(provider.ResolveURL(initialURL, h))
	}
	return out
}

// FilterRecords 丢弃没有案件链接的条目，并按详情页 URL 去重（保留第一次出现）。
//
// dropped 只统计 NoLink 条目；duplicates 单独统计，不计入 dropped。
func FilterRecords(records []domain.CaseRecord) (kept []domain.CaseRecord, dropped, duplicates int) {
	kept = make([]domain.CaseRecord, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, r := range records {
		if !r.HasLink() {
			dropped++
			continue
		}
		if _, ok := seen[r.DetailURL]; ok {
			duplicates++
			continue
		}
		seen[r.DetailURL] = struct{}{}
		kept = append(kept, r)
	}
	return kept, dropped, duplicates
}
