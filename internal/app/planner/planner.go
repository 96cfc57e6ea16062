package planner

import (
	"fmt"
	"path/filepath"

	"github.com/John-Robertt/jude/internal/domain"
	"github.com/John-Robertt/jude/internal/slug"
)

const pdfExt = ".pdf"

// YearDir 返回 <root>/<court dir>/<year>。
func YearDir(root string, court domain.CourtID, year int) string {
	return filepath.Join(CourtDir(root, court), fmt.Sprint(year))
}

// CourtDir 返回 <root>/<court dir>。
func CourtDir(root string, court domain.CourtID) string {
	return filepath.Join(root, court.Dir())
}

// PlanYear 为一个年度的记录生成确定性的下载计划（不做任何写入）。
//
// - 文件名为 slug.Normalize(citation) + ".pdf"
// - slug 为空的记录标记为 Degenerate（上层记为失败，不下载）
// - 不同引用规范化后撞名时共用同一个目标文件，后出现的记录覆盖先出现的
func PlanYear(yearDir string, records []domain.CaseRecord) domain.YearPlan {
	items := make([]domain.DownloadPlan, 0, len(records))

	for _, r := range records {
		s := slug.Normalize(r.Citation)
		if s == "" {
			items = append(items, domain.DownloadPlan{Record: r, Degenerate: true})
			continue
		}
		name := s + pdfExt
		items = append(items, domain.DownloadPlan{
			Record: r,
			Name:   name,
			Path:   filepath.Join(yearDir, name),
		})
	}
	return domain.YearPlan{Dir: yearDir, Items: items}
}

// TargetGroups 按目标文件把计划条目的下标分组，组内与组间都保持收集顺序。
// 同一组必须顺序执行，保证最后写入的是后出现的记录；退化条目各自成组。
func TargetGroups(plan domain.YearPlan) [][]int {
	groups := make([][]int, 0, len(plan.Items))
	byName := make(map[string]int, len(plan.Items))
	for i, it := range plan.Items {
		if it.Degenerate {
			groups = append(groups, []int{i})
			continue
		}
		if g, ok := byName[it.Name]; ok {
			groups[g] = append(groups[g], i)
			continue
		}
		byName[it.Name] = len(groups)
		groups = append(groups, []int{i})
	}
	return groups
}
