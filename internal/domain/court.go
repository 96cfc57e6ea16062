package domain

import (
	"errors"
	"strings"
)

// CourtID 是站点上的法院路径片段（形如 /cases/federal/appellate-courts/ca1/），
// 直接用于拼接年度列表页 URL。
//
// 约束：规范化后恰好以一个 '/' 开头、一个 '/' 结尾，且中间不含空段。
type CourtID string

// ParseCourtID 校验并规范化法院路径片段。
func ParseCourtID(s string) (CourtID, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "/")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		segs = append(segs, p)
	}
	if len(segs) == 0 {
		return "", errors.New("court 不能为空")
	}
	return CourtID("/" + strings.Join(segs, "/") + "/"), nil
}

func (c CourtID) String() string { return string(c) }

// Dir 返回该法院在 court_opinions/ 下的目录名：'/' 替换为 '_' 后，
// 去掉一个前导与一个尾随的 '_'（只去一个，保持与既有目录命名一致）。
func (c CourtID) Dir() string {
	s := strings.ReplaceAll(string(c), "/", "_")
	s = strings.TrimPrefix(s, "_")
	s = strings.TrimSuffix(s, "_")
	return s
}
