package provider

import (
	"errors"
	"fmt"
	"strings"
)

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// StatusCode 从 err 中提取 HTTP 状态码；不是 *HTTPStatusError 时返回 0。
func StatusCode(err error) int {
	var e *HTTPStatusError
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// StructureError 表示页面结构与预期不符（缺少必需的列表/条目块等）。
// 这类错误意味着站点改版或返回了非预期页面：不降级、不产出部分结果。
type StructureError struct {
	Page string // 页面 URL 或页面类型
	What string // 缺少了什么，例如 "第 2 个 ul.list-columns"
}

func (e *StructureError) Error() string {
	if e == nil {
		return "页面结构不符合预期"
	}
	if strings.TrimSpace(e.Page) == "" {
		return "页面结构不符合预期：缺少 " + e.What
	}
	return fmt.Sprintf("页面结构不符合预期（%s）：缺少 %s", e.Page, e.What)
}

// IsStructure 判断 err 链上是否有 *StructureError。
func IsStructure(err error) bool {
	var e *StructureError
	return errors.As(err, &e)
}
