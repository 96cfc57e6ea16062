// Package slug 把引用（citation）等任意文本规范化为可直接用作文件名的片段。
package slug

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// spaceClass 是 Unicode 空白（含 NBSP、全角空格、\v 与 U+001C..U+001F），与 isSpace 一致。
// RE2 的 \s 只覆盖 ASCII 空白。
const spaceClass = `\s\v\x{1c}-\x{1f}\x{85}\p{Z}`

var (
	// 保留字符：字母/数字/下划线/空白/连字符；其余（含组合符）一律删除。
	invalidRE = regexp.MustCompile(`[^-\p{L}\p{N}_` + spaceClass + `]`)
	// 连续的空白与连字符折叠为单个 '-'。
	dashRE = regexp.MustCompile(`[-` + spaceClass + `]+`)
)

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Normalize 把任意文本转换为小写、以 '-' 分隔、可安全用作文件名的 slug。
//
// 对任意输入都不会失败：空串或没有任何合法字符的输入返回空串（调用方需把它当作退化情况处理）。
// 结果是不动点：Normalize(Normalize(x)) == Normalize(x)。
// 正常输入一轮即稳定；只有首尾存在多个 '_' 时才会多跑几轮（每轮各去掉一个）。
func Normalize(s string) string {
	for {
		next := pass(s)
		if next == s {
			return s
		}
		s = next
	}
}

// pass 是一轮规范化：删除非法字符 -> 去首尾空白并转小写 -> 折叠分隔符 -> 去掉一个首/尾 '_'。
func pass(s string) string {
	s = invalidRE.ReplaceAllString(s, "")
	s = strings.ToLower(strings.TrimFunc(s, isSpace))
	s = dashRE.ReplaceAllString(s, "-")
	s = strings.TrimPrefix(s, "_")
	s = strings.TrimSuffix(s, "_")
	return s
}

// Citation 从详情页链接推导规范化引用：
// 取路径部分，去掉 "/cases/" 前缀与 ".html" 后缀，内部 '/' 替换为 '_'。
//
//	/cases/federal/appellate-courts/ca1/20-1234.html -> federal_appellate-courts_ca1_20-1234
func Citation(href string) string {
	p := strings.TrimSpace(href)
	if u, err := url.Parse(p); err == nil && (u.IsAbs() || strings.HasPrefix(p, "//")) {
		p = u.Path
	}
	p = strings.TrimPrefix(p, "/cases/")
	p = strings.TrimSuffix(p, ".html")
	return strings.ReplaceAll(p, "/", "_")
}

// ErrorLabel 返回错误行中展示的引用形式：去掉尾部 ".pdf" 并转大写。
func ErrorLabel(citation string) string {
	return strings.ToUpper(strings.TrimSuffix(citation, ".pdf"))
}
