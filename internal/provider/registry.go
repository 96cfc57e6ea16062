package provider

import (
	"fmt"
	"sort"
	"strings"
)

// Registry 是站点适配器的只读注册表（按 name 索引）。
type Registry struct {
	byName map[string]Markup
}

func NewRegistry(markups ...Markup) (Registry, error) {
	byName := make(map[string]Markup, len(markups))
	for _, m := range markups {
		if m == nil {
			return Registry{}, fmt.Errorf("provider 不能为空")
		}
		name := strings.ToLower(strings.TrimSpace(m.Name()))
		if name == "" {
			return Registry{}, fmt.Errorf("provider.Name 不能为空")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("重复的 provider：%q", name)
		}
		byName[name] = m
	}
	return Registry{byName: byName}, nil
}

func (r Registry) Get(name string) (Markup, bool) {
	if r.byName == nil {
		return nil, false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	m, ok := r.byName[name]
	return m, ok
}

// Names 返回已注册的名字（字典序），用于错误提示。
func (r Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
