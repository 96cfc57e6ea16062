package domain

const (
	CategoryFederalAppellate = "federal-appellate"
	CategoryFederalDistrict  = "federal-district"
	CategoryState            = "state"
)

// CatalogEntry 是目录中的一条法院记录（附带发现时所属的类别）。
type CatalogEntry struct {
	ID       CourtID `json:"id" yaml:"id"`
	Category string  `json:"category" yaml:"category"`
}

// Catalog 是一次构建得到的法院目录：有序、去重、构建后只读。
//
// 零值可用（空目录）。所有访问器都返回副本，调用方无法修改内部切片。
type Catalog struct {
	entries []CatalogEntry
	index   map[CourtID]int
}

// NewCatalog 按给定顺序构建目录；重复的 ID 只保留首次出现。
func NewCatalog(entries ...CatalogEntry) Catalog {
	c := Catalog{
		entries: make([]CatalogEntry, 0, len(entries)),
		index:   make(map[CourtID]int, len(entries)),
	}
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		if _, ok := c.index[e.ID]; ok {
			continue
		}
		c.index[e.ID] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

func (c Catalog) Len() int { return len(c.entries) }

func (c Catalog) Contains(id CourtID) bool {
	_, ok := c.index[id]
	return ok
}

// IDs 返回按发现顺序排列的全部法院 ID。
func (c Catalog) IDs() []CourtID {
	out := make([]CourtID, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.ID)
	}
	return out
}

func (c Catalog) Entries() []CatalogEntry {
	return append([]CatalogEntry(nil), c.entries...)
}

// CountByCategory 统计每个类别的条目数。
func (c Catalog) CountByCategory() map[string]int {
	m := make(map[string]int, 3)
	for _, e := range c.entries {
		m[e.Category]++
	}
	return m
}
