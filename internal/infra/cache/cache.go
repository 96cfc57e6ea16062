package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/John-Robertt/jude/internal/domain"
	"github.com/John-Robertt/jude/internal/infra/fsx"
)

// Store 负责法院目录文件（YAML）的读写。
//
// 目录构建代价高（每个分组一次请求），构建一次后落盘，search/scrape 直接读取。
type Store struct {
	Path     string // 目录文件路径，例如 data/courts.yaml
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(path string, readOnly bool) Store {
	return Store{
		Path:     filepath.Clean(strings.TrimSpace(path)),
		ReadOnly: readOnly,
	}
}

// CatalogFile 是目录文件的磁盘格式。
type CatalogFile struct {
	GeneratedAt time.Time             `yaml:"generated_at"`
	BaseURL     string                `yaml:"base_url"`
	Courts      []domain.CatalogEntry `yaml:"courts"`
}

// WriteCatalog 原子写入目录文件（覆盖旧文件）。
func (s Store) WriteCatalog(cat domain.Catalog, baseURL string, generatedAt time.Time) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	if s.Path == "" || s.Path == "." {
		return fmt.Errorf("catalog 路径不能为空")
	}

	b, err := yaml.Marshal(CatalogFile{
		GeneratedAt: generatedAt.UTC(),
		BaseURL:     baseURL,
		Courts:      cat.Entries(),
	})
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(filepath.Dir(s.Path), filepath.Base(s.Path), b)
}

// ReadCatalog 读取目录文件。文件不存在时 ok=false 且 err=nil。
//
// 条目按文件顺序重新规范化（ParseCourtID），非法或重复的条目会让整个文件被判为损坏。
func (s Store) ReadCatalog() (cat domain.Catalog, meta CatalogFile, ok bool, err error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Catalog{}, CatalogFile{}, false, nil
		}
		return domain.Catalog{}, CatalogFile{}, false, err
	}

	var f CatalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return domain.Catalog{}, CatalogFile{}, false, fmt.Errorf("解析 %s 失败：%w", s.Path, err)
	}

	entries := make([]domain.CatalogEntry, 0, len(f.Courts))
	for i, e := range f.Courts {
		id, err := domain.ParseCourtID(string(e.ID))
		if err != nil {
			return domain.Catalog{}, CatalogFile{}, false, fmt.Errorf("%s 第 %d 条 court 非法：%w", s.Path, i+1, err)
		}
		entries = append(entries, domain.CatalogEntry{ID: id, Category: e.Category})
	}
	cat = domain.NewCatalog(entries...)
	if cat.Len() != len(entries) {
		return domain.Catalog{}, CatalogFile{}, false, fmt.Errorf("%s 含重复 court", s.Path)
	}

	f.Courts = entries
	return cat, f, true, nil
}
