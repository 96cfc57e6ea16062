package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/jude/internal/domain"
)

// PDFs 列出 dir 下（只看这一层）已经落盘的 PDF 文件。
//
// 规则：
// - 扩展名大小写不敏感
// - 跳过以 '.' 开头的文件（原子写入的临时文件）与子目录
// - dir 不存在时返回空且不报错
//
// 只做 stat，不读文件内容；结果按文件名排序。
func PDFs(dir string) ([]domain.PDFFile, error) {
	entries, err := os.ReadDir(filepath.Clean(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.PDFFile{}, nil
		}
		return nil, err
	}

	files := make([]domain.PDFFile, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !isPDFExt(filepath.Ext(name)) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, domain.PDFFile{Name: name, Size: info.Size()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func isPDFExt(ext string) bool {
	return strings.EqualFold(ext, ".pdf")
}
