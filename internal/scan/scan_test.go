package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPDFs_OnlyTopLevelPDFs(t *testing.T) {
	dir := t.TempDir()

	touch(t, filepath.Join(dir, "b.pdf"))
	touch(t, filepath.Join(dir, "a.PDF"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, ".c.pdf.tmp-123"))
	touch(t, filepath.Join(dir, "nested", "d.pdf"))

	got, err := PDFs(dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 个 PDF，实际 %d：%+v", len(got), got)
	}
	if got[0].Name != "a.PDF" || got[1].Name != "b.pdf" {
		t.Fatalf("排序或过滤不符合预期：%+v", got)
	}
	if got[1].Size != 1 {
		t.Fatalf("期望 size=1，实际 %d", got[1].Size)
	}
}

func TestPDFs_MissingDir(t *testing.T) {
	got, err := PDFs(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("目录不存在不应报错：%v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("期望空切片，实际 %+v", got)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
