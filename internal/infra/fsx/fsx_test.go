package fsx

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomic(dir, "a.txt", []byte("hello")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("内容不一致：%q", string(b))
	}
	assertNoTemp(t, dir, "a.txt")
}

func TestWriteReaderAtomic_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.pdf"), []byte("old"), 0o644); err != nil {
		t.Fatalf("写入旧文件失败：%v", err)
	}

	n, err := WriteReaderAtomic(dir, "x.pdf", strings.NewReader("%PDF-new"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if n != int64(len("%PDF-new")) {
		t.Fatalf("写入字节数=%d", n)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "x.pdf"))
	if string(b) != "%PDF-new" {
		t.Fatalf("期望覆盖为新内容，实际 %q", string(b))
	}
	assertNoTemp(t, dir, "x.pdf")
}

type failingReader struct{ n int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n > 0 {
		r.n--
		p[0] = 'x'
		return 1, nil
	}
	return 0, errors.New("connection reset")
}

func TestWriteReaderAtomic_ReadFail_NoPartialFile(t *testing.T) {
	dir := t.TempDir()

	_, err := WriteReaderAtomic(dir, "x.pdf", &failingReader{n: 3})
	if err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}
	if _, err := os.Stat(filepath.Join(dir, "x.pdf")); !os.IsNotExist(err) {
		t.Fatalf("读取失败时不应留下目标文件，Stat err=%v", err)
	}
	assertNoTemp(t, dir, "x.pdf")
}

func TestWriteFileAtomic_RenameFail_CleanupTemp(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	err := WriteFileAtomic(dir, "a.txt", []byte("hello"))
	if err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}
	if _, err := os.Stat(filepath.Join(dir, "a.txt")); !os.IsNotExist(err) {
		t.Fatalf("不应写出最终文件，Stat err=%v", err)
	}
	assertNoTemp(t, dir, "a.txt")
}

func TestWriteReaderAtomic_TargetIsDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "a.pdf"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	_, err := WriteReaderAtomic(dir, "a.pdf", io.LimitReader(strings.NewReader("x"), 1))
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
}

func TestMkdir_StrictOneLevel(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "2020")

	if err := Mkdir(dir); err != nil {
		t.Fatalf("首次创建不期望错误：%v", err)
	}
	if err := Mkdir(dir); !errors.Is(err, os.ErrExist) {
		t.Fatalf("目录已存在时应返回 ErrExist，实际：%v", err)
	}
	if err := Mkdir(filepath.Join(root, "missing", "2020")); err == nil {
		t.Fatalf("父目录不存在时应失败（只创建一层）")
	}

	file := filepath.Join(root, "f")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
	if err := Mkdir(file); !IsPathTypeConflict(err) {
		t.Fatalf("目标是文件时应返回 PathTypeConflictError，实际：%T %v", err, err)
	}
}

func TestEnsureDir_AcceptsExisting(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("已存在的目录应被接受：%v", err)
	}
}

func assertNoTemp(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "."+name+".tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}
