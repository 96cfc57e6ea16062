//go:build unix

package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
)

func TestWriteReaderAtomic_CrossDeviceRename(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	defer func() { renameFunc = old }()

	_, err := WriteReaderAtomic(dir, "a.pdf", strings.NewReader("%PDF"))
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if !IsCrossDevice(err) {
		t.Fatalf("期望 CrossDeviceError，实际：%T %v", err, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.pdf")); !os.IsNotExist(err) {
		t.Fatalf("rename 失败时不应出现目标文件，Stat err=%v", err)
	}
	assertNoTemp(t, dir, "a.pdf")
}

func TestRename_OtherErrorsPassThrough(t *testing.T) {
	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EACCES}
	}
	defer func() { renameFunc = old }()

	err := Rename("/a", "/b")
	if err == nil || IsCrossDevice(err) {
		t.Fatalf("EACCES 不应被标记为跨盘错误：%v", err)
	}
}
