//go:build unix

package fsx

import (
	"errors"
	"syscall"
)

// isEXDEV 识别 rename(2) 的 EXDEV；*os.LinkError 由 errors.Is 逐层解包。
func isEXDEV(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
