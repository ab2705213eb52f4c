//go:build unix

package utils

import (
	"os"
	"syscall"
)

func chownAsParent(path string, parent os.FileInfo) error {
	st, ok := parent.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	if err := os.Lchown(path, int(st.Uid), int(st.Gid)); err != nil && !os.IsPermission(err) {
		return err
	}
	return nil
}
