package install

import (
	"errors"
	"fmt"
	"io"
	"loracom/internal/global"
	"os"
	"path/filepath"
	"syscall"
)

func installBinary() (err error) {
	selfPath, err := os.Executable()
	if err != nil {
		return
	}
	selfPath, err = filepath.EvalSymlinks(selfPath)
	if err != nil {
		return
	}
	if selfPath == global.DefaultBinaryPath {
		fmt.Printf("Binary already installed at '%s'\n", global.DefaultBinaryPath)
		return
	}

	err = os.Rename(selfPath, global.DefaultBinaryPath)
	if errors.Is(err, syscall.EXDEV) {
		// Different filesystem, copy instead
		err = copyBinary(selfPath, global.DefaultBinaryPath)
	}
	if err != nil {
		err = fmt.Errorf("failed to move: %w", err)
		return
	}

	fmt.Printf("Successfully installed binary to '%s'\n", global.DefaultBinaryPath)
	return
}

func copyBinary(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return
	}
	defer in.Close()

	tmp := dst + ".new"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
	if err != nil {
		return
	}
	_, err = io.Copy(out, in)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return
	}
	err = os.Rename(tmp, dst)
	return
}

func uninstallBinary() (err error) {
	err = os.Remove(global.DefaultBinaryPath)
	if err != nil && !os.IsNotExist(err) {
		return
	}
	err = nil

	fmt.Printf("Successfully removed binary from '%s'\n", global.DefaultBinaryPath)
	return
}
