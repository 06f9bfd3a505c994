package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"board-assets/internal/logging"
)

// rename and removeFile are swapped in tests to simulate cross-device and
// permission failures.
var (
	rename     = os.Rename
	removeFile = os.Remove
)

// Exists reports whether path exists. Errors other than "not exist" count as
// existing so that callers never overwrite a file they merely failed to stat.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// WriteFileAtomic writes data to a temporary file in the destination
// directory and renames it over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	start := time.Now()
	defer func() {
		observe().ObserveOperation(resolveVolume(path), "write", time.Since(start).Seconds(), err)
	}()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			if removeErr := os.Remove(tmpName); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
				logging.Warn("failed to remove temp file %s: %v", tmpName, removeErr)
			}
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// WriteFileIfAbsent writes data to path unless path already exists. It
// reports whether it wrote.
func WriteFileIfAbsent(path string, data []byte, perm os.FileMode) (bool, error) {
	if Exists(path) {
		return false, nil
	}
	if err := WriteFileAtomic(path, data, perm); err != nil {
		return false, err
	}
	return true, nil
}

// MoveFile renames src to dst. If the rename fails it copies src to dst and
// removes src; the result is the same but not atomic. Once the copy is
// complete a leftover src is only logged.
func MoveFile(src, dst string) (err error) {
	start := time.Now()
	defer func() {
		observe().ObserveOperation(resolveVolume(dst), "rename", time.Since(start).Seconds(), err)
	}()

	renameErr := rename(src, dst)
	if renameErr == nil {
		return nil
	}

	logging.Debug("rename %s -> %s failed (%v), falling back to copy", src, dst, renameErr)

	if err := CopyFile(src, dst); err != nil {
		return fmt.Errorf("move %s: rename failed (%v), copy failed: %w", src, renameErr, err)
	}
	if err := removeFile(src); err != nil {
		logging.Warn("move %s: copied to %s but could not remove source: %v", src, dst, err)
	}
	return nil
}

// CopyFile copies src to dst through a temporary file so dst is never seen
// half written.
func CopyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}
