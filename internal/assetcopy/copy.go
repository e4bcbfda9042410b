// Package assetcopy mirrors hand-authored static assets, legacy pages and legacy script
// directories from the project tree into the output tree.
package assetcopy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Exists reports whether name exists on fsys. Errors other than not-exist count as existing
// so that the subsequent operation surfaces them.
func Exists(fsys billy.Basic, name string) bool {
	_, err := fsys.Stat(name)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// CopyFile copies src on srcFS to dst on dstFS byte for byte, creating parent directories and
// replacing any existing destination content. The source permission bits are kept.
func CopyFile(srcFS billy.Filesystem, src string, dstFS billy.Filesystem, dst string) error {
	in, err := srcFS.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := srcFS.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("copy %s: is a directory", src)
	}

	if dir := filepath.Dir(dst); dir != "." && dir != "" {
		if err := dstFS.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	out, err := dstFS.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}

// CopyDir recursively copies the directory src on srcFS to dst on dstFS and returns the number
// of files written. Files already in dst that are absent from src are left alone.
func CopyDir(srcFS billy.Filesystem, src string, dstFS billy.Filesystem, dst string) (int, error) {
	copied := 0
	err := util.Walk(srcFS, src, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return dstFS.MkdirAll(target, 0o755)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if err := CopyFile(srcFS, p, dstFS, target); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("copy directory %s: %w", src, err)
	}
	return copied, nil
}
