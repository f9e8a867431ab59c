//go:build !linux

package vfs

import (
	"fmt"
	"os"
	"path/filepath"
)

// tempDirBackend stores files in a private directory created on first use.
type tempDirBackend struct {
	parent string
	dir    string
}

func newBackend(tempDir string) backend {
	return &tempDirBackend{parent: tempDir}
}

func (b *tempDirBackend) open(name string) (*os.File, string, error) {
	if b.dir == "" {
		dir, err := os.MkdirTemp(b.parent, "fileprobe-")
		if err != nil {
			return nil, "", fmt.Errorf("create session dir: %w", err)
		}
		b.dir = dir
	}

	path := filepath.Join(b.dir, filepath.Base(name))
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, "", fmt.Errorf("create %s: %w", name, err)
	}
	return f, filepath.ToSlash(path), nil
}

func (b *tempDirBackend) close() error {
	if b.dir == "" {
		return nil
	}
	dir := b.dir
	b.dir = ""
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove session dir: %w", err)
	}
	return nil
}
