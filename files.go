/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}

// fileStore keeps each document as a JSON file inside one directory.
type fileStore struct {
	dir string
}

func newFileStore(dir string) (*fileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &fileStore{dir: dir}, nil
}

func (s *fileStore) Load(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, ErrDocumentNotFound
	case err != nil:
		return nil, err
	}

	return data, nil
}

// Save replaces the file through a rename, so readers see either the old
// document or the new one.
func (s *fileStore) Save(_ context.Context, name string, data []byte) error {
	return atomic.WriteFile(filepath.Join(s.dir, name), bytes.NewReader(data))
}

func (s *fileStore) Close() error {
	return nil
}

func (s *fileStore) String() string {
	return "file:" + s.dir
}
