package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ローカルディスクに保存し、/static/uploads/<name> を返す
type LocalImageStore struct {
	dir        string
	publicPath string
}

func NewLocalImageStore(dir, publicPath string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{dir: dir, publicPath: strings.TrimRight(publicPath, "/")}, nil
}

func (s *LocalImageStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext, err := extensionOf(filename)
	if err != nil {
		return "", err
	}
	name := newObjectName(ext)

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}

	return path.Join(s.publicPath, name), nil
}

// echoの静的配信に使う
func (s *LocalImageStore) Dir() string        { return s.dir }
func (s *LocalImageStore) PublicPath() string { return s.publicPath }
