package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Local keeps images on disk under Root; they are served by the HTTP server under BaseURL.
type Local struct {
	root    string
	baseURL string
	logger  *zap.Logger
}

// NewLocal creates the media directory if needed.
func NewLocal(root, baseURL string, logger *zap.Logger) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	logger.Info("local image storage", zap.String("root", root), zap.String("url", baseURL))
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}, nil
}

// Root returns the media directory.
func (l *Local) Root() string { return l.root }

// Put writes body to root/key. A partially written file is removed on error.
func (l *Local) Put(ctx context.Context, key, _ string, body io.Reader, _ int64) error {
	dst, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}
	_, err = io.Copy(f, readerWithContext(ctx, body))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes root/key; a missing file is not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	dst, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// URL returns baseURL/key.
func (l *Local) URL(key string) string {
	return l.baseURL + "/" + key
}

func (l *Local) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(l.root, clean), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
