// Package storage persists uploaded product images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"tableorder/internal/domain"
)

// URLPrefix is the path images are served under.
const URLPrefix = "/images/"

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

type ImageStore interface {
	// Save stores the image under a fresh name and returns its public URL.
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	// Delete removes an image previously returned by Save.
	Delete(ctx context.Context, url string) error
}

// LocalImages writes images into a directory served by the HTTP layer.
type LocalImages struct {
	dir     string
	urlHost string
}

func NewLocalImages(dir, urlHost string) (*LocalImages, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &LocalImages{dir: dir, urlHost: strings.TrimRight(urlHost, "/")}, nil
}

func (s *LocalImages) Dir() string { return s.dir }

func (s *LocalImages) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExt[ext] {
		return "", fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidInput, ext)
	}
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, readerWithContext(ctx, r)); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return s.urlHost + URLPrefix + name, nil
}

// Delete removes the file behind url. URLs outside URLPrefix and files that
// are already gone are ignored.
func (s *LocalImages) Delete(_ context.Context, url string) error {
	i := strings.LastIndex(url, URLPrefix)
	if i < 0 {
		return nil
	}
	name := url[i+len(URLPrefix):]
	if name == "" || name != filepath.Base(name) || !allowedExt[strings.ToLower(filepath.Ext(name))] {
		return fmt.Errorf("%w: image url %q", domain.ErrInvalidInput, url)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
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
