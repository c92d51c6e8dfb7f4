// Package files stores uploaded product images in a local directory.
package files

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/storefront/internal/domain/product"
)

// RefPrefix prefixes every reference returned by Save.
const RefPrefix = "images/"

// ErrInvalidName is returned for names that sanitize to nothing or escape the
// store directory.
var ErrInvalidName = errors.New("invalid file name")

// Store writes files under Dir.
type Store struct {
	dir      string
	maxBytes int64
}

var _ product.ImageStore = (*Store)(nil)

// New creates the directory if needed and returns a Store rooted at it.
// maxBytes bounds a single upload; zero means no limit.
func New(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create image dir")
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the store root.
func (s *Store) Dir() string { return s.dir }

// Save writes r under a collision-free name derived from filename and returns
// its reference, "images/<name>".
func (s *Store) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	base := Sanitize(filename)
	if base == "" {
		return "", ErrInvalidName
	}
	name := uuid.NewString()[:8] + "-" + base

	if s.maxBytes > 0 {
		r = io.LimitReader(r, s.maxBytes+1)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create image")
	}
	n, err := io.Copy(f, contextReader{ctx: ctx, r: r})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = errors.Errorf("image exceeds %d bytes: %w", s.maxBytes, product.ErrInvalid)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", errors.Wrap(err, "write image")
	}
	return RefPrefix + name, nil
}

// Open opens a stored file by name. The caller closes it.
func (s *Store) Open(name string) (*os.File, error) {
	if name == "" || name != Sanitize(name) {
		return nil, ErrInvalidName
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	return f, nil
}

// Sanitize reduces filename to its base name restricted to [A-Za-z0-9._-].
// Leading dots are dropped so the result is never hidden or relative.
func Sanitize(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(b.String(), ".")
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
