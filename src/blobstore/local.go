package blobstore

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// LocalStore writes blobs under Dir and serves them from BaseURL. Used in
// development and tests.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create blob dir")
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Store(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full := filepath.Join(s.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", errors.Wrap(err, "create blob folder")
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write blob")
	}
	return s.BaseURL + "/" + escapePath(name), nil
}

func (s *LocalStore) Delete(ctx context.Context, rawURL string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	name, err := s.objectName(rawURL)
	if err != nil {
		return false, err
	}
	err = os.Remove(filepath.Join(s.Dir, filepath.FromSlash(name)))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "remove blob")
	}
	return true, nil
}

func (s *LocalStore) objectName(rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, s.BaseURL+"/") {
		return "", errors.Errorf("url %q is not served by this store", rawURL)
	}
	name, err := url.PathUnescape(strings.TrimPrefix(rawURL, s.BaseURL+"/"))
	if err != nil {
		return "", errors.Wrap(err, "unescape blob url")
	}
	clean := filepath.ToSlash(filepath.Clean("/" + name))
	return strings.TrimPrefix(clean, "/"), nil
}

func escapePath(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
