package upload

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const PublicPrefix = "/uploads/"

// LocalStore writes files into a directory served under /uploads/.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating upload dir %s", dir)
	}
	return &LocalStore{dir: dir}, nil
}

func (l *LocalStore) Dir() string {
	return l.dir
}

func (l *LocalStore) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return PublicPrefix + name, nil
}
