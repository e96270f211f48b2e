package filestore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core"
)

type localStore struct {
	dir string
}

var _ core.FileStore = (*localStore)(nil)

func NewLocalStore(conf *core.Config) (*localStore, error) {
	if err := os.MkdirAll(conf.Uploads.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating uploads dir")
	}
	return &localStore{dir: conf.Uploads.Dir}, nil
}

// Save writes src to disk under a unique name and returns the stored name.
// A random prefix keeps concurrent uploads of the same file from clobbering
// each other.
func (st *localStore) Save(name string, src io.Reader) (string, error) {
	fname := uuid.NewString() + "_" + name
	dst, err := os.Create(filepath.Join(st.dir, fname))
	if err != nil {
		return "", errors.Wrap(err, "creating upload file")
	}
	defer func() { _ = dst.Close() }()

	if _, err = io.Copy(dst, src); err != nil {
		return "", errors.Wrap(err, "writing upload file")
	}
	return fname, nil
}
