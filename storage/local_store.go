package storage

import (
	"alertrelay/models"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

// LocalStore keeps snippets as plain files in one directory.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snippets directory: %w", err)
	}
	logrus.WithField("dir", dir).Info("Using local snippet storage")
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	ref, err := CleanRef(name)
	if err != nil {
		return "", err
	}

	// Write to a temp file first so readers never see a partial snippet.
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, ref)); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *LocalStore) Open(ctx context.Context, ref string) (io.ReadCloser, models.BlobInfo, error) {
	ref, err := CleanRef(ref)
	if err != nil {
		return nil, models.BlobInfo{}, err
	}

	f, err := os.Open(filepath.Join(s.dir, ref))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, models.BlobInfo{}, ErrBlobNotFound
		}
		return nil, models.BlobInfo{}, err
	}
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		f.Close()
		return nil, models.BlobInfo{}, ErrBlobNotFound
	}
	return f, models.BlobInfo{Ref: ref, Size: st.Size(), ModifiedAt: st.ModTime()}, nil
}

// List returns regular files sorted by name. Hidden files are skipped.
func (s *LocalStore) List(ctx context.Context) ([]models.BlobInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	blobs := make([]models.BlobInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || entry.Name()[0] == '.' {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		blobs = append(blobs, models.BlobInfo{
			Ref:        entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Ref < blobs[j].Ref })
	return blobs, nil
}
