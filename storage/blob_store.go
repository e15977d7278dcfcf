package storage

import (
	"alertrelay/models"
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var (
	ErrBlobNotFound   = errors.New("snippet not found")
	ErrInvalidBlobRef = errors.New("invalid snippet reference")
)

// BlobStore holds media snippets referenced by alerts.
type BlobStore interface {
	// Put stores r under name and returns the reference clients fetch it by.
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, models.BlobInfo, error)
	List(ctx context.Context) ([]models.BlobInfo, error)
}

// CleanRef reduces ref to a single path element and rejects anything that would
// escape the store.
func CleanRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.ContainsAny(ref, `/\`) || strings.ContainsRune(ref, 0) {
		return "", ErrInvalidBlobRef
	}
	cleaned := path.Clean(ref)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".") {
		return "", ErrInvalidBlobRef
	}
	return cleaned, nil
}
