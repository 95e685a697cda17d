// Package cover stores book cover images in an object store under
// per-owner, collision-resistant keys.
package cover

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var (
	// ErrUploadFailed classifies every failed upload. The cause is wrapped.
	ErrUploadFailed = errors.New("upload failed")
	// ErrObjectExists is returned by ObjectStore.Put instead of overwriting.
	ErrObjectExists = errors.New("object already exists")
	ErrEmptyFile    = errors.New("no file provided")
	ErrForbidden    = errors.New("path is outside the owner's folder")
	ErrNotFound     = errors.New("object not found")
)

// Asset is a stored cover: its key in the bucket and its public URL.
type Asset struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Object is what the store receives for one upload.
type Object struct {
	Key          string
	Body         io.ReadSeeker
	Size         int64
	ContentType  string
	CacheControl string
}

// ObjectStore is a bucket of publicly readable objects.
type ObjectStore interface {
	// Put must fail with ErrObjectExists rather than replace an existing key.
	Put(ctx context.Context, obj Object) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// OwnsPath reports whether key lives in ownerID's folder.
func OwnsPath(ownerID, key string) bool {
	if ownerID == "" || key == "" {
		return false
	}
	clean := path.Clean(key)
	if clean != key || strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(key, ownerID+"/") && len(key) > len(ownerID)+1
}
