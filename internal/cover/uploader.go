package cover

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const cacheControl = "max-age=3600"

type Uploader struct {
	store  ObjectStore
	logger *zap.Logger
	now    func() time.Time
	suffix func() string
}

type Option func(*Uploader)

func WithLogger(l *zap.Logger) Option {
	return func(u *Uploader) { u.logger = l }
}

// WithClock replaces time.Now and the random suffix source. Tests use it to
// force key collisions.
func WithClock(now func() time.Time, suffix func() string) Option {
	return func(u *Uploader) {
		if now != nil {
			u.now = now
		}
		if suffix != nil {
			u.suffix = suffix
		}
	}
}

func NewUploader(store ObjectStore, opts ...Option) *Uploader {
	u := &Uploader{
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
		suffix: randomSuffix,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Key builds <owner>/<unix nanos>_<suffix><.ext>. The extension is taken
// from the original file name as given.
func Key(ownerID string, at time.Time, suffix, fileName string) string {
	ext := filepath.Ext(fileName)
	return ownerID + "/" + strconv.FormatInt(at.UnixNano(), 10) + "_" + suffix + ext
}

// Upload stores data under a fresh key in ownerID's folder and returns where
// it landed. Existing objects are never overwritten.
func (u *Uploader) Upload(ctx context.Context, ownerID string, data []byte, fileName string) (Asset, error) {
	if ownerID == "" {
		return Asset{}, fmt.Errorf("%w: missing owner", ErrUploadFailed)
	}
	if len(data) == 0 {
		return Asset{}, fmt.Errorf("%w: %w", ErrUploadFailed, ErrEmptyFile)
	}

	key := Key(ownerID, u.now(), u.suffix(), fileName)
	obj := Object{
		Key:          key,
		Body:         bytes.NewReader(data),
		Size:         int64(len(data)),
		ContentType:  contentType(fileName, data),
		CacheControl: cacheControl,
	}
	if err := u.store.Put(ctx, obj); err != nil {
		u.logger.Warn("cover upload failed", zap.String("key", key), zap.Error(err))
		return Asset{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	u.logger.Debug("cover uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return Asset{Path: key, URL: u.store.URL(key)}, nil
}

// Delete removes a cover from ownerID's folder.
func (u *Uploader) Delete(ctx context.Context, ownerID, key string) error {
	if !OwnsPath(ownerID, key) {
		return ErrForbidden
	}
	return u.store.Delete(ctx, key)
}

func contentType(fileName string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
