package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"bookshelf/internal/cover"
)

// UploadCover stores a cover image and returns where it can be fetched.
// Failures are reported as cover.ErrUploadFailed wrapping the cause.
func (c *Client) UploadCover(ctx context.Context, data []byte, fileName string) (cover.Asset, error) {
	if len(data) == 0 {
		return cover.Asset{}, fmt.Errorf("%w: %w", cover.ErrUploadFailed, cover.ErrEmptyFile)
	}
	body, contentType, err := multipartFile(fileName, data)
	if err != nil {
		return cover.Asset{}, fmt.Errorf("%w: %w", cover.ErrUploadFailed, err)
	}

	var asset cover.Asset
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/upload",
		body:        body,
		contentType: contentType,
		auth:        true,
	}, &asset)
	if err != nil {
		return cover.Asset{}, fmt.Errorf("%w: %w", cover.ErrUploadFailed, err)
	}
	return asset, nil
}

func (c *Client) DeleteCover(ctx context.Context, path string) error {
	err := c.doJSON(ctx, http.MethodDelete, "/api/upload?path="+url.QueryEscape(path), nil, true, nil)
	if IsNotFound(err) {
		return errors.Join(cover.ErrNotFound, err)
	}
	return err
}
