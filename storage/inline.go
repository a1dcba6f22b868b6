package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
)

// inlineUploader хранит картинку прямо в URL (data:), когда R2 не настроен.
type inlineUploader struct {
	maxSize int64
}

func NewInlineUploader() FileUploader {
	return &inlineUploader{maxSize: MaxAvatarSize}
}

func (u *inlineUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(reader, u.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload (key: %s): %w", key, err)
	}
	if n > u.maxSize {
		return nil, fmt.Errorf("upload exceeds %d bytes", u.maxSize)
	}

	location := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	return &UploadResult{Key: key, Location: location}, nil
}

func (u *inlineUploader) Delete(ctx context.Context, key string) error { return nil }

func (u *inlineUploader) GetPublicURL(key string) string { return "" }

func (u *inlineUploader) KeyFromURL(location string) (string, bool) {
	return "", false
}
