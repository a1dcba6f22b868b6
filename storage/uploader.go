package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedContentType = errors.New("unsupported content type")

// MaxAvatarSize ограничивает размер загружаемого аватара.
const MaxAvatarSize = 5 << 20

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string

	// KeyFromURL возвращает ключ объекта по публичному URL, если он принадлежит этому хранилищу.
	KeyFromURL(location string) (string, bool)
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// AvatarKey строит уникальный ключ вида avatars/<player>/<uuid>.<ext>.
func AvatarKey(playerID, contentType string) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
	return fmt.Sprintf("avatars/%s/%s.%s", playerID, uuid.NewString(), ext), nil
}

func IsImage(contentType string) bool {
	_, ok := imageExtensions[strings.ToLower(contentType)]
	return ok
}
