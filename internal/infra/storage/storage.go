package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"storefront/internal/usecase"

	"github.com/google/uuid"
)

// usecase側では errors.Is(err, usecase.ErrUnsupportedImage) で判定する
var ErrUnsupportedExtension = fmt.Errorf("%w: allowed png, jpg, jpeg, webp, gif", usecase.ErrUnsupportedImage)

var allowedExtensions = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// 元ファイル名から拡張子を取り出して検証する（小文字で返す）
func extensionOf(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedExtension
	}
	return ext, nil
}

// 保存名は <uuid hex>.<ext>
func newObjectName(ext string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext
}

func IsAllowed(filename string) bool {
	_, err := extensionOf(filename)
	return err == nil
}
