package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 画像フィールドを開く
// 無ければ nil。呼び出し側は必ず close を呼ぶ。
func formImage(c echo.Context, field string) (*usecase.ImageUpload, func(), error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	if fh.Filename == "" || fh.Size == 0 {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &usecase.ImageUpload{Filename: fh.Filename, Content: f}, closer(f), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

// 送られてきた項目だけポインタで返す（PATCH的な更新用）
func optionalFormValue(c echo.Context, field string) *string {
	params, err := c.FormParams()
	if err != nil {
		return nil
	}
	vs, ok := params[field]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

