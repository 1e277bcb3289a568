package usecase

import (
	"errors"
	"fmt"
)

// handlerがそのままステータスとメッセージに使う
// Err に元の原因を持たせると errors.Is で判定できる。
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// 原因付き
func WrapHTTPError(status int, message string, cause error) error {
	return &HTTPError{
		Status:  status,
		Message: message,
		Err:     cause,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

var (
	//400 カートが空
	ErrEmptyCart = errors.New("cart is empty")
	//400 決済プロバイダ呼び出し失敗
	ErrGateway = errors.New("payment gateway error")
	//400 決済確認失敗
	ErrVerificationFailed = errors.New("payment verification failed")
	//400 webhook署名不一致
	ErrInvalidSignature = errors.New("invalid signature")
	//400 許可されていないステータス遷移
	ErrInvalidTransition = errors.New("invalid status transition")
	//400 入力不正
	ErrValidation = errors.New("validation error")
	//400 画像の拡張子が許可外
	ErrUnsupportedImage = errors.New("unsupported image type")
)
