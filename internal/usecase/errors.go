package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// handlerがそのままレスポンスにできるエラー
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// HTTPErrorはそのまま返す。それ以外は原因をログに残して500にする。
func internalError(log *zap.Logger, err error, message string, fields ...zap.Field) error {
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	log.Error(message, append(fields, zap.Error(err))...)
	return NewHTTPError(http.StatusInternalServerError, message)
}
