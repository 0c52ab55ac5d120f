package f1data

import (
	"errors"
	"fmt"
)

var (
	// ErrF1Data 是数据获取层所有错误的根。
	ErrF1Data = errors.New("f1 data error")
	// ErrAPITimeout 表示上游请求超时。
	ErrAPITimeout = fmt.Errorf("%w: api timeout", ErrF1Data)
	// ErrDataNotAvailable 表示请求的数据不存在（404 或结果表为空），重试无意义。
	ErrDataNotAvailable = fmt.Errorf("%w: data not available", ErrF1Data)
)

// FetchError 记录失败的操作、请求地址与分类。
type FetchError struct {
	Op     string
	URL    string
	Status int
	Kind   error
	Cause  error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap 同时暴露分类与底层原因，errors.Is 可以匹配任意一个。
func (e *FetchError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Retryable 判断错误是否值得重试。
func Retryable(err error) bool {
	return err != nil && !errors.Is(err, ErrDataNotAvailable)
}
