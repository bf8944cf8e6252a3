package service

import (
	"errors"
	"fmt"
)

// ErrStaleResponse 同一表单已有更新的提交，本次结果被丢弃
var ErrStaleResponse = errors.New("stale response discarded")

// ValidationError 发送请求前的输入校验失败
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RequestError 服务端返回非成功状态或错误信息
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// NetworkError 请求发送失败或响应无法解析
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// userMessage 转换为状态栏展示的文字，网络错误只显示通用提示
func userMessage(err error, fallback string) string {
	var verr *ValidationError
	if errors.As(err, &verr) && verr.Message != "" {
		return verr.Message
	}
	var rerr *RequestError
	if errors.As(err, &rerr) && rerr.Message != "" {
		return rerr.Message
	}
	return fallback
}
