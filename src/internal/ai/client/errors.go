package client

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey API key 为空
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY is missing")
	// ErrMissingProxyURL 代理地址为空
	ErrMissingProxyURL = errors.New("PROXY_URL is missing")
)

// ConfigError 构造时配置不合法，不可恢复
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration (%s): %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TransportError 无法经代理连到上游（代理不可达、DNS、超时、ctx 取消）
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("openai request: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout 是否为超时导致
func (e *TransportError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// StatusError 上游返回了非 2xx 状态码
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openai error (status %d): %s", e.StatusCode, e.Body)
}

// UnexpectedError 其他失败，例如响应体不是合法 JSON
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }
