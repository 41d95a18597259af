package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/admi-n/openai-socks/src/internal"
)

// DefaultEndpoint OpenAI Chat Completions 接口地址
const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Config 构造 OpenAIService 所需的配置
type Config struct {
	APIKey   string
	ProxyURL string        // SOCKS5 代理，例如 socks5://127.0.0.1:1080
	Timeout  time.Duration // 默认 120s
}

// OpenAIService 通过 SOCKS5 代理调用 OpenAI Chat Completions API。
//
// 构造后不再修改任何字段，底层 *http.Client 可并发使用，因此同一实例可被多个
// goroutine 同时调用 ChatCompletion。
type OpenAIService struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *logrus.Logger
}

// Option 构造时的可选项
type Option func(*options)

type options struct {
	logger     *logrus.Logger
	endpoint   string
	httpClient *http.Client
}

// WithLogger 指定日志输出
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEndpoint 覆盖请求地址，兼容 OpenAI 协议的其他服务
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithHTTPClient 使用自定义 HTTP 客户端代替代理客户端
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// NewOpenAIService 校验配置并创建服务，不发起任何网络请求
func NewOpenAIService(cfg Config, opts ...Option) (*OpenAIService, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, &ConfigError{Field: "api_key", Err: ErrMissingAPIKey}
	}
	if strings.TrimSpace(cfg.ProxyURL) == "" {
		return nil, &ConfigError{Field: "proxy_url", Err: ErrMissingProxyURL}
	}

	o := options{endpoint: DefaultEndpoint}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logrus.StandardLogger()
	}

	httpClient := o.httpClient
	if httpClient == nil {
		pm, err := internal.NewProxyManager(cfg.ProxyURL, cfg.Timeout)
		if err != nil {
			return nil, &ConfigError{Field: "proxy_url", Err: err}
		}
		httpClient, err = pm.CreateHTTPClient()
		if err != nil {
			return nil, &ConfigError{Field: "proxy_url", Err: err}
		}
		o.logger.WithField("proxy", pm.Redacted()).Debug("使用 SOCKS5 代理")
	}

	return &OpenAIService{
		apiKey:     apiKey,
		endpoint:   o.endpoint,
		httpClient: httpClient,
		logger:     o.logger,
	}, nil
}

// ChatCompletion 发送 chat completion 请求，max_tokens 默认 1000，temperature 默认 0.7
func (s *OpenAIService) ChatCompletion(ctx context.Context, model string, messages []Message, opts ...ChatOption) (ChatResponse, error) {
	return s.Send(ctx, NewChatRequest(model, messages, opts...))
}

// Send 发送已构建好的请求并返回上游的 JSON 响应。
// 失败时先记录日志，再返回 *TransportError、*StatusError 或 *UnexpectedError，不做重试。
func (s *OpenAIService) Send(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if req.Messages == nil {
		req.Messages = []Message{}
	}
	log := s.logger.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"model":      req.Model,
	})
	log.WithField("messages", req.Messages).Info("请求 OpenAI Chat Completion API")

	data, err := json.Marshal(req)
	if err != nil {
		return nil, s.unexpected(log, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, s.unexpected(log, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		log.WithError(err).Error("连接 OpenAI API 失败")
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Error("读取 OpenAI API 响应失败")
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithField("status", resp.StatusCode).
			Errorf("HTTP 状态错误: %d - %s", resp.StatusCode, string(body))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out ChatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, s.unexpected(log, "failed to unmarshal response", err)
	}
	if out == nil {
		return nil, s.unexpected(log, "failed to unmarshal response", fmt.Errorf("response is not a JSON object: %s", string(body)))
	}

	return out, nil
}

func (s *OpenAIService) unexpected(log *logrus.Entry, op string, err error) error {
	log.WithError(err).Errorf("未知错误: %s", op)
	return &UnexpectedError{Op: op, Err: err}
}

// Endpoint 返回请求地址
func (s *OpenAIService) Endpoint() string {
	return s.endpoint
}

// Close 清理资源
func (s *OpenAIService) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}
