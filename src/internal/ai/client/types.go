package client

// 共享的 API 类型定义

// Message 消息结构，按原样透传给上游，不校验 role 或内容
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest 一次 chat completion 请求，字段顺序即序列化顺序
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse 上游返回的 JSON 对象，原样交给调用方
type ChatResponse map[string]any

const (
	// DefaultMaxTokens 未指定时的 max_tokens
	DefaultMaxTokens = 1000
	// DefaultTemperature 未指定时的 temperature
	DefaultTemperature = 0.7
)

// ChatOption 调整单次请求的可选参数
type ChatOption func(*ChatRequest)

// WithMaxTokens 设置 max_tokens
func WithMaxTokens(n int) ChatOption {
	return func(r *ChatRequest) { r.MaxTokens = n }
}

// WithTemperature 设置 temperature
func WithTemperature(t float64) ChatOption {
	return func(r *ChatRequest) { r.Temperature = t }
}

// NewChatRequest 使用默认参数构建请求，再依次应用 opts
func NewChatRequest(model string, messages []Message, opts ...ChatOption) ChatRequest {
	req := ChatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(&req)
	}
	if req.Messages == nil {
		req.Messages = []Message{}
	}
	return req
}
