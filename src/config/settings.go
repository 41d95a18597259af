package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/admi-n/openai-socks/src/internal/ai/client"
)

const (
	// DefaultSettingsPath 默认配置文件位置
	DefaultSettingsPath = "config/settings.yaml"
	// DefaultModel 未配置时使用的模型
	DefaultModel = "gpt-4"
)

// OpenAISettings OpenAI 相关配置
type OpenAISettings struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // 可选，默认 gpt-4
}

// ProxySettings 代理配置
type ProxySettings struct {
	URL string `yaml:"url"` // 例如 socks5://127.0.0.1:1080
}

// LoggingSettings 日志配置
type LoggingSettings struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Settings 全局配置结构
type Settings struct {
	OpenAI  OpenAISettings  `yaml:"openai"`
	Proxy   ProxySettings   `yaml:"proxy"`
	Timeout int             `yaml:"timeout"` // 秒，默认 120
	Logging LoggingSettings `yaml:"logging"`
}

// LoadDotEnv 加载 .env 文件到环境变量，文件不存在时忽略。已存在的环境变量不会被覆盖。
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// LoadSettings 加载配置文件，再用环境变量覆盖。
// configPath 为空时尝试 DefaultSettingsPath，该文件不存在不算错误。
func LoadSettings(configPath string) (*Settings, error) {
	var settings Settings

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultSettingsPath
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
		// 仅依赖环境变量
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := settings.applyEnv(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// applyEnv 环境变量优先于配置文件
func (s *Settings) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		s.OpenAI.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); v != "" {
		s.OpenAI.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("PROXY_URL")); v != "" {
		s.Proxy.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT")); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid OPENAI_TIMEOUT %q: %w", v, err)
		}
		s.Timeout = secs
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		s.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		s.Logging.Format = v
	}
	return nil
}

// GetModel 获取模型名称
func (s *Settings) GetModel() string {
	if s.OpenAI.Model != "" {
		return s.OpenAI.Model
	}
	return DefaultModel
}

// TimeoutDuration 获取请求超时时间
func (s *Settings) TimeoutDuration() time.Duration {
	if s.Timeout <= 0 {
		return 120 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}

// ClientConfig 转换为 OpenAIService 的配置，是否为空由 OpenAIService 校验
func (s *Settings) ClientConfig() client.Config {
	return client.Config{
		APIKey:   s.OpenAI.APIKey,
		ProxyURL: s.Proxy.URL,
		Timeout:  s.TimeoutDuration(),
	}
}
