package prompts

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/admi-n/openai-socks/src/internal/ai/client"
)

// LoadTemplate 读取 system prompt 模板文件
func LoadTemplate(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to load template %s: %w", path, err)
	}
	return string(content), nil
}

// Render 使用 variables 渲染模板，引用未定义的变量视为错误
func Render(templateContent string, variables map[string]string) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, variables); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return result.String(), nil
}

// ParseVars 解析 key=value 形式的变量列表
func ParseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", p)
		}
		vars[k] = v
	}
	return vars, nil
}

// BuildMessages 按顺序构建消息列表，system 为空时省略
func BuildMessages(system, user string) []client.Message {
	var msgs []client.Message
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, client.Message{Role: "system", Content: system})
	}
	return append(msgs, client.Message{Role: "user", Content: user})
}
