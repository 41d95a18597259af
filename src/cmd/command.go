package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/admi-n/openai-socks/src/config"
	"github.com/admi-n/openai-socks/src/internal/ai/client"
	"github.com/admi-n/openai-socks/src/internal/logging"
	"github.com/admi-n/openai-socks/src/internal/prompts"
)

// Execute 执行 chat 命令：加载配置，构造服务，发送请求并输出响应
func Execute(ctx context.Context, cfg *CLIConfig, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	settings, err := config.LoadSettings(cfg.ConfigPath)
	if err != nil {
		return err
	}

	level := settings.Logging.Level
	if cfg.Verbose {
		level = "debug"
	}
	logger, err := logging.New(level, settings.Logging.Format, stderr)
	if err != nil {
		return err
	}

	// 命令行参数优先于配置文件和环境变量
	if cfg.Proxy != "" {
		settings.Proxy.URL = cfg.Proxy
	}
	if cfg.Model != "" {
		settings.OpenAI.Model = cfg.Model
	}
	clientCfg := settings.ClientConfig()
	if cfg.Timeout > 0 {
		clientCfg.Timeout = cfg.Timeout
	}

	system, err := buildSystemPrompt(cfg)
	if err != nil {
		return err
	}

	opts := []client.Option{client.WithLogger(logger)}
	if cfg.Endpoint != "" {
		opts = append(opts, client.WithEndpoint(cfg.Endpoint))
	}
	svc, err := client.NewOpenAIService(clientCfg, opts...)
	if err != nil {
		return err
	}
	defer svc.Close()

	resp, err := svc.ChatCompletion(ctx, settings.GetModel(), prompts.BuildMessages(system, cfg.Prompt),
		client.WithMaxTokens(cfg.MaxTokens),
		client.WithTemperature(cfg.Temperature),
	)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func buildSystemPrompt(cfg *CLIConfig) (string, error) {
	tmpl := cfg.System
	if cfg.SystemFile != "" {
		content, err := prompts.LoadTemplate(cfg.SystemFile)
		if err != nil {
			return "", err
		}
		tmpl = content
	}
	if tmpl == "" || (len(cfg.Vars) == 0 && cfg.SystemFile == "") {
		return tmpl, nil
	}

	vars, err := prompts.ParseVars(cfg.Vars)
	if err != nil {
		return "", err
	}
	return prompts.Render(tmpl, vars)
}
