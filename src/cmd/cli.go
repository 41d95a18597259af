package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/admi-n/openai-socks/src/internal/ai/client"
)

// CLIConfig 保存解析好的 chat 命令选项
type CLIConfig struct {
	ConfigPath  string // settings.yaml 路径，为空时使用默认位置
	Model       string // 为空时取配置文件或 gpt-4
	System      string
	SystemFile  string   // system prompt 模板文件
	Vars        []string // 模板变量 key=value
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration // 覆盖配置文件中的超时
	Proxy       string        // 覆盖配置文件中的代理
	Endpoint    string
	Verbose     bool
	Prompt      string
}

// Validate 检查 CLIConfig 的必需/一致性输入。
func (c *CLIConfig) Validate() error {
	if strings.TrimSpace(c.Prompt) == "" {
		return errors.New("prompt is required (argument or stdin)")
	}
	if c.System != "" && c.SystemFile != "" {
		return errors.New("--system and --system-file are mutually exclusive")
	}
	if c.MaxTokens <= 0 {
		return errors.New("--max-tokens must be positive")
	}
	if c.Timeout < 0 {
		return errors.New("--timeout cannot be negative")
	}
	return nil
}

// NewRootCommand 创建根命令
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "openai-socks",
		Short:         "通过 SOCKS5 代理调用 OpenAI Chat Completion API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newChatCommand())
	return root
}

func newChatCommand() *cobra.Command {
	cfg := &CLIConfig{}

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "发送一次 chat completion 请求并输出 JSON 响应",
		Example: `  openai-socks chat "hello"
  openai-socks chat --proxy socks5://127.0.0.1:1080 -m gpt-4 --max-tokens 50 "hello"
  echo "hello" | openai-socks chat --system-file system.tmpl --var Lang=English`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg.Prompt = prompt
			if err := cfg.Validate(); err != nil {
				return err
			}
			return Execute(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.ConfigPath, "config", "c", "", "配置文件路径 (默认 config/settings.yaml)")
	f.StringVarP(&cfg.Model, "model", "m", "", "模型名称 (默认取配置文件，否则 gpt-4)")
	f.StringVarP(&cfg.System, "system", "s", "", "system prompt")
	f.StringVar(&cfg.SystemFile, "system-file", "", "system prompt 模板文件 (text/template)")
	f.StringArrayVar(&cfg.Vars, "var", nil, "模板变量 key=value，可重复")
	f.IntVar(&cfg.MaxTokens, "max-tokens", client.DefaultMaxTokens, "max_tokens")
	f.Float64Var(&cfg.Temperature, "temperature", client.DefaultTemperature, "temperature")
	f.DurationVar(&cfg.Timeout, "timeout", 0, "请求超时 (默认取配置文件，否则 120s)")
	f.StringVar(&cfg.Proxy, "proxy", "", "SOCKS5 代理，例如 socks5://127.0.0.1:1080")
	f.StringVar(&cfg.Endpoint, "endpoint", "", "兼容 OpenAI 协议的接口地址")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "输出调试日志")
	_ = f.MarkHidden("endpoint")

	return cmd
}

// readPrompt 优先使用参数，否则读取 stdin
func readPrompt(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Run 是一个便利包装，解析参数并执行命令。
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand().ExecuteContext(ctx)
}

// PrintFatal 将错误打印到 stderr 并以非零代码退出。
func PrintFatal(err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "错误:", err)
	os.Exit(1)
}
