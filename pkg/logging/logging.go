// Package logging 基于 zerolog 构建结构化日志。
//
// 各组件通过 WithLogger 选项接收 zerolog.Logger，默认使用 zerolog.Nop()，
// 因此库本身在未配置时不输出任何日志。
//
//	logger := logging.New(logging.Config{Level: "debug", Format: "console"})
//	logger.Info().Str("item", id).Int("n", n).Msg("recommend by item")
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config 是日志配置。
type Config struct {
	// Level: trace / debug / info / warn / error / disabled，默认 info
	Level string `koanf:"level" yaml:"level"`

	// Format: json / console，默认 json
	Format string `koanf:"format" yaml:"format"`

	// Output 默认为 os.Stderr
	Output io.Writer `koanf:"-" yaml:"-"`
}

// New 按配置创建 Logger。
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("app", "shoprec").
		Logger()
}

// ParseLevel 将字符串转换为 zerolog.Level，无法识别时返回 InfoLevel。
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
