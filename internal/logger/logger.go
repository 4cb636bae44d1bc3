package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config описывает логгер сервиса и storyctl.
type Config struct {
	Env        string // development: console и caller, иначе json
	Level      string // debug, info, warn, error; пусто = info
	Encoding   string // json или console, пусто = по Env
	OutputPath string // пусто = stdout
}

func (c Config) development() bool {
	return strings.EqualFold(c.Env, "development")
}

func (c Config) encoding() string {
	switch enc := strings.ToLower(c.Encoding); enc {
	case "json", "console":
		return enc
	}
	if c.development() {
		return "console"
	}
	return "json"
}

// level разбирает уровень; ошибку пишем в stderr, логгера еще нет.
func (c Config) level() zap.AtomicLevel {
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if c.Level == "" {
		return lvl
	}
	if err := lvl.UnmarshalText([]byte(strings.ToLower(c.Level))); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', using 'info'. Error: %v\n", c.Level, err)
		lvl.SetLevel(zap.InfoLevel)
	}
	return lvl
}

// New создает zap.Logger. В json-формате каждая запись несет поле env.
func New(cfg Config) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoding := cfg.encoding()
	if encoding == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	output := cfg.OutputPath
	if output == "" {
		output = "stdout"
	}

	zapCfg := zap.Config{
		Level:             cfg.level(),
		Development:       cfg.development(),
		DisableCaller:     !cfg.development(),
		DisableStacktrace: !cfg.development(),
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
	}
	if encoding == "json" && cfg.Env != "" {
		zapCfg.InitialFields = map[string]any{"env": cfg.Env}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
