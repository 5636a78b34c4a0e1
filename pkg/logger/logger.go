package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger - интерфейс логирования для всех компонентов сервиса.
// Реализация на базе zap, но компоненты зависят только от интерфейса.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	With(keysAndValues ...any) Logger
	Sync() error
}

// Config содержит настройки логгера
type Config struct {
	Level      string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Encoding   string `mapstructure:"encoding" validate:"required,oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

// DefaultConfig возвращает настройки для разработки
func DefaultConfig() *Config {
	return &Config{
		Level:    "debug",
		Encoding: "console",
	}
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New создает логгер с заданными настройками
func New(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// Преобразовываем строковый уровень логирования в zapcore.Level
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Определяем путь для вывода логов
	var outputPaths []string
	if cfg.OutputPath != "" {
		outputPaths = append(outputPaths, cfg.OutputPath)
	}
	outputPaths = append(outputPaths, "stdout")

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         cfg.Encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	log, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &zapLogger{sugar: log.Sugar()}, nil
}

// NewNop возвращает логгер, который ничего не пишет. Для тестов.
func NewNop() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *zapLogger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *zapLogger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *zapLogger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *zapLogger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *zapLogger) With(keysAndValues ...any) Logger {
	return &zapLogger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *zapLogger) Sync() error {
	return l.sugar.Sync()
}
