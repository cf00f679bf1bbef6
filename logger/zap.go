package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger zap 日志实现.
type zapLogger struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	closer io.Closer
}

// newZapLogger 创建 zap logger.
func newZapLogger(config *Config) (Logger, error) {
	sink, closer, err := openSink(config)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(buildEncoder(config), sink, parseLevel(config.Level))

	var options []zap.Option
	if config.EnableCaller {
		options = append(options, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	zapLog := zap.New(core, options...).Named(config.Name)

	return &zapLogger{
		logger: zapLog,
		sugar:  zapLog.Sugar(),
		closer: closer,
	}, nil
}

// NewFromZap 包装已有的 zap.Logger，常用于测试中接入 observer.
func NewFromZap(l *zap.Logger) Logger {
	return &zapLogger{
		logger: l,
		sugar:  l.Sugar(),
	}
}

// openSink 根据输出配置打开写入目标.
func openSink(config *Config) (zapcore.WriteSyncer, io.Closer, error) {
	switch strings.ToLower(config.Output) {
	case OutputStderr:
		return zapcore.Lock(os.Stderr), nil, nil
	case OutputFile:
		if err := os.MkdirAll(config.LogDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrCreateDir, err)
		}
		path := filepath.Join(config.LogDir, config.Name+".log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrOpenFile, err)
		}
		return zapcore.AddSync(file), file, nil
	default:
		return zapcore.Lock(os.Stdout), nil, nil
	}
}

func (z *zapLogger) Debug(args ...any) {
	z.sugar.Debug(args...)
}

func (z *zapLogger) Debugf(format string, args ...any) {
	z.sugar.Debugf(format, args...)
}

func (z *zapLogger) Info(args ...any) {
	z.sugar.Info(args...)
}

func (z *zapLogger) Infof(format string, args ...any) {
	z.sugar.Infof(format, args...)
}

func (z *zapLogger) Warn(args ...any) {
	z.sugar.Warn(args...)
}

func (z *zapLogger) Warnf(format string, args ...any) {
	z.sugar.Warnf(format, args...)
}

func (z *zapLogger) Error(args ...any) {
	z.sugar.Error(args...)
}

func (z *zapLogger) Errorf(format string, args ...any) {
	z.sugar.Errorf(format, args...)
}

// With 返回带有附加字段的 logger.
func (z *zapLogger) With(fields ...Field) Logger {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		zapFields[i] = toZapField(f)
	}

	newLogger := z.logger.With(zapFields...)
	return &zapLogger{
		logger: newLogger,
		sugar:  newLogger.Sugar(),
		closer: z.closer,
	}
}

// toZapField 将 Field 转换为 zap.Field.
func toZapField(f Field) zap.Field {
	switch v := f.Value.(type) {
	case string:
		return zap.String(f.Key, v)
	case int:
		return zap.Int(f.Key, v)
	case int64:
		return zap.Int64(f.Key, v)
	case float64:
		return zap.Float64(f.Key, v)
	case bool:
		return zap.Bool(f.Key, v)
	case time.Duration:
		return zap.Duration(f.Key, v)
	case error:
		return zap.NamedError(f.Key, v)
	default:
		return zap.Reflect(f.Key, v)
	}
}

// WithContext 返回带有 context 中 trace 信息的 logger.
// context 中没有 trace 信息时返回当前 logger.
func (z *zapLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return z
	}

	var fields []Field
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok && traceID != "" {
		fields = append(fields, Field{Key: "traceId", Value: traceID})
	}
	if spanID, ok := ctx.Value(SpanIDKey).(string); ok && spanID != "" {
		fields = append(fields, Field{Key: "spanId", Value: spanID})
	}

	if len(fields) == 0 {
		return z
	}
	return z.With(fields...)
}

// Sync 同步日志缓冲区.
func (z *zapLogger) Sync() error {
	return z.logger.Sync()
}

// Close 同步并关闭日志文件.
func (z *zapLogger) Close() error {
	// stdout/stderr 的 sync 错误可忽略
	// https://github.com/uber-go/zap/issues/328
	_ = z.logger.Sync()

	if z.closer != nil {
		return z.closer.Close()
	}
	return nil
}
