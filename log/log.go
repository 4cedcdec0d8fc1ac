package log

import (
	"os"

	"token-backend/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 全局日志，Init 之前为 Nop
var Logger = zap.NewNop()

// Init builds the global logger: JSON lines into a rotated file when a path is
// configured, and console output in development or when no file is set.
func Init(conf config.LogConfig, development bool) error {
	level := zapcore.InfoLevel
	if conf.Level != "" {
		l, err := zapcore.ParseLevel(conf.Level)
		if err != nil {
			return err
		}
		level = l
	}

	encoderConf := zap.NewProductionEncoderConfig()
	encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	if conf.Path != "" {
		// 按大小切割日志文件
		writer := &lumberjack.Logger{
			Filename:   conf.Path,
			MaxSize:    conf.MaxSize,
			MaxBackups: conf.MaxBackups,
			MaxAge:     conf.MaxAge,
			Compress:   conf.Compress,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConf), zapcore.AddSync(writer), level))
	}
	if development || conf.Path == "" {
		consoleConf := encoderConf
		consoleConf.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConf), zapcore.Lock(os.Stdout), level))
	}

	opts := []zap.Option{zap.AddCaller()}
	if development {
		opts = append(opts, zap.Development())
	}
	Logger = zap.New(zapcore.NewTee(cores...), opts...)
	return nil
}

// Sync flushes buffered entries, called on shutdown.
func Sync() {
	_ = Logger.Sync()
}
