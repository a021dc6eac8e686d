package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init builds the process logger and installs it as the zap global.
// mode "production" selects JSON output at info level; anything else is the
// development console encoder. A non-empty file adds a rotating JSON log.
func Init(mode, file string) (*zap.Logger, error) {
	var zapConfig zap.Config
	if mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		}
		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(rotating),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			return nil, err
		}
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}
