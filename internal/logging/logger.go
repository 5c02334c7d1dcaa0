// Package logging provides a shared logger and log utilities to be used in all internal packages.
package logging

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	L *zap.Logger        = zap.L()
	S *zap.SugaredLogger = zap.S()
)

// Initialize builds the process logger. v raises verbosity: 0 logs at
// info, 1 at debug (the CLI's --debug flag). An interactive terminal
// gets a compact colored console; scheduled (cron/container) runs get
// JSON on stdout for log collection. Caller annotations are only
// emitted under --debug — for a short-lived CLI they are diagnostic
// noise otherwise.
func Initialize(v int) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.Level(-v))

	var core zapcore.Core
	if isTerminal() {
		encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			MessageKey: "message",

			LevelKey:    "level",
			EncodeLevel: zapcore.CapitalColorLevelEncoder,

			// A wall-clock timestamp is enough for a run an operator
			// is watching.
			TimeKey:    "time",
			EncodeTime: zapcore.TimeEncoderOfLayout("15:04:05"),

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		})
		core = zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	} else {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "time"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		core = zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.Lock(os.Stdout), level)
	}

	var opts []zap.Option
	if v > 0 {
		opts = append(opts, zap.AddCaller())
	}

	logger := zap.New(core, opts...)
	SetLogger(logger)

	return logger, nil
}

// SetLogger replaces the package globals. Tests use it to capture output.
func SetLogger(logger *zap.Logger) {
	L = logger
	S = logger.Sugar()
	zap.ReplaceGlobals(logger)
}

func StandardErrorLog() *log.Logger {
	errorLog, err := zap.NewStdLogAt(L, zapcore.ErrorLevel)
	if err != nil {
		return nil
	}

	return errorLog
}
