/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.SugaredLogger
}

// With returns child logger, receiver is not modified
func (m *Logger) With(args ...interface{}) *Logger {
	return &Logger{m.SugaredLogger.With(args...)}
}

func setupLogger(encoding string, level string) (*Logger, error) {
	rawJSON := []byte(fmt.Sprintf(`{
	  "level": "%s",
	  "encoding": "%s",
	  "outputPaths": ["stdout"],
	  "errorOutputPaths": ["stderr"],
	  "encoderConfig": {
	    "messageKey": "message",
	    "levelKey": "level",
		"levelEncoder": "uppercase",
        "timeKey": "time",
		"timeEncoder": "ISO8601",
		"callerKey": "caller",
		"callerEncoder": "short"
	  }
	}`, level, encoding))

	var cfg zap.Config
	if err := jsoniter.Unmarshal(rawJSON, &cfg); err != nil {
		return nil, fmt.Errorf("logger config: %w", err)
	}
	if encoding == "console" {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	_ = logger.Sync()
	return &Logger{logger.Sugar()}, nil
}

func NewLogger(cfg *RunnerConfig) (*Logger, error) {
	return setupLogger(cfg.LogEncoding, cfg.LogLevel)
}

// NopLogger discards everything
func NopLogger() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}
