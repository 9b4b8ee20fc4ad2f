package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig controls the file logger. The terminal belongs to the editor,
// so there is no console logger.
type LoggingConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" validate:"required_unless=Level none"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

// Prepare returns the program logger. debug forces debug level even when the
// configuration disables logging. The returned close function flushes and
// releases the log file.
func (conf *LoggingConfig) Prepare(debug bool) (*zap.Logger, func() error, error) {
	level := conf.Level
	if debug {
		level = "debug"
	}

	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zap.DebugLevel
	case "normal":
		lvl = zap.InfoLevel
	default:
		return zap.NewNop(), func() error { return nil }, nil
	}

	destination := conf.Destination
	if destination == "" {
		destination = "pagewright.log"
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return nil, nil, fmt.Errorf("unable to create log directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if conf.Mode == "overwrite" {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(destination, flags, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to access file log destination (%s): %w", destination, err)
	}

	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.Lock(f), zap.NewAtomicLevelAt(lvl))
	log := zap.New(core, zap.AddCaller()).Named("pagewright")
	closer := func() error {
		_ = log.Sync()
		return f.Close()
	}
	return log, closer, nil
}
