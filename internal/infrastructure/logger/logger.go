package logger

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// TimeLayout renders timestamps as "2006-01-02 15:04:05.000".
const TimeLayout = "2006-01-02 15:04:05.000"

// maxSizeMB keeps every run in a single file; lumberjack never rotates it.
const maxSizeMB = math.MaxInt32

type Logger struct {
	*zap.SugaredLogger
	file *lumberjack.Logger
}

// New builds a logger writing "<timestamp> - <LEVEL> - <message>" lines to
// logFile (appending) and, when console is set, to stderr. With neither a
// file nor console output the logger discards everything.
func New(logLevel, logFile string, console bool) (*Logger, error) {
	if logFile != "" {
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = zapcore.InfoLevel
	}

	encoder := zapcore.NewConsoleEncoder(EncoderConfig())

	var cores []zapcore.Core
	var file *lumberjack.Logger

	if console {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
	}

	if logFile != "" {
		file = &lumberjack.Logger{
			Filename: logFile,
			MaxSize:  maxSizeMB,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(file), level))
	}

	var core zapcore.Core
	switch len(cores) {
	case 0:
		core = zapcore.NewNopCore()
	case 1:
		core = cores[0]
	default:
		core = zapcore.NewTee(cores...)
	}

	return &Logger{SugaredLogger: zap.New(core).Sugar(), file: file}, nil
}

// EncoderConfig is the single-line text layout shared by file and console output.
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "timestamp",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
}

func (l *Logger) Close() {
	_ = l.Sync()
	if l.file != nil {
		_ = l.file.Close()
	}
}
