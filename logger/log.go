package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志级别,可以运行时修改
var _level = &slog.LevelVar{}

func SetLevel(level slog.Level) {
	_level.Set(level)
}

// debug info warn error,其他按info处理
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// 初始化默认日志
// 写到dir/fileName.log,按大小轮转
func InitLog(dir, fileName string, level slog.Level, useStdOutput bool) *lumberjack.Logger {
	if dir != "" {
		_ = os.MkdirAll(dir, 0750)
	}
	fileLogger := &lumberjack.Logger{
		Filename:   filepath.Join(dir, fmt.Sprintf("%v.log", fileName)),
		MaxSize:    10,
		MaxBackups: 100,
		MaxAge:     7,
		Compress:   false,
		LocalTime:  true,
	}
	_level.Set(level)
	slog.SetDefault(slog.New(NewJsonHandlerWithStdOutput(fileLogger, NewHandlerOptions(_level), useStdOutput)))
	return fileLogger
}

func NewHandlerOptions(level slog.Leveler) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if source, ok := a.Value.Any().(*slog.Source); ok {
					source.Function = ""
					source.File = GetShortFileName(source.File)
				}
			}
			return a
		},
	}
}
