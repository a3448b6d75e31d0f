package log

import (
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Level is the minimum severity a Logger emits. It implements the pflag.Value
// interface.
type Level uint

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = []string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

func (l *Level) String() string {
	if int(*l) >= len(levelNames) {
		panic("log: unsupported log level")
	}
	return levelNames[*l]
}

// Set parses s case-insensitively.
func (l *Level) Set(s string) error {
	for lvl, name := range levelNames {
		if strings.EqualFold(s, name) {
			*l = Level(lvl)
			return nil
		}
	}
	return fmt.Errorf("log: invalid log level: '%s'", s)
}

func (l *Level) Type() string {
	return "[debug,info,warn,error]"
}

// tag returns logger with the go-kit level key of l attached.
func (l Level) tag(logger log.Logger) log.Logger {
	switch l {
	case LevelDebug:
		return level.Debug(logger)
	case LevelInfo:
		return level.Info(logger)
	case LevelWarn:
		return level.Warn(logger)
	default:
		return level.Error(logger)
	}
}
