package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type LogBuild struct {
	writer  io.Writer
	level   zerolog.Level
	console bool
}

func New() *LogBuild {
	return &LogBuild{writer: os.Stdout, level: zerolog.InfoLevel}
}

func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

// Level parses a zerolog level name; unknown names keep the current level.
func (build *LogBuild) Level(name string) *LogBuild {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name))); err == nil && lvl != zerolog.NoLevel {
		build.level = lvl
	}
	return build
}

// Console switches to human-readable output for local development.
func (build *LogBuild) Console(on bool) *LogBuild {
	build.console = on
	return build
}

func (build *LogBuild) Make() zerolog.Logger {
	w := build.writer
	if build.console {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(build.level).With().Timestamp().Logger()
}

// Nop discards everything; tests use it for collaborators they do not inspect.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
