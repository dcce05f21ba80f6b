package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the process logger on stdout. Development gets human readable
// output.
func New(level string, dev bool) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, dev)
}

// NewWithWriter is New with an explicit destination, for processes whose
// stdout belongs to the user.
func NewWithWriter(out io.Writer, level string, dev bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if dev {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
