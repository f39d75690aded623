package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pushchain/candy-machine-client/candyClient/config"
)

// New builds a logger writing to stderr, leaving stdout to command output
// such as the printed keypairs.
func New(logLevel int, logFormat string, logSampler bool) zerolog.Logger {
	return newWithWriter(os.Stderr, logLevel, logFormat, logSampler)
}

// Init builds the process logger from the loaded config.
func Init(cfg config.Config) zerolog.Logger {
	return New(cfg.LogLevel, cfg.LogFormat, cfg.LogSampler)
}

func newWithWriter(out io.Writer, level int, format string, sample bool) zerolog.Logger {
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(out).Level(zerolog.Level(level)).With().Timestamp().Logger()
	if sample {
		// Warnings and errors are never dropped.
		l = l.Sample(zerolog.LevelSampler{
			DebugSampler: &zerolog.BasicSampler{N: 5},
			InfoSampler:  &zerolog.BasicSampler{N: 5},
		})
	}
	return l
}
