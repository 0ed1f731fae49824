package utils

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	SetLoggerConsole(false)
}

var ColourDisabled bool

// ANSI codes used by the console writer.
const (
	ansiRed     = 31
	ansiGreen   = 32
	ansiYellow  = 33
	ansiMagenta = 35
	ansiBold    = 1
)

// Helper for escape analysis; avoids go thinking the variadic argument escapes.
// Default "verb" behaviour.
func V[T any](copyThatEscapes T) string {
	return fmt.Sprintf("%v", copyThatEscapes)
}

// Helper for escape analysis; avoids go thinking the variadic argument escapes.
// Uses the given format string.
func F[T any](f string, copyThatEscapes T) string {
	return fmt.Sprintf(f, copyThatEscapes)
}

func paint(s string, codes ...int) string {
	if ColourDisabled {
		return s
	}
	for _, c := range codes {
		s = fmt.Sprintf("\x1b[%dm%s\x1b[0m", c, s)
	}
	return s
}

// Levels 0 info, 1 debug, 2+ trace.
func SetLevel(level int) {
	lvl := zerolog.TraceLevel
	if level <= 0 {
		lvl = zerolog.InfoLevel
	} else if level == 1 {
		lvl = zerolog.DebugLevel
	}
	log.Logger = log.Logger.Level(lvl)
}

func SetLoggerConsole(noColour bool) {
	ColourDisabled = noColour
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly, NoColor: noColour}
	cw.FormatLevel = formatLevel
	cw.PartsOrder = []string{
		zerolog.TimestampFieldName,
		zerolog.LevelFieldName,
		zerolog.MessageFieldName,
	}
	log.Logger = log.Output(cw)
}

func formatLevel(i any) string {
	ll, ok := i.(string)
	if !ok {
		if i == nil {
			return paint("[???]", ansiBold)
		}
		return strings.ToUpper(fmt.Sprintf("[%v]", i))
	}
	switch ll {
	case zerolog.LevelTraceValue:
		return paint("[trace]", ansiMagenta)
	case zerolog.LevelDebugValue:
		return paint("[debug]", ansiYellow)
	case zerolog.LevelInfoValue:
		return paint("[info ]", ansiGreen)
	case zerolog.LevelWarnValue:
		return paint("[warn ]", ansiRed)
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		return paint("["+ll+"]", ansiRed, ansiBold)
	}
	return paint("["+ll+"]", ansiBold)
}

func MemoryStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Info().Msg("MiB: alloc " + V(m.Alloc/1024/1024) +
		" sys " + V(m.Sys/1024/1024) +
		" heap-inuse " + V(m.HeapInuse/1024/1024) +
		". gc runs: " + V(m.NumGC))
}
