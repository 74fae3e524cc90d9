package logger

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/exp/slog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// New создает логгер для окружения: local - цветной текст, dev - JSON с DEBUG,
// prod и прочие - JSON с INFO
func New(env string) *slog.Logger {
	switch env {
	case envLocal, "":
		return setupPrettySlog()
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// NewFile пишет JSON в файл с ротацией. Нужен клиенту, чтобы логи не
// смешивались с выводом команд.
func NewFile(env, path string) (*slog.Logger, io.Closer) {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(env)})), w
}

func level(env string) slog.Level {
	if env == envProd {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

func setupPrettySlog() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: colorLevel,
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgMagenta),
	slog.LevelInfo:  color.New(color.FgBlue),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed),
}

func colorLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}
	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	if c, ok := levelColors[lvl]; ok {
		a.Value = slog.StringValue(c.Sprint(lvl.String()))
	}
	return a
}
