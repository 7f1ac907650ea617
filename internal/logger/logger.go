package logger

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var currentLevel atomic.Int32

func init() {
	currentLevel.Store(int32(LevelInfo))
}

type ctxKey struct{}

// SetLevel задает минимальный уровень, который попадает в лог
func SetLevel(l Level) {
	currentLevel.Store(int32(l))
}

// ParseLevel переводит строку из конфига в Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("неизвестный уровень логирования: %q", s)
}

// WithRequestID кладет id запроса в контекст, чтобы он попадал в каждую запись
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func Debug(ctx context.Context, msg string, kv ...any) {
	write(ctx, LevelDebug, "DEBUG", msg, kv)
}

func Info(ctx context.Context, msg string, kv ...any) {
	write(ctx, LevelInfo, "INFO", msg, kv)
}

func Warn(ctx context.Context, msg string, kv ...any) {
	write(ctx, LevelWarn, "WARN", msg, kv)
}

func Error(ctx context.Context, err error, msg string, kv ...any) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	write(ctx, LevelError, "ERROR", msg, kv)
}

func write(ctx context.Context, level Level, tag, msg string, kv []any) {
	if level < Level(currentLevel.Load()) {
		return
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(tag)
	b.WriteString("] ")
	b.WriteString(msg)

	if id := RequestID(ctx); id != "" {
		b.WriteString(" request_id=")
		b.WriteString(id)
	}

	for i := 0; i < len(kv); i += 2 {
		b.WriteString(" ")
		if i+1 < len(kv) {
			fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
		} else {
			// Нечетное число аргументов: печатаем ключ без значения
			fmt.Fprintf(&b, "%v=", kv[i])
		}
	}

	log.Print(b.String())
}
