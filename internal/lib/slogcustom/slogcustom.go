package slogcustom

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// TimeLayout - формат времени в строке лога.
const TimeLayout = "15:04:05.000"

// CustomHandler пишет цветные строки вида "время УРОВЕНЬ: сообщение ключ=значение".
type CustomHandler struct {
	out    io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

// NewCustomHandler создает обработчик, пишущий в out записи не ниже level.
func NewCustomHandler(out io.Writer, level slog.Leveler) *CustomHandler {
	return &CustomHandler{
		out:   out,
		level: level,
		mu:    &sync.Mutex{},
	}
}

func (c *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch {
	case r.Level >= slog.LevelError:
		level = color.RedString(level)
	case r.Level >= slog.LevelWarn:
		level = color.YellowString(level)
	case r.Level >= slog.LevelInfo:
		level = color.HiBlueString(level)
	default:
		level = color.MagentaString(level)
	}

	var b strings.Builder
	if !r.Time.IsZero() {
		b.WriteString(r.Time.Format(TimeLayout))
		b.WriteByte(' ')
	}
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(r.Message)

	writeAttr := func(key string, v slog.Value) {
		b.WriteByte(' ')
		b.WriteString(color.GreenString(key))
		b.WriteByte('=')
		b.WriteString(fmt.Sprint(v.Resolve().Any()))
	}

	// атрибуты из WithAttrs уже содержат префикс групп
	for _, a := range c.attrs {
		writeAttr(a.Key, a.Value)
	}

	prefix := c.prefix()
	r.Attrs(func(a slog.Attr) bool {
		if !a.Equal(slog.Attr{}) {
			writeAttr(prefix+a.Key, a.Value)
		}
		return true
	})
	b.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := io.WriteString(c.out, b.String())

	return err
}

func (c *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *c
	clone.attrs = append([]slog.Attr(nil), c.attrs...)

	prefix := c.prefix()
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: prefix + a.Key, Value: a.Value})
	}

	return &clone
}

func (c *CustomHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}

	clone := *c
	clone.groups = append(append([]string(nil), c.groups...), name)

	return &clone
}

func (c *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= c.level.Level()
}

func (c *CustomHandler) prefix() string {
	if len(c.groups) == 0 {
		return ""
	}

	return strings.Join(c.groups, ".") + "."
}
