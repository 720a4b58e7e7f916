package sender

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
)

var styles = map[Style]*color.Color{
	StyleInfo:    color.New(color.FgCyan),
	StyleSuccess: color.New(color.FgGreen, color.Bold),
	StyleWarning: color.New(color.FgYellow),
	StyleError:   color.New(color.FgRed, color.Bold),
	StyleHeader:  color.New(color.FgMagenta, color.Bold),
}

// ConsoleSender реализует отправку сообщений в терминал.
type ConsoleSender struct {
	out io.Writer
	mu  sync.Mutex
}

// NewConsoleSender создает новый объект структуры ConsoleSender.
func NewConsoleSender(out io.Writer) *ConsoleSender {
	return &ConsoleSender{out: out}
}

// Message выводит текст с оформлением из opts.
func (s *ConsoleSender) Message(text string, opts *SendOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts != nil {
		if c, ok := styles[opts.Style]; ok {
			_, err := c.Fprintln(s.out, text)
			return err
		}
	}

	_, err := fmt.Fprintln(s.out, text)

	return err
}

// Document записывает data в файл fileName, создавая каталоги.
func (s *ConsoleSender) Document(fileName string, data []byte) error {
	if dir := filepath.Dir(fileName); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(fileName, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", fileName, err)
	}

	return nil
}
