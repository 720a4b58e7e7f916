package fetcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// LineFetcher реализует Fetcher поверх построчного ввода.
type LineFetcher struct {
	scanner *bufio.Scanner
	offset  int
}

func NewLineFetcher(in io.Reader) *LineFetcher {
	return &LineFetcher{
		scanner: bufio.NewScanner(in),
		offset:  0,
	}
}

// GetUpdate читает строки, пропуская пустые, и разбирает первую непустую.
func (f *LineFetcher) GetUpdate() (Update, error) {
	for f.scanner.Scan() {
		f.offset++

		update, ok := ParseUpdate(f.offset, f.scanner.Text())
		if ok {
			return update, nil
		}
	}

	if err := f.scanner.Err(); err != nil {
		return Update{}, fmt.Errorf("cannot read input: %w", err)
	}

	return Update{}, io.EOF
}

// Updates отдает команды в канал. Канал закрывается в конце ввода или при отмене ctx.
func (f *LineFetcher) Updates(ctx context.Context) <-chan Update {
	updates := make(chan Update)

	go func() {
		defer close(updates)

		for {
			update, err := f.GetUpdate()
			if err != nil {
				return
			}

			select {
			case updates <- update:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates
}

// ParseUpdate разбирает строку на команду и аргументы. false для пустой строки.
func ParseUpdate(id int, line string) (Update, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Update{}, false
	}

	return Update{
		ID:      id,
		Command: strings.ToLower(fields[0]),
		Args:    fields[1:],
		Text:    strings.TrimSpace(line),
	}, true
}
