package fetcher

import "context"

// Fetcher определяет основной интерфейс для получения команд.
type Fetcher interface {
	// GetUpdate возвращает следующую непустую команду. В конце ввода возвращает io.EOF.
	GetUpdate() (Update, error)

	// Updates читает команды в отдельной горутине до конца ввода или отмены ctx.
	Updates(ctx context.Context) <-chan Update
}

// Update - одна введенная строка с командой.
type Update struct {
	ID      int // номер строки во вводе
	Command string
	Args    []string
	Text    string
}

// Arg возвращает i-й аргумент или пустую строку.
func (u Update) Arg(i int) string {
	if i < 0 || i >= len(u.Args) {
		return ""
	}

	return u.Args[i]
}
