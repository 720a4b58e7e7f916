package sender

// Sender определяет основной интерфейс для отправки сообщений.
type Sender interface {
	// Message выводит текстовое сообщение.
	Message(text string, opts *SendOptions) error

	// Document сохраняет данные в файл.
	Document(fileName string, data []byte) error
}

// Style - оформление сообщения.
type Style string

const (
	StylePlain   Style = "plain"
	StyleInfo    Style = "info"
	StyleSuccess Style = "success"
	StyleWarning Style = "warning"
	StyleError   Style = "error"
	StyleHeader  Style = "header"
)

// SendOptions задает оформление сообщения. nil означает обычный текст.
type SendOptions struct {
	Style Style
}
