package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/letsssgooo/learnWithJasper/internal/auth"
	"github.com/letsssgooo/learnWithJasper/internal/domain/models"
	"github.com/letsssgooo/learnWithJasper/internal/events/fetcher"
	"github.com/letsssgooo/learnWithJasper/internal/events/sender"
	"github.com/letsssgooo/learnWithJasper/internal/leaderboard"
	"github.com/letsssgooo/learnWithJasper/internal/quiz"
)

// Ошибки консоли
var (
	ErrQuit           = errors.New("quit")
	ErrUnknownCommand = errors.New("unknown command")
	ErrLoginRequired  = errors.New("login required")
	ErrUsage          = errors.New("bad usage")
)

// Accounts - то, что консоли нужно от авторизации.
type Accounts interface {
	auth.Session
	History() []models.SessionResult
}

// command описывает одну команду консоли.
type command struct {
	usage         string
	minArgs       int
	loginRequired bool
	handle        func(ctx context.Context, update fetcher.Update) error
}

// App реализует терминальный интерфейс квиза.
type App struct {
	accounts Accounts
	session  *quiz.Session
	board    *leaderboard.Board
	fetcher  fetcher.Fetcher
	sender   sender.Sender
	commands map[string]command
}

// NewApp создаёт консольное приложение.
func NewApp(
	accounts Accounts,
	session *quiz.Session,
	board *leaderboard.Board,
	f fetcher.Fetcher,
	s sender.Sender,
) *App {
	a := &App{
		accounts: accounts,
		session:  session,
		board:    board,
		fetcher:  f,
		sender:   s,
	}
	a.commands = a.registerCommands()

	return a
}

// Run читает команды и события сессии до quit, конца ввода или отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.send(msgWelcome, sender.StyleHeader)

	updates := a.fetcher.Updates(ctx)
	events := a.session.Events()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			err := a.HandleUpdate(ctx, update)
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil {
				slog.Debug("command failed", "id", update.ID, "command", update.Command, "err", err)
			}
		case event := <-events:
			a.handleEvent(event)
		}
	}
}

// HandleUpdate выполняет одну команду.
// Сообщение об ошибке уже показано пользователю, ошибка возвращается для логов.
func (a *App) HandleUpdate(ctx context.Context, update fetcher.Update) error {
	cmd, ok := a.commands[update.Command]
	if !ok {
		a.send(fmt.Sprintf(msgUnknownCommand, update.Command), sender.StyleWarning)
		return fmt.Errorf("%w, %s", ErrUnknownCommand, update.Command)
	}

	if len(update.Args) < cmd.minArgs {
		return a.usage(cmd)
	}

	if cmd.loginRequired && !a.accounts.IsLoggedIn() {
		a.send(msgLoginRequired, sender.StyleWarning)
		return ErrLoginRequired
	}

	return cmd.handle(ctx, update)
}

// FlushEvents выводит накопившиеся события сессии, не дожидаясь новых.
func (a *App) FlushEvents() {
	for {
		select {
		case event := <-a.session.Events():
			a.handleEvent(event)
		default:
			return
		}
	}
}

func (a *App) handleEvent(event quiz.Event) {
	snap := event.Snapshot

	switch event.Type {
	case quiz.EventTypeProblem:
		a.renderProblem(snap)
	case quiz.EventTypeTick:
		if snap.TimeRemaining > 0 && (snap.TimeRemaining%60 == 0 || snap.TimeRemaining == 10) {
			a.send(fmt.Sprintf(msgTimeLeft, snap.TimeLeft()), sender.StyleInfo)
		}
	case quiz.EventTypeTimeUp:
		slog.Debug("time is up", "attempted", snap.Attempted)
	case quiz.EventTypeResults:
		a.renderResults(snap)
	}
}

func (a *App) usage(cmd command) error {
	a.send(fmt.Sprintf(msgUsage, cmd.usage), sender.StyleWarning)
	return fmt.Errorf("%w, %s", ErrUsage, cmd.usage)
}

// status выводит накопившиеся события и текущее сообщение сессии.
func (a *App) status() {
	a.FlushEvents()

	snap := a.session.Snapshot()
	a.send(snap.Message, toneStyle(snap.Tone))
}

func (a *App) send(text string, style sender.Style) {
	if err := a.sender.Message(text, &sender.SendOptions{Style: style}); err != nil {
		slog.Error("cannot send message", "err", err)
	}
}

func toneStyle(tone quiz.Tone) sender.Style {
	switch tone {
	case quiz.ToneSuccess:
		return sender.StyleSuccess
	case quiz.ToneWarning:
		return sender.StyleWarning
	case quiz.ToneError:
		return sender.StyleError
	default:
		return sender.StyleInfo
	}
}
