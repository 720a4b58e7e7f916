package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/letsssgooo/learnWithJasper/internal/auth"
	"github.com/letsssgooo/learnWithJasper/internal/events/fetcher"
	"github.com/letsssgooo/learnWithJasper/internal/events/sender"
	"github.com/letsssgooo/learnWithJasper/internal/leaderboard"
	"github.com/letsssgooo/learnWithJasper/internal/quiz"
)

// Необязательные поля регистрации передаются как ключ=значение.
const (
	optConfirm  = "confirm="
	optEmail    = "email="
	optBirthday = "birthday="
)

func (a *App) registerCommands() map[string]command {
	return map[string]command{
		"help":        {usage: "help", handle: a.handleHelp},
		"quit":        {usage: "quit", handle: a.handleQuit},
		"login":       {usage: "login USERNAME PASSWORD", minArgs: 2, handle: a.handleLogin},
		"register":    {usage: "register USERNAME PASSWORD DISPLAY NAME [confirm=..] [email=..] [birthday=YYYY-MM-DD]", minArgs: 3, handle: a.handleRegister},
		"logout":      {usage: "logout", loginRequired: true, handle: a.handleLogout},
		"whoami":      {usage: "whoami", handle: a.handleWhoami},
		"tables":      {usage: "tables", loginRequired: true, handle: a.handleTables},
		"toggle":      {usage: "toggle N", minArgs: 1, loginRequired: true, handle: a.handleToggle},
		"start":       {usage: "start [N...]", loginRequired: true, handle: a.handleStart},
		"digit":       {usage: "digit D", minArgs: 1, loginRequired: true, handle: a.handleDigit},
		"clear":       {usage: "clear", loginRequired: true, handle: a.handleClear},
		"submit":      {usage: "submit", loginRequired: true, handle: a.handleSubmit},
		"answer":      {usage: "answer N", minArgs: 1, loginRequired: true, handle: a.handleAnswer},
		"stop":        {usage: "stop", loginRequired: true, handle: a.handleStop},
		"state":       {usage: "state", loginRequired: true, handle: a.handleState},
		"history":     {usage: "history", loginRequired: true, handle: a.handleHistory},
		"leaderboard": {usage: "leaderboard", handle: a.handleLeaderboard},
		"export":      {usage: "export PATH", minArgs: 1, handle: a.handleExport},
	}
}

func (a *App) handleHelp(_ context.Context, _ fetcher.Update) error {
	a.send(msgHelp, sender.StylePlain)
	return nil
}

func (a *App) handleQuit(_ context.Context, _ fetcher.Update) error {
	a.send(msgBye, sender.StyleHeader)
	return ErrQuit
}

func (a *App) handleLogin(ctx context.Context, update fetcher.Update) error {
	if user, ok := a.accounts.CurrentUser(); ok {
		a.send(fmt.Sprintf(msgAlreadyLoggedIn, user.Username), sender.StyleWarning)
		return nil
	}

	err := a.accounts.Login(ctx, update.Arg(0), update.Arg(1))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		a.send(msgInvalidCredentials, sender.StyleError)
		return err
	}
	if err != nil {
		a.send(msgCommandFailed, sender.StyleError)
		return err
	}

	user, _ := a.accounts.CurrentUser()
	a.session.Reset()
	a.send(fmt.Sprintf(msgLoggedIn, user.DisplayName), sender.StyleSuccess)

	return nil
}

func (a *App) handleRegister(ctx context.Context, update fetcher.Update) error {
	if user, ok := a.accounts.CurrentUser(); ok {
		a.send(fmt.Sprintf(msgAlreadyLoggedIn, user.Username), sender.StyleWarning)
		return nil
	}

	req := ParseRegisterArgs(update.Args)
	if err := a.accounts.Register(ctx, req); err != nil {
		a.send(fmt.Sprintf(msgRegisterFailed, err), sender.StyleError)
		return err
	}

	user, _ := a.accounts.CurrentUser()
	a.session.Reset()
	a.send(fmt.Sprintf(msgRegistered, user.DisplayName), sender.StyleSuccess)

	return nil
}

// ParseRegisterArgs собирает форму регистрации из аргументов команды:
// два первых аргумента - логин и пароль, ключ=значение - необязательные поля,
// остальные слова - отображаемое имя.
func ParseRegisterArgs(args []string) auth.RegisterRequest {
	var req auth.RegisterRequest
	if len(args) > 0 {
		req.Username = args[0]
	}
	if len(args) > 1 {
		req.Password = args[1]
	}

	var name []string
	for _, arg := range args[min(2, len(args)):] {
		switch {
		case strings.HasPrefix(arg, optConfirm):
			req.ConfirmPassword = strings.TrimPrefix(arg, optConfirm)
		case strings.HasPrefix(arg, optEmail):
			req.Email = strings.TrimPrefix(arg, optEmail)
		case strings.HasPrefix(arg, optBirthday):
			req.Birthday = strings.TrimPrefix(arg, optBirthday)
		default:
			name = append(name, arg)
		}
	}
	req.DisplayName = strings.Join(name, " ")

	return req
}

func (a *App) handleLogout(ctx context.Context, _ fetcher.Update) error {
	err := a.session.Logout(ctx)
	a.FlushEvents()

	if err != nil && !errors.Is(err, quiz.ErrNothingToSave) {
		a.send(msgCommandFailed, sender.StyleError)
	}
	a.send(a.session.Snapshot().Message, sender.StyleInfo)

	return err
}

func (a *App) handleWhoami(_ context.Context, _ fetcher.Update) error {
	user, ok := a.accounts.CurrentUser()
	if !ok {
		a.send(msgNotLoggedIn, sender.StyleInfo)
		return nil
	}

	a.renderUser(user)

	return nil
}

func (a *App) handleTables(_ context.Context, _ fetcher.Update) error {
	a.send(fmt.Sprintf(msgSelectedTables, joinInts(a.session.Tables())), sender.StyleInfo)
	return nil
}

func (a *App) handleToggle(_ context.Context, update fetcher.Update) error {
	n, err := strconv.Atoi(update.Arg(0))
	if err != nil {
		return a.usage(a.commands["toggle"])
	}

	err = a.session.ToggleTable(n)
	a.status()
	a.send(fmt.Sprintf(msgSelectedTables, joinInts(a.session.Tables())), sender.StylePlain)

	return err
}

func (a *App) handleStart(_ context.Context, update fetcher.Update) error {
	var tables []int
	for _, arg := range update.Args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return a.usage(a.commands["start"])
		}
		tables = append(tables, n)
	}

	if err := a.session.StartNewSession(tables); err != nil {
		a.status()
		return err
	}
	a.FlushEvents()

	return nil
}

func (a *App) handleDigit(_ context.Context, update fetcher.Update) error {
	d, err := strconv.Atoi(update.Arg(0))
	if err != nil || len(update.Arg(0)) != 1 {
		return a.usage(a.commands["digit"])
	}

	if err := a.session.EnterDigit(d); err != nil {
		a.status()
		return err
	}
	a.renderInput(a.session.Snapshot())

	return nil
}

func (a *App) handleClear(_ context.Context, _ fetcher.Update) error {
	a.session.ClearInput()
	a.status()

	return nil
}

func (a *App) handleSubmit(ctx context.Context, _ fetcher.Update) error {
	return a.submit(ctx)
}

func (a *App) handleAnswer(ctx context.Context, update fetcher.Update) error {
	answer := update.Arg(0)
	for _, r := range answer {
		if r < '0' || r > '9' {
			return a.usage(a.commands["answer"])
		}
	}

	snap := a.session.Snapshot()
	if snap.AwaitingAdvance || snap.Problem == nil || snap.ResultsVisible {
		return a.submit(ctx)
	}

	a.session.ClearInput()
	for _, r := range answer {
		if err := a.session.EnterDigit(int(r - '0')); err != nil {
			a.status()
			a.session.ClearInput()
			return err
		}
	}

	return a.submit(ctx)
}

func (a *App) submit(ctx context.Context) error {
	verdict, err := a.session.SubmitAnswer(ctx)
	if err != nil {
		a.send(msgCommandFailed, sender.StyleError)
		return err
	}

	if !verdict.Accepted {
		snap := a.session.Snapshot()
		switch {
		case snap.AwaitingAdvance:
			a.send(msgWaitNext, sender.StyleInfo)
		case snap.Problem == nil || snap.ResultsVisible || snap.TimeRemaining == 0:
			a.send(msgNoProblem, sender.StyleInfo)
		case snap.Input == "":
			a.send(msgTypeAnswer, sender.StyleWarning)
		}
		return nil
	}

	a.status()

	return nil
}

func (a *App) handleStop(ctx context.Context, _ fetcher.Update) error {
	if err := a.session.EndSessionEarly(ctx); err != nil {
		a.status()
		return err
	}
	a.FlushEvents()

	return nil
}

func (a *App) handleState(_ context.Context, _ fetcher.Update) error {
	a.FlushEvents()
	a.renderState(a.session.Snapshot())

	return nil
}

func (a *App) handleHistory(_ context.Context, _ fetcher.Update) error {
	a.renderHistory(a.accounts.History())
	return nil
}

func (a *App) handleLeaderboard(ctx context.Context, _ fetcher.Update) error {
	entries, err := a.board.Compute(ctx)
	if err != nil {
		a.send(msgCommandFailed, sender.StyleError)
		return err
	}

	a.renderLeaderboard(entries)

	return nil
}

func (a *App) handleExport(ctx context.Context, update fetcher.Update) error {
	entries, err := a.board.Compute(ctx)
	if err != nil {
		a.send(msgCommandFailed, sender.StyleError)
		return err
	}

	data, err := leaderboard.ExportCSV(entries)
	if err != nil {
		a.send(msgCommandFailed, sender.StyleError)
		return err
	}

	path := update.Arg(0)
	if err := a.sender.Document(path, data); err != nil {
		a.send(msgCommandFailed, sender.StyleError)
		return err
	}
	a.send(fmt.Sprintf(msgExported, path), sender.StyleSuccess)

	return nil
}
