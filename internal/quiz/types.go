package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/letsssgooo/learnWithJasper/internal/domain/models"
)

// Параметры сессии
const (
	MinTable       = 2
	MaxTable       = 12
	MaxFactor      = 12
	MaxQuestions   = 10
	SessionSeconds = 300
	MaxInputLength = 5
)

// Значения по умолчанию для таймеров
const (
	DefaultTickInterval = time.Second
	DefaultAdvanceDelay = time.Second
	saveTimeout         = 5 * time.Second
)

// MaxCountOfEvents - размер буфера канала событий.
const MaxCountOfEvents = 64

// Ошибки сессии. Все они показываются пользователю и не ломают состояние.
var (
	ErrNoTablesSelected = errors.New("no tables selected")
	ErrMustKeepOneTable = errors.New("must keep at least one table")
	ErrAnswerTooLong    = errors.New("answer too long")
	ErrNothingToSave    = errors.New("nothing to save")
	ErrInvalidTable     = errors.New("invalid table")
	ErrInvalidDigit     = errors.New("invalid digit")
)

// Сообщения для пользователя
const (
	msgLetsBegin     = "Let's begin!"
	msgEnterAnswer   = "Enter your answer below."
	msgSelectTable   = "Please select at least one table to start!"
	msgAnswerTooLong = "Answer too long!"
	msgInputCleared  = "Input cleared."
	msgCorrect       = "CORRECT! 🎉"
	msgCorrectFinal  = "CORRECT! Final Answer."
	msgIncorrect     = "INCORRECT. The answer was %d."
	msgNothingToSave = "No attempts recorded to save."
	msgTimeUp        = "Time's up! Check your results."
	msgFinished      = "Quiz finished! Review your performance."
	msgSaveFailed    = "Could not save your session."
	msgKeepOneTable  = "You must keep at least one table selected!"
	msgLoggedOut     = "You have been logged out."
	msgInvalidTable  = "Tables go from 2 to 12."
	msgTablesUpdated = "Tables updated."
)

// Account - то, что сессии нужно от авторизации.
type Account interface {
	CurrentUser() (models.UserRecord, bool)
	UpdateUser(ctx context.Context, user models.UserRecord) error
	Logout()
}

// Tone - окраска сообщения.
type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneError   Tone = "error"
)

// Problem представляет пример на умножение.
type Problem struct {
	Factor1       int
	Factor2       int
	CorrectAnswer int
}

// String возвращает пример в виде "7 × 8".
func (p Problem) String() string {
	return fmt.Sprintf("%d × %d", p.Factor1, p.Factor2)
}

// Verdict - итог отправки ответа.
type Verdict struct {
	Accepted      bool
	Correct       bool
	Final         bool
	Answer        int
	CorrectAnswer int
}

// Snapshot - копия состояния сессии только для чтения.
type Snapshot struct {
	Tables          []int
	Score           int
	Attempted       int
	MaxQuestions    int
	TimeRemaining   int
	TimerRunning    bool
	Problem         *Problem
	Input           string
	AwaitingAdvance bool
	ResultsVisible  bool
	LastResult      *models.SessionResult
	Message         string
	Tone            Tone
}

// TimeLeft возвращает оставшееся время в формате m:ss.
func (s Snapshot) TimeLeft() string {
	return FormatTime(s.TimeRemaining)
}

// FormatTime форматирует секунды как m:ss.
func FormatTime(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}

	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

// Event представляет асинхронное изменение сессии.
type Event struct {
	Type     EventType
	Snapshot Snapshot
}

// EventType - тип события сессии.
type EventType string

const (
	EventTypeProblem EventType = "problem"
	EventTypeTick    EventType = "tick"
	EventTypeTimeUp  EventType = "time_up"
	EventTypeResults EventType = "results"
)

// Timer - отложенная задача, которую можно отменить.
type Timer interface {
	Stop() bool
}

// Scheduler запускает отложенные продолжения сессии.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
