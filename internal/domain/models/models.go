package models

import (
	"math"
	"time"
)

// Файл с моделями, которые доступны извне.
// Хранилища сохраняют и отдают именно эти структуры, а сессия квиза
// создает SessionResult при завершении игры.

// DateLayout - формат даты сессии в истории (пример: "Oct 19, 2026").
const DateLayout = "Jan 2, 2006"

// BirthdayLayout - формат даты рождения при регистрации.
const BirthdayLayout = "2006-01-02"

// UserRecord определяет модель пользователя вместе с историей результатов.
type UserRecord struct {
	Username     string
	Password     string
	DisplayName  string
	Email        string
	Birthday     *time.Time
	ScoreHistory []SessionResult // самая свежая сессия первая
	CreatedAt    time.Time
}

// Clone возвращает копию пользователя, не разделяющую историю с оригиналом.
func (u UserRecord) Clone() UserRecord {
	clone := u

	if u.ScoreHistory != nil {
		clone.ScoreHistory = make([]SessionResult, len(u.ScoreHistory))
		copy(clone.ScoreHistory, u.ScoreHistory)
	}

	if u.Birthday != nil {
		birthday := *u.Birthday
		clone.Birthday = &birthday
	}

	return clone
}

// WithResult возвращает копию пользователя с результатом в начале истории.
func (u UserRecord) WithResult(result SessionResult) UserRecord {
	clone := u.Clone()

	history := make([]SessionResult, 0, len(u.ScoreHistory)+1)
	history = append(history, result)
	history = append(history, u.ScoreHistory...)
	clone.ScoreHistory = history

	return clone
}

// SessionResult определяет результат одной сессии квиза.
type SessionResult struct {
	Score     int
	Attempted int
	Date      string
	Completed bool
	TimedOut  bool
}

// Outcome - итог сессии для отображения в истории.
type Outcome string

const (
	OutcomeCompleted    Outcome = "completed"
	OutcomeTimedOut     Outcome = "timed_out"
	OutcomeStoppedEarly Outcome = "stopped_early"
)

// Label возвращает подпись итога для истории.
func (o Outcome) Label() string {
	switch o {
	case OutcomeCompleted:
		return "Completed (10 Qs)"
	case OutcomeTimedOut:
		return "Timed Out"
	default:
		return "Stopped Early"
	}
}

// Outcome определяет итог сессии. Завершенная сессия важнее таймаута.
func (r SessionResult) Outcome() Outcome {
	switch {
	case r.Completed:
		return OutcomeCompleted
	case r.TimedOut:
		return OutcomeTimedOut
	default:
		return OutcomeStoppedEarly
	}
}

// Accuracy возвращает точность сессии в процентах.
func (r SessionResult) Accuracy() int {
	return Percent(r.Score, r.Attempted)
}

// Percent возвращает round(100*part/total) или 0, если total равен нулю.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}

	return int(math.Round(100 * float64(part) / float64(total)))
}

// FormatDate форматирует дату сессии.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
