package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/letsssgooo/learnWithJasper/internal/domain/models"
)

// Options задает зависимости и таймеры сессии. Нулевые поля заменяются значениями по умолчанию.
type Options struct {
	TickInterval time.Duration
	AdvanceDelay time.Duration
	Scheduler    Scheduler
	Rand         *rand.Rand
	Now          func() time.Time
}

// state - изменяемое состояние одного прохождения квиза.
type state struct {
	tables          []int
	score           int
	attempted       int
	timeRemaining   int
	timerRunning    bool
	problem         *Problem
	input           string
	awaitingAdvance bool
	resultsVisible  bool
	lastResult      *models.SessionResult
	message         string
	tone            Tone
}

func initialState(tables []int) state {
	return state{
		tables:        tables,
		timeRemaining: SessionSeconds,
		message:       msgLetsBegin,
		tone:          ToneInfo,
	}
}

// Session реализует конечный автомат сессии квиза.
// Все изменения состояния идут под одним мьютексом: действия пользователя,
// тики таймера и отложенные продолжения.
type Session struct {
	account      Account
	scheduler    Scheduler
	rnd          *rand.Rand
	now          func() time.Time
	tickInterval time.Duration
	advanceDelay time.Duration

	st      state
	epoch   string // идентификатор текущего прохождения
	pending Timer
	events  chan Event
	mu      sync.Mutex
}

// NewSession создаёт новую сессию для пользователя из account.
func NewSession(account Account, opts Options) *Session {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.AdvanceDelay <= 0 {
		opts.AdvanceDelay = DefaultAdvanceDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = realScheduler{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Session{
		account:      account,
		scheduler:    opts.Scheduler,
		rnd:          opts.Rand,
		now:          opts.Now,
		tickInterval: opts.TickInterval,
		advanceDelay: opts.AdvanceDelay,
		st:           initialState(AllTables()),
		epoch:        uuid.NewString(),
		events:       make(chan Event, MaxCountOfEvents),
	}
}

// Events возвращает канал асинхронных изменений сессии.
// Если читатель не успевает, события отбрасываются.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Snapshot возвращает копию текущего состояния.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// StartNewSession сбрасывает счет, время и ввод и генерирует первый пример.
// nil tables оставляет текущий выбор таблиц.
func (s *Session) StartNewSession(tables []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := s.st.tables
	if tables != nil {
		normalized, err := normalizeTables(tables)
		if err != nil {
			s.setMessage(msgInvalidTable, ToneWarning)
			return err
		}
		if len(normalized) == 0 {
			s.setMessage(msgSelectTable, ToneWarning)
			return ErrNoTablesSelected
		}
		selected = normalized
	}

	s.restartLocked(initialState(selected))
	slog.Debug("quiz session started", "epoch", s.epoch, "tables", selected)

	return s.generateProblemLocked()
}

// GenerateProblem выбирает случайную таблицу и множитель от 1 до 12.
func (s *Session) GenerateProblem() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.generateProblemLocked()
}

// EnterDigit дописывает цифру к ответу.
func (s *Session) EnterDigit(d int) error {
	if d < 0 || d > 9 {
		return fmt.Errorf("%w: %d", ErrInvalidDigit, d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inputLocked() {
		return nil
	}

	if len(s.st.input)+1 > MaxInputLength {
		s.setMessage(msgAnswerTooLong, ToneWarning)
		return ErrAnswerTooLong
	}

	s.st.input += strconv.Itoa(d)

	return nil
}

// ClearInput очищает ответ.
func (s *Session) ClearInput() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inputLocked() {
		return
	}

	s.st.input = ""
	s.setMessage(msgInputCleared, ToneInfo)
}

// SubmitAnswer проверяет ответ и планирует следующий пример или итоги.
// Счетчики обновляются одним переходом до планирования продолжения.
func (s *Session) SubmitAnswer(ctx context.Context) (Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.awaitingAdvance || s.st.input == "" || s.st.timeRemaining == 0 || s.st.problem == nil {
		return Verdict{}, nil
	}

	if s.st.attempted >= MaxQuestions {
		s.st.timerRunning = false
		return Verdict{}, nil
	}

	answer, err := strconv.Atoi(s.st.input)
	if err != nil {
		return Verdict{}, fmt.Errorf("cannot parse answer %q: %w", s.st.input, err)
	}

	s.st.attempted++
	final := s.st.attempted == MaxQuestions
	correct := answer == s.st.problem.CorrectAnswer

	verdict := Verdict{
		Accepted:      true,
		Correct:       correct,
		Final:         final,
		Answer:        answer,
		CorrectAnswer: s.st.problem.CorrectAnswer,
	}

	switch {
	case correct && final:
		s.st.score++
		s.setMessage(msgCorrectFinal, ToneSuccess)
	case correct:
		s.st.score++
		s.setMessage(msgCorrect, ToneSuccess)
	default:
		s.setMessage(fmt.Sprintf(msgIncorrect, s.st.problem.CorrectAnswer), ToneError)
	}

	s.st.awaitingAdvance = true
	if final {
		s.st.timerRunning = false
	}

	epoch := s.epoch
	s.pending = s.scheduler.AfterFunc(s.advanceDelay, func() {
		s.advance(epoch, final)
	})

	slog.Debug("answer submitted",
		"epoch", epoch,
		"correct", correct,
		"attempted", s.st.attempted,
		"score", s.st.score,
	)

	return verdict, nil
}

// advance - отложенное продолжение после ответа.
// Ничего не делает, если прохождение уже сброшено или сохранено.
func (s *Session) advance(epoch string, final bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch || !s.st.awaitingAdvance {
		slog.Debug("stale continuation skipped", "epoch", epoch)
		return
	}
	s.pending = nil

	if !final && s.st.timeRemaining > 0 {
		if err := s.generateProblemLocked(); err != nil {
			slog.Warn("cannot generate next problem", "err", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.saveLocked(ctx, !final); err != nil {
		slog.Error("cannot save session", "err", err)
	}
}

// SaveAndShowResults сохраняет результат в историю пользователя и показывает итоги.
func (s *Session) SaveAndShowResults(ctx context.Context, timedOut bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked(ctx, timedOut)
}

// EndSessionEarly досрочно завершает прохождение с сохранением результата.
func (s *Session) EndSessionEarly(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	over := s.st.resultsVisible || (s.st.awaitingAdvance && s.st.attempted >= MaxQuestions)
	if over || (s.st.attempted == 0 && s.st.score == 0) {
		s.setMessage(msgNothingToSave, ToneWarning)
		return ErrNothingToSave
	}

	return s.saveLocked(ctx, false)
}

// Tick - один шаг таймера. При достижении нуля сессия сохраняется как истекшая.
func (s *Session) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.st.timerRunning || s.st.attempted >= MaxQuestions || s.st.timeRemaining <= 0 {
		return nil
	}

	s.st.timeRemaining--
	s.emitLocked(EventTypeTick)

	if s.st.timeRemaining > 0 {
		return nil
	}

	s.st.timerRunning = false
	if s.st.resultsVisible || s.st.awaitingAdvance {
		return nil
	}

	if _, ok := s.account.CurrentUser(); !ok {
		slog.Debug("time is up, nobody is logged in", "epoch", s.epoch)
		return nil
	}

	s.emitLocked(EventTypeTimeUp)
	slog.Debug("time is up", "epoch", s.epoch, "attempted", s.st.attempted)

	return s.saveLocked(ctx, true)
}

// Run запускает таймер сессии до отмены ctx.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				slog.Error("timer tick failed", "err", err)
			}
		}
	}
}

// Reset возвращает сессию в начальное состояние со всеми таблицами.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.restartLocked(initialState(AllTables()))
}

// Logout сохраняет начатое прохождение, сбрасывает сессию и выходит из аккаунта.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var saveErr error
	if (s.st.score > 0 || s.st.attempted > 0) && !s.st.resultsVisible {
		saveErr = s.saveLocked(ctx, false)
	}

	s.restartLocked(initialState(AllTables()))
	s.account.Logout()
	s.setMessage(msgLoggedOut, ToneInfo)

	return saveErr
}

func (s *Session) generateProblemLocked() error {
	if len(s.st.tables) == 0 {
		s.setMessage(msgSelectTable, ToneWarning)
		return ErrNoTablesSelected
	}

	factor1 := s.st.tables[s.rnd.Intn(len(s.st.tables))]
	factor2 := s.rnd.Intn(MaxFactor) + 1

	s.st.problem = &Problem{
		Factor1:       factor1,
		Factor2:       factor2,
		CorrectAnswer: factor1 * factor2,
	}
	s.st.input = ""
	s.st.awaitingAdvance = false
	s.st.timerRunning = true
	s.st.resultsVisible = false
	s.setMessage(msgEnterAnswer, ToneInfo)
	s.emitLocked(EventTypeProblem)

	return nil
}

func (s *Session) saveLocked(ctx context.Context, timedOut bool) error {
	user, ok := s.account.CurrentUser()
	if !ok {
		slog.Debug("save skipped, nobody is logged in")
		return nil
	}

	if s.st.attempted == 0 && !timedOut {
		s.setMessage(msgNothingToSave, ToneWarning)
		return ErrNothingToSave
	}

	result := models.SessionResult{
		Score:     s.st.score,
		Attempted: s.st.attempted,
		Date:      models.FormatDate(s.now()),
		Completed: s.st.attempted >= MaxQuestions,
		TimedOut:  timedOut,
	}

	if err := s.account.UpdateUser(ctx, user.WithResult(result)); err != nil {
		s.setMessage(msgSaveFailed, ToneError)
		return fmt.Errorf("cannot save session result: %w", err)
	}

	next := initialState(s.st.tables)
	next.resultsVisible = true
	next.lastResult = &result
	if timedOut {
		next.message, next.tone = msgTimeUp, ToneError
	} else {
		next.message, next.tone = msgFinished, ToneSuccess
	}
	s.restartLocked(next)
	s.emitLocked(EventTypeResults)

	slog.Info("session saved",
		"username", user.Username,
		"score", result.Score,
		"attempted", result.Attempted,
		"timed_out", result.TimedOut,
	)

	return nil
}

// restartLocked заменяет состояние и отменяет отложенное продолжение.
func (s *Session) restartLocked(next state) {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}

	s.st = next
	s.epoch = uuid.NewString()
}

// inputLocked сообщает, заблокирован ли ввод.
func (s *Session) inputLocked() bool {
	return s.st.awaitingAdvance || s.st.timeRemaining == 0
}

func (s *Session) setMessage(message string, tone Tone) {
	s.st.message = message
	s.st.tone = tone
}

func (s *Session) emitLocked(t EventType) {
	select {
	case s.events <- Event{Type: t, Snapshot: s.snapshotLocked()}:
	default:
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Tables:          append([]int(nil), s.st.tables...),
		Score:           s.st.score,
		Attempted:       s.st.attempted,
		MaxQuestions:    MaxQuestions,
		TimeRemaining:   s.st.timeRemaining,
		TimerRunning:    s.st.timerRunning,
		Input:           s.st.input,
		AwaitingAdvance: s.st.awaitingAdvance,
		ResultsVisible:  s.st.resultsVisible,
		Message:         s.st.message,
		Tone:            s.st.tone,
	}

	if s.st.problem != nil {
		problem := *s.st.problem
		snap.Problem = &problem
	}

	if s.st.lastResult != nil {
		result := *s.st.lastResult
		snap.LastResult = &result
	}

	return snap
}
