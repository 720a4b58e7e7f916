package quiz

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/learnWithJasper/internal/auth"
	"github.com/letsssgooo/learnWithJasper/internal/domain/models"
	"github.com/letsssgooo/learnWithJasper/internal/storage"
)

var testNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

// fakeTask - отложенная задача, которую тест запускает вручную.
type fakeTask struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
	owner   *fakeScheduler
}

func (t *fakeTask) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()

	active := !t.stopped && !t.fired
	t.stopped = true

	return active
}

// fakeScheduler копит задачи вместо реальных таймеров.
type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

func (f *fakeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	task := &fakeTask{delay: d, fn: fn, owner: f}
	f.tasks = append(f.tasks, task)

	return task
}

// fire запускает все неотмененные задачи.
func (f *fakeScheduler) fire() int {
	f.mu.Lock()
	tasks := f.tasks
	f.tasks = nil

	var ready []*fakeTask
	for _, task := range tasks {
		if !task.stopped && !task.fired {
			task.fired = true
			ready = append(ready, task)
		}
	}
	f.mu.Unlock()

	for _, task := range ready {
		task.fn()
	}

	return len(ready)
}

func (f *fakeScheduler) last() *fakeTask {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.tasks) == 0 {
		return nil
	}

	return f.tasks[len(f.tasks)-1]
}

type testEnv struct {
	session   *Session
	auth      *auth.Auth
	store     *storage.MemoryStorage
	scheduler *fakeScheduler
}

func newTestEnv(t *testing.T, login bool) *testEnv {
	t.Helper()

	st := storage.NewMemoryStorage(storage.SeedUsers(testNow)...)
	a := auth.NewAuth(st)
	if login {
		require.NoError(t, a.Login(context.Background(), "demo", "password"))
	}

	sched := &fakeScheduler{}
	s := NewSession(a, Options{
		Scheduler: sched,
		Rand:      rand.New(rand.NewSource(1)),
		Now:       func() time.Time { return testNow },
	})

	return &testEnv{session: s, auth: a, store: st, scheduler: sched}
}

// typeAnswer вводит число по цифрам.
func typeAnswer(t *testing.T, s *Session, n int) {
	t.Helper()

	for _, r := range strconv.Itoa(n) {
		require.NoError(t, s.EnterDigit(int(r-'0')))
	}
}

// answer отвечает на текущий пример правильно или нет.
func answer(t *testing.T, s *Session, correct bool) Verdict {
	t.Helper()

	snap := s.Snapshot()
	require.NotNil(t, snap.Problem)

	value := snap.Problem.CorrectAnswer
	if !correct {
		value++
	}
	typeAnswer(t, s, value)

	verdict, err := s.SubmitAnswer(context.Background())
	require.NoError(t, err)
	require.True(t, verdict.Accepted)

	return verdict
}

func TestNewSession_InitialState(t *testing.T) {
	env := newTestEnv(t, true)

	snap := env.session.Snapshot()
	assert.Equal(t, AllTables(), snap.Tables)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 0, snap.Attempted)
	assert.Equal(t, MaxQuestions, snap.MaxQuestions)
	assert.Equal(t, SessionSeconds, snap.TimeRemaining)
	assert.Equal(t, "5:00", snap.TimeLeft())
	assert.False(t, snap.TimerRunning)
	assert.Nil(t, snap.Problem)
	assert.Equal(t, "Let's begin!", snap.Message)
}

func TestGenerateProblem_Factors(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession([]int{3, 7}))

	seenSecond := make(map[int]bool)
	for i := 0; i < 500; i++ {
		require.NoError(t, env.session.GenerateProblem())

		p := env.session.Snapshot().Problem
		require.NotNil(t, p)
		assert.Contains(t, []int{3, 7}, p.Factor1)
		assert.GreaterOrEqual(t, p.Factor2, 1)
		assert.LessOrEqual(t, p.Factor2, MaxFactor)
		assert.Equal(t, p.Factor1*p.Factor2, p.CorrectAnswer)
		seenSecond[p.Factor2] = true
	}

	assert.Len(t, seenSecond, MaxFactor)
}

func TestGenerateProblem_StartsTimerAndClearsInput(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession(nil))
	require.NoError(t, env.session.EnterDigit(4))

	require.NoError(t, env.session.GenerateProblem())

	snap := env.session.Snapshot()
	assert.True(t, snap.TimerRunning)
	assert.Empty(t, snap.Input)
	assert.False(t, snap.ResultsVisible)
	assert.False(t, snap.AwaitingAdvance)
	assert.Equal(t, "Enter your answer below.", snap.Message)
}

func TestStartNewSession_Tables(t *testing.T) {
	env := newTestEnv(t, true)

	require.NoError(t, env.session.StartNewSession([]int{9, 4, 9}))
	assert.Equal(t, []int{4, 9}, env.session.Snapshot().Tables)

	// nil оставляет прежний выбор
	require.NoError(t, env.session.StartNewSession(nil))
	assert.Equal(t, []int{4, 9}, env.session.Snapshot().Tables)

	err := env.session.StartNewSession([]int{1, 5})
	assert.True(t, errors.Is(err, ErrInvalidTable))
	assert.Equal(t, []int{4, 9}, env.session.Snapshot().Tables)
}

func TestStartNewSession_NoTablesSelected(t *testing.T) {
	env := newTestEnv(t, true)

	err := env.session.StartNewSession([]int{})
	assert.True(t, errors.Is(err, ErrNoTablesSelected))

	snap := env.session.Snapshot()
	assert.Nil(t, snap.Problem)
	assert.False(t, snap.TimerRunning)
	assert.Equal(t, "Please select at least one table to start!", snap.Message)
	assert.Equal(t, ToneWarning, snap.Tone)
	assert.Equal(t, AllTables(), snap.Tables)
}

func TestStartNewSession_EmptyTablesKeepProgress(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession([]int{3, 7}))
	answer(t, env.session, true)

	err := env.session.StartNewSession([]int{})
	assert.True(t, errors.Is(err, ErrNoTablesSelected))

	snap := env.session.Snapshot()
	assert.Equal(t, []int{3, 7}, snap.Tables)
	assert.Equal(t, 1, snap.Score)
	assert.Equal(t, 1, snap.Attempted)
	assert.NotNil(t, snap.Problem)

	require.NoError(t, env.session.EndSessionEarly(context.Background()))

	user, ok := env.auth.CurrentUser()
	require.True(t, ok)
	require.Len(t, user.ScoreHistory, 1)
	assert.Equal(t, 1, user.ScoreHistory[0].Score)

	require.NoError(t, env.session.StartNewSession(nil))
	assert.Equal(t, []int{3, 7}, env.session.Tables())
}

func TestStartNewSession_ResetsProgress(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession(nil))

	answer(t, env.session, true)
	env.scheduler.fire()
	require.NoError(t, env.session.Tick(context.Background()))
	require.NoError(t, env.session.EnterDigit(1))

	require.NoError(t, env.session.StartNewSession(nil))

	snap := env.session.Snapshot()
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 0, snap.Attempted)
	assert.Equal(t, SessionSeconds, snap.TimeRemaining)
	assert.Empty(t, snap.Input)
	assert.NotNil(t, snap.Problem)
}

func TestEnterDigit_LengthCap(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession(nil))

	for _, d := range []int{0, 0, 0, 0, 1} {
		require.NoError(t, env.session.EnterDigit(d))
	}

	err := env.session.EnterDigit(2)
	assert.True(t, errors.Is(err, ErrAnswerTooLong))

	snap := env.session.Snapshot()
	assert.Equal(t, "00001", snap.Input)
	assert.Equal(t, "Answer too long!", snap.Message)
}

func TestEnterDigit_SixDigits(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession(nil))

	var errs []error
	for d := 1; d <= 6; d++ {
		errs = append(errs, env.session.EnterDigit(d))
	}

	for i := 0; i < 5; i++ {
		assert.NoError(t, errs[i])
	}
	assert.True(t, errors.Is(errs[5], ErrAnswerTooLong))
	assert.Equal(t, "12345", env.session.Snapshot().Input)
}

func TestEnterDigit_InvalidDigit(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession(nil))

	for _, d := range []int{-1, 10} {
		err := env.session.EnterDigit(d)
		assert.True(t, errors.Is(err, ErrInvalidDigit))
	}
	assert.Empty(t, env.session.Snapshot().Input)
}

func TestInput_LockedWhileAwaitingAdvance(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession(nil))

	answer(t, env.session, true)
	require.True(t, env.session.Snapshot().AwaitingAdvance)

	require.NoError(t, env.session.EnterDigit(7))
	env.session.ClearInput()

	snap := env.session.Snapshot()
	assert.Equal(t, strconv.Itoa(snap.Problem.CorrectAnswer), snap.Input)
	assert.Equal(t, "CORRECT! 🎉", snap.Message)
}

func TestClearInput(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession(nil))
	require.NoError(t, env.session.EnterDigit(4))
	require.NoError(t, env.session.EnterDigit(2))

	env.session.ClearInput()

	snap := env.session.Snapshot()
	assert.Empty(t, snap.Input)
	assert.Equal(t, "Input cleared.", snap.Message)
}

func TestSubmitAnswer_Correct(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession(nil))

	verdict := answer(t, env.session, true)
	assert.True(t, verdict.Correct)
	assert.False(t, verdict.Final)

	snap := env.session.Snapshot()
	assert.Equal(t, 1, snap.Score)
	assert.Equal(t, 1, snap.Attempted)
	assert.True(t, snap.AwaitingAdvance)
	assert.True(t, snap.TimerRunning)
	assert.Equal(t, ToneSuccess, snap.Tone)

	task := env.scheduler.last()
	require.NotNil(t, task)
	assert.Equal(t, DefaultAdvanceDelay, task.delay)

	require.Equal(t, 1, env.scheduler.fire())

	snap = env.session.Snapshot()
	assert.False(t, snap.AwaitingAdvance)
	assert.Empty(t, snap.Input)
	assert.NotNil(t, snap.Problem)
	assert.Equal(t, 1, snap.Score)
}

func TestSubmitAnswer_Incorrect(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession(nil))

	correctAnswer := env.session.Snapshot().Problem.CorrectAnswer
	verdict := answer(t, env.session, false)
	assert.False(t, verdict.Correct)
	assert.Equal(t, correctAnswer, verdict.CorrectAnswer)

	snap := env.session.Snapshot()
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 1, snap.Attempted)
	assert.Equal(t, "INCORRECT. The answer was "+strconv.Itoa(correctAnswer)+".", snap.Message)
	assert.Equal(t, ToneError, snap.Tone)
}

func TestSubmitAnswer_NoOps(t *testing.T) {
	env := newTestEnv(t, true)

	// примера еще нет
	require.NoError(t, env.session.EnterDigit(5))
	verdict, err := env.session.SubmitAnswer(context.Background())
	require.NoError(t, err)
	assert.False(t, verdict.Accepted)

	// пустой ввод
	require.NoError(t, env.session.StartNewSession(nil))
	verdict, err = env.session.SubmitAnswer(context.Background())
	require.NoError(t, err)
	assert.False(t, verdict.Accepted)

	// повторная отправка во время паузы
	answer(t, env.session, true)
	verdict, err = env.session.SubmitAnswer(context.Background())
	require.NoError(t, err)
	assert.False(t, verdict.Accepted)

	assert.Equal(t, 1, env.session.Snapshot().Attempted)
	assert.Len(t, env.scheduler.tasks, 1)
}

func TestSession_CompletedRoundIsSaved(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession([]int{2, 5}))

	for i := 0; i < MaxQuestions; i++ {
		verdict := answer(t, env.session, i < 7)
		assert.Equal(t, i == MaxQuestions-1, verdict.Final)

		if verdict.Final {
			snap := env.session.Snapshot()
			assert.False(t, snap.TimerRunning)
			assert.True(t, snap.AwaitingAdvance)
			assert.False(t, snap.ResultsVisible)
		}

		require.Equal(t, 1, env.scheduler.fire())
	}

	snap := env.session.Snapshot()
	assert.True(t, snap.ResultsVisible)
	assert.Nil(t, snap.Problem)
	assert.Equal(t, 0, snap.Attempted)
	assert.Equal(t, []int{2, 5}, snap.Tables)
	assert.Equal(t, "Quiz finished! Review your performance.", snap.Message)
	require.NotNil(t, snap.LastResult)

	want := models.SessionResult{Score: 7, Attempted: 10, Date: "Oct 19, 2026", Completed: true, TimedOut: false}
	assert.Equal(t, want, *snap.LastResult)

	user, err := env.store.GetUser(context.Background(), "demo")
	require.NoError(t, err)
	require.Len(t, user.ScoreHistory, 1)
	assert.Equal(t, want, user.ScoreHistory[0])
}

func TestSession_HistoryNewestFirst(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(t, env.auth.Login(context.Background(), "mathwiz", "pass"))
	require.NoError(t, env.session.StartNewSession(nil))

	answer(t, env.session, true)
	env.scheduler.fire()
	require.NoError(t, env.session.EndSessionEarly(context.Background()))

	history := env.auth.History()
	require.Len(t, history, 2)
	assert.Equal(t, models.SessionResult{Score: 1, Attempted: 1, Date: "Oct 19, 2026"}, history[0])
	assert.Equal(t, 10, history[1].Score)
	assert.Equal(t, models.OutcomeStoppedEarly, history[0].Outcome())
}

func TestSubmitAnswer_CountersInvariant(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession(nil))

	rnd := rand.New(rand.NewSource(42))
	prevAttempted := 0

	for i := 0; i < 3*MaxQuestions; i++ {
		snap := env.session.Snapshot()
		if snap.ResultsVisible {
			break
		}

		if snap.Problem != nil && !snap.AwaitingAdvance {
			typeAnswer(t, env.session, snap.Problem.CorrectAnswer+rnd.Intn(2))
			_, err := env.session.SubmitAnswer(context.Background())
			require.NoError(t, err)
		}

		snap = env.session.Snapshot()
		assert.GreaterOrEqual(t, snap.Attempted, prevAttempted)
		assert.LessOrEqual(t, snap.Attempted, MaxQuestions)
		assert.LessOrEqual(t, snap.Score, snap.Attempted)
		prevAttempted = snap.Attempted

		env.scheduler.fire()
	}

	assert.True(t, env.session.Snapshot().ResultsVisible)
}

func TestTick_CountsDown(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	// таймер не запущен
	require.NoError(t, env.session.Tick(ctx))
	assert.Equal(t, SessionSeconds, env.session.Snapshot().TimeRemaining)

	require.NoError(t, env.session.StartNewSession(nil))
	for i := 0; i < 61; i++ {
		require.NoError(t, env.session.Tick(ctx))
	}

	snap := env.session.Snapshot()
	assert.Equal(t, SessionSeconds-61, snap.TimeRemaining)
	assert.Equal(t, "3:59", snap.TimeLeft())
}

func TestTick_TimeoutSavesSession(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	require.NoError(t, env.session.StartNewSession(nil))

	for _, correct := range []bool{true, false, true} {
		answer(t, env.session, correct)
		env.scheduler.fire()
	}

	for i := 0; i < SessionSeconds+5; i++ {
		require.NoError(t, env.session.Tick(ctx))
	}

	snap := env.session.Snapshot()
	assert.True(t, snap.ResultsVisible)
	assert.False(t, snap.TimerRunning)
	assert.Equal(t, "Time's up! Check your results.", snap.Message)
	require.NotNil(t, snap.LastResult)

	want := models.SessionResult{Score: 2, Attempted: 3, Date: "Oct 19, 2026", Completed: false, TimedOut: true}
	assert.Equal(t, want, *snap.LastResult)

	history := env.auth.History()
	require.Len(t, history, 1)
	assert.Equal(t, want, history[0])
	assert.Equal(t, models.OutcomeTimedOut, history[0].Outcome())
}

func TestTick_TimeoutWithoutAttemptsIsSaved(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	require.NoError(t, env.session.StartNewSession(nil))

	for i := 0; i < SessionSeconds; i++ {
		require.NoError(t, env.session.Tick(ctx))
	}

	history := env.auth.History()
	require.Len(t, history, 1)
	assert.Equal(t, 0, history[0].Attempted)
	assert.True(t, history[0].TimedOut)
}

func TestTick_TimeoutWhileAwaitingAdvance(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	require.NoError(t, env.session.StartNewSession(nil))

	for i := 0; i < SessionSeconds-1; i++ {
		require.NoError(t, env.session.Tick(ctx))
	}

	answer(t, env.session, true)
	require.NoError(t, env.session.Tick(ctx))

	// пока ждем следующий пример, итоги не сохраняются
	snap := env.session.Snapshot()
	assert.Equal(t, 0, snap.TimeRemaining)
	assert.False(t, snap.ResultsVisible)
	assert.Empty(t, env.auth.History())

	// продолжение видит нулевое время и сохраняет сессию как истекшую
	env.scheduler.fire()

	history := env.auth.History()
	require.Len(t, history, 1)
	assert.Equal(t, models.SessionResult{Score: 1, Attempted: 1, Date: "Oct 19, 2026", TimedOut: true}, history[0])
}

// drainEvents забирает накопившиеся события без ожидания.
func drainEvents(s *Session) []EventType {
	var types []EventType
	for {
		select {
		case event := <-s.Events():
			types = append(types, event.Type)
		default:
			return types
		}
	}
}

func TestTick_TimeUpEvent(t *testing.T) {
	testCases := []struct {
		name       string
		login      bool
		wantTimeUp bool
	}{
		{name: "logged in", login: true, wantTimeUp: true},
		{name: "nobody logged in", login: false, wantTimeUp: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, tc.login)
			ctx := context.Background()
			require.NoError(t, env.session.StartNewSession(nil))

			var types []EventType
			for i := 0; i < SessionSeconds; i++ {
				require.NoError(t, env.session.Tick(ctx))
				types = append(types, drainEvents(env.session)...)
			}

			assert.Equal(t, tc.wantTimeUp, slices.Contains(types, EventTypeTimeUp))
			assert.Equal(t, tc.wantTimeUp, slices.Contains(types, EventTypeResults))
		})
	}
}

func TestTick_WithoutUserLocksInput(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	require.NoError(t, env.session.StartNewSession(nil))

	for i := 0; i < SessionSeconds; i++ {
		require.NoError(t, env.session.Tick(ctx))
	}

	snap := env.session.Snapshot()
	assert.Equal(t, 0, snap.TimeRemaining)
	assert.False(t, snap.TimerRunning)
	assert.False(t, snap.ResultsVisible)

	require.NoError(t, env.session.EnterDigit(3))
	assert.Empty(t, env.session.Snapshot().Input)
}

func TestSaveAndShowResults_NothingToSave(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession(nil))

	err := env.session.SaveAndShowResults(context.Background(), false)
	assert.True(t, errors.Is(err, ErrNothingToSave))

	snap := env.session.Snapshot()
	assert.False(t, snap.ResultsVisible)
	assert.NotNil(t, snap.Problem)
	assert.Equal(t, "No attempts recorded to save.", snap.Message)
	assert.Empty(t, env.auth.History())
}

func TestSaveAndShowResults_NotLoggedIn(t *testing.T) {
	env := newTestEnv(t, false)
	require.NoError(t, env.session.StartNewSession(nil))
	answer(t, env.session, true)
	env.scheduler.fire()

	err := env.session.SaveAndShowResults(context.Background(), false)
	require.NoError(t, err)

	snap := env.session.Snapshot()
	assert.False(t, snap.ResultsVisible)
	assert.Equal(t, 1, snap.Attempted)
}

func TestEndSessionEarly(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	require.NoError(t, env.session.StartNewSession(nil))

	err := env.session.EndSessionEarly(ctx)
	assert.True(t, errors.Is(err, ErrNothingToSave))

	answer(t, env.session, false)
	require.NoError(t, env.session.EndSessionEarly(ctx))

	snap := env.session.Snapshot()
	assert.True(t, snap.ResultsVisible)
	require.NotNil(t, snap.LastResult)
	assert.Equal(t, models.OutcomeStoppedEarly, snap.LastResult.Outcome())

	// продолжение от прерванного прохождения ничего не делает
	assert.Equal(t, 0, env.scheduler.fire())
	assert.True(t, env.session.Snapshot().ResultsVisible)

	err = env.session.EndSessionEarly(ctx)
	assert.True(t, errors.Is(err, ErrNothingToSave))
	assert.Len(t, env.auth.History(), 1)
}

func TestLogout_SavesAndCancelsContinuation(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	require.NoError(t, env.session.StartNewSession(nil))

	answer(t, env.session, true)
	task := env.scheduler.last()
	require.NotNil(t, task)

	require.NoError(t, env.session.Logout(ctx))
	assert.True(t, task.stopped)
	assert.False(t, env.auth.IsLoggedIn())

	// даже если таймер уже успел сработать, продолжение видит чужое прохождение
	task.fn()

	snap := env.session.Snapshot()
	assert.Nil(t, snap.Problem)
	assert.False(t, snap.AwaitingAdvance)
	assert.False(t, snap.ResultsVisible)
	assert.Equal(t, AllTables(), snap.Tables)
	assert.Equal(t, "You have been logged out.", snap.Message)

	user, err := env.store.GetUser(ctx, "demo")
	require.NoError(t, err)
	require.Len(t, user.ScoreHistory, 1)
	assert.Equal(t, 1, user.ScoreHistory[0].Score)
}

func TestLogout_WithoutProgress(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession(nil))

	require.NoError(t, env.session.Logout(context.Background()))

	assert.False(t, env.auth.IsLoggedIn())
	user, err := env.store.GetUser(context.Background(), "demo")
	require.NoError(t, err)
	assert.Empty(t, user.ScoreHistory)
}

func TestReset(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession([]int{6}))
	answer(t, env.session, true)

	env.session.Reset()

	snap := env.session.Snapshot()
	assert.Equal(t, AllTables(), snap.Tables)
	assert.Equal(t, 0, snap.Attempted)
	assert.Nil(t, snap.Problem)
	assert.Equal(t, 0, env.scheduler.fire())
}

// failingAccount не может сохранить пользователя.
type failingAccount struct{}

func (failingAccount) CurrentUser() (models.UserRecord, bool) {
	return models.UserRecord{Username: "demo"}, true
}

func (failingAccount) UpdateUser(context.Context, models.UserRecord) error {
	return errors.New("disk is full")
}

func (failingAccount) Logout() {}

func TestSaveAndShowResults_UpdateFails(t *testing.T) {
	sched := &fakeScheduler{}
	s := NewSession(failingAccount{}, Options{Scheduler: sched, Rand: rand.New(rand.NewSource(3))})
	require.NoError(t, s.StartNewSession(nil))
	answer(t, s, true)
	sched.fire()

	err := s.SaveAndShowResults(context.Background(), false)
	require.Error(t, err)

	snap := s.Snapshot()
	assert.False(t, snap.ResultsVisible)
	assert.Equal(t, 1, snap.Attempted)
	assert.Equal(t, ToneError, snap.Tone)
}

func TestEvents(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	require.NoError(t, env.session.StartNewSession(nil))

	event := <-env.session.Events()
	assert.Equal(t, EventTypeProblem, event.Type)
	assert.NotNil(t, event.Snapshot.Problem)

	require.NoError(t, env.session.Tick(ctx))
	event = <-env.session.Events()
	assert.Equal(t, EventTypeTick, event.Type)
	assert.Equal(t, SessionSeconds-1, event.Snapshot.TimeRemaining)

	answer(t, env.session, true)
	require.NoError(t, env.session.EndSessionEarly(ctx))
	event = <-env.session.Events()
	assert.Equal(t, EventTypeResults, event.Type)
	assert.True(t, event.Snapshot.ResultsVisible)
}

func TestEvents_DoNotBlock(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.session.StartNewSession(nil))

	for i := 0; i < 2*MaxCountOfEvents; i++ {
		require.NoError(t, env.session.Tick(context.Background()))
	}

	assert.Len(t, env.session.Events(), MaxCountOfEvents)
}

func TestRun_TicksUntilCancel(t *testing.T) {
	st := storage.NewMemoryStorage(storage.SeedUsers(testNow)...)
	a := auth.NewAuth(st)
	s := NewSession(a, Options{TickInterval: time.Millisecond})
	require.NoError(t, s.StartNewSession(nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return s.Snapshot().TimeRemaining < SessionSeconds
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "5:00", FormatTime(300))
	assert.Equal(t, "0:09", FormatTime(9))
	assert.Equal(t, "1:05", FormatTime(65))
	assert.Equal(t, "0:00", FormatTime(-3))
}
