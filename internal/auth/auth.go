package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/letsssgooo/learnWithJasper/internal/domain/models"
	"github.com/letsssgooo/learnWithJasper/internal/storage"
)

// Auth реализует Session поверх хранилища пользователей.
type Auth struct {
	st      storage.Storage
	current *models.UserRecord
	now     func() time.Time
	mu      sync.Mutex
}

// NewAuth создаёт сессию авторизации над хранилищем st.
func NewAuth(st storage.Storage) *Auth {
	return &Auth{
		st:  st,
		now: time.Now,
	}
}

// Login авторизует пользователя при точном совпадении username и пароля.
func (a *Auth) Login(ctx context.Context, username, password string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	user, err := a.st.GetUser(ctx, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("cannot load user: %w", err)
	}

	if user.Password != password {
		return ErrInvalidCredentials
	}

	a.current = &user
	slog.Info("user logged in", "username", username)

	return nil
}

// Register создает пользователя с пустой историей и авторизует его.
func (a *Auth) Register(ctx context.Context, req RegisterRequest) error {
	user, err := ParseRegisterRequest(req, a.now())
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	err = a.st.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrUserExists) {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("cannot create user: %w", err)
	}

	a.current = &user
	slog.Info("user registered", "username", user.Username)

	return nil
}

// Logout сбрасывает текущего пользователя. Хранилище не меняется.
func (a *Auth) Logout() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current != nil {
		slog.Info("user logged out", "username", a.current.Username)
	}
	a.current = nil
}

// UpdateUser заменяет пользователя в хранилище и делает его текущим.
func (a *Auth) UpdateUser(ctx context.Context, user models.UserRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.st.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("cannot update user: %w", err)
	}

	updated := user.Clone()
	a.current = &updated

	return nil
}

// CurrentUser возвращает копию текущего пользователя.
func (a *Auth) CurrentUser() (models.UserRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil {
		return models.UserRecord{}, false
	}

	return a.current.Clone(), true
}

// IsLoggedIn сообщает, вошел ли пользователь.
func (a *Auth) IsLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.current != nil
}

// History возвращает копию истории текущего пользователя.
func (a *Auth) History() []models.SessionResult {
	user, ok := a.CurrentUser()
	if !ok {
		return nil
	}

	return user.ScoreHistory
}
