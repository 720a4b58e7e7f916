package auth

import (
	"context"
	"errors"

	"github.com/letsssgooo/learnWithJasper/internal/domain/models"
)

// Session определяет интерфейс для авторизации
type Session interface {
	// Login авторизует пользователя по username и паролю
	Login(ctx context.Context, username, password string) error

	// Register создает нового пользователя и сразу авторизует его
	Register(ctx context.Context, req RegisterRequest) error

	// Logout сбрасывает текущего пользователя
	Logout()

	// UpdateUser заменяет пользователя в хранилище и делает его текущим
	UpdateUser(ctx context.Context, user models.UserRecord) error

	// CurrentUser возвращает текущего пользователя. false, если никто не вошел.
	CurrentUser() (models.UserRecord, bool)

	// IsLoggedIn сообщает, вошел ли пользователь
	IsLoggedIn() bool
}

// RegisterRequest содержит данные формы регистрации.
// Email, Birthday и ConfirmPassword необязательны.
type RegisterRequest struct {
	Username        string
	Password        string
	ConfirmPassword string
	DisplayName     string
	Email           string
	Birthday        string // YYYY-MM-DD
}

// Ошибки авторизации
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrValidation         = errors.New("validation error")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)
