package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/letsssgooo/learnWithJasper/internal/domain/models"
)

// Ошибки хранилища
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// Storage определяет интерфейс для хранения пользователей и их истории.
type Storage interface {
	// GetUser возвращает пользователя по username.
	GetUser(ctx context.Context, username string) (models.UserRecord, error)

	// CreateUser сохраняет нового пользователя.
	CreateUser(ctx context.Context, user models.UserRecord) error

	// UpdateUser заменяет пользователя с тем же username.
	UpdateUser(ctx context.Context, user models.UserRecord) error

	// ListUsers возвращает всех пользователей в порядке регистрации.
	ListUsers(ctx context.Context) ([]models.UserRecord, error)
}

// Seed добавляет пользователей, которых еще нет в хранилище.
// Возвращает количество добавленных.
func Seed(ctx context.Context, st Storage, users []models.UserRecord) (int, error) {
	added := 0

	for _, user := range users {
		err := st.CreateUser(ctx, user)
		if errors.Is(err, ErrUserExists) {
			continue
		}
		if err != nil {
			return added, fmt.Errorf("cannot seed user %s: %w", user.Username, err)
		}
		added++
	}

	return added, nil
}
