package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/letsssgooo/learnWithJasper/internal/domain/models"
)

// MemoryStorage реализует Storage в памяти процесса.
type MemoryStorage struct {
	users []models.UserRecord
	index map[string]int // ключ - username
	mu    sync.RWMutex
}

// NewMemoryStorage создаёт новый MemoryStorage с переданными пользователями.
func NewMemoryStorage(users ...models.UserRecord) *MemoryStorage {
	s := &MemoryStorage{
		users: make([]models.UserRecord, 0, len(users)),
		index: make(map[string]int, len(users)),
	}

	for _, user := range users {
		if _, ok := s.index[user.Username]; ok {
			continue
		}

		s.index[user.Username] = len(s.users)
		s.users = append(s.users, user.Clone())
	}

	return s
}

// GetUser возвращает пользователя по username.
func (s *MemoryStorage) GetUser(_ context.Context, username string) (models.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[username]
	if !ok {
		return models.UserRecord{}, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}

	return s.users[i].Clone(), nil
}

// CreateUser сохраняет нового пользователя.
func (s *MemoryStorage) CreateUser(_ context.Context, user models.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[user.Username]; ok {
		return fmt.Errorf("%w: %s", ErrUserExists, user.Username)
	}

	s.index[user.Username] = len(s.users)
	s.users = append(s.users, user.Clone())

	return nil
}

// UpdateUser заменяет пользователя с тем же username.
func (s *MemoryStorage) UpdateUser(_ context.Context, user models.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[user.Username]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, user.Username)
	}

	s.users[i] = user.Clone()

	return nil
}

// ListUsers возвращает всех пользователей в порядке регистрации.
func (s *MemoryStorage) ListUsers(_ context.Context) ([]models.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.UserRecord, len(s.users))
	for i, user := range s.users {
		users[i] = user.Clone()
	}

	return users, nil
}

// SeedUsers возвращает демонстрационных пользователей.
// now задает "сегодня" для дат в истории.
func SeedUsers(now time.Time) []models.UserRecord {
	return []models.UserRecord{
		{
			Username:     "demo",
			Password:     "password",
			DisplayName:  "Demo User",
			ScoreHistory: []models.SessionResult{},
			CreatedAt:    now,
		},
		{
			Username:    "mathwiz",
			Password:    "pass",
			DisplayName: "Math Wiz",
			ScoreHistory: []models.SessionResult{
				{Score: 10, Attempted: 12, Date: models.FormatDate(now.AddDate(0, 0, -1))},
			},
			CreatedAt: now,
		},
		{
			Username:    "quickmaths",
			Password:    "fast",
			DisplayName: "Quick Maths",
			ScoreHistory: []models.SessionResult{
				{Score: 25, Attempted: 28, Date: models.FormatDate(now)},
			},
			CreatedAt: now,
		},
	}
}
