package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/letsssgooo/learnWithJasper/internal/domain/models"
	"github.com/letsssgooo/learnWithJasper/internal/storage"
)

// codeUniqueViolation - код ошибки postgres при нарушении уникальности.
const codeUniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username     TEXT PRIMARY KEY,
	password     TEXT NOT NULL,
	display_name TEXT NOT NULL,
	email        TEXT NOT NULL DEFAULT '',
	birthday     DATE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS session_results (
	id        UUID PRIMARY KEY,
	username  TEXT NOT NULL REFERENCES users (username),
	position  INT NOT NULL,
	score     INT NOT NULL CHECK (score >= 0),
	attempted INT NOT NULL CHECK (attempted >= score),
	played_on TEXT NOT NULL,
	completed BOOLEAN NOT NULL,
	timed_out BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS session_results_username_idx ON session_results (username, position);
`

// Storage реализует storage.Storage поверх PostgreSQL.
type Storage struct {
	pool *pgxpool.Pool
}

// NewStorage подключается к базе по dsn.
func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &Storage{pool: pool}, nil
}

// Migrate создает таблицы, если их еще нет.
func (s *Storage) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	return nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() {
	s.pool.Close()
}

// GetUser возвращает пользователя по username вместе с историей.
func (s *Storage) GetUser(ctx context.Context, username string) (models.UserRecord, error) {
	query := `
	SELECT username, password, display_name, email, birthday, created_at
	FROM users WHERE username = $1
	`

	user, err := scanUser(s.pool.QueryRow(ctx, query, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.UserRecord{}, fmt.Errorf("%w: %s", storage.ErrUserNotFound, username)
	}
	if err != nil {
		return models.UserRecord{}, err
	}

	history, err := s.loadHistory(ctx, username)
	if err != nil {
		return models.UserRecord{}, err
	}
	user.ScoreHistory = history[username]
	if user.ScoreHistory == nil {
		user.ScoreHistory = []models.SessionResult{}
	}

	return user, nil
}

// CreateUser сохраняет нового пользователя и его историю.
func (s *Storage) CreateUser(ctx context.Context, user models.UserRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
	INSERT INTO users (username, password, display_name, email, birthday, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = tx.Exec(ctx, query, user.Username, user.Password, user.DisplayName, user.Email, user.Birthday, createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return fmt.Errorf("%w: %s", storage.ErrUserExists, user.Username)
		}

		return err
	}

	if err = insertHistory(ctx, tx, user.Username, user.ScoreHistory); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateUser заменяет данные пользователя и его историю.
func (s *Storage) UpdateUser(ctx context.Context, user models.UserRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `
	UPDATE users SET password = $1, display_name = $2, email = $3, birthday = $4
	WHERE username = $5
	`

	tag, err := tx.Exec(ctx, query, user.Password, user.DisplayName, user.Email, user.Birthday, user.Username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", storage.ErrUserNotFound, user.Username)
	}

	_, err = tx.Exec(ctx, `DELETE FROM session_results WHERE username = $1`, user.Username)
	if err != nil {
		return err
	}

	if err = insertHistory(ctx, tx, user.Username, user.ScoreHistory); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListUsers возвращает всех пользователей в порядке регистрации.
func (s *Storage) ListUsers(ctx context.Context) ([]models.UserRecord, error) {
	query := `
	SELECT username, password, display_name, email, birthday, created_at
	FROM users ORDER BY created_at, username
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.UserRecord
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	history, err := s.loadHistory(ctx, "")
	if err != nil {
		return nil, err
	}

	for i := range users {
		users[i].ScoreHistory = history[users[i].Username]
		if users[i].ScoreHistory == nil {
			users[i].ScoreHistory = []models.SessionResult{}
		}
	}

	return users, nil
}

// loadHistory загружает историю одного пользователя или всех, если username пустой.
func (s *Storage) loadHistory(ctx context.Context, username string) (map[string][]models.SessionResult, error) {
	query := `
	SELECT username, score, attempted, played_on, completed, timed_out
	FROM session_results
	WHERE $1 = '' OR username = $1
	ORDER BY username, position
	`

	rows, err := s.pool.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make(map[string][]models.SessionResult)
	for rows.Next() {
		var (
			owner  string
			result models.SessionResult
		)

		err = rows.Scan(&owner, &result.Score, &result.Attempted, &result.Date, &result.Completed, &result.TimedOut)
		if err != nil {
			return nil, err
		}

		history[owner] = append(history[owner], result)
	}

	return history, rows.Err()
}

func insertHistory(ctx context.Context, tx pgx.Tx, username string, history []models.SessionResult) error {
	query := `
	INSERT INTO session_results (id, username, position, score, attempted, played_on, completed, timed_out)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for position, result := range history {
		_, err := tx.Exec(ctx, query,
			uuid.NewString(),
			username,
			position,
			result.Score,
			result.Attempted,
			result.Date,
			result.Completed,
			result.TimedOut,
		)
		if err != nil {
			return fmt.Errorf("insert session result: %w", err)
		}
	}

	return nil
}

func scanUser(row pgx.Row) (models.UserRecord, error) {
	var user models.UserRecord

	err := row.Scan(&user.Username, &user.Password, &user.DisplayName, &user.Email, &user.Birthday, &user.CreatedAt)
	if err != nil {
		return models.UserRecord{}, err
	}

	return user, nil
}
