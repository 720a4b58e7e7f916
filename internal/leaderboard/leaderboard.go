package leaderboard

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/letsssgooo/learnWithJasper/internal/domain/models"
	"github.com/letsssgooo/learnWithJasper/internal/storage"
)

// MaxEntries - сколько игроков попадает в таблицу лидеров.
const MaxEntries = 10

// Entry - запись в таблице лидеров.
type Entry struct {
	Rank           int
	Username       string
	DisplayName    string
	TotalScore     int
	TotalAttempted int
	WinRate        int
}

// Board считает таблицу лидеров по хранилищу.
type Board struct {
	st storage.Storage
}

// NewBoard создаёт таблицу лидеров над хранилищем st.
func NewBoard(st storage.Storage) *Board {
	return &Board{st: st}
}

// Compute пересчитывает таблицу лидеров по всем пользователям.
func (b *Board) Compute(ctx context.Context) ([]Entry, error) {
	users, err := b.st.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot list users: %w", err)
	}

	return Compute(users), nil
}

// Compute ранжирует пользователей по сумме очков, затем по проценту верных ответов.
func Compute(users []models.UserRecord) []Entry {
	entries := make([]Entry, 0, len(users))

	for _, user := range users {
		summary := Summarize(user.ScoreHistory)

		entries = append(entries, Entry{
			Username:       user.Username,
			DisplayName:    user.DisplayName,
			TotalScore:     summary.TotalScore,
			TotalAttempted: summary.TotalAttempted,
			WinRate:        summary.Accuracy,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}

		return entries[i].WinRate > entries[j].WinRate
	})

	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}

// Summary - сводка по истории одного пользователя.
type Summary struct {
	TotalScore     int
	TotalAttempted int
	Accuracy       int
	Sessions       int
}

// Summarize считает сводку по истории.
func Summarize(history []models.SessionResult) Summary {
	summary := Summary{Sessions: len(history)}

	for _, session := range history {
		summary.TotalScore += session.Score
		summary.TotalAttempted += session.Attempted
	}
	summary.Accuracy = models.Percent(summary.TotalScore, summary.TotalAttempted)

	return summary
}

// ExportCSV экспортирует таблицу лидеров в CSV.
func ExportCSV(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	_ = w.Write([]string{
		"Rank",
		"Username",
		"DisplayName",
		"TotalScore",
		"TotalAttempted",
		"WinRate",
	})

	for _, entry := range entries {
		_ = w.Write([]string{
			strconv.Itoa(entry.Rank),
			entry.Username,
			entry.DisplayName,
			strconv.Itoa(entry.TotalScore),
			strconv.Itoa(entry.TotalAttempted),
			strconv.Itoa(entry.WinRate),
		})
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush buffer: %w", err)
	}

	return buf.Bytes(), nil
}
