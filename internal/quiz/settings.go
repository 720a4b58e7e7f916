package quiz

import (
	"fmt"
	"slices"
)

// AllTables возвращает все таблицы от 2 до 12.
func AllTables() []int {
	tables := make([]int, 0, MaxTable-MinTable+1)
	for n := MinTable; n <= MaxTable; n++ {
		tables = append(tables, n)
	}

	return tables
}

// Tables возвращает выбранные таблицы по возрастанию.
func (s *Session) Tables() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]int(nil), s.st.tables...)
}

// ToggleTable добавляет или убирает таблицу n из выбора.
// Последнюю выбранную таблицу убрать нельзя.
func (s *Session) ToggleTable(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < MinTable || n > MaxTable {
		s.setMessage(msgInvalidTable, ToneWarning)
		return fmt.Errorf("%w: %d", ErrInvalidTable, n)
	}

	i, found := slices.BinarySearch(s.st.tables, n)
	if found {
		if len(s.st.tables) == 1 {
			s.setMessage(msgKeepOneTable, ToneError)
			return ErrMustKeepOneTable
		}

		s.st.tables = slices.Delete(slices.Clone(s.st.tables), i, i+1)
	} else {
		s.st.tables = slices.Insert(slices.Clone(s.st.tables), i, n)
	}

	s.setMessage(msgTablesUpdated, ToneInfo)

	return nil
}

// normalizeTables проверяет диапазон, убирает повторы и сортирует.
func normalizeTables(tables []int) ([]int, error) {
	normalized := make([]int, 0, len(tables))
	for _, n := range tables {
		if n < MinTable || n > MaxTable {
			return nil, fmt.Errorf("%w: %d", ErrInvalidTable, n)
		}
		normalized = append(normalized, n)
	}

	slices.Sort(normalized)

	return slices.Compact(normalized), nil
}
