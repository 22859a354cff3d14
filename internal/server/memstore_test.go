package server

import (
	"slices"
	"sync"

	"github.com/brk3/habitstats/internal/storage"
	"github.com/brk3/habitstats/pkg/habit"
)

type memStore struct {
	mu      sync.RWMutex
	habits  map[string]map[string]habit.Habit
	logs    map[string]map[string]map[habit.Day]habit.Log
	apiKeys map[string]string
	unlocks map[string]map[string]habit.Achievement
}

func newMemStore() *memStore {
	return &memStore{
		habits:  map[string]map[string]habit.Habit{},
		logs:    map[string]map[string]map[habit.Day]habit.Log{},
		apiKeys: map[string]string{},
		unlocks: map[string]map[string]habit.Achievement{},
	}
}

func (m *memStore) PutHabit(userID string, h habit.Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.habits[userID] == nil {
		m.habits[userID] = map[string]habit.Habit{}
	}
	m.habits[userID][h.ID] = h
	return nil
}

func (m *memStore) GetHabit(userID, habitID string) (habit.Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.habits[userID][habitID]
	if !ok {
		return habit.Habit{}, storage.ErrNotFound
	}
	return h, nil
}

func (m *memStore) ListHabits(userID string) ([]habit.Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []habit.Habit{}
	for _, h := range m.habits[userID] {
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b habit.Habit) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (m *memStore) DeleteHabit(userID, habitID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.habits[userID][habitID]; !ok {
		return storage.ErrNotFound
	}
	delete(m.habits[userID], habitID)
	delete(m.logs[userID], habitID)
	return nil
}

func (m *memStore) PutLog(userID string, l habit.Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.logs[userID] == nil {
		m.logs[userID] = map[string]map[habit.Day]habit.Log{}
	}
	if m.logs[userID][l.HabitID] == nil {
		m.logs[userID][l.HabitID] = map[habit.Day]habit.Log{}
	}
	m.logs[userID][l.HabitID][l.Day] = l
	return nil
}

func (m *memStore) ListLogs(userID, habitID string, r storage.LogRange) ([]habit.Log, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []habit.Log{}
	for d, l := range m.logs[userID][habitID] {
		if r.Contains(d) {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b habit.Log) int {
		if a.Day < b.Day {
			return -1
		}
		if a.Day > b.Day {
			return 1
		}
		return 0
	})
	return out, nil
}

func (m *memStore) DeleteLog(userID, habitID string, day habit.Day) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.logs[userID][habitID][day]; !ok {
		return storage.ErrNotFound
	}
	delete(m.logs[userID][habitID], day)
	return nil
}

func (m *memStore) GrantAchievements(userID string, as []habit.Achievement) ([]habit.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unlocks[userID] == nil {
		m.unlocks[userID] = map[string]habit.Achievement{}
	}
	var granted []habit.Achievement
	for _, a := range as {
		if _, ok := m.unlocks[userID][a.ID]; ok {
			continue
		}
		m.unlocks[userID][a.ID] = a
		granted = append(granted, a)
	}
	return granted, nil
}

func (m *memStore) ListAchievements(userID string) ([]habit.Achievement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []habit.Achievement{}
	for _, a := range m.unlocks[userID] {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b habit.Achievement) int { return a.Streak - b.Streak })
	return out, nil
}

func (m *memStore) PutAPIKey(keyHash, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.apiKeys[keyHash] = userID
	return nil
}

func (m *memStore) GetAPIKey(keyHash string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	userID, ok := m.apiKeys[keyHash]
	return userID, ok, nil
}

func (m *memStore) Close() error {
	return nil
}

var _ storage.Store = (*memStore)(nil)
