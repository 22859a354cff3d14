package bolt

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/brk3/habitstats/internal/storage"
	"github.com/brk3/habitstats/pkg/habit"
	"go.etcd.io/bbolt"
)

const (
	rootBucket         = "users"
	apiKeysBucket      = "apikeys"
	habitsBucket       = "habits"
	logsBucket         = "logs"
	achievementsBucket = "achievements"
	defaultUserID      = "default"
)

type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{rootBucket, apiKeysBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// userBucket returns users/<userID>/<name>. In read-only transactions a
// missing bucket yields nil rather than an error.
func userBucket(tx *bbolt.Tx, userID, name string) (*bbolt.Bucket, error) {
	if userID == "" {
		userID = defaultUserID
	}
	users := tx.Bucket([]byte(rootBucket))
	if !tx.Writable() {
		user := users.Bucket([]byte(userID))
		if user == nil {
			return nil, nil
		}
		return user.Bucket([]byte(name)), nil
	}
	user, err := users.CreateBucketIfNotExists([]byte(userID))
	if err != nil {
		return nil, err
	}
	return user.CreateBucketIfNotExists([]byte(name))
}

// habitLogs returns users/<userID>/logs/<habitID>.
func habitLogs(tx *bbolt.Tx, userID, habitID string) (*bbolt.Bucket, error) {
	logs, err := userBucket(tx, userID, logsBucket)
	if err != nil || logs == nil {
		return nil, err
	}
	if !tx.Writable() {
		return logs.Bucket([]byte(habitID)), nil
	}
	return logs.CreateBucketIfNotExists([]byte(habitID))
}

func (s *Store) PutHabit(userID string, h habit.Habit) error {
	val, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode habit %s: %w", h.ID, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, userID, habitsBucket)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(h.ID), val)
	})
}

func (s *Store) GetHabit(userID, habitID string) (habit.Habit, error) {
	var h habit.Habit
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, userID, habitsBucket)
		if err != nil {
			return err
		}
		if bucket == nil {
			return storage.ErrNotFound
		}
		v := bucket.Get([]byte(habitID))
		if v == nil {
			return storage.ErrNotFound
		}
		return json.Unmarshal(v, &h)
	})
	return h, err
}

// ListHabits returns the user's habits ordered by their Order field, then by
// creation time.
func (s *Store) ListHabits(userID string) ([]habit.Habit, error) {
	out := []habit.Habit{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, userID, habitsBucket)
		if err != nil || bucket == nil {
			return err
		}
		return bucket.ForEach(func(_, v []byte) error {
			var h habit.Habit
			if err := json.Unmarshal(v, &h); err != nil {
				return err
			}
			out = append(out, h)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b habit.Habit) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

// DeleteHabit removes the habit and all of its logs.
func (s *Store) DeleteHabit(userID, habitID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		habits, err := userBucket(tx, userID, habitsBucket)
		if err != nil {
			return err
		}
		if habits.Get([]byte(habitID)) == nil {
			return storage.ErrNotFound
		}
		if err := habits.Delete([]byte(habitID)); err != nil {
			return err
		}
		logs, err := userBucket(tx, userID, logsBucket)
		if err != nil {
			return err
		}
		if logs.Bucket([]byte(habitID)) == nil {
			return nil
		}
		return logs.DeleteBucket([]byte(habitID))
	})
}

func (s *Store) PutLog(userID string, l habit.Log) error {
	val, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode log %s/%s: %w", l.HabitID, l.Day, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := habitLogs(tx, userID, l.HabitID)
		if err != nil {
			return err
		}
		// keyed by day, so a second log for the same day replaces the first
		return bucket.Put([]byte(l.Day), val)
	})
}

// ListLogs returns logs ordered by day. Day keys are canonical YYYY-MM-DD, so
// bbolt's byte order is chronological order.
func (s *Store) ListLogs(userID, habitID string, r storage.LogRange) ([]habit.Log, error) {
	out := []habit.Log{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := habitLogs(tx, userID, habitID)
		if err != nil || bucket == nil {
			return err
		}
		c := bucket.Cursor()
		k, v := c.First()
		if r.From != "" {
			k, v = c.Seek([]byte(r.From))
		}
		for ; k != nil; k, v = c.Next() {
			if !r.Contains(habit.Day(k)) {
				break
			}
			var l habit.Log
			if err := json.Unmarshal(v, &l); err != nil {
				return err
			}
			out = append(out, l)
		}
		return nil
	})
	return out, err
}

func (s *Store) DeleteLog(userID, habitID string, day habit.Day) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := habitLogs(tx, userID, habitID)
		if err != nil {
			return err
		}
		if bucket.Get([]byte(day)) == nil {
			return storage.ErrNotFound
		}
		return bucket.Delete([]byte(day))
	})
}

func (s *Store) GrantAchievements(userID string, as []habit.Achievement) ([]habit.Achievement, error) {
	var granted []habit.Achievement
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, userID, achievementsBucket)
		if err != nil {
			return err
		}
		for _, a := range as {
			if bucket.Get([]byte(a.ID)) != nil {
				continue
			}
			val, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("encode achievement %s: %w", a.ID, err)
			}
			if err := bucket.Put([]byte(a.ID), val); err != nil {
				return err
			}
			granted = append(granted, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return granted, nil
}

func (s *Store) ListAchievements(userID string) ([]habit.Achievement, error) {
	out := []habit.Achievement{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := userBucket(tx, userID, achievementsBucket)
		if err != nil || bucket == nil {
			return err
		}
		return bucket.ForEach(func(_, v []byte) error {
			var a habit.Achievement
			if err := json.Unmarshal(v, &a); err != nil {
				return err
			}
			out = append(out, a)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	// keys sort as strings ("streak_100" < "streak_3"), so order by threshold
	slices.SortFunc(out, func(a, b habit.Achievement) int { return a.Streak - b.Streak })
	return out, nil
}

func (s *Store) PutAPIKey(keyHash, userID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(apiKeysBucket)).Put([]byte(keyHash), []byte(userID))
	})
}

func (s *Store) GetAPIKey(keyHash string) (string, bool, error) {
	var userID string
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(apiKeysBucket)).Get([]byte(keyHash)); v != nil {
			userID = string(v)
		}
		return nil
	})
	return userID, userID != "", err
}

var _ storage.Store = (*Store)(nil)
