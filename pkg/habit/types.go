package habit

import "time"

type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusPartial   Status = "partial"
)

func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusSkipped, StatusPartial:
		return true
	}
	return false
}

type Category string

const (
	CategoryHealth       Category = "health"
	CategoryFitness      Category = "fitness"
	CategoryLearning     Category = "learning"
	CategoryMindfulness  Category = "mindfulness"
	CategoryProductivity Category = "productivity"
	CategorySocial       Category = "social"
	CategoryCreativity   Category = "creativity"
	CategoryFinance      Category = "finance"
	CategoryOther        Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryHealth, CategoryFitness, CategoryLearning, CategoryMindfulness,
		CategoryProductivity, CategorySocial, CategoryCreativity, CategoryFinance, CategoryOther:
		return true
	}
	return false
}

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

const (
	MinIntensity = 0
	MaxIntensity = 4
	MinMood      = 1
	MaxMood      = 5
)

type Habit struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Frequency   Frequency  `json:"frequency"`
	TargetDays  []int      `json:"target_days,omitempty"`
	GoalTarget  int        `json:"goal_target"`
	Color       string     `json:"color"`
	Icon        string     `json:"icon"`
	Category    Category   `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`
	Archived    bool       `json:"archived"`
	Order       int        `json:"order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreatedOn is the habit's first day in loc's calendar.
func (h Habit) CreatedOn(loc *time.Location) Day {
	return Today(loc, h.CreatedAt)
}

// ApplyDefaults fills the optional display fields the way a freshly created
// habit expects them.
func (h *Habit) ApplyDefaults() {
	if h.Frequency == "" {
		h.Frequency = FrequencyDaily
	}
	if len(h.TargetDays) == 0 {
		h.TargetDays = []int{0, 1, 2, 3, 4, 5, 6}
	}
	if h.GoalTarget == 0 {
		h.GoalTarget = 1
	}
	if h.Color == "" {
		h.Color = "#6366f1"
	}
	if h.Icon == "" {
		h.Icon = "⭐"
	}
	if h.Category == "" {
		h.Category = CategoryOther
	}
	if h.Difficulty == "" {
		h.Difficulty = DifficultyMedium
	}
}

// Log records what happened to one habit on one day. There is at most one
// log per (HabitID, Day).
type Log struct {
	HabitID   string    `json:"habit_id"`
	UserID    string    `json:"user_id,omitempty"`
	Day       Day       `json:"date"`
	Status    Status    `json:"status"`
	Intensity int       `json:"intensity"`
	Value     *float64  `json:"value,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Mood      int       `json:"mood,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l Log) Completed() bool { return l.Status == StatusCompleted }

type Streaks struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

type HeatmapCell struct {
	Status    Status `json:"status"`
	Intensity int    `json:"intensity"`
	Count     int    `json:"count"`
}

type WeekTrend struct {
	Week      Day `json:"week"`
	Completed int `json:"completed"`
	Rate      int `json:"rate"`
}

// Analytics is the detail view of a single habit.
type Analytics struct {
	Habit            Habit               `json:"habit"`
	CurrentStreak    int                 `json:"current_streak"`
	LongestStreak    int                 `json:"longest_streak"`
	CompletionRate   int                 `json:"completion_rate"`
	StrengthScore    int                 `json:"strength_score"`
	TotalCompleted   int                 `json:"total_completed"`
	Heatmap          map[Day]HeatmapCell `json:"heatmap"`
	WeeklyTrend      []WeekTrend         `json:"weekly_trend"`
	MonthlyBreakdown map[string]int      `json:"monthly_breakdown"`
	AvgIntensity     float64             `json:"avg_intensity"`
}

// Overview holds dashboard totals across a user's active habits.
type Overview struct {
	TotalHabits      int `json:"total_habits"`
	CompletedToday   int `json:"completed_today"`
	CompletionRate   int `json:"completion_rate"`
	BestStreak       int `json:"best_streak"`
	AvgCurrentStreak int `json:"avg_current_streak"`
	TotalCompleted   int `json:"total_completed"`
}

type Summary struct {
	HabitID        string   `json:"habit_id"`
	Name           string   `json:"name"`
	Color          string   `json:"color"`
	Icon           string   `json:"icon"`
	Category       Category `json:"category"`
	CurrentStreak  int      `json:"current_streak"`
	LongestStreak  int      `json:"longest_streak"`
	CompletionRate int      `json:"completion_rate"`
	StrengthScore  int      `json:"strength_score"`
	TotalCompleted int      `json:"total_completed"`
	LastCompleted  Day      `json:"last_completed,omitempty"`
}

// Achievement is a streak milestone a user has unlocked. Each ID is granted
// at most once per user; HabitID is the habit whose streak earned it.
type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Streak      int       `json:"streak"`
	HabitID     string    `json:"habit_id"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}
