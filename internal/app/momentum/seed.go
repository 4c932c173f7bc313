package momentum

import (
	"time"

	"github.com/momentum-app/momentum/internal/domain"
)

// Starter values for a seeded store.
const (
	SeedXP    = 1250
	SeedLevel = 5
)

// SeedState returns the starter dashboard: three tasks, two habits,
// 1250 XP at level 5 and medium energy. Deadlines are set to now.
func SeedState(now time.Time) State {
	last := domain.Date{Year: 2023, Month: time.October, Day: 26}
	return State{
		Tasks: []domain.Task{
			{
				ID:       "1",
				Title:    "Review the new project proposal",
				Category: domain.CategoryWork,
				Priority: 5,
				Duration: 60,
				Deadline: now,
				Quadrant: domain.QuadrantDo,
			},
			{
				ID:          "2",
				Title:       "Daily morning run",
				Category:    domain.CategoryHealth,
				Priority:    4,
				Duration:    30,
				Deadline:    now,
				Completed:   true,
				Quadrant:    domain.QuadrantDo,
				IsRecurring: true,
			},
			{
				ID:       "3",
				Title:    "Learn advanced React patterns",
				Category: domain.CategoryLearning,
				Priority: 3,
				Duration: 45,
				Deadline: now,
				Quadrant: domain.QuadrantSchedule,
			},
		},
		Habits: []domain.Habit{
			{
				ID:            "h1",
				Name:          "Read 20 pages",
				Streak:        5,
				LastCompleted: last,
				History:       []domain.Date{last, last.AddDays(-1), last.AddDays(-2), last.AddDays(-3), last.AddDays(-4)},
			},
			{
				ID:            "h2",
				Name:          "Meditate for 10 minutes",
				Streak:        12,
				LastCompleted: last,
				History:       []domain.Date{},
			},
		},
		Energy: domain.EnergyMedium,
		XP:     SeedXP,
		Level:  SeedLevel,
	}
}
