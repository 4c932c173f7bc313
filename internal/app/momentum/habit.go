package momentum

import (
	"github.com/momentum-app/momentum/internal/domain"
)

// AddHabit creates a habit with no completions yet.
func (s *Store) AddHabit(name string) domain.Habit {
	h := domain.Habit{ID: s.newID(), Name: name, History: []domain.Date{}}

	s.mu.Lock()
	s.habits = append(s.habits, h)
	s.mu.Unlock()

	s.events.publish(Event{Type: EventHabitAdded, Habit: h.Clone()})
	return h.Clone()
}

// Habits returns a copy of every habit.
func (s *Store) Habits() []domain.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneHabits(s.habits)
}

// Habit returns a copy of one habit.
func (s *Store) Habit(id string) (domain.Habit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.habitIndex(id); i >= 0 {
		return s.habits[i].Clone(), true
	}
	return domain.Habit{}, false
}

// Today returns the current calendar date in the store's location.
func (s *Store) Today() domain.Date {
	return domain.DateOf(s.clock.Now().In(s.loc))
}

// ToggleHabit marks a habit done for today and awards 25 XP.
// A habit counts at most once per calendar day: a second call on the same
// day reports false and changes nothing.
//
// Under the default lenient policy the streak grows on every new day
// regardless of gaps. The strict policy restarts it at 1 unless the last
// completion was yesterday.
func (s *Store) ToggleHabit(id string) (bool, error) {
	today := s.Today()

	s.mu.Lock()
	i := s.habitIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false, domain.ErrHabitNotFound
	}
	h := &s.habits[i]
	if h.DoneOn(today) {
		s.mu.Unlock()
		return false, nil
	}

	switch {
	case s.streak == domain.StreakStrict && h.LastCompleted != today.AddDays(-1):
		h.Streak = 1
	default:
		h.Streak++
	}
	h.LastCompleted = today
	h.History = append([]domain.Date{today}, h.History...)

	events := []Event{{Type: EventHabitCompleted, Habit: h.Clone()}}
	events = append(events, s.awardLocked(domain.XPPerHabit, domain.XPHabitCompleted, h.ID)...)
	s.mu.Unlock()

	s.events.publish(events...)
	return true, nil
}

func (s *Store) habitIndex(id string) int {
	for i := range s.habits {
		if s.habits[i].ID == id {
			return i
		}
	}
	return -1
}
