package momentum

import (
	"strings"

	"github.com/momentum-app/momentum/internal/domain"
)

// ApplyBreakdown attaches step titles to a task as fresh subtasks,
// replacing any existing ones. Blank titles are skipped and at most
// domain.MaxSubTasks are kept. If nothing usable remains the task is left
// untouched and the result is empty: no subtasks were produced.
func (s *Store) ApplyBreakdown(taskID string, titles []string) ([]domain.SubTask, error) {
	subs := make([]domain.SubTask, 0, domain.MaxSubTasks)
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		subs = append(subs, domain.SubTask{ID: s.newID(), Title: title})
		if len(subs) == domain.MaxSubTasks {
			break
		}
	}

	if len(subs) == 0 {
		if _, ok := s.Task(taskID); !ok {
			return nil, domain.ErrTaskNotFound
		}
		return nil, nil
	}
	if err := s.UpdateTask(taskID, domain.TaskUpdate{SubTasks: domain.Some(subs)}); err != nil {
		return nil, err
	}
	return subs, nil
}

// ToggleSubTask flips one subtask of a task.
func (s *Store) ToggleSubTask(taskID, subID string) error {
	s.mu.Lock()
	i := s.indexOf(taskID)
	if i < 0 {
		s.mu.Unlock()
		return domain.ErrTaskNotFound
	}
	subs, _ := s.tasks[i].SubTasks.Get()
	j := -1
	for k := range subs {
		if subs[k].ID == subID {
			j = k
			break
		}
	}
	if j < 0 {
		s.mu.Unlock()
		return domain.ErrSubTaskNotFound
	}
	subs[j].Completed = !subs[j].Completed
	updated := s.tasks[i].Clone()
	s.mu.Unlock()

	s.events.publish(Event{Type: EventTaskUpdated, Task: updated})
	return nil
}
