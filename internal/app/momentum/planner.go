package momentum

import (
	"context"
	"fmt"

	"github.com/momentum-app/momentum/internal/domain"
)

// Planner connects the store to the AI collaborators. Calls to them are
// made without holding the store lock.
type Planner struct {
	store    *Store
	breakdwn domain.Breakdowner
	reviewer domain.Reviewer
}

// NewPlanner creates a planner. Either collaborator may be nil.
func NewPlanner(store *Store, b domain.Breakdowner, r domain.Reviewer) *Planner {
	return &Planner{store: store, breakdwn: b, reviewer: r}
}

// Breakdown asks the collaborator to split a task into steps and attaches
// them. An empty answer is not an error; it yields no subtasks.
func (p *Planner) Breakdown(ctx context.Context, taskID string) ([]domain.SubTask, error) {
	task, ok := p.store.Task(taskID)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if p.breakdwn == nil {
		return nil, nil
	}
	steps := p.breakdwn.Breakdown(ctx, task.Title)
	return p.store.ApplyBreakdown(taskID, steps)
}

// Review returns the collaborator's narrative summary of the current tasks
// and stats.
func (p *Planner) Review(ctx context.Context) (string, error) {
	if p.reviewer == nil {
		return "", domain.ErrAIUnavailable
	}
	text, err := p.reviewer.Summarize(ctx, p.store.Tasks(), p.store.Stats())
	if err != nil {
		return "", fmt.Errorf("daily review: %w", err)
	}
	return text, nil
}
