package momentum

import (
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/momentum-app/momentum/internal/domain"
)

// EventType names a store change.
type EventType string

const (
	EventTaskAdded      EventType = "task.added"
	EventTaskUpdated    EventType = "task.updated"
	EventTaskToggled    EventType = "task.toggled"
	EventTaskDeleted    EventType = "task.deleted"
	EventTasksReordered EventType = "tasks.reordered"
	EventTasksReplaced  EventType = "tasks.replaced"
	EventHabitAdded     EventType = "habit.added"
	EventHabitCompleted EventType = "habit.completed"
	EventXPAwarded      EventType = "xp.awarded"
	EventLevelUp        EventType = "level.up"
	EventEnergyChanged  EventType = "energy.changed"
)

// Event describes one committed mutation. Only the fields relevant to
// the event type are filled in.
type Event struct {
	Type  EventType
	Task  domain.Task
	Habit domain.Habit
	XP    domain.XPEvent
	Level int
}

// Handler receives store events.
type Handler func(Event)

// bus is a synchronous pub/sub fan-out. Handlers run on the publishing
// goroutine, in registration order, after the store lock is released.
type bus struct {
	mu       sync.RWMutex
	handlers map[uint64]Handler
	order    []uint64
	nextID   uint64
	log      *slog.Logger
}

func newBus(log *slog.Logger) *bus {
	return &bus{handlers: make(map[uint64]Handler), log: log}
}

func (b *bus) subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[id] = h
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.handlers, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

func (b *bus) publish(events ...Event) {
	if len(events) == 0 {
		return
	}
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		hs = append(hs, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, ev := range events {
		for _, h := range hs {
			b.safeCall(h, ev)
		}
	}
}

// safeCall keeps one panicking handler from starving the others.
func (b *bus) safeCall(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				"event", string(ev.Type), "panic", r, "stack", string(debug.Stack()))
		}
	}()
	h(ev)
}
