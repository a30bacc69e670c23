// Package scheduler runs the overdue-todo reminder job: a periodic sweep
// that tells creators and assignees about todos past their due date.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/teamtodo-dev/teamtodo/db"
	"github.com/teamtodo-dev/teamtodo/internal/models"
	"github.com/teamtodo-dev/teamtodo/internal/types"
	"github.com/teamtodo-dev/teamtodo/internal/ws"
)

const (
	defaultInterval = 15 * time.Minute
	remindEvery     = 24 * time.Hour
)

type Notifier interface {
	EmitToUser(userID uint, event string, data interface{})
}

type Scheduler struct {
	notifier Notifier
	interval time.Duration

	mu       sync.Mutex
	lastSent map[uint]time.Time // todo ID -> last reminder time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler builds a reminder scheduler emitting through the given
// notifier, usually the websocket hub. REMINDER_INTERVAL (seconds) overrides
// the default sweep interval.
func NewScheduler(notifier Notifier) *Scheduler {
	interval := defaultInterval

	if raw := os.Getenv("REMINDER_INTERVAL"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			interval = time.Duration(seconds) * time.Second
		} else {
			log.Printf("Invalid REMINDER_INTERVAL %q, using default", raw)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		notifier: notifier,
		interval: interval,
		lastSent: make(map[uint]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the reminder loop with an immediate first sweep.
func (s *Scheduler) Start() {
	log.Printf("Starting reminder scheduler with interval %v", s.interval)

	go func() {
		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// Stop cancels the reminder loop.
func (s *Scheduler) Stop() {
	log.Println("Stopping reminder scheduler")
	s.cancel()
}

// sweep finds overdue todos and reminds their creator and assignee, at most
// once per todo per 24 hours. Reminder state is in-memory only, the same
// best-effort guarantee the gateway gives.
func (s *Scheduler) sweep() {
	var todos []models.Todo

	err := db.DB.Where("due_date < ? AND status NOT IN ?",
		time.Now(), []string{types.StatusCompleted, types.StatusCancelled}).
		Find(&todos).Error

	if err != nil {
		log.Printf("Failed to query overdue todos: %v", err)
		return
	}

	for i := range todos {
		todo := &todos[i]

		if !s.shouldRemind(todo.ID) {
			continue
		}

		envelope := ws.NewEnvelope(
			"todo_overdue",
			"Task Overdue",
			fmt.Sprintf("Task %q is past its due date", todo.Title),
			map[string]interface{}{
				"id":       todo.ID,
				"title":    todo.Title,
				"due_date": todo.DueDate,
				"status":   todo.Status,
			},
		)

		s.notifier.EmitToUser(todo.CreatedByID, ws.EventNotification, envelope)

		if todo.AssigneeID != nil && *todo.AssigneeID != todo.CreatedByID {
			s.notifier.EmitToUser(*todo.AssigneeID, ws.EventNotification, envelope)
		}
	}
}

func (s *Scheduler) shouldRemind(todoID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, exists := s.lastSent[todoID]; exists && time.Since(last) < remindEvery {
		return false
	}

	s.lastSent[todoID] = time.Now()
	return true
}
