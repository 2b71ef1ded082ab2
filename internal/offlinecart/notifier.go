package offlinecart

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notification levels
const (
	LevelInfo    = "info"
	LevelFailure = "failure"
)

// Notifier delivers user-visible messages
type Notifier interface {
	Info(message string)
	Failure(message string)
}

// Notification is a single user-visible message
type Notification struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Feed is a Notifier that logs every message and keeps the most recent ones
// for clients to poll
type Feed struct {
	mu     sync.Mutex
	items  []Notification
	limit  int
	logger *zap.Logger
}

// NewFeed creates a Feed holding at most limit notifications
func NewFeed(limit int, logger *zap.Logger) *Feed {
	if limit <= 0 {
		limit = 50
	}
	return &Feed{limit: limit, logger: logger}
}

// Info implements Notifier
func (f *Feed) Info(message string) {
	f.logger.Info("User notification", zap.String("message", message))
	f.push(LevelInfo, message)
}

// Failure implements Notifier
func (f *Feed) Failure(message string) {
	f.logger.Warn("User failure notification", zap.String("message", message))
	f.push(LevelFailure, message)
}

func (f *Feed) push(level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append(f.items, Notification{
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
	if over := len(f.items) - f.limit; over > 0 {
		f.items = append([]Notification(nil), f.items[over:]...)
	}
}

// Recent returns the stored notifications, oldest first
func (f *Feed) Recent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification(nil), f.items...)
}
