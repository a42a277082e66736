package service

import (
	"context"
	"time"
)

// Scheduler абстрагирует ожидания (backoff, периодический таймер), чтобы
// тесты не зависели от настоящих часов.
type Scheduler interface {
	// Sleep ждёт d или отмены ctx.
	Sleep(ctx context.Context, d time.Duration) error

	// Tick возвращает канал периодических срабатываний и функцию остановки.
	Tick(d time.Duration) (<-chan time.Time, func())
}

// wallClock — боевой Scheduler на time.
type wallClock struct{}

// NewWallClock возвращает Scheduler на настоящих часах.
func NewWallClock() Scheduler { return wallClock{} }

func (wallClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (wallClock) Tick(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}
