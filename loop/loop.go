// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package loop runs the host tick: a single goroutine that updates
// every registered task on a fixed interval or as soon as it is woken.
//
// Tasks (the backend, the file service, the notification consumer)
// own broker state that is not safe for concurrent use, so they only
// ever run on the loop goroutine. Other goroutines, such as the remote
// RPC client's reader, signal new work with [Loop.Wake].
package loop

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/courier-editor/courier/lib/clock"
)

// Task is updated once per tick.
type Task interface {
	Update()
}

// TaskFunc adapts a function to Task.
type TaskFunc func()

func (f TaskFunc) Update() { f() }

// Loop is a cooperative tick scheduler.
type Loop struct {
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger

	tasks []Task
	wake  chan struct{}
	ticks atomic.Uint64
}

// New returns a loop that ticks every interval. Panics if interval is
// not positive.
func New(c clock.Clock, interval time.Duration, logger *slog.Logger) *Loop {
	if interval <= 0 {
		panic("loop: non-positive tick interval")
	}
	return &Loop{
		clock:    c,
		interval: interval,
		logger:   logger,
		wake:     make(chan struct{}, 1),
	}
}

// Add appends a task. Tasks run in the order they were added. Add
// must not be called concurrently with Run, except from a task.
func (l *Loop) Add(task Task) {
	l.tasks = append(l.tasks, task)
}

// Wake requests a tick as soon as possible. Safe to call from any
// goroutine; wakes that arrive before the loop gets to them coalesce.
func (l *Loop) Wake() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Ticks returns how many ticks have completed.
func (l *Loop) Ticks() uint64 { return l.ticks.Load() }

// Tick runs every task once on the calling goroutine.
func (l *Loop) Tick() {
	for _, task := range l.tasks {
		task.Update()
	}
	l.ticks.Add(1)
}

// Run ticks once immediately and then on every interval or wake until
// ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := l.clock.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Debug("host loop started", "interval", l.interval, "tasks", len(l.tasks))
	l.Tick()
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("host loop stopped", "ticks", l.Ticks())
			return nil
		case <-ticker.C:
		case <-l.wake:
		}
		l.Tick()
	}
}
