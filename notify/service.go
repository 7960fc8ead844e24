// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"log/slog"
	"slices"

	"github.com/courier-editor/courier/broker"
	"github.com/courier-editor/courier/contract"
)

// DefaultHistory is how many notifications Received keeps.
const DefaultHistory = 32

// Option configures a Service.
type Option func(*Service)

// WithHistory sets how many notifications are retained.
func WithHistory(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithHandler registers a function called with every notification
// text, after it is logged.
func WithHandler(handler func(text string)) Option {
	return func(s *Service) { s.handler = handler }
}

// Service logs notifications. It belongs to the host loop goroutine.
type Service struct {
	logger      *slog.Logger
	broker      *contract.Broker
	mailbox     *contract.Mailbox
	handler     func(string)
	historySize int
	history     []string
}

// New subscribes a notification consumer to the notify topic on b.
func New(b *contract.Broker, logger *slog.Logger, options ...Option) *Service {
	s := &Service{
		logger:      logger,
		broker:      b,
		historySize: DefaultHistory,
	}
	for _, option := range options {
		option(s)
	}
	s.mailbox = b.Registry().Open(broker.WithCapacity(s.historySize))
	b.Subscribe(contract.TopicNotify, s.mailbox)
	return s
}

// Update drains pending notifications.
func (s *Service) Update() {
	for _, message := range s.mailbox.Drain() {
		notification, ok := message.(contract.Notify)
		if !ok {
			s.logger.Debug("ignoring message on notify", "topic", message.Topic())
			continue
		}
		s.logger.Info("notification", "text", notification.Text)
		s.remember(notification.Text)
		if s.handler != nil {
			s.handler(notification.Text)
		}
	}
}

func (s *Service) remember(text string) {
	if len(s.history) == s.historySize {
		s.history = slices.Delete(s.history, 0, 1)
	}
	s.history = append(s.history, text)
}

// Received returns the retained notifications, oldest first.
func (s *Service) Received() []string {
	return slices.Clone(s.history)
}

// Close unsubscribes and releases the mailbox.
func (s *Service) Close() {
	_ = s.broker.Unsubscribe(contract.TopicNotify, s.mailbox.ID())
	s.mailbox.Close()
}
