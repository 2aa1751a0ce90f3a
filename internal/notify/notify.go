// Package notify delivers run results to external channels.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"weekly-etf-dashboard/internal/config"
	"weekly-etf-dashboard/internal/models"
)

// Notifier defines the interface for sending notifications.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
	SendAlerts(ctx context.Context, alerts []models.Alert) error
	SendRunSummary(ctx context.Context, runDate string, items, annotated, alertCount int) error
	SendError(ctx context.Context, err error, errContext string) error
}

// NotificationChannel defines the interface for a notification channel.
type NotificationChannel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
	IsEnabled() bool
}

// Notification represents a notification message.
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]interface{}
	Timestamp time.Time
}

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationAlert   NotificationType = "alert"
	NotificationSummary NotificationType = "summary"
	NotificationError   NotificationType = "error"
	NotificationInfo    NotificationType = "info"
)

// NotificationLevel represents the notification level filter.
type NotificationLevel string

const (
	LevelAll        NotificationLevel = "all"
	LevelAlertsOnly NotificationLevel = "alerts_only"
	LevelOff        NotificationLevel = "off"
)

// MultiNotifier sends notifications to multiple channels.
type MultiNotifier struct {
	channels []NotificationChannel
	level    NotificationLevel
	mu       sync.RWMutex
}

// NewMultiNotifier creates a notifier from configuration.
func NewMultiNotifier(cfg *config.NotificationConfig) *MultiNotifier {
	mn := &MultiNotifier{
		level: NotificationLevel(cfg.Level),
	}
	if mn.level == "" {
		mn.level = LevelAlertsOnly
	}
	if !cfg.Enabled {
		mn.level = LevelOff
	}

	if cfg.Webhook.Enabled {
		mn.channels = append(mn.channels, NewWebhookNotifier(cfg.Webhook))
	}
	if cfg.Telegram.Enabled {
		mn.channels = append(mn.channels, NewTelegramNotifier(cfg.Telegram))
	}

	return mn
}

// AddChannel adds a notification channel.
func (mn *MultiNotifier) AddChannel(ch NotificationChannel) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.channels = append(mn.channels, ch)
}

func (mn *MultiNotifier) shouldSend(notifType NotificationType) bool {
	switch mn.level {
	case LevelOff:
		return false
	case LevelAlertsOnly:
		return notifType == NotificationAlert || notifType == NotificationError
	default:
		return true
	}
}

// Send delivers a notification to every enabled channel. Channel
// failures are collected, not short-circuited; one dead webhook must
// not silence Telegram.
func (mn *MultiNotifier) Send(ctx context.Context, n Notification) error {
	if !mn.shouldSend(n.Type) {
		return nil
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}

	mn.mu.RLock()
	channels := make([]NotificationChannel, len(mn.channels))
	copy(channels, mn.channels)
	mn.mu.RUnlock()

	var errs []string
	for _, ch := range channels {
		if !ch.IsEnabled() {
			continue
		}
		if err := ch.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", ch.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notification failures: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SendAlerts delivers the run's newly emitted distribution-drop alerts
// as a single message.
func (mn *MultiNotifier) SendAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	lines := make([]string, 0, len(alerts))
	for _, a := range alerts {
		lines = append(lines, a.Message)
	}

	return mn.Send(ctx, Notification{
		Type:    NotificationAlert,
		Title:   fmt.Sprintf("%d distribution drop alert(s)", len(alerts)),
		Message: strings.Join(lines, "\n"),
		Data: map[string]interface{}{
			"count": len(alerts),
		},
	})
}

// SendRunSummary delivers the end-of-run summary.
func (mn *MultiNotifier) SendRunSummary(ctx context.Context, runDate string, items, annotated, alertCount int) error {
	return mn.Send(ctx, Notification{
		Type:  NotificationSummary,
		Title: fmt.Sprintf("Weekly ETF run %s", runDate),
		Message: fmt.Sprintf("%d funds collected, %d annotated with history, %d alert(s)",
			items, annotated, alertCount),
		Data: map[string]interface{}{
			"run_date":  runDate,
			"items":     items,
			"annotated": annotated,
			"alerts":    alertCount,
		},
	})
}

// SendError delivers a pipeline error notification.
func (mn *MultiNotifier) SendError(ctx context.Context, err error, errContext string) error {
	return mn.Send(ctx, Notification{
		Type:    NotificationError,
		Title:   "Pipeline error",
		Message: fmt.Sprintf("%s: %v", errContext, err),
	})
}

// NoOpNotifier is a Notifier that does nothing.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Send does nothing.
func (n *NoOpNotifier) Send(ctx context.Context, notif Notification) error {
	return nil
}

// SendAlerts does nothing.
func (n *NoOpNotifier) SendAlerts(ctx context.Context, alerts []models.Alert) error {
	return nil
}

// SendRunSummary does nothing.
func (n *NoOpNotifier) SendRunSummary(ctx context.Context, runDate string, items, annotated, alertCount int) error {
	return nil
}

// SendError does nothing.
func (n *NoOpNotifier) SendError(ctx context.Context, err error, errContext string) error {
	return nil
}
