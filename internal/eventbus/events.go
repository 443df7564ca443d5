// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package eventbus

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/stackchart/internal/models"
)

// Topics.
const (
	TopicCollectLifecycle = "collect.lifecycle"
	TopicShowHistory      = "history.show"
)

// CollectType distinguishes start and stop signals.
type CollectType string

const (
	CollectStart CollectType = "start"
	CollectStop  CollectType = "stop"
)

// CollectEvent signals that a collection task started or stopped.
type CollectEvent struct {
	EventID   string          `json:"event_id"`
	Type      CollectType     `json:"type"`
	Key       models.QueryKey `json:"key"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewCollectEvent creates an event with a fresh ID.
func NewCollectEvent(t CollectType, key models.QueryKey) *CollectEvent {
	return &CollectEvent{
		EventID:   uuid.New().String(),
		Type:      t,
		Key:       key,
		Timestamp: time.Now().UTC(),
	}
}

// Validate checks required fields.
func (e *CollectEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.Type != CollectStart && e.Type != CollectStop {
		return &ValidationError{Field: "type", Message: "must be start or stop"}
	}
	if e.Key.IsZero() {
		return &ValidationError{Field: "key", Message: "required"}
	}
	return nil
}

// ShowHistoryEvent asks charts to display a past window. Key and Column are
// optional; an empty value addresses every chart.
type ShowHistoryEvent struct {
	EventID   string          `json:"event_id"`
	Key       models.QueryKey `json:"key"`
	Column    string          `json:"column,omitempty"`
	Begin     int64           `json:"begin"`
	End       int64           `json:"end"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewShowHistoryEvent creates an event with a fresh ID.
func NewShowHistoryEvent(key models.QueryKey, column string, w models.TimeWindow) *ShowHistoryEvent {
	return &ShowHistoryEvent{
		EventID:   uuid.New().String(),
		Key:       key,
		Column:    column,
		Begin:     w.Begin,
		End:       w.End,
		Timestamp: time.Now().UTC(),
	}
}

// Window returns [Begin, End).
func (e *ShowHistoryEvent) Window() models.TimeWindow {
	return models.TimeWindow{Begin: e.Begin, End: e.End}
}

// Validate checks required fields.
func (e *ShowHistoryEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.Begin < 0 || e.End < 0 {
		return &ValidationError{Field: "window", Message: "must not be negative"}
	}
	return nil
}

// CollectListener receives lifecycle signals. Calls for one subscription are
// serial and in publish order.
type CollectListener interface {
	OnCollectStart(ctx context.Context, ev *CollectEvent)
	OnCollectStop(ctx context.Context, ev *CollectEvent)
}

// HistoryListener receives show-history requests.
type HistoryListener interface {
	OnShowHistory(ctx context.Context, ev *ShowHistoryEvent)
}
