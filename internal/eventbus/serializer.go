// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package eventbus

import (
	"fmt"

	"github.com/goccy/go-json"
)

type validatable interface {
	Validate() error
}

// Marshal validates and encodes an event.
func Marshal(event validatable) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalCollect decodes and validates a CollectEvent.
func UnmarshalCollect(data []byte) (*CollectEvent, error) {
	var ev CollectEvent
	if err := unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// UnmarshalShowHistory decodes and validates a ShowHistoryEvent.
func UnmarshalShowHistory(data []byte) (*ShowHistoryEvent, error) {
	var ev ShowHistoryEvent
	if err := unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func unmarshal(data []byte, into validatable) error {
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	if err := into.Validate(); err != nil {
		return fmt.Errorf("validate event: %w", err)
	}
	return nil
}
