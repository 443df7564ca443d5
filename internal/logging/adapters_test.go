// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
)

func TestSlogHandler_WritesAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(NewTestLogger(&buf)))

	logger.WithGroup("svc").Info("service restarted", "name", "poller", "attempt", 2)

	output := buf.String()
	if !strings.Contains(output, `"svc.name":"poller"`) {
		t.Errorf("expected grouped key in output: %s", output)
	}
	if !strings.Contains(output, `"svc.attempt":2`) {
		t.Errorf("expected int attr in output: %s", output)
	}
	if !strings.Contains(output, `"level":"info"`) {
		t.Errorf("expected info level: %s", output)
	}
}

func TestSlogHandler_LevelMapping(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(NewTestLogger(&buf)))
	logger.Error("boom")

	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Errorf("expected error level: %s", buf.String())
	}
}

func TestWatermillLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := NewWatermillLoggerWithLogger(NewTestLogger(&buf)).
		With(watermill.LogFields{"topic": "collect.lifecycle"})

	adapter.Error("publish failed", errors.New("closed"), watermill.LogFields{"uuid": "1"})

	output := buf.String()
	for _, want := range []string{`"topic":"collect.lifecycle"`, `"uuid":"1"`, `"error":"closed"`, "publish failed"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}
