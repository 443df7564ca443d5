// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/stackchart/internal/validation"
)

// Validate checks struct tags, then the rules spanning several fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateBus(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateCharts()
}

func (c *Config) validateBus() error {
	if c.Bus.Driver != "nats" {
		return nil
	}
	if !c.Bus.EmbeddedServer && c.Bus.NATSURL == "" {
		return fmt.Errorf("NATS_URL is required when BUS_DRIVER=nats without an embedded server")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateCharts() error {
	seen := make(map[string]struct{}, len(c.Charts))
	for i := range c.Charts {
		ch := &c.Charts[i]
		if _, dup := seen[ch.ID]; dup {
			return fmt.Errorf("duplicate chart id %q", ch.ID)
		}
		seen[ch.ID] = struct{}{}
		if err := ch.validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasWildcardCORS reports whether any origin is allowed.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Server.CORSOrigins {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}
	return false
}
