// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

/*
Package eventbus carries collection lifecycle signals between the collector
and the charts that follow it.

Two topics exist:

	collect.lifecycle  start and stop signals of a collection task (CollectEvent)
	history.show       requests to display a past window (ShowHistoryEvent)

Start and stop share one topic so a subscriber always sees them in publish
order. Events are JSON encoded with goccy/go-json and validated on both ends.

# Drivers

The default driver is Watermill's in-process gochannel pub/sub, configured to
block each publish until every subscriber has taken the message. Building
with -tags nats enables the NATS driver (watermill-nats over core NATS, no
JetStream) and an embedded NATS server for single-node deployments.

# Subscriptions

Every subscribe call returns a *Subscription handle. Close stops delivery,
waits for the dispatch goroutine and is idempotent. Bus.Close closes all
handles that are still open.

	sub, err := bus.SubscribeCollect(ctx, key, coordinator)
	if err != nil {
		return err
	}
	defer sub.Close()
*/
package eventbus
