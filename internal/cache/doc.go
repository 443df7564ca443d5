// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

/*
Package cache provides a bounded, thread-safe LRU cache with TTL expiry.

The API keeps stacked query results here so that dashboards asking for the
same closed window do not hit DuckDB on every refresh:

	c := cache.NewLRU[[]models.StackedColumn](256, 30*time.Second)
	c.Add(key, cols)
	cols, ok := c.Get(key)

Entries expire lazily on access. RemovePrefix drops every entry of a column
once new samples for it are ingested.
*/
package cache
