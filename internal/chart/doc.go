// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

/*
Package chart turns raw time-series samples into gap-free, bucketed plot
points and keeps a chart's dataset in step with an external collection
process.

# Pipeline

A load runs, for one TimeWindow:

	storage.QueryRaw -> Handler.Aggregate -> SeriesRegistry.Observe
	    -> data points + GapFiller zeros -> Dataset.Update / Dataset.Replace

Handlers implement the four aggregation kinds (AsIs, Count, Sum, Average).
Buckets start at the window begin and are round(bucketWidthMs) wide, where
bucketWidthMs = displayRangeMs / MaxPointPerGraph. After a load every bucket
of the window carries one value per known series: either an aggregate or a
synthetic zero from the GapFiller. Average leaves empty buckets out and lets
the filler supply the zero.

# Modes

Real-time charts append. A cursor walks forward from now-displayRange in
batches of BatchSizeSeconds and only ever loads complete buckets, so already
rendered cells are never rewritten. A storage error ends the cycle quietly
and the same window is retried on the next trigger.

Historical charts load their whole window once and replace the dataset. A
storage error is returned wrapped in ErrHistoryLoad.

# Concurrency

At most one load runs per chart. A load requested while another is in flight
is dropped and counted in stackchart_chart_loads_coalesced_total. Each load
applies its points to the Dataset under one write lock, so readers never see
a half-written bucket.

# Coordination

Real-time charts subscribe a Coordinator to the event bus for their QueryKey.
A start signal records the task's last timestamp as begin; the matching stop
signal records end and triggers exactly one LoadRange over [begin, end).
Chart.Close releases the subscriptions.
*/
package chart
