// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package chart

import "time"

// DescribeClockSkew renders the difference between the collector's clock and
// the local clock. skewMs is collector minus local.
func DescribeClockSkew(skewMs int64) string {
	switch {
	case skewMs > 0:
		return "local clock is behind the collector by " + formatSpan(skewMs)
	case skewMs < 0:
		return "local clock is ahead of the collector by " + formatSpan(-skewMs)
	default:
		return "local and collector clocks are synchronous"
	}
}

func formatSpan(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
