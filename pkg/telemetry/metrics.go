// Copyright 2026 © The VAP Agent Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vapagentmedia/vap-agent/pkg/errors"
)

// BridgeMetrics tracks tool-call volume, failures, and latency on a bridge
// connection.
type BridgeMetrics struct {
	callCounter  metric.Int64Counter
	errorCounter metric.Int64Counter
	callDuration metric.Float64Histogram
}

// NewBridgeMetrics creates bridge metrics on the global OTEL meter.
func NewBridgeMetrics() (*BridgeMetrics, error) {
	meter := otel.Meter("vapagent/bridge")

	callCounter, err := meter.Int64Counter(
		"vapagent.bridge.calls",
		metric.WithDescription("Total tool calls by tool name"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"vapagent.bridge.errors",
		metric.WithDescription("Failed tool calls by tool name and error code"),
	)
	if err != nil {
		return nil, err
	}

	callDuration, err := meter.Float64Histogram(
		"vapagent.bridge.call.duration",
		metric.WithDescription("Tool call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &BridgeMetrics{
		callCounter:  callCounter,
		errorCounter: errorCounter,
		callDuration: callDuration,
	}, nil
}

// RecordCall records one tool call. Safe to call on a nil receiver so the
// bridge client works without metrics attached.
func (m *BridgeMetrics) RecordCall(ctx context.Context, tool string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	toolAttr := attribute.String("tool_name", tool)
	m.callCounter.Add(ctx, 1, metric.WithAttributes(toolAttr))
	m.callDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(toolAttr))
	if err != nil {
		m.errorCounter.Add(ctx, 1, metric.WithAttributes(
			toolAttr,
			attribute.String("error_code", string(errors.CodeOf(err))),
		))
	}
}
