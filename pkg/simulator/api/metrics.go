/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/greenliquidlight/modservice/pkg/models"
)

const (
	meterName         = "modservice.simulator.api"
	metricReads       = "modsim.register.reads"
	metricWrites      = "modsim.register.writes"
	metricHTTPErrors  = "modsim.api.errors"
	attributeKind     = "kind"
	attributeStatus   = "status"
	attributeEndpoint = "endpoint"
)

var (
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	readCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	writeCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	errorCounter metric.Int64Counter
)

func initMeter() {
	meter := otel.Meter(meterName)

	reads, err := meter.Int64Counter(
		metricReads,
		metric.WithDescription("Register values read through the gateway"),
	)
	if err != nil {
		otel.Handle(err)
	}
	readCounter = reads

	writes, err := meter.Int64Counter(
		metricWrites,
		metric.WithDescription("Register values written through the gateway"),
	)
	if err != nil {
		otel.Handle(err)
	}
	writeCounter = writes

	errs, err := meter.Int64Counter(
		metricHTTPErrors,
		metric.WithDescription("Gateway requests answered with a non-2xx status"),
	)
	if err != nil {
		otel.Handle(err)
	}
	errorCounter = errs
}

func recordReads(ctx context.Context, kind models.RegisterKind, n int) {
	meterOnce.Do(initMeter)
	if readCounter == nil || n == 0 {
		return
	}

	readCounter.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attributeKind, string(kind))))
}

func recordWrites(ctx context.Context, kind models.RegisterKind, n int) {
	meterOnce.Do(initMeter)
	if writeCounter == nil || n == 0 {
		return
	}

	writeCounter.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attributeKind, string(kind))))
}

func recordError(ctx context.Context, endpoint string, status int) {
	meterOnce.Do(initMeter)
	if errorCounter == nil {
		return
	}

	errorCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attributeEndpoint, endpoint),
		attribute.Int(attributeStatus, status),
	))
}
