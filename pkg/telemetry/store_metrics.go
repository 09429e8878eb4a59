/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package telemetry

import (
	"context"
	"sync"
	"time"

	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	storeMetrics     *StoreMetrics
	storeMetricsOnce sync.Once
)

// StoreMetrics counts session store reads and writes.
// A nil *StoreMetrics is valid and records nothing.
type StoreMetrics struct {
	ReadTotal  *Counter
	WriteTotal *Counter
	Duration   *Histogram
}

func NewStoreMetrics(meter otelmetric.Meter) (*StoreMetrics, error) {
	readTotal, err := NewCounter(meter, MetricOptions{
		Name: BuildMetricName("read", MetricNameSuffixTotal),
		Description: "total number of store reads by domain and decode status. " +
			"miss rate = status in (absent, corrupt) / all reads",
		Unit: "1",
	})
	if err != nil {
		return nil, err
	}

	writeTotal, err := NewCounter(meter, MetricOptions{
		Name:        BuildMetricName("write", MetricNameSuffixTotal),
		Description: "total number of store writes by domain and status",
		Unit:        "1",
	})
	if err != nil {
		return nil, err
	}

	duration, err := NewHistogram(meter, MetricOptions{
		Name:        BuildMetricName("operation", MetricNameSuffixDuration),
		Description: "latency of a single storage engine read or write",
		Unit:        "s",
	})
	if err != nil {
		return nil, err
	}

	return &StoreMetrics{
		ReadTotal:  readTotal,
		WriteTotal: writeTotal,
		Duration:   duration,
	}, nil
}

// InitStoreMetrics creates the process wide StoreMetrics once
func InitStoreMetrics(meter otelmetric.Meter) error {
	var initErr error
	storeMetricsOnce.Do(func() {
		storeMetrics, initErr = NewStoreMetrics(meter)
	})
	return initErr
}

func GetStoreMetrics() *StoreMetrics {
	return storeMetrics
}

func (sm *StoreMetrics) RecordRead(ctx context.Context, domain, status string, elapsed time.Duration) {
	if sm == nil {
		return
	}
	sm.ReadTotal.Inc(ctx, WithDomain(domain), WithStatus(status))
	sm.Duration.RecordDuration(ctx, elapsed, WithDomain(domain), WithOperation(OperationRead))
}

func (sm *StoreMetrics) RecordWrite(ctx context.Context, domain string, err error, elapsed time.Duration) {
	if sm == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	sm.WriteTotal.Inc(ctx, WithDomain(domain), WithStatus(status))
	sm.Duration.RecordDuration(ctx, elapsed, WithDomain(domain), WithOperation(OperationWrite))
}
