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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/greenliquidlight/modservice/pkg/models"
)

func counterValue(t *testing.T, reader sdkmetric.Reader, name, kind string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)

			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key(attributeKind)); ok && v.AsString() == kind {
					total += dp.Value
				}
			}
		}
	}

	return total
}

func TestRegisterCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	srv, manager := newTestAPI(t)

	rec, err := manager.CreateAndStart(models.ServerSpec{Port: 1502, UnitID: 1, CoilsSize: 8, HoldingSize: 8})
	require.NoError(t, err)

	base := srv.URL + "/api/servers/" + rec.ID

	readsBefore := counterValue(t, reader, metricReads, "holding")
	writesBefore := counterValue(t, reader, metricWrites, "coils")

	code, _ := do(t, http.MethodGet, base+"/holding?addr=0&count=5", "")
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, http.MethodPut, base+"/coils", `{"values":[{"addr":0,"value":true},{"addr":3,"value":1}]}`)
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, http.MethodPut, base+"/coils/7", `{"value":false}`)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, int64(5), counterValue(t, reader, metricReads, "holding")-readsBefore)
	assert.Equal(t, int64(3), counterValue(t, reader, metricWrites, "coils")-writesBefore)
}
