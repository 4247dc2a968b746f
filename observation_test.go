/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObservationLogConcurrent(t *testing.T) {
	obs := NewObservationLog()
	wg := &sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kind := ObservationData
			if i%2 == 0 {
				kind = ObservationNoData
			}
			obs.Observe(Observation{Kind: kind, StatusCode: 200})
		}(i)
	}
	wg.Wait()
	require.Len(t, obs.All(), 50)
	require.Equal(t, 25, obs.Count(ObservationData))
	require.Equal(t, 25, obs.Count(ObservationNoData))
	require.Equal(t, 0, obs.Count(ObservationFailed))
}

func TestSinksFanOut(t *testing.T) {
	a, b := NewObservationLog(), NewObservationLog()
	s := Sinks{a, b, LogSink{L: NopLogger()}}
	s.Observe(Observation{Kind: ObservationFailed, StatusCode: 503})
	require.Len(t, a.All(), 1)
	require.Len(t, b.All(), 1)
}

func TestObservationString(t *testing.T) {
	require.Contains(t, Observation{Kind: ObservationData, Payload: map[string]interface{}{"foo": "bar"}}.String(), "foo:bar")
	require.Equal(t, "form GET returned no data", Observation{Kind: ObservationNoData}.String())
	require.Equal(t, "form GET failed with status code: 500", Observation{Kind: ObservationFailed, StatusCode: 500}.String())
	require.Contains(t, Observation{Kind: ObservationFailed, Error: "refused"}.String(), "refused")
}

func TestPromReporterObserve(t *testing.T) {
	p := NewPromReporter(0, NopLogger())
	before := testutil.ToFloat64(promObservations.WithLabelValues(string(ObservationNoData)))
	p.Observe(Observation{Kind: ObservationNoData})
	p.Observe(Observation{Kind: ObservationNoData})
	require.Equal(t, before+2, testutil.ToFloat64(promObservations.WithLabelValues(string(ObservationNoData))))

	p.reportCycle(CycleResult{DoResult: DoResult{StatusCode: 418}})
	require.Equal(t, float64(1), testutil.ToFloat64(promCycles.WithLabelValues("418")))
}
