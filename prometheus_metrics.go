/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	promTickSuccessRatio = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "formbot_tick_success_ratio",
		Help: "Success cycles ratio",
	})
	promTickP50 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "formbot_tick_p50",
		Help: "Cycle time 50 Percentile",
	})
	promTickP95 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "formbot_tick_p95",
		Help: "Cycle time 95 Percentile",
	})
	promTickP99 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "formbot_tick_p99",
		Help: "Cycle time 99 Percentile",
	})
	promTickMax = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "formbot_tick_max",
		Help: "Cycle time MAX",
	})
	promRPS = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "formbot_tick_rps",
		Help: "Cycles per second rate",
	})
	promCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formbot_cycles_total",
		Help: "Completed user cycles by GET status code",
	}, []string{"status"})
	promObservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formbot_observations_total",
		Help: "Form GET observations by kind",
	}, []string{"kind"})
)

// PromReporter exports runner metrics, it is also an ObservationSink
type PromReporter struct {
	srv *http.Server
	l   *Logger
}

func NewPromReporter(port int, l *Logger) *PromReporter {
	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.Handler())
	pprofHandlers(m)
	return &PromReporter{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: m,
		},
		l: l,
	}
}

func (m *PromReporter) start() {
	m.l.Infof("serving metrics on %s", m.srv.Addr)
	go func() {
		if err := m.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.l.Errorf("metrics server: %s", err)
		}
	}()
}

func (m *PromReporter) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = m.srv.Shutdown(ctx)
}

func (m *PromReporter) reportTick(tm *TickMetrics) {
	promTickP50.Set(float64(tm.Metrics.Latencies.P50.Milliseconds()))
	promTickP95.Set(float64(tm.Metrics.Latencies.P95.Milliseconds()))
	promTickP99.Set(float64(tm.Metrics.Latencies.P99.Milliseconds()))
	promTickMax.Set(float64(tm.Metrics.Latencies.Max.Milliseconds()))
	promTickSuccessRatio.Set(tm.Metrics.Success)
	promRPS.Set(float64(tm.Metrics.Requests))
}

func (m *PromReporter) reportCycle(res CycleResult) {
	promCycles.WithLabelValues(strconv.Itoa(res.DoResult.StatusCode)).Inc()
}

func (m *PromReporter) Observe(o Observation) {
	promObservations.WithLabelValues(string(o.Kind)).Inc()
}
