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
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/ratelimit"
)

const (
	DefaultResultsQueueCapacity = 100_000
	MetricsLogFile              = "requests_%s_%s_%d.csv"
	PercsLogFile                = "percs_%s_%s_%d.csv"
	ReportGraphFile             = "percs_%s_%s_%d.html"
)

var (
	ResultsCsvHeader = []string{"RequestLabel", "User", "BeginTimeNano", "EndTimeNano", "Elapsed", "StatusCode", "Error"}
	PercsCsvHeader   = []string{"RequestLabel", "Tick", "RPS", "P50", "P95", "P99"}
)

type TickMetrics struct {
	Samples  []CycleResult
	Metrics  *Metrics
	Reported bool
}

// Runner spawns virtual users cloned from a prototype and collects their cycle results
type Runner struct {
	// Name of a runner
	Name string
	// Cfg runner config
	Cfg *RunnerConfig
	// prototype from which all users cloned
	userPrototype User
	// users cloned from a prototype, started by spawn
	users   []User
	usersWg *sync.WaitGroup
	// spawnRL keeps users spawn rate
	spawnRL ratelimit.Limiter
	// started is the test start time, ticks are counted from it
	started time.Time
	// TimeoutCtx test timeout ctx
	TimeoutCtx context.Context
	// CancelFunc cancels the test
	CancelFunc context.CancelFunc

	results chan CycleResult
	// metrics for every second of the test, keyed by tick
	tickMetricsMu *sync.Mutex
	tickMetrics   map[int]*TickMetrics
	// total metrics of the test
	total *Metrics
	// uniq error messages
	uniqErrors map[string]int
	// Failed means the test was stopped on error
	Failed int64
	// Spawned amount of started users
	Spawned int64
	// Report data
	Report *Report
	// Transport shared by all users
	Transport    FormTransport
	Sink         ObservationSink
	PromReporter *PromReporter
	L            *Logger
}

type RunnerOption func(r *Runner)

// WithSink replaces default logging observation sink
func WithSink(s ObservationSink) RunnerOption {
	return func(r *Runner) {
		r.Sink = s
	}
}

// WithTransport replaces transport built from config
func WithTransport(t FormTransport) RunnerOption {
	return func(r *Runner) {
		r.Transport = t
	}
}

// WithLogger replaces logger built from config
func WithLogger(l *Logger) RunnerOption {
	return func(r *Runner) {
		r.L = l
	}
}

// NewRunner creates new runner with constant amount of users by RunnerConfig
func NewRunner(cfg *RunnerConfig, u User, opts ...RunnerOption) (*Runner, error) {
	cfg.DefaultCfgValues()
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, validationError(problems)
	}
	r := &Runner{
		Name:          cfg.Name,
		Cfg:           cfg,
		userPrototype: u,
		users:         make([]User, 0, cfg.Users),
		usersWg:       &sync.WaitGroup{},
		spawnRL:       ratelimit.New(cfg.SpawnRate),
		results:       make(chan CycleResult, DefaultResultsQueueCapacity),
		tickMetricsMu: &sync.Mutex{},
		tickMetrics:   make(map[int]*TickMetrics),
		total:         NewMetrics(),
		uniqErrors:    make(map[string]int),
	}
	for _, o := range opts {
		o(r)
	}
	if r.L == nil {
		l, err := NewLogger(cfg)
		if err != nil {
			return nil, err
		}
		r.L = l
	}
	r.L = r.L.With("runner", cfg.Name)
	if r.Transport == nil {
		switch cfg.Transport {
		case TransportFastHTTP:
			r.Transport = NewLoggingFastHTTPClient(cfg.DumpTransport, cfg.UserTimeoutSec)
		default:
			r.Transport = &HTTPTransport{Client: NewLoggingHTTPClient(cfg.DumpTransport, cfg.UserTimeoutSec)}
		}
	}
	if r.Sink == nil {
		r.Sink = LogSink{L: r.L}
	}
	if cfg.Prometheus != nil && cfg.Prometheus.Enable {
		r.PromReporter = NewPromReporter(cfg.Prometheus.Port, r.L)
		r.Sink = Sinks{r.Sink, r.PromReporter}
	}
	if cfg.ReportOptions.CSV {
		report, err := NewReport(cfg, r.L)
		if err != nil {
			return nil, err
		}
		r.Report = report
	}
	for i := 0; i < cfg.Users; i++ {
		a := r.userPrototype.Clone(r)
		if err := a.Setup(*r.Cfg); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUserSetup, err)
		}
		r.users = append(r.users, a)
	}
	return r, nil
}

// Run runs the test and returns total metrics
func (r *Runner) Run(serverCtx context.Context) (*Metrics, error) {
	if serverCtx == nil {
		serverCtx = context.Background()
	}
	r.L.Infof("runner started, users: %d, spawn rate: %d/s", r.Cfg.Users, r.Cfg.SpawnRate)
	r.started = time.Now()
	r.TimeoutCtx, r.CancelFunc = context.WithTimeout(serverCtx, time.Duration(r.Cfg.TestTimeSec)*time.Second)
	defer r.CancelFunc()
	if r.PromReporter != nil {
		r.PromReporter.start()
		defer r.PromReporter.stop()
	}
	stopSignals := r.handleShutdownSignal()
	defer stopSignals()

	collected := r.collectResults()
	r.spawn()
	r.usersWg.Wait()
	close(r.results)
	<-collected

	for _, u := range r.users {
		if err := u.Teardown(); err != nil {
			r.L.Errorf("user teardown: %s", err)
		}
	}
	r.total.update()
	r.L.Infof("runner exited")
	r.L.Infof("max rps: %.2f", r.maxRPS())
	r.printErrors()
	if r.Report != nil {
		r.Report.flushLogs()
		r.Report.plot()
	}
	if atomic.LoadInt64(&r.Failed) > 0 {
		return r.total, ErrRunFailed
	}
	return r.total, nil
}

// spawn starts users with spawn rate limit until all started or test ended
func (r *Runner) spawn() {
	for num, u := range r.users {
		r.spawnRL.Take()
		if r.TimeoutCtx.Err() != nil {
			break
		}
		r.usersWg.Add(1)
		atomic.AddInt64(&r.Spawned, 1)
		go runUser(u, r, num)
	}
	r.L.Infof("spawned users: %d", atomic.LoadInt64(&r.Spawned))
}

// tick second since test start
func (r *Runner) tick(t time.Time) int {
	return int(t.Sub(r.started) / time.Second)
}

// collectResults collects user results until results channel is closed
func (r *Runner) collectResults() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		totalResultsStored := 0
		for {
			select {
			case res, ok := <-r.results:
				if !ok {
					r.reportTicks(-1)
					r.L.Infof("total results stored: %d", totalResultsStored)
					return
				}
				r.L.Debugf("received result: %v", res)
				totalResultsStored++
				r.processResult(res)
			case now := <-ticker.C:
				r.reportTicks(r.tick(now))
			}
		}
	}()
	return done
}

func (r *Runner) processResult(res CycleResult) {
	r.tickMetricsMu.Lock()
	if tm, ok := r.tickMetrics[res.Tick]; ok && tm.Reported {
		// late result of an already reported tick goes to the tick it was received in
		res.Tick = r.tick(time.Now())
	}
	r.tickMetricsMu.Unlock()

	errorForReport := "ok"
	if res.DoResult.Error != "" {
		r.uniqErrors[res.DoResult.Error]++
		r.L.Debugf("user error: %s", res.DoResult.Error)
		errorForReport = res.DoResult.Error
		if r.Cfg.FailOnFirstError && atomic.CompareAndSwapInt64(&r.Failed, 0, 1) {
			r.L.Errorf("stopping test on first error: %s", res.DoResult.Error)
			r.CancelFunc()
		}
	}
	if r.Report != nil {
		r.Report.writeResultEntry(res, errorForReport)
	}
	if r.PromReporter != nil {
		r.PromReporter.reportCycle(res)
	}
	r.total.add(res)

	r.tickMetricsMu.Lock()
	defer r.tickMetricsMu.Unlock()
	if _, ok := r.tickMetrics[res.Tick]; !ok {
		r.tickMetrics[res.Tick] = &TickMetrics{
			Samples: make([]CycleResult, 0),
			Metrics: NewMetrics(),
		}
	}
	tm := r.tickMetrics[res.Tick]
	tm.Samples = append(tm.Samples, res)
	tm.Metrics.add(res)
}

// reportTicks reports in order every tick older than the previous one, current < 0 reports all.
// The previous tick is kept open for results still queued in the channel.
func (r *Runner) reportTicks(current int) {
	r.tickMetricsMu.Lock()
	defer r.tickMetricsMu.Unlock()
	ticks := make([]int, 0)
	for tick, tm := range r.tickMetrics {
		if tm.Reported || (current >= 0 && tick >= current-1) {
			continue
		}
		ticks = append(ticks, tick)
	}
	sort.Ints(ticks)
	for _, tick := range ticks {
		tm := r.tickMetrics[tick]
		tm.Metrics.update()
		r.L.Infof(
			"tick: %d, rps [%d], perc: 50 [%v] 95 [%v] 99 [%v], %% success [%.2f]",
			tick,
			tm.Metrics.Requests,
			tm.Metrics.Latencies.P50,
			tm.Metrics.Latencies.P95,
			tm.Metrics.Latencies.P99,
			tm.Metrics.successLogEntry(),
		)
		if r.Report != nil {
			r.Report.writePercentilesEntry(tick, tm.Metrics)
		}
		if r.PromReporter != nil {
			r.PromReporter.reportTick(tm)
		}
		tm.Reported = true
	}
}

// printErrors print uniq errors
func (r *Runner) printErrors() {
	if len(r.uniqErrors) == 0 {
		return
	}
	r.L.Infof("Uniq errors:")
	for e, count := range r.uniqErrors {
		r.L.Infof("error: %s, count: %d", e, count)
	}
}

// maxRPS calculate max rps for test among ticks
func (r *Runner) maxRPS() float64 {
	r.tickMetricsMu.Lock()
	defer r.tickMetricsMu.Unlock()
	rates := make([]float64, 0)
	for _, m := range r.tickMetrics {
		rates = append(rates, float64(m.Metrics.Requests))
	}
	return MaxRPS(rates)
}
