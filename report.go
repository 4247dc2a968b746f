/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Report struct {
	runId               string
	runName             string
	MetricsLogFilename  string
	PercsReportFilename string
	PercLogFilename     string
	metricsLogFile      *os.File
	percLogFile         *os.File
	metricsLog          *csv.Writer
	percLog             *csv.Writer
	reportOptions       *ReportOptions
	L                   *Logger
}

func NewReport(cfg *RunnerConfig, l *Logger) (*Report, error) {
	tn := time.Now().Unix()
	runId := uuid.New().String()
	dir := cfg.ReportOptions.Dir
	r := &Report{
		runId:               runId,
		runName:             cfg.Name,
		MetricsLogFilename:  filepath.Join(dir, fmt.Sprintf(MetricsLogFile, cfg.Name, runId, tn)),
		PercsReportFilename: filepath.Join(dir, fmt.Sprintf(ReportGraphFile, cfg.Name, runId, tn)),
		PercLogFilename:     filepath.Join(dir, fmt.Sprintf(PercsLogFile, cfg.Name, runId, tn)),
		reportOptions:       cfg.ReportOptions,
		L:                   l.With("report", cfg.Name),
	}
	var err error
	if r.metricsLogFile, err = CreateFileOrReplace(r.MetricsLogFilename); err != nil {
		return nil, err
	}
	if r.percLogFile, err = CreateFileOrReplace(r.PercLogFilename); err != nil {
		_ = r.metricsLogFile.Close()
		return nil, err
	}
	r.metricsLog = csv.NewWriter(r.metricsLogFile)
	r.percLog = csv.NewWriter(r.percLogFile)
	_ = r.metricsLog.Write(ResultsCsvHeader)
	_ = r.percLog.Write(PercsCsvHeader)
	return r, nil
}

func (r *Report) plot() {
	if !r.reportOptions.HTML {
		return
	}
	r.L.Infof("reporting graphs: %s", r.PercLogFilename)
	chart, err := PercsChart(r.PercLogFilename, r.runName)
	if err != nil {
		r.L.Error(err)
		return
	}
	if err := RenderEChart(chart, r.PercsReportFilename); err != nil {
		r.L.Error(err)
	}
}

// flushLogs flushes and closes csv files
func (r *Report) flushLogs() {
	r.percLog.Flush()
	r.metricsLog.Flush()
	if err := r.percLog.Error(); err != nil {
		r.L.Error(err)
	}
	if err := r.metricsLog.Error(); err != nil {
		r.L.Error(err)
	}
	_ = r.percLogFile.Close()
	_ = r.metricsLogFile.Close()
}

func (r *Report) writeResultEntry(res CycleResult, errorMsg string) {
	_ = r.metricsLog.Write([]string{
		res.DoResult.RequestLabel,
		strconv.Itoa(res.User),
		strconv.FormatInt(res.Begin.UnixNano(), 10),
		strconv.FormatInt(res.End.UnixNano(), 10),
		res.Elapsed.String(),
		strconv.Itoa(res.DoResult.StatusCode),
		errorMsg,
	})
}

func (r *Report) writePercentilesEntry(tick int, tickMetrics *Metrics) {
	_ = r.percLog.Write([]string{
		FormPath,
		strconv.Itoa(tick),
		strconv.FormatUint(tickMetrics.Requests, 10),
		strconv.FormatInt(tickMetrics.Latencies.P50.Milliseconds(), 10),
		strconv.FormatInt(tickMetrics.Latencies.P95.Milliseconds(), 10),
		strconv.FormatInt(tickMetrics.Latencies.P99.Milliseconds(), 10),
	})
}
