/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"fmt"
	"sync"
)

type ObservationKind string

const (
	// ObservationData GET succeeded and returned a payload
	ObservationData ObservationKind = "data"
	// ObservationNoData GET succeeded with an empty payload
	ObservationNoData ObservationKind = "no_data"
	// ObservationFailed GET returned non 200 status or could not be completed
	ObservationFailed ObservationKind = "failed"
)

// Observation is a diagnostic outcome of the form GET, it never affects control flow
type Observation struct {
	Kind       ObservationKind
	StatusCode int
	// Payload decoded json body, set only for ObservationData
	Payload interface{}
	// Error transport or decode error, if any
	Error string
}

func (o Observation) String() string {
	switch o.Kind {
	case ObservationData:
		return fmt.Sprintf("form GET returned data: %v", o.Payload)
	case ObservationNoData:
		return "form GET returned no data"
	default:
		if o.Error != "" {
			return fmt.Sprintf("form GET failed with status code: %d, error: %s", o.StatusCode, o.Error)
		}
		return fmt.Sprintf("form GET failed with status code: %d", o.StatusCode)
	}
}

// ObservationSink receives observations from many users concurrently
type ObservationSink interface {
	Observe(o Observation)
}

// LogSink writes observations to the runner logger
type LogSink struct {
	L *Logger
}

func (s LogSink) Observe(o Observation) {
	switch o.Kind {
	case ObservationData:
		s.L.Infow(o.String(), "kind", o.Kind, "status", o.StatusCode)
	case ObservationNoData:
		s.L.Infow(o.String(), "kind", o.Kind, "status", o.StatusCode)
	default:
		s.L.Warnw(o.String(), "kind", o.Kind, "status", o.StatusCode)
	}
}

// Sinks fans an observation out to every sink
type Sinks []ObservationSink

func (s Sinks) Observe(o Observation) {
	for _, sink := range s {
		sink.Observe(o)
	}
}

// ObservationLog keeps every observation in memory
type ObservationLog struct {
	*sync.Mutex
	Data []Observation
}

func NewObservationLog() *ObservationLog {
	return &ObservationLog{
		Mutex: &sync.Mutex{},
		Data:  make([]Observation, 0),
	}
}

func (m *ObservationLog) Observe(o Observation) {
	m.Lock()
	defer m.Unlock()
	m.Data = append(m.Data, o)
}

// All returns a copy of recorded observations
func (m *ObservationLog) All() []Observation {
	m.Lock()
	defer m.Unlock()
	res := make([]Observation, len(m.Data))
	copy(res, m.Data)
	return res
}

// Count returns amount of observations of kind
func (m *ObservationLog) Count(kind ObservationKind) int {
	m.Lock()
	defer m.Unlock()
	var n int
	for _, o := range m.Data {
		if o.Kind == kind {
			n++
		}
	}
	return n
}
