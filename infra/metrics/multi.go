package metrics

import (
	"errors"

	coremetrics "github.com/planwerk/planwerk/core/metrics"
)

// MultiSink fans records out to several sinks and joins their errors.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink combines the given sinks into one.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordRun(rec coremetrics.RunRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordRun(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordEvent(rec coremetrics.EventRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordEvent(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
