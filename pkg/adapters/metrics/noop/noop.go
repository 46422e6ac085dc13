// Package noop provides a MetricsCollector that discards everything.
package noop

import "time"

// Collector discards all metrics
type Collector struct{}

func (Collector) RecordSessionCreated(string)                         {}
func (Collector) RecordSessionFinished(string, string, time.Duration) {}
func (Collector) RecordStep(string, string, time.Duration)            {}
func (Collector) RecordProviderRetry(string)                          {}
func (Collector) SetActiveSessions(int)                               {}
func (Collector) SetSubscribers(int)                                  {}
func (Collector) RecordEventDropped()                                 {}
func (Collector) RecordPoll()                                         {}
func (Collector) RecordWorkerPoolStatus(int, int, int)                {}
