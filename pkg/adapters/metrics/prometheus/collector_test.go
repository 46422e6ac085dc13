package prometheus

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordsOnOwnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSessionCreated("debate")
	c.RecordSessionCreated("debate")
	c.RecordSessionFinished("debate", "succeeded", 3*time.Second)
	c.RecordEventDropped()

	if got := testutil.ToFloat64(c.sessionsCreated.WithLabelValues("debate")); got != 2 {
		t.Errorf("expected 2 created sessions, got %v", got)
	}
	if got := testutil.ToFloat64(c.eventsDropped); got != 1 {
		t.Errorf("expected 1 dropped event, got %v", got)
	}

	expected := `
# HELP debatehub_sessions_finished_total Total number of sessions that reached a terminal state
# TYPE debatehub_sessions_finished_total counter
debatehub_sessions_finished_total{kind="debate",outcome="succeeded"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "debatehub_sessions_finished_total"); err != nil {
		t.Error(err)
	}
}

func TestCollector_TwoInstancesDoNotCollide(t *testing.T) {
	NewCollector(prometheus.NewRegistry())
	NewCollector(prometheus.NewRegistry())
}
