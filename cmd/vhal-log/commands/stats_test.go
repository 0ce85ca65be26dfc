package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/carprop/vhal-go/pkg/log"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

func TestStatsAggregation(t *testing.T) {
	stats := newStats()
	for _, ev := range sampleEvents() {
		stats.add(ev)
	}

	if stats.TotalEvents != 7 {
		t.Errorf("TotalEvents = %d, want 7", stats.TotalEvents)
	}
	if stats.CallsByType[log.CallGetValues] != 1 || stats.CallsByType[log.CallSetValues] != 1 {
		t.Errorf("CallsByType = %v", stats.CallsByType)
	}
	if stats.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", stats.Rejected)
	}
	if stats.ResultsBySource[log.SourceTimeout] != 1 || stats.ResultsBySource[log.SourceLocal] != 1 {
		t.Errorf("ResultsBySource = %v", stats.ResultsBySource)
	}
	if stats.StatusCounts[vehicle.StatusTryAgain] != 1 {
		t.Errorf("StatusCounts = %v", stats.StatusCounts)
	}
	if stats.PropertyEvents[propSpeed] != 1 {
		t.Errorf("PropertyEvents = %v", stats.PropertyEvents)
	}
	if len(stats.Clients) != 2 {
		t.Fatalf("Clients = %d, want 2", len(stats.Clients))
	}
	if a := stats.Clients[clientA]; a.Events != 3 || a.Calls != 1 || a.Timeouts != 1 {
		t.Errorf("client A = %+v", a)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if got := stats.TimeRange.End.Sub(stats.TimeRange.Start); got.Milliseconds() != 500 {
		t.Errorf("time range = %v, want 500ms", got)
	}
}

func TestRunStats(t *testing.T) {
	path := writeTrace(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	output := buf.String()
	for _, want := range []string{
		"Total Events: 7",
		"GET_VALUES:",
		"TIMEOUT:",
		"Clients: 2",
		"[aaaaaaaa] 3 events, 1 calls",
		"Timeouts: 1",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("stats missing %q:\n%s", want, output)
		}
	}
}

func TestRunStatsEmpty(t *testing.T) {
	path := writeTrace(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
